// Package exporter writes the annotated results sheet.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/nonsonwune/nestrank/importer"
	"github.com/nonsonwune/nestrank/models"
)

// Derived output columns
const (
	ColumnTotalMarks        = "Total Marks"
	ColumnMaxSubjectMark    = "Max Subject Mark"
	ColumnPercentile        = "Percentile"
	ColumnQualifiedSubjects = "SMAS Qualified Subjects"
)

// RankColumns lists the rank fields in output order.
var RankColumns = []models.RankField{
	models.GeneralRank,
	models.CategoryRank,
	models.RegionRank,
	models.PWDRank,
	models.EWSRank,
}

// Exporter renders a ranked table as CSV or JSON
type Exporter struct {
	decimals int
}

func NewExporter(percentileDecimals int) *Exporter {
	return &Exporter{decimals: percentileDecimals}
}

// DerivedColumns returns the names of the computed columns in output order.
func DerivedColumns() []string {
	out := []string{ColumnTotalMarks, ColumnMaxSubjectMark, ColumnPercentile, ColumnQualifiedSubjects}
	for _, f := range RankColumns {
		out = append(out, f.Column())
	}
	return out
}

// Headers returns the output header row. A derived column already present in
// the input keeps its position and is overwritten; the rest are appended.
func Headers(input []string) []string {
	return newLayout(input).headers
}

// layout maps every derived column to its index in the output row.
type layout struct {
	headers []string
	derived []int
}

func newLayout(input []string) layout {
	l := layout{headers: append([]string(nil), input...)}
	for _, name := range DerivedColumns() {
		idx := importer.FindColumn(input, name)
		if idx == -1 {
			idx = len(l.headers)
			l.headers = append(l.headers, name)
		}
		l.derived = append(l.derived, idx)
	}
	return l
}

// replaced reports which input columns are overwritten by derived values.
func (l layout) replaced(inputLen int) map[int]bool {
	out := make(map[int]bool)
	for _, idx := range l.derived {
		if idx < inputLen {
			out[idx] = true
		}
	}
	return out
}

// ExportFile writes the table to path in the given format ("csv" or "json").
func (e *Exporter) ExportFile(path, format string, table *importer.Table, cands []models.Candidate) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}

	switch format {
	case "json":
		err = e.WriteJSON(file, table, cands)
	default:
		err = e.WriteCSV(file, table, cands)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	log.Printf("Results written to: %s", path)
	return nil
}

// WriteCSV writes one row per candidate. Absent ranks are empty cells.
func (e *Exporter) WriteCSV(w io.Writer, table *importer.Table, cands []models.Candidate) error {
	writer := csv.NewWriter(w)
	l := newLayout(table.Headers)

	if err := writer.Write(l.headers); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}
	for _, c := range cands {
		record := make([]string, len(l.headers))
		copy(record, e.cleanedRecord(table, c))
		for k, v := range e.derivedValues(c) {
			record[l.derived[k]] = v
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing row %d: %w", c.Row, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

type resultRow struct {
	Row               int               `json:"row"`
	Columns           map[string]string `json:"columns"`
	TotalMarks        float64           `json:"total_marks"`
	MaxSubjectMark    float64           `json:"max_subject_mark"`
	Percentile        float64           `json:"percentile"`
	QualifiedSubjects int               `json:"smas_qualified_subjects"`
	GenRank           *models.Rank      `json:"gen_rank,omitempty"`
	CatRank           *models.Rank      `json:"cat_rank,omitempty"`
	JKRank            *models.Rank      `json:"jk_rank,omitempty"`
	PWDRank           *models.Rank      `json:"pwd_rank,omitempty"`
	EWSRank           *models.Rank      `json:"ews_rank,omitempty"`
}

// WriteJSON writes an array of rows. Absent ranks are omitted. Input columns
// named like a derived column are dropped from "columns" in favour of the
// computed field.
func (e *Exporter) WriteJSON(w io.Writer, table *importer.Table, cands []models.Candidate) error {
	replaced := newLayout(table.Headers).replaced(len(table.Headers))
	rows := make([]resultRow, 0, len(cands))
	for _, c := range cands {
		record := e.cleanedRecord(table, c)
		columns := make(map[string]string, len(table.Headers))
		for i, h := range table.Headers {
			if i < len(record) && !replaced[i] {
				columns[h] = record[i]
			}
		}
		rows = append(rows, resultRow{
			Row:               c.Row,
			Columns:           columns,
			TotalMarks:        c.TotalMarks,
			MaxSubjectMark:    c.MaxSubjectMark,
			Percentile:        e.round(c.Percentile),
			QualifiedSubjects: c.QualifiedSubjects,
			GenRank:           c.Ranks.General,
			CatRank:           c.Ranks.Category,
			JKRank:            c.Ranks.Region,
			PWDRank:           c.Ranks.PWD,
			EWSRank:           c.Ranks.EWS,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// cleanedRecord is the passthrough record with the cleaned marks, category
// and status flags written back into their columns.
func (e *Exporter) cleanedRecord(table *importer.Table, c models.Candidate) []string {
	record := make([]string, len(table.Headers))
	copy(record, c.Record)

	cols := table.Columns
	for s, idx := range cols.Subjects {
		if idx >= 0 && idx < len(record) && s < len(c.Marks) {
			record[idx] = formatFloat(c.Marks[s])
		}
	}
	set := func(idx int, v string) {
		if idx >= 0 && idx < len(record) {
			record[idx] = v
		}
	}
	set(cols.Category, c.Category)
	set(cols.PWDStatus, c.PWDStatus)
	set(cols.JKStatus, c.JKStatus)
	return record
}

// derivedValues returns the cells of DerivedColumns for c.
func (e *Exporter) derivedValues(c models.Candidate) []string {
	vals := []string{
		formatFloat(c.TotalMarks),
		formatFloat(c.MaxSubjectMark),
		formatFloat(e.round(c.Percentile)),
		strconv.Itoa(c.QualifiedSubjects),
	}
	for _, f := range RankColumns {
		vals = append(vals, rankCell(c.Ranks.Get(f)))
	}
	return vals
}

// round rounds half to even at the configured number of decimals.
func (e *Exporter) round(v float64) float64 {
	p := math.Pow(10, float64(e.decimals))
	return math.RoundToEven(v*p) / p
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rankCell(r *models.Rank) string {
	if r == nil {
		return ""
	}
	return r.String()
}
