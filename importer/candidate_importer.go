package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nonsonwune/nestrank/models"
)

// Optional demographic columns
const (
	ColumnCategory  = "Category"
	ColumnPWDStatus = "PWD-Status"
	ColumnJKStatus  = "JK-Status"
)

// Import error codes
const (
	ErrCodeEmptyFile     = "EMPTY_FILE"
	ErrCodeMissingColumn = "MISSING_COLUMN"
	ErrCodeMalformedRow  = "MALFORMED_ROW"
	ErrCodeInvalidMark   = "INVALID_MARK"
)

// ImportConfig holds the configuration for loading a candidate sheet
type ImportConfig struct {
	SourceFile    string
	Subjects      []string
	ClampNegative bool
}

// ColumnIndex records where each known column sits in the header. Absent
// optional columns are -1.
type ColumnIndex struct {
	Subjects  []int
	Category  int
	PWDStatus int
	JKStatus  int
}

// Table is a loaded and cleaned candidate sheet
type Table struct {
	Headers    []string
	Columns    ColumnIndex
	Candidates []models.Candidate
}

// ImportError describes why a sheet was rejected. Any ImportError aborts the run.
type ImportError struct {
	Code    string
	Message string
	Row     int
	Column  string
	Context map[string]string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("[%s] row %d: %s", e.Code, e.Row, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// CandidateImporter reads a candidate CSV and normalizes it
type CandidateImporter struct {
	config ImportConfig
	stats  *ImportStats
}

func NewCandidateImporter(config ImportConfig) *CandidateImporter {
	return &CandidateImporter{
		config: config,
		stats:  NewImportStats(),
	}
}

// Stats returns the cleaning statistics of the last import.
func (ci *CandidateImporter) Stats() *ImportStats {
	return ci.stats
}

// ImportFile opens config.SourceFile (or path, when given) and imports it.
func (ci *CandidateImporter) ImportFile(ctx context.Context, path string) (*Table, error) {
	if path == "" {
		path = ci.config.SourceFile
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening candidate file: %w", err)
	}
	defer file.Close()

	return ci.Import(ctx, csv.NewReader(file))
}

// ImportData is a convenience wrapper around CandidateImporter.Import.
func ImportData(ctx context.Context, config ImportConfig, reader *csv.Reader) (*Table, error) {
	return NewCandidateImporter(config).Import(ctx, reader)
}

// Import reads every record. Any malformed record fails the whole import:
// ranks depend on the full population, so no row is ever skipped.
func (ci *CandidateImporter) Import(ctx context.Context, reader *csv.Reader) (*Table, error) {
	ci.stats = NewImportStats()

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, &ImportError{Code: ErrCodeEmptyFile, Message: "candidate file has no header row"}
	}
	if err != nil {
		return nil, &ImportError{Code: ErrCodeMalformedRow, Message: "error reading headers", Err: err}
	}
	headers = append([]string(nil), headers...)
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	columns, err := ci.validateHeaders(headers)
	if err != nil {
		return nil, err
	}

	table := &Table{Headers: headers, Columns: columns}
	row := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, &ImportError{Code: ErrCodeMalformedRow, Row: row, Message: err.Error(), Err: err}
		}

		cand, err := ci.transformRecord(row, columns, headers, record)
		if err != nil {
			return nil, err
		}
		table.Candidates = append(table.Candidates, cand)
	}

	ci.stats.TotalProcessed = row
	return table, nil
}

// validateHeaders requires every subject column and locates the optional ones.
func (ci *CandidateImporter) validateHeaders(headers []string) (ColumnIndex, error) {
	columns := ColumnIndex{
		Subjects:  make([]int, len(ci.config.Subjects)),
		Category:  getColumnIndex(headers, ColumnCategory),
		PWDStatus: getColumnIndex(headers, ColumnPWDStatus),
		JKStatus:  getColumnIndex(headers, ColumnJKStatus),
	}

	var missing []string
	suggestions := make(map[string]string)
	for s, subject := range ci.config.Subjects {
		columns.Subjects[s] = getColumnIndex(headers, subject)
		if columns.Subjects[s] != -1 {
			continue
		}
		missing = append(missing, subject)
		if matches := findBestColumnMatch(subject, headers); len(matches) > 0 {
			suggestions[subject] = matches[0].SourceColumn
		}
	}

	if len(missing) > 0 {
		msg := fmt.Sprintf("missing required columns: %v", missing)
		for _, col := range missing {
			if s, ok := suggestions[col]; ok {
				msg += fmt.Sprintf(" (did you mean %q for %q?)", s, col)
			}
		}
		return columns, &ImportError{
			Code:    ErrCodeMissingColumn,
			Message: msg,
			Column:  missing[0],
			Context: suggestions,
		}
	}
	for _, opt := range []struct {
		name string
		idx  int
	}{{ColumnCategory, columns.Category}, {ColumnPWDStatus, columns.PWDStatus}, {ColumnJKStatus, columns.JKStatus}} {
		if opt.idx == -1 {
			log.Printf("Column %s not found, defaulting every candidate", opt.name)
		}
	}
	return columns, nil
}

func (ci *CandidateImporter) transformRecord(row int, columns ColumnIndex, headers, record []string) (models.Candidate, error) {
	cand := models.Candidate{
		Row:    row,
		Record: append([]string(nil), record...),
		Marks:  make([]float64, len(columns.Subjects)),
	}

	for s, idx := range columns.Subjects {
		mark, err := ci.transformMark(cell(record, idx))
		if err != nil {
			return cand, &ImportError{
				Code:    ErrCodeInvalidMark,
				Row:     row,
				Column:  headers[idx],
				Message: fmt.Sprintf("invalid mark %q in column %s", cell(record, idx), headers[idx]),
				Err:     err,
			}
		}
		cand.Marks[s] = mark
	}

	cand.Category = ci.transformCategory(cell(record, columns.Category))
	cand.PWDStatus = ci.transformFlag(cell(record, columns.PWDStatus))
	cand.JKStatus = ci.transformFlag(cell(record, columns.JKStatus))
	return cand, nil
}

// ErrNonFiniteMark is returned for marks such as "inf".
var ErrNonFiniteMark = errors.New("mark is not a finite number")

// transformMark turns blanks into 0 and optionally clamps negatives.
func (ci *CandidateImporter) transformMark(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if isNullToken(s) {
		ci.stats.BlankMarks++
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrNonFiniteMark
	}
	if v < 0 && ci.config.ClampNegative {
		ci.stats.ClampedMarks++
		return 0, nil
	}
	return v, nil
}

func (ci *CandidateImporter) transformCategory(s string) string {
	s = strings.TrimSpace(s)
	if isNullToken(s) {
		ci.stats.DefaultedCategories++
		return models.CategoryGEN
	}
	return strings.ToUpper(s)
}

func (ci *CandidateImporter) transformFlag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if isNullToken(s) {
		ci.stats.DefaultedFlags++
		return models.FlagNo
	}
	return s
}

// isNullToken matches the spellings spreadsheet exports use for missing values.
func isNullToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "na", "n/a", "nan", "null", "none", "#n/a":
		return true
	}
	return false
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// ImportStats counts the cleaning applied during an import
type ImportStats struct {
	TotalProcessed      int
	BlankMarks          int
	ClampedMarks        int
	DefaultedCategories int
	DefaultedFlags      int
}

func NewImportStats() *ImportStats {
	return &ImportStats{}
}

func (s *ImportStats) PrintSummary() {
	log.Printf("Import Statistics:")
	log.Printf("Total Records Processed: %d", s.TotalProcessed)
	log.Printf("Blank Marks Set To Zero: %d", s.BlankMarks)
	log.Printf("Negative Marks Clamped: %d", s.ClampedMarks)
	log.Printf("Categories Defaulted To GEN: %d", s.DefaultedCategories)
	log.Printf("Status Flags Defaulted To No: %d", s.DefaultedFlags)
}

// ColumnMatch represents a potential column match with confidence score
type ColumnMatch struct {
	SourceColumn      string
	DestinationColumn string
	Confidence        float64
}

// findBestColumnMatch uses fuzzy matching to suggest headers for a missing column
func findBestColumnMatch(required string, headers []string) []ColumnMatch {
	matches := make([]ColumnMatch, 0)
	normalizedRequired := normalizeHeader(required)

	for _, header := range headers {
		normalizedHeader := normalizeHeader(header)
		if normalizedHeader == "" {
			continue
		}
		distance := levenshteinDistance(normalizedRequired, normalizedHeader)
		maxLen := float64(max(len(normalizedRequired), len(normalizedHeader)))
		confidence := 1.0 - float64(distance)/maxLen

		if confidence > 0.6 {
			matches = append(matches, ColumnMatch{
				SourceColumn:      header,
				DestinationColumn: required,
				Confidence:        confidence,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

// FindColumn returns the index of columnName in headers, or -1. Matching
// follows the same rules as the import header lookup.
func FindColumn(headers []string, columnName string) int {
	return getColumnIndex(headers, columnName)
}

// getColumnIndex returns the index of a column in headers, ignoring case,
// spaces, underscores and hyphens
func getColumnIndex(headers []string, columnName string) int {
	want := strings.ToLower(strings.TrimSpace(columnName))
	for i, header := range headers {
		if strings.ToLower(strings.TrimSpace(header)) == want {
			return i
		}
	}
	want = normalizeHeader(columnName)
	for i, header := range headers {
		if normalizeHeader(header) == want {
			return i
		}
	}
	return -1
}

func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			if s1[i-1] == s2[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
			} else {
				matrix[i][j] = min(
					matrix[i-1][j]+1,   // deletion
					matrix[i][j-1]+1,   // insertion
					matrix[i-1][j-1]+1, // substitution
				)
			}
		}
	}

	return matrix[len(s1)][len(s2)]
}
