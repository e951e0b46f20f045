// Package report prints run summaries and SMAS tables to the console.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/nestrank/models"
)

// SummaryLists is the order rank lists appear in the summary.
var SummaryLists = []models.RankField{
	models.GeneralRank,
	models.CategoryRank,
	models.EWSRank,
	models.PWDRank,
	models.RegionRank,
}

// QualifiedCategories is the order of the qualified-by-category breakdown.
// Any category outside OBC/SC/ST is counted as GEN.
var QualifiedCategories = []string{
	models.CategoryOBC,
	models.CategorySC,
	models.CategoryST,
	models.CategoryGEN,
}

// Summary counts the outcome of a ranking run
type Summary struct {
	Total          int
	Assigned       map[models.RankField]int
	Qualified      map[string]int
	TotalQualified int
}

// Summarize counts ranks per list and General-ranked candidates per category.
func Summarize(cands []models.Candidate) Summary {
	s := Summary{
		Total:     len(cands),
		Assigned:  make(map[models.RankField]int, len(SummaryLists)),
		Qualified: make(map[string]int, len(QualifiedCategories)),
	}
	for _, c := range cands {
		for _, f := range SummaryLists {
			if c.Ranks.Get(f) != nil {
				s.Assigned[f]++
			}
		}
		if c.Ranks.General == nil {
			continue
		}
		s.TotalQualified++
		switch c.Category {
		case models.CategoryOBC, models.CategorySC, models.CategoryST:
			s.Qualified[c.Category]++
		default:
			s.Qualified[models.CategoryGEN]++
		}
	}
	return s
}

// RenderSummary writes the rank list totals and the qualified breakdown.
func RenderSummary(w io.Writer, s Summary) {
	heading := color.New(color.FgCyan, color.Bold)

	heading.Fprintf(w, "\n=== FINAL SUMMARY ===\n")
	fmt.Fprintf(w, "Total candidates processed: %d\n", s.Total)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank List", "Ranks Assigned"})
	for _, f := range SummaryLists {
		table.Append([]string{f.Column(), strconv.Itoa(s.Assigned[f])})
	}
	table.Render()

	heading.Fprintf(w, "\n=== QUALIFIED CANDIDATES BY CATEGORY ===\n")
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Qualified"})
	for _, cat := range QualifiedCategories {
		table.Append([]string{cat, strconv.Itoa(s.Qualified[cat])})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(s.TotalQualified)})
	table.Render()
}

// RenderSMAS writes the SMAS thresholds, one row per subject.
func RenderSMAS(w io.Writer, subjects []string, smas models.SMASTable) {
	color.New(color.FgYellow).Fprintf(w, "\n=== SMAS SCORES ACROSS CATEGORIES ===\n")

	cats := categories(smas)
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"Subject"}, cats...))
	for _, subject := range subjects {
		row := []string{subject}
		for _, cat := range cats {
			v, ok := smas.Threshold(subject, cat)
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%.2f", v))
		}
		table.Append(row)
	}
	table.Render()
}

// categories returns every category in the table, GEN first then sorted.
func categories(smas models.SMASTable) []string {
	seen := make(map[string]bool)
	for _, byCat := range smas {
		for cat := range byCat {
			seen[cat] = true
		}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		if cat != models.CategoryGEN {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	if seen[models.CategoryGEN] {
		out = append([]string{models.CategoryGEN}, out...)
	}
	return out
}
