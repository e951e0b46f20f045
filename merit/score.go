// Package merit is the scoring and ranking engine: aggregate scores,
// percentiles, SMAS thresholds, subject qualification and the rank lists.
// Every stage takes a candidate table and returns a new annotated table.
package merit

import (
	"sort"

	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

// ComputeScores fills TotalMarks (best-of sum), MaxSubjectMark and Percentile.
func ComputeScores(cands []models.Candidate, policy config.Policy) []models.Candidate {
	out := models.CloneAll(cands)
	for i := range out {
		out[i].TotalMarks, out[i].MaxSubjectMark = bestOf(out[i].Marks, policy.BestOf)
	}

	totals := make([]float64, len(out))
	for i, c := range out {
		totals[i] = c.TotalMarks
	}
	for i, p := range Percentiles(totals) {
		out[i].Percentile = p
	}
	return out
}

func bestOf(marks []float64, n int) (total, peak float64) {
	sorted := append([]float64(nil), marks...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if len(sorted) == 0 {
		return 0, 0
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	for _, m := range sorted[:n] {
		total += m
	}
	return total, sorted[0]
}

// Percentiles returns (minRank-1)/N*100 for every value, where minRank is the
// lowest ascending ordinal among equal values.
func Percentiles(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	rank := 1
	for pos, i := range idx {
		if pos > 0 && values[i] != values[idx[pos-1]] {
			rank = pos + 1
		}
		out[i] = float64(rank-1) / float64(n) * 100
	}
	return out
}
