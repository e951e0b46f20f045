package merit

import (
	"sort"

	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

// CalculateSMAS derives the Subject-wise Minimum Admissible Score table. For
// each subject the top SMASTopN marks are averaged and scaled by the category
// multiplier.
func CalculateSMAS(cands []models.Candidate, policy config.Policy) models.SMASTable {
	table := make(models.SMASTable, len(policy.Subjects))
	for s, subject := range policy.Subjects {
		marks := make([]float64, 0, len(cands))
		for _, c := range cands {
			marks = append(marks, markAt(c, s))
		}
		avg := topNMean(marks, policy.SMASTopN)

		byCat := make(map[string]float64, len(policy.SMASMultipliers))
		for cat, mult := range policy.SMASMultipliers {
			byCat[cat] = mult * avg
		}
		table[subject] = byCat
	}
	return table
}

// topNMean averages exactly the n largest values, or all of them when fewer.
func topNMean(values []float64, n int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if n > len(sorted) {
		n = len(sorted)
	}
	var sum float64
	for _, v := range sorted[:n] {
		sum += v
	}
	return sum / float64(n)
}

func markAt(c models.Candidate, s int) float64 {
	if s < len(c.Marks) {
		return c.Marks[s]
	}
	return 0
}
