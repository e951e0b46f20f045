package merit

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nonsonwune/nestrank/models"
)

func cand(category, pwd, jk string, marks ...float64) models.Candidate {
	return models.Candidate{
		Category:  category,
		PWDStatus: pwd,
		JKStatus:  jk,
		Marks:     marks,
	}
}

func gen(marks ...float64) models.Candidate {
	return cand(models.CategoryGEN, models.FlagNo, models.FlagNo, marks...)
}

// population builds a reproducible candidate table with mixed categories.
func population(seed int64, n int) []models.Candidate {
	r := rand.New(rand.NewSource(seed))
	categories := []string{"GEN", "GEN", "GEN", "OBC", "SC", "ST", "GEN-EWS", "EWS"}
	flags := []string{models.FlagNo, models.FlagNo, models.FlagNo, models.FlagYes}

	out := make([]models.Candidate, n)
	for i := range out {
		marks := make([]float64, 4)
		for s := range marks {
			// coarse marks so that ties happen
			marks[s] = float64(r.Intn(61))
		}
		out[i] = cand(categories[r.Intn(len(categories))], flags[r.Intn(len(flags))], flags[r.Intn(len(flags))], marks...)
		out[i].Row = i + 1
	}
	return out
}

// requireContiguous checks that the positions of one rank list start at 1 and
// only skip values right after a tie cohort.
func requireContiguous(t *testing.T, positions []int) {
	t.Helper()
	if len(positions) == 0 {
		return
	}
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	require.Equal(t, 1, sorted[0])

	expected := 1
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		require.Equal(t, expected, sorted[i], "rank values must only skip past tie cohorts")
		expected += j - i
		i = j
	}
}

func positionsOf(cands []models.Candidate, field models.RankField, prefix string) []int {
	var out []int
	for _, c := range cands {
		if r := c.Ranks.Get(field); r != nil && r.Prefix == prefix {
			out = append(out, r.Position)
		}
	}
	return out
}
