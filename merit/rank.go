package merit

import (
	"sort"

	"github.com/nonsonwune/nestrank/models"
)

// AssignRanks ranks the masked candidates by TotalMarks descending, breaking
// ties on MaxSubjectMark descending, and writes the result into field. Ties on
// both keys share the lowest position of their group. Candidates outside the
// mask keep whatever field held before; an empty mask returns an unchanged copy.
func AssignRanks(cands []models.Candidate, mask []bool, field models.RankField, prefix string) []models.Candidate {
	out := models.CloneAll(cands)
	applyPositions(out, rankPositions(cands, mask), field, prefix)
	return out
}

// rankPositions maps candidate index to rank position for every masked index.
func rankPositions(cands []models.Candidate, mask []bool) map[int]int {
	idx := make([]int, 0, len(cands))
	for i := range cands {
		if i < len(mask) && mask[i] {
			idx = append(idx, i)
		}
	}
	positions := make(map[int]int, len(idx))
	if len(idx) == 0 {
		return positions
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ca, cb := cands[idx[a]], cands[idx[b]]
		if ca.TotalMarks != cb.TotalMarks {
			return ca.TotalMarks > cb.TotalMarks
		}
		return ca.MaxSubjectMark > cb.MaxSubjectMark
	})

	// groupBase is the min rank of the current TotalMarks group; tieStart is
	// the first position sharing both keys, i.e. groupBase + intraRank - 1.
	groupBase, tieStart := 1, 1
	for pos, i := range idx {
		if pos > 0 {
			prev := cands[idx[pos-1]]
			cur := cands[i]
			if cur.TotalMarks != prev.TotalMarks {
				groupBase = pos + 1
				tieStart = groupBase
			} else if cur.MaxSubjectMark != prev.MaxSubjectMark {
				tieStart = pos + 1
			}
		}
		positions[i] = tieStart
	}
	return positions
}

func applyPositions(cands []models.Candidate, positions map[int]int, field models.RankField, prefix string) {
	for i, pos := range positions {
		cands[i].Ranks.Set(field, models.Rank{Prefix: prefix, Position: pos})
	}
}
