package merit

import (
	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

// EvaluateQualification counts the subjects in which c meets its SMAS.
// Categories without their own threshold are held to the GEN threshold, and
// PWD candidates get the relief multiplier.
func EvaluateQualification(c models.Candidate, thresholds models.SMASTable, policy config.Policy) int {
	category := effectiveCategory(c.Category, policy)
	relief := 1.0
	if c.IsPWD() {
		relief = policy.ReliefMultiplier
	}

	count := 0
	for s, subject := range policy.Subjects {
		threshold, _ := thresholds.Threshold(subject, category)
		if markAt(c, s) >= threshold*relief {
			count++
		}
	}
	return count
}

// Qualify sets QualifiedSubjects on a copy of every candidate.
func Qualify(cands []models.Candidate, thresholds models.SMASTable, policy config.Policy) []models.Candidate {
	out := models.CloneAll(cands)
	for i := range out {
		out[i].QualifiedSubjects = EvaluateQualification(out[i], thresholds, policy)
	}
	return out
}

func effectiveCategory(category string, policy config.Policy) string {
	if _, ok := policy.SMASMultipliers[category]; ok {
		return category
	}
	return models.CategoryGEN
}
