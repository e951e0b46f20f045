package merit

import (
	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

// Rescaler converts raw subject marks to the standard maximum of each subject
type Rescaler struct {
	factors []float64
}

// NewRescaler returns nil when rescaling is disabled. Subjects without a
// configured scale keep factor 1.
func NewRescaler(policy config.Policy) *Rescaler {
	if !policy.Rescaling.Enabled {
		return nil
	}
	factors := make([]float64, len(policy.Subjects))
	for s, subject := range policy.Subjects {
		factors[s] = 1
		if sc, ok := policy.Rescaling.Subjects[subject]; ok && sc.ActualMax > 0 {
			factors[s] = sc.Factor()
		}
	}
	return &Rescaler{factors: factors}
}

// Apply multiplies every strictly positive mark by its subject factor.
func (r *Rescaler) Apply(cands []models.Candidate) []models.Candidate {
	out := models.CloneAll(cands)
	if r == nil {
		return out
	}
	for i := range out {
		for s, m := range out[i].Marks {
			if s < len(r.factors) && m > 0 {
				out[i].Marks[s] = m * r.factors[s]
			}
		}
	}
	return out
}
