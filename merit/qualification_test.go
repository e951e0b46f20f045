package merit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

// uniformTable gives every subject the thresholds derived from a top-100 average of 80.
func uniformTable(policy config.Policy) models.SMASTable {
	table := models.SMASTable{}
	for _, s := range policy.Subjects {
		table[s] = map[string]float64{"GEN": 16.0, "OBC": 14.4, "SC": 8.0, "ST": 8.0}
	}
	return table
}

func TestEvaluateQualification(t *testing.T) {
	policy := config.DefaultPolicy()
	table := uniformTable(policy)

	tests := []struct {
		name string
		c    models.Candidate
		want int
	}{
		{"GEN exactly at threshold", gen(16, 16, 16, 16), 4},
		{"GEN just below threshold", gen(15.99, 16, 16, 16), 3},
		{"GEN two below", gen(15.99, 15.99, 16, 16), 2},
		{"OBC uses own threshold", cand("OBC", "no", "no", 14.4, 14.4, 14.39, 0), 2},
		{"SC uses own threshold", cand("SC", "no", "no", 8, 8, 8, 7.99), 3},
		{"unknown category falls back to GEN", cand("GEN-EWS", "no", "no", 14.4, 16, 16, 16), 3},
		{"PWD GEN gets half threshold", cand("GEN", "yes", "no", 8, 8, 8, 7.99), 3},
		{"PWD SC halves SC threshold", cand("SC", "yes", "no", 4, 4, 3.99, 0), 2},
		{"nothing cleared", gen(0, 0, 0, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateQualification(tt.c, table, policy))
		})
	}
}

func TestQualify_ReturnsNewTable(t *testing.T) {
	policy := config.DefaultPolicy()
	in := []models.Candidate{gen(16, 16, 16, 0)}

	out := Qualify(in, uniformTable(policy), policy)
	assert.Equal(t, 3, out[0].QualifiedSubjects)
	assert.Zero(t, in[0].QualifiedSubjects)
}
