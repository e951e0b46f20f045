package merit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

func TestRescaler_Disabled(t *testing.T) {
	r := NewRescaler(config.DefaultPolicy())
	assert.Nil(t, r)

	in := []models.Candidate{gen(10, 20, 30, 40)}
	out := r.Apply(in)
	assert.Equal(t, in[0].Marks, out[0].Marks)
}

func TestRescaler_OnlyPositiveMarks(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.Rescaling = config.Rescaling{
		Enabled: true,
		Subjects: map[string]config.Scale{
			"Bio Marks":  {ActualMax: 160, StandardMax: 180},
			"Math Marks": {ActualMax: 200, StandardMax: 180},
		},
	}
	r := NewRescaler(policy)
	require.NotNil(t, r)

	in := []models.Candidate{gen(160, 50, 100, 7), gen(0, 10, -4, 0)}
	out := r.Apply(in)

	assert.Equal(t, []float64{180, 50, 90, 7}, out[0].Marks)
	assert.Equal(t, []float64{0, 10, -4, 0}, out[1].Marks, "non-positive marks are left alone")
	assert.Equal(t, []float64{160, 50, 100, 7}, in[0].Marks)
}
