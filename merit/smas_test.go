package merit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonsonwune/nestrank/config"
	"github.com/nonsonwune/nestrank/models"
)

func TestCalculateSMAS_TopHundredAverage(t *testing.T) {
	policy := config.DefaultPolicy()

	var cands []models.Candidate
	for i := 0; i < 100; i++ {
		cands = append(cands, gen(80, 0, 0, 0))
	}
	for i := 0; i < 20; i++ {
		cands = append(cands, gen(10, 0, 0, 0))
	}

	table := CalculateSMAS(cands, policy)
	require.Len(t, table, 4)

	bio := table["Bio Marks"]
	assert.InDelta(t, 16.0, bio["GEN"], 1e-9)
	assert.InDelta(t, 14.4, bio["OBC"], 1e-9)
	assert.InDelta(t, 8.0, bio["SC"], 1e-9)
	assert.InDelta(t, 8.0, bio["ST"], 1e-9)

	assert.Zero(t, table["Chem Marks"]["GEN"])
}

func TestCalculateSMAS_FewerThanTopN(t *testing.T) {
	cands := []models.Candidate{gen(10, 0, 0, 0), gen(20, 0, 0, 0), gen(30, 0, 0, 0)}

	table := CalculateSMAS(cands, config.DefaultPolicy())
	assert.InDelta(t, 4.0, table["Bio Marks"]["GEN"], 1e-9)
}

func TestCalculateSMAS_ExactlyTopNAtTieBoundary(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.SMASTopN = 2
	cands := []models.Candidate{gen(50, 0, 0, 0), gen(90, 0, 0, 0), gen(50, 0, 0, 0), gen(50, 0, 0, 0)}

	table := CalculateSMAS(cands, policy)
	// (90+50)/2, not the mean of every mark tied with the boundary value
	assert.InDelta(t, 0.20*70, table["Bio Marks"]["GEN"], 1e-9)
}

func TestCalculateSMAS_EmptyPopulation(t *testing.T) {
	table := CalculateSMAS(nil, config.DefaultPolicy())
	require.Len(t, table, 4)
	for _, byCat := range table {
		for _, v := range byCat {
			assert.Zero(t, v)
		}
	}
}
