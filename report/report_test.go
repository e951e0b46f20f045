package report

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/nonsonwune/nestrank/models"
)

func init() {
	color.NoColor = true
}

func ranked(category string, fields ...models.RankField) models.Candidate {
	c := models.Candidate{Category: category}
	for i, f := range fields {
		c.Ranks.Set(f, models.Rank{Position: i + 1})
	}
	return c
}

func TestSummarize(t *testing.T) {
	cands := []models.Candidate{
		ranked("GEN", models.GeneralRank, models.PWDRank),
		ranked("OBC", models.GeneralRank, models.CategoryRank),
		ranked("SC", models.GeneralRank, models.CategoryRank, models.RegionRank),
		ranked("GEN-EWS", models.GeneralRank, models.EWSRank),
		ranked("ST", models.CategoryRank),
		ranked("GEN"),
	}

	s := Summarize(cands)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 4, s.TotalQualified)
	assert.Equal(t, 4, s.Assigned[models.GeneralRank])
	assert.Equal(t, 3, s.Assigned[models.CategoryRank])
	assert.Equal(t, 1, s.Assigned[models.EWSRank])
	assert.Equal(t, 1, s.Assigned[models.PWDRank])
	assert.Equal(t, 1, s.Assigned[models.RegionRank])

	assert.Equal(t, 1, s.Qualified["OBC"])
	assert.Equal(t, 1, s.Qualified["SC"])
	assert.Equal(t, 0, s.Qualified["ST"], "category-only ranks do not count as qualified")
	assert.Equal(t, 2, s.Qualified["GEN"], "unknown categories count as GEN")
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.TotalQualified)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, Summarize([]models.Candidate{
		ranked("OBC", models.GeneralRank, models.CategoryRank),
	}))

	out := buf.String()
	assert.Contains(t, out, "FINAL SUMMARY")
	assert.Contains(t, out, "Total candidates processed: 1")
	assert.Contains(t, out, "GEN-RANK")
	assert.Contains(t, out, "JK-RANK")
	assert.Contains(t, out, "QUALIFIED CANDIDATES BY CATEGORY")
}

func TestRenderSMAS(t *testing.T) {
	var buf bytes.Buffer
	smas := models.SMASTable{
		"Bio Marks": {"GEN": 16, "OBC": 14.4, "SC": 8, "ST": 8},
	}

	RenderSMAS(&buf, []string{"Bio Marks", "Phy Marks"}, smas)

	out := buf.String()
	assert.Contains(t, out, "SMAS SCORES ACROSS CATEGORIES")
	assert.Contains(t, out, "16.00")
	assert.Contains(t, out, "14.40")
	assert.Contains(t, out, "Phy Marks")
	assert.Contains(t, out, "-")
}

func TestCategories(t *testing.T) {
	smas := models.SMASTable{
		"Bio Marks":  {"ST": 1, "GEN": 2},
		"Chem Marks": {"OBC": 1, "SC": 1},
	}
	assert.Equal(t, []string{"GEN", "OBC", "SC", "ST"}, categories(smas))
}
