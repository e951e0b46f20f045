package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankString(t *testing.T) {
	assert.Equal(t, "7", Rank{Position: 7}.String())
	assert.Equal(t, "OBC-12", Rank{Prefix: "OBC", Position: 12}.String())
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		in   string
		want Rank
	}{
		{"1", Rank{Position: 1}},
		{" 42 ", Rank{Position: 42}},
		{"SC-3", Rank{Prefix: "SC", Position: 3}},
		{"EWS-10", Rank{Prefix: "EWS", Position: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRank(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.TrimSpace(tt.in), got.String())
		})
	}

	for _, bad := range []string{"", "abc", "OBC-", "OBC-x"} {
		_, err := ParseRank(bad)
		assert.Error(t, err, bad)
	}
}

func TestRankMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Ranks{
		General:  &Rank{Position: 3},
		Category: &Rank{Prefix: "ST", Position: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"general":3,"category":"ST-1"}`, string(data))
}

func TestRanksGetSet(t *testing.T) {
	var r Ranks
	assert.False(t, r.Any())

	for _, f := range []RankField{GeneralRank, CategoryRank, EWSRank, PWDRank, RegionRank} {
		r.Set(f, Rank{Position: int(f) + 1})
		require.NotNil(t, r.Get(f))
		assert.Equal(t, int(f)+1, r.Get(f).Position)
		assert.NotEmpty(t, f.Column())
	}
	assert.True(t, r.Any())
}

func TestCandidateClone(t *testing.T) {
	c := Candidate{Record: []string{"a"}, Marks: []float64{1, 2}}
	d := c.Clone()
	d.Marks[0] = 9
	d.Record[0] = "b"

	assert.Equal(t, 1.0, c.Marks[0])
	assert.Equal(t, "a", c.Record[0])
}
