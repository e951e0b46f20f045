package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rank is a position in one rank list. Prefixed ranks render as "OBC-12".
type Rank struct {
	Prefix   string
	Position int
}

func (r Rank) String() string {
	if r.Prefix == "" {
		return strconv.Itoa(r.Position)
	}
	return fmt.Sprintf("%s-%d", r.Prefix, r.Position)
}

// MarshalJSON writes bare ranks as numbers and prefixed ranks as strings.
func (r Rank) MarshalJSON() ([]byte, error) {
	if r.Prefix == "" {
		return json.Marshal(r.Position)
	}
	return json.Marshal(r.String())
}

// ParseRank reverses Rank.String.
func ParseRank(s string) (Rank, error) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "-"); i > 0 {
		n, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return Rank{}, fmt.Errorf("invalid rank %q: %w", s, err)
		}
		return Rank{Prefix: s[:i], Position: n}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Rank{}, fmt.Errorf("invalid rank %q: %w", s, err)
	}
	return Rank{Position: n}, nil
}

// RankField selects one of the rank lists on a candidate.
type RankField int

const (
	GeneralRank RankField = iota
	CategoryRank
	EWSRank
	PWDRank
	RegionRank
)

// Column returns the output column name of the field.
func (f RankField) Column() string {
	switch f {
	case GeneralRank:
		return "Gen-rank"
	case CategoryRank:
		return "Cat-rank"
	case EWSRank:
		return "EWS-rank"
	case PWDRank:
		return "PWD-rank"
	case RegionRank:
		return "JK-rank"
	}
	return ""
}

// Ranks holds every rank list position of a candidate. Nil means absent.
type Ranks struct {
	General  *Rank `json:"general,omitempty"`
	Category *Rank `json:"category,omitempty"`
	EWS      *Rank `json:"ews,omitempty"`
	PWD      *Rank `json:"pwd,omitempty"`
	Region   *Rank `json:"region,omitempty"`
}

// Get returns the rank stored in field f.
func (r Ranks) Get(f RankField) *Rank {
	switch f {
	case GeneralRank:
		return r.General
	case CategoryRank:
		return r.Category
	case EWSRank:
		return r.EWS
	case PWDRank:
		return r.PWD
	case RegionRank:
		return r.Region
	}
	return nil
}

// Set stores rank in field f.
func (r *Ranks) Set(f RankField, rank Rank) {
	p := &rank
	switch f {
	case GeneralRank:
		r.General = p
	case CategoryRank:
		r.Category = p
	case EWSRank:
		r.EWS = p
	case PWDRank:
		r.PWD = p
	case RegionRank:
		r.Region = p
	}
}

// Any reports whether at least one rank is populated.
func (r Ranks) Any() bool {
	return r.General != nil || r.Category != nil || r.EWS != nil || r.PWD != nil || r.Region != nil
}
