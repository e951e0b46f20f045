package models

import "time"

// SMASTable maps subject -> reservation category -> minimum admissible score
type SMASTable map[string]map[string]float64

// Threshold returns the SMAS for a subject and category, and whether it exists.
func (t SMASTable) Threshold(subject, category string) (float64, bool) {
	byCat, ok := t[subject]
	if !ok {
		return 0, false
	}
	v, ok := byCat[category]
	return v, ok
}

// Snapshot is one complete ranking run as stored by the results store
type Snapshot struct {
	Label      string      `db:"label" json:"label"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	Subjects   []string    `db:"-" json:"subjects"`
	SMAS       SMASTable   `db:"-" json:"smas"`
	Candidates []Candidate `db:"-" json:"candidates"`
}
