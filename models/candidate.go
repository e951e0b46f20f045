package models

// Candidate represents one exam-taker row of the results sheet
type Candidate struct {
	Row               int       `db:"row_number" json:"row"`
	Record            []string  `db:"-" json:"-"`
	Marks             []float64 `db:"marks" json:"marks"`
	Category          string    `db:"category" json:"category"`
	PWDStatus         string    `db:"pwd_status" json:"pwd_status"`
	JKStatus          string    `db:"jk_status" json:"jk_status"`
	TotalMarks        float64   `db:"total_marks" json:"total_marks"`
	MaxSubjectMark    float64   `db:"max_subject_mark" json:"max_subject_mark"`
	Percentile        float64   `db:"percentile" json:"percentile"`
	QualifiedSubjects int       `db:"smas_qualified_subjects" json:"smas_qualified_subjects"`
	Ranks             Ranks     `db:"-" json:"ranks"`
}

// IsPWD reports whether the candidate carries the disability flag.
func (c Candidate) IsPWD() bool {
	return c.PWDStatus == FlagYes
}

// IsJK reports whether the candidate carries the region flag.
func (c Candidate) IsJK() bool {
	return c.JKStatus == FlagYes
}

// Clone returns a copy that shares no slices with c.
func (c Candidate) Clone() Candidate {
	out := c
	if c.Record != nil {
		out.Record = append([]string(nil), c.Record...)
	}
	if c.Marks != nil {
		out.Marks = append([]float64(nil), c.Marks...)
	}
	return out
}

// CloneAll copies a candidate table.
func CloneAll(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	for i, c := range cands {
		out[i] = c.Clone()
	}
	return out
}

// Canonical flag and category values.
const (
	FlagYes = "yes"
	FlagNo  = "no"

	CategoryGEN = "GEN"
	CategoryOBC = "OBC"
	CategorySC  = "SC"
	CategoryST  = "ST"
	CategoryEWS = "EWS"
)
