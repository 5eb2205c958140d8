package review

// Recommendation is the editor's final publication call.
type Recommendation string

const (
	Accept         Recommendation = "Accept"
	MinorRevisions Recommendation = "Minor Revisions"
	MajorRevisions Recommendation = "Major Revisions"
	Reject         Recommendation = "Reject"
)

// Recommendations lists the accepted final calls, strictest last.
func Recommendations() []Recommendation {
	return []Recommendation{Accept, MinorRevisions, MajorRevisions, Reject}
}

// Verdict is the structured form of the final synthesis.
type Verdict struct {
	Summary         string         `json:"summary"`
	MajorStrengths  string         `json:"major_strengths"`
	MajorWeaknesses string         `json:"major_weaknesses"`
	MinorIssues     string         `json:"minor_issues"`
	Comments        string         `json:"specific_comments"`
	Recommendation  Recommendation `json:"recommendation"`
	Justification   string         `json:"justification"`
}
