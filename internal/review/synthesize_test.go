package review

import (
	"errors"
	"strings"
	"testing"
)

const structuredReview = `### Summary
The manuscript reports a CRISPR screen identifying three novel regulators of autophagy.

### Major Strengths
- Comprehensive genome-wide screen design.
- Orthogonal validation of top hits.

### Major Weaknesses
- No in vivo confirmation of the proposed mechanism.
- Statistical treatment of the screen replicates is underspecified.

### Minor Issues
- Figure 3 axis labels are unreadable at print size.

### Specific Comments

#### Methods
The FDR threshold should be stated explicitly.

#### Results
The rescue experiment in Figure 5 is convincing.

### Recommendation
Major Revisions. The mechanism claims outrun the evidence until the in vivo work is added.`

func TestSynthesizeStructuredReview(t *testing.T) {
	v, err := Synthesize(structuredReview)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if v.Recommendation != MajorRevisions {
		t.Fatalf("recommendation = %q, want %q", v.Recommendation, MajorRevisions)
	}
	if !strings.Contains(v.Summary, "CRISPR screen") {
		t.Errorf("summary not extracted: %q", v.Summary)
	}
	if !strings.Contains(v.MajorWeaknesses, "in vivo") {
		t.Errorf("weaknesses not extracted: %q", v.MajorWeaknesses)
	}
	if !strings.Contains(v.MinorIssues, "Figure 3") {
		t.Errorf("minor issues not extracted: %q", v.MinorIssues)
	}
	// Sub-headings belong to the enclosing section.
	if !strings.Contains(v.Comments, "FDR threshold") || !strings.Contains(v.Comments, "Figure 5") {
		t.Errorf("specific comments lost sub-sections: %q", v.Comments)
	}
	if !strings.Contains(v.Justification, "mechanism claims") {
		t.Errorf("justification = %q", v.Justification)
	}
}

func TestSynthesizeRecommendationPhrases(t *testing.T) {
	cases := []struct {
		text string
		want Recommendation
	}{
		{"### Recommendation\nAccept. Ready as is.", Accept},
		{"### Recommendation\nI recommend MINOR REVISIONS here.", MinorRevisions},
		{"### Recommendation\nReject: the data do not support the claims.", Reject},
		{"After consideration, my recommendation is major revisions.", MajorRevisions},
	}
	for _, tc := range cases {
		v, err := Synthesize(tc.text)
		if err != nil {
			t.Fatalf("Synthesize(%q): %v", tc.text, err)
		}
		if v.Recommendation != tc.want {
			t.Errorf("Synthesize(%q) = %q, want %q", tc.text, v.Recommendation, tc.want)
		}
	}
}

func TestSynthesizeNoRecommendation(t *testing.T) {
	_, err := Synthesize("### Summary\nA fine paper about acceptable methods.")
	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("err = %v, want SynthesisError", err)
	}
}

func TestSynthesizeUnstructuredFallback(t *testing.T) {
	v, err := Synthesize("This is a solid contribution. Accept.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if v.Recommendation != Accept {
		t.Fatalf("recommendation = %q, want %q", v.Recommendation, Accept)
	}
	if v.Summary == "" {
		t.Errorf("expected whole text carried as summary for unstructured review")
	}
}
