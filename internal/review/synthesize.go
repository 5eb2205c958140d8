package review

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var recommendationPattern = regexp.MustCompile(`(?i)\b(minor revisions|major revisions|reject|accept)\b`)

// Synthesize parses the editor's final markdown review into a Verdict.
// Section bodies are sliced out of the source between headings, so agent
// formatting inside a section survives untouched. A missing or unparseable
// recommendation is a SynthesisError: the run produced no usable outcome.
func Synthesize(review string) (Verdict, error) {
	sections := splitSections(review)

	var v Verdict
	v.Summary = sections.body("summary")
	v.MajorStrengths = sections.body("major strengths")
	v.MajorWeaknesses = sections.body("major weaknesses")
	v.MinorIssues = sections.body("minor issues")
	v.Comments = sections.body("specific comments")

	recText := sections.body("recommendation")
	if recText == "" {
		// Fall back to scanning the whole review for an unlabeled call.
		recText = review
	}
	rec, justification, ok := parseRecommendation(recText)
	if !ok {
		return Verdict{}, &SynthesisError{Reason: "no publication recommendation found in the final review"}
	}
	v.Recommendation = rec
	v.Justification = justification
	if v.Summary == "" && v.Comments == "" {
		v.Summary = strings.TrimSpace(review)
	}
	return v, nil
}

func parseRecommendation(s string) (Recommendation, string, bool) {
	loc := recommendationPattern.FindStringIndex(s)
	if loc == nil {
		return "", "", false
	}
	var rec Recommendation
	switch strings.ToLower(s[loc[0]:loc[1]]) {
	case "accept":
		rec = Accept
	case "minor revisions":
		rec = MinorRevisions
	case "major revisions":
		rec = MajorRevisions
	case "reject":
		rec = Reject
	}
	justification := strings.TrimSpace(strings.TrimLeft(s[loc[1]:], ".:,;- \t\n"))
	return rec, justification, true
}

type reviewSections struct {
	bodies map[string]string
}

func (s reviewSections) body(name string) string {
	return s.bodies[name]
}

// splitSections walks the markdown AST and maps each recognized heading to
// the raw source between it and the next heading of equal or shallower depth.
func splitSections(review string) reviewSections {
	src := []byte(review)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	type mark struct {
		name      string
		level     int
		bodyStart int
		lineStart int
	}
	var marks []mark
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok {
			continue
		}
		bodyStart := headingEnd(heading)
		marks = append(marks, mark{
			name:      normalizeHeading(string(heading.Text(src))),
			level:     heading.Level,
			bodyStart: bodyStart,
			lineStart: lineStart(src, bodyStart),
		})
	}

	bodies := make(map[string]string, len(marks))
	for i, m := range marks {
		end := len(src)
		for _, next := range marks[i+1:] {
			if next.level <= m.level {
				end = next.lineStart
				break
			}
		}
		if _, seen := bodies[m.name]; !seen && m.bodyStart <= end {
			bodies[m.name] = strings.TrimSpace(review[m.bodyStart:end])
		}
	}
	return reviewSections{bodies: bodies}
}

func normalizeHeading(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = strings.Trim(title, ":*# ")
	return title
}

// headingEnd reports the source offset just past the heading's own text.
func headingEnd(h *ast.Heading) int {
	lines := h.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return lines.At(lines.Len() - 1).Stop
}

// lineStart walks back from an offset to the start of its line.
func lineStart(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	for offset > 0 && src[offset-1] != '\n' {
		offset--
	}
	return offset
}
