// Package manuscript models the document under review. The core consumes it
// as an opaque read-only text blob with metadata; PDF extraction lives with
// whatever produced the text and is out of scope here.
package manuscript

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Section is one recognized span of the manuscript.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Manuscript is the extracted document: title, abstract, full text, section
// boundaries, and a stable content hash used as the version identifier.
type Manuscript struct {
	Title       string    `json:"title"`
	Abstract    string    `json:"abstract"`
	FullText    string    `json:"fullText"`
	Sections    []Section `json:"sections,omitempty"`
	VersionHash string    `json:"versionHash"`
}

const (
	maxAbstractChars = 5000
	maxSectionChars  = 10000
)

// FromText builds a manuscript from raw text, deriving the abstract,
// sections, and version hash.
func FromText(text, title string) *Manuscript {
	if strings.TrimSpace(title) == "" {
		title = "Untitled Manuscript"
	}
	sum := sha256.Sum256([]byte(text))
	return &Manuscript{
		Title:       title,
		Abstract:    extractAbstract(text),
		FullText:    text,
		Sections:    extractSections(text),
		VersionHash: hex.EncodeToString(sum[:])[:16],
	}
}

// ReviewContext formats the manuscript for injection into a review prompt,
// truncated to maxChars. The limit is explicit configuration; zero disables
// truncation.
func (m *Manuscript) ReviewContext(maxChars int) string {
	abstract := m.Abstract
	if abstract == "" {
		abstract = "(No abstract found)"
	}
	body := m.FullText
	if maxChars > 0 {
		budget := maxChars - len(m.Title) - len(abstract) - 100
		if budget < 0 {
			budget = 0
		}
		if len(body) > budget {
			body = body[:budget]
		}
	}
	result := strings.Join([]string{
		"# " + m.Title,
		"",
		"## Abstract",
		abstract,
		"",
		"## Full Text",
		body,
	}, "\n")
	if maxChars > 0 && len(result) > maxChars {
		result = result[:maxChars] + "\n\n[Text truncated due to length...]"
	}
	return result
}

func (m *Manuscript) String() string {
	return fmt.Sprintf("Manuscript: %s (version: %s)", m.Title, m.VersionHash)
}

var abstractMarkers = []string{"abstract", "summary"}

var abstractEndMarkers = []string{"introduction", "keywords", "background", "1.", "1 "}

// extractAbstract finds the abstract by its customary markers. Best-effort;
// an empty result is valid.
func extractAbstract(text string) string {
	lower := strings.ToLower(text)
	for _, marker := range abstractMarkers {
		start := strings.Index(lower, marker)
		if start < 0 {
			continue
		}
		end := len(text)
		for _, endMarker := range abstractEndMarkers {
			if idx := strings.Index(lower[start+len(marker):], endMarker); idx >= 0 {
				if abs := start + len(marker) + idx; abs < end {
					end = abs
				}
			}
		}
		abstract := strings.TrimSpace(text[start:end])
		if lines := strings.SplitN(abstract, "\n", 2); len(lines) == 2 {
			if head := strings.ToLower(strings.TrimSpace(lines[0])); head == "abstract" || head == "summary" {
				abstract = strings.TrimSpace(lines[1])
			}
		}
		if len(abstract) > maxAbstractChars {
			abstract = abstract[:maxAbstractChars]
		}
		if len(abstract) > 100 {
			return abstract
		}
	}
	return ""
}

var sectionPatterns = []string{
	"abstract",
	"introduction",
	"background",
	"materials and methods",
	"methods",
	"results",
	"discussion",
	"conclusions",
	"conclusion",
	"references",
	"acknowledgements",
	"acknowledgments",
	"supplementary",
}

type sectionMark struct {
	offset int
	title  string
}

// extractSections locates the customary biomedical headings at line starts
// and slices the text between them.
func extractSections(text string) []Section {
	lower := strings.ToLower(text)
	var marks []sectionMark
	claimed := make(map[int]bool)
	for _, pattern := range sectionPatterns {
		search := 0
		for {
			idx := strings.Index(lower[search:], pattern)
			if idx < 0 {
				break
			}
			abs := search + idx
			atLineStart := abs == 0 || text[abs-1] == '\n' || text[abs-1] == '\r'
			if atLineStart && !claimed[abs] {
				claimed[abs] = true
				marks = append(marks, sectionMark{offset: abs, title: titleCase(pattern)})
			}
			search = abs + 1
		}
	}
	sortMarks(marks)
	sections := make([]Section, 0, len(marks))
	for i, mark := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1].offset
		}
		content := strings.TrimSpace(text[mark.offset:end])
		if lines := strings.SplitN(content, "\n", 2); len(lines) == 2 {
			content = strings.TrimSpace(lines[1])
		} else {
			content = ""
		}
		if len(content) > maxSectionChars {
			content = content[:maxSectionChars]
		}
		sections = append(sections, Section{Title: mark.title, Content: content})
	}
	return sections
}

func sortMarks(marks []sectionMark) {
	for i := 1; i < len(marks); i++ {
		for j := i; j > 0 && marks[j].offset < marks[j-1].offset; j-- {
			marks[j], marks[j-1] = marks[j-1], marks[j]
		}
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "and" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
