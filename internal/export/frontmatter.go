package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("export: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("export: malformed frontmatter")
)

// Metadata is the envelope written above every exported review.
type Metadata struct {
	RunID          string
	Model          string
	ReviewType     string
	Recommendation string
	CreatedAt      time.Time
	Tokens         int
	CostUSD        float64
}

// WriteFrontMatter renders metadata + body with YAML fences.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if meta.RunID == "" {
		return nil, fmt.Errorf("export: metadata missing run id")
	}
	envelope := reviewEnvelope{}
	envelope.fromMetadata(meta)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("export: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// ParseFrontMatter extracts the metadata block and body from an exported
// review document.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	if len(content) == 0 {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var envelope reviewEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return Metadata{}, nil, fmt.Errorf("export: parse frontmatter: %w", err)
	}
	meta, err := envelope.toMetadata()
	if err != nil {
		return Metadata{}, nil, err
	}
	body := bytes.TrimPrefix(parts[1], []byte("\n"))
	return meta, body, nil
}

type reviewEnvelope struct {
	Colloquy reviewMetadata `yaml:"colloquy"`
}

type reviewMetadata struct {
	Run            string  `yaml:"run"`
	Model          string  `yaml:"model"`
	ReviewType     string  `yaml:"reviewType"`
	Recommendation string  `yaml:"recommendation,omitempty"`
	Created        string  `yaml:"created"`
	Tokens         int     `yaml:"tokens,omitempty"`
	CostUSD        float64 `yaml:"costUsd,omitempty"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func (e *reviewEnvelope) fromMetadata(meta Metadata) {
	e.Colloquy.Run = meta.RunID
	e.Colloquy.Model = meta.Model
	e.Colloquy.ReviewType = meta.ReviewType
	e.Colloquy.Recommendation = meta.Recommendation
	e.Colloquy.Created = meta.CreatedAt.UTC().Format(timeLayout)
	e.Colloquy.Tokens = meta.Tokens
	e.Colloquy.CostUSD = meta.CostUSD
}

func (e reviewEnvelope) toMetadata() (Metadata, error) {
	if e.Colloquy.Run == "" || e.Colloquy.Model == "" {
		return Metadata{}, ErrMalformedFrontMatter
	}
	meta := Metadata{
		RunID:          e.Colloquy.Run,
		Model:          e.Colloquy.Model,
		ReviewType:     e.Colloquy.ReviewType,
		Recommendation: e.Colloquy.Recommendation,
		Tokens:         e.Colloquy.Tokens,
		CostUSD:        e.Colloquy.CostUSD,
	}
	if strings.TrimSpace(e.Colloquy.Created) != "" {
		created, err := time.Parse(timeLayout, e.Colloquy.Created)
		if err != nil {
			return Metadata{}, fmt.Errorf("export: parse created timestamp: %w", err)
		}
		meta.CreatedAt = created.UTC()
	}
	return meta, nil
}
