package review

import (
	"context"
	"fmt"

	"github.com/mwhittier/colloquy/internal/llm"
	"github.com/mwhittier/colloquy/internal/pubmed"
)

// LiteratureSearcher is the slice of the PubMed client the bridge needs.
type LiteratureSearcher interface {
	Search(ctx context.Context, q pubmed.Query) ([]pubmed.Article, error)
}

// ToolBridge resolves tool calls emitted by agents into text that goes back
// into the discussion. Lookup failures are absorbed into the tool output
// rather than propagated: a broken search should not kill a review run.
type ToolBridge struct {
	searcher LiteratureSearcher
}

func NewToolBridge(searcher LiteratureSearcher) *ToolBridge {
	return &ToolBridge{searcher: searcher}
}

// Specs reports the tool specifications advertised to agents. Nil when the
// bridge has no backing searcher.
func (b *ToolBridge) Specs() []llm.ToolSpec {
	if b == nil || b.searcher == nil {
		return nil
	}
	return []llm.ToolSpec{pubmed.ToolSpec()}
}

// Resolve executes a single tool call and renders its result as discussion
// text. Unknown tools and lookup errors become notices, never errors.
func (b *ToolBridge) Resolve(ctx context.Context, call llm.ToolCall) string {
	if b == nil || b.searcher == nil {
		return fmt.Sprintf("Tool %q is not available in this session.", call.Name)
	}
	if call.Name != pubmed.ToolName {
		return fmt.Sprintf("Unknown tool %q; only %q is available.", call.Name, pubmed.ToolName)
	}
	query := pubmed.ParseToolArguments(call.Arguments)
	articles, err := b.searcher.Search(ctx, query)
	if err != nil {
		return fmt.Sprintf("Literature search for %q failed: %v.", query.Query, err)
	}
	return pubmed.FormatResults(query.Query, articles)
}
