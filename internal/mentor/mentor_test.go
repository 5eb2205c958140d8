package mentor

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/mwhittier/colloquy/internal/llm"
	"github.com/mwhittier/colloquy/internal/review"
)

func TestGenerateReport(t *testing.T) {
	mock := llm.NewMockInvoker(llm.Response{
		Text:  "### Priorities\nAddress the missing in vivo work first.",
		Usage: llm.Usage{Prompt: 200, Completion: 40},
	})
	verdict := review.Verdict{Recommendation: review.MajorRevisions}
	report, err := GenerateReport(context.Background(), mock, "The review text.", verdict, Options{})
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if !strings.Contains(report, "Priorities") {
		t.Errorf("report = %q", report)
	}

	req := mock.Requests[0]
	if req.System != Mentor.Persona() {
		t.Errorf("system prompt = %q", req.System)
	}
	if !strings.Contains(req.Messages[0].Content, "Major Revisions") {
		t.Errorf("prompt does not carry the recommendation")
	}
	if !strings.Contains(req.Messages[0].Content, "The review text.") {
		t.Errorf("prompt does not carry the review")
	}
}

func TestGenerateReportEmptyReview(t *testing.T) {
	if _, err := GenerateReport(context.Background(), llm.NewMockInvoker(), "  ", review.Verdict{}, Options{}); err == nil {
		t.Fatalf("empty review accepted")
	}
}

func TestGenerateReportInvocationFailure(t *testing.T) {
	mock := llm.NewMockInvoker()
	mock.FailWith(errors.New("quota exceeded"))
	_, err := GenerateReport(context.Background(), mock, "Review.", review.Verdict{}, Options{})
	var invErr *llm.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("err = %v, want InvocationError", err)
	}
}

func TestSaveReport(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveReport(dir, "guidance")
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != "guidance" {
		t.Errorf("saved = %q", data)
	}
}
