package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/explain"
)

type stubGenerator struct {
	text       string
	err        error
	lastPrompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.lastPrompt = prompt
	return g.text, g.err
}

func newTestExplainService(gen explain.Generator, pick int) *ExplainService {
	svc := NewExplainService(gen, discardLogger())
	svc.pick = func(int) int { return pick }
	return svc
}

func TestExplain_UsesPickedConcept(t *testing.T) {
	gen := &stubGenerator{text: "# Recursion\nA box inside a box."}
	idx := 24 // "Recursion"
	svc := newTestExplainService(gen, idx)

	got, err := svc.Explain(context.Background())
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}

	if got.Concept != explain.Concepts[idx] {
		t.Errorf("Concept = %q, want %q", got.Concept, explain.Concepts[idx])
	}
	if got.Explanation != gen.text {
		t.Errorf("Explanation = %q, want generator output", got.Explanation)
	}
	if gen.lastPrompt != explain.Prompt(explain.Concepts[idx]) {
		t.Errorf("prompt = %q", gen.lastPrompt)
	}
}

func TestExplain_EmptyTextIsReplaced(t *testing.T) {
	svc := newTestExplainService(&stubGenerator{}, 0)

	got, err := svc.Explain(context.Background())
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if got.Explanation != EmptyExplanationText {
		t.Errorf("Explanation = %q, want %q", got.Explanation, EmptyExplanationText)
	}
}

func TestExplain_NotConfigured(t *testing.T) {
	svc := newTestExplainService(nil, 0)

	_, err := svc.Explain(context.Background())
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Fatalf("Explain() error = %v, want unavailable", err)
	}
	if err.Error() != NotConfiguredMessage {
		t.Errorf("message = %q, want %q", err.Error(), NotConfiguredMessage)
	}
}

func TestExplain_GeneratorErrorIsHidden(t *testing.T) {
	svc := newTestExplainService(&stubGenerator{err: errors.New("401 invalid key sk-123")}, 0)

	_, err := svc.Explain(context.Background())
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Fatalf("Explain() error = %v, want unavailable", err)
	}
	if strings.Contains(err.Error(), "sk-123") {
		t.Errorf("upstream error text leaked: %q", err.Error())
	}
}

func TestFallback(t *testing.T) {
	got := NewExplainService(nil, discardLogger()).Fallback()

	if got.Concept != "Algorithms" {
		t.Errorf("Concept = %q, want Algorithms", got.Concept)
	}
	if !strings.Contains(got.Explanation, "sandwich algorithm") {
		t.Error("fallback explanation should be the sandwich walkthrough")
	}
}
