package service

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/explain"
)

const (
	// NotConfiguredMessage is reported when no generator API key was set.
	NotConfiguredMessage = "explanation service is not configured"
	// GenerationFailedMessage hides the upstream error from clients.
	GenerationFailedMessage = "Error generating explanation. Please try again later."
	// EmptyExplanationText stands in for a generator that answered with nothing.
	EmptyExplanationText = "Unable to generate explanation"
)

type Explanation struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
}

// ExplainService picks a concept and asks the generator to explain it.
// gen may be nil, in which case Explain always fails with
// NotConfiguredMessage and only Fallback is useful.
type ExplainService struct {
	gen    explain.Generator
	pick   func(n int) int
	logger *slog.Logger
}

func NewExplainService(gen explain.Generator, logger *slog.Logger) *ExplainService {
	return &ExplainService{
		gen:    gen,
		pick:   rand.IntN,
		logger: logger,
	}
}

// Explain generates an explanation for a randomly chosen concept.
func (s *ExplainService) Explain(ctx context.Context) (*Explanation, error) {
	concept := explain.Concepts[s.pick(len(explain.Concepts))]
	s.logger.Info("concept selected", slog.String("concept", concept))

	if s.gen == nil {
		s.logger.Error("explain requested without a configured generator")
		return nil, apperror.Unavailable(NotConfiguredMessage)
	}

	text, err := s.gen.Generate(ctx, explain.Prompt(concept))
	if err != nil {
		s.logger.Error("generating explanation failed",
			slog.String("concept", concept),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable(GenerationFailedMessage)
	}
	if text == "" {
		text = EmptyExplanationText
	}

	return &Explanation{Concept: concept, Explanation: text}, nil
}

// Fallback returns the fixed explanation served when generation isn't
// possible.
func (s *ExplainService) Fallback() *Explanation {
	return &Explanation{
		Concept:     explain.FallbackConcept,
		Explanation: explain.FallbackExplanation,
	}
}
