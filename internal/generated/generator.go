package generated

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docchat-backend/internal/llm"
	"docchat-backend/internal/pdfgen"
)

const (
	// StrategyDirect renders the submitted text into a PDF as-is.
	StrategyDirect = "direct"
	// StrategyLLM asks a language model to rewrite the submitted text
	// before rendering it.
	StrategyLLM = "llm"
)

// Input carries the material a generator works from: the source document's
// URL, the text to render, and an optional reference URL supplied by the
// caller.
type Input struct {
	OriginalURL string
	Text        string
	URL         string
}

// Generator produces the PDF bytes for a regeneration request. Exactly one
// strategy is active per deployment, chosen at startup.
type Generator interface {
	Generate(ctx context.Context, in Input) ([]byte, error)
}

// NewGenerator returns the generator for the configured strategy.
func NewGenerator(strategy string, completer llm.Completer) (Generator, error) {
	switch strategy {
	case StrategyDirect:
		return DirectGenerator{}, nil
	case StrategyLLM:
		if completer == nil {
			return nil, errors.New("llm strategy requires a completer")
		}
		return &LLMGenerator{Completer: completer}, nil
	default:
		return nil, fmt.Errorf("unknown generator strategy %q", strategy)
	}
}

// DirectGenerator renders the submitted text verbatim.
type DirectGenerator struct{}

// Generate builds a PDF from the input text without transformation.
func (DirectGenerator) Generate(ctx context.Context, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pdfgen.Build(in.Text)
}

const synthesisPrompt = `You are given the text content extracted from a PDF document, along with the URL where the original document is hosted. Produce a cleaned-up, well-structured plain-text version of the document suitable for rendering as a new PDF. Preserve all factual content. Do not invent content that is not present in the source. Respond with the document text only, no commentary.

Original document URL: %s
%s
Document text:
%s`

// LLMGenerator asks a language model to synthesize the document text
// before rendering.
type LLMGenerator struct {
	Completer llm.Completer
}

// Generate prompts the model with the source text and renders its answer.
func (g *LLMGenerator) Generate(ctx context.Context, in Input) ([]byte, error) {
	refLine := ""
	if strings.TrimSpace(in.URL) != "" {
		refLine = "Reference URL: " + strings.TrimSpace(in.URL) + "\n"
	}
	prompt := fmt.Sprintf(synthesisPrompt, in.OriginalURL, refLine, in.Text)

	answer, err := g.Completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm synthesize: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, errors.New("llm synthesize: empty response")
	}
	return pdfgen.Build(answer)
}

var (
	_ Generator = DirectGenerator{}
	_ Generator = (*LLMGenerator)(nil)
)
