// Package feedback rewrites judges' free-text comments with a language model.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alex-pricope/teacher-evaluation-system/logging"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"
	// MinPolishLength is the shortest trimmed input, in runes, worth sending.
	MinPolishLength = 5

	temperature = 0.7
	topP        = 0.95
)

var ErrEmptyResponse = errors.New("model returned no text")

// Polisher returns a rewritten version of raw. On error the returned text is raw
// so callers can keep going.
type Polisher interface {
	Polish(ctx context.Context, raw string) (string, error)
}

// NoopPolisher is used when no model is configured.
type NoopPolisher struct{}

func (NoopPolisher) Polish(_ context.Context, raw string) (string, error) {
	return raw, nil
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiPolisher struct {
	models contentGenerator
	model  string
}

func NewGeminiPolisher(ctx context.Context, apiKey, model string) (*GeminiPolisher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGeminiPolisher(client.Models, model), nil
}

func newGeminiPolisher(models contentGenerator, model string) *GeminiPolisher {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiPolisher{models: models, model: model}
}

func (p *GeminiPolisher) Polish(ctx context.Context, raw string) (string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < MinPolishLength {
		return raw, nil
	}

	contents := []*genai.Content{genai.NewContentFromText(buildPrompt(raw), genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
		TopP:        genai.Ptr(float32(topP)),
	}

	resp, err := p.models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		logging.Log.Warnf("FEEDBACK: polish request failed: %v", err)
		return raw, fmt.Errorf("polish feedback: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return raw, ErrEmptyResponse
	}
	return text, nil
}

func buildPrompt(raw string) string {
	var b strings.Builder
	b.WriteString("You are an experienced teacher trainer reviewing a demo lesson.\n")
	b.WriteString("Rewrite the judge's feedback below so it reads professional, objective and constructive.\n")
	b.WriteString("Keep the original meaning and reply in the language the feedback is written in.\n")
	b.WriteString("Where it fits, organise the text into two parts: strengths and suggestions for improvement.\n\n")
	b.WriteString("Feedback:\n")
	b.WriteString(raw)
	return b.String()
}
