// Package genai drafts legal document text with an LLM provider.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrGenerationFailed wraps any provider failure. Callers get a single
// attempt; there is no retry loop.
var ErrGenerationFailed = errors.New("generation failed")

// Generator produces document text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request describes one generation call.
type Request struct {
	Prompt       string
	DocumentType string
	AsTemplate   bool
}

// OpenAI is the default Generator backed by the OpenAI chat API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates a generator. model falls back to gpt-4o-mini when empty.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Generate makes exactly one provider call and returns the drafted text.
func (g *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(BuildSystemPrompt(req.DocumentType, req.AsTemplate)),
			openai.UserMessage(req.Prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return text, nil
}

// BuildSystemPrompt frames the model as a legal drafting assistant. When
// asTemplate is set, the output keeps bracketed placeholders instead of
// concrete party details.
func BuildSystemPrompt(documentType string, asTemplate bool) string {
	var b strings.Builder
	b.WriteString("You are a legal drafting assistant. Draft clear, well-structured legal text ")
	b.WriteString("in plain language with numbered sections. Use markdown-style headings (# and ##).")
	if documentType != "" {
		b.WriteString(" The document type is: ")
		b.WriteString(documentType)
		b.WriteString(".")
	}
	if asTemplate {
		b.WriteString(" Produce a reusable template: use bracketed placeholders like [PARTY A], ")
		b.WriteString("[EFFECTIVE DATE], and [JURISDICTION] instead of concrete names, dates, or places.")
	}
	b.WriteString(" Do not include commentary, only the document text.")
	return b.String()
}
