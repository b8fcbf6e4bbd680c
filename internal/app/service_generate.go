package app

import (
	"context"
	"log"
	"strings"

	"lexidraft/api/internal/genai"
	"lexidraft/api/internal/search"
)

// Generate makes a single provider call. Failures are logged and collapsed
// into GENERATION_FAILED; provider error text never reaches the client.
func (s *Service) Generate(ctx context.Context, session Session, prompt, documentType string, asTemplate bool) (map[string]any, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errValidation("prompt is required")
	}
	if s.genai == nil {
		return nil, errGenerationFailed()
	}

	text, err := s.genai.Generate(ctx, genai.Request{
		Prompt:       prompt,
		DocumentType: strings.TrimSpace(documentType),
		AsTemplate:   asTemplate,
	})
	if err != nil {
		log.Printf("genai: generate for %s: %v", session.UserID, err)
		return nil, errGenerationFailed()
	}

	return map[string]any{
		"content":      text,
		"documentType": strings.TrimSpace(documentType),
		"asTemplate":   asTemplate,
	}, nil
}

func (s *Service) Search(ctx context.Context, session Session, text, filterType string, limit, offset int) (search.Response, error) {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}
	return s.search.Search(ctx, search.Query{
		Text:       text,
		UserID:     session.UserID,
		FilterType: search.ResultType(filterType),
		Limit:      limit,
		Offset:     offset,
	}), nil
}
