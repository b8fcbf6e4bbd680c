package genai

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt(t *testing.T) {
	tests := []struct {
		name         string
		documentType string
		asTemplate   bool
		wants        []string
		rejects      []string
	}{
		{
			name:         "plain document",
			documentType: "",
			asTemplate:   false,
			wants:        []string{"legal drafting assistant"},
			rejects:      []string{"[PARTY A]", "document type is"},
		},
		{
			name:         "typed document",
			documentType: "nda",
			asTemplate:   false,
			wants:        []string{"document type is: nda"},
			rejects:      []string{"[PARTY A]"},
		},
		{
			name:         "template mode",
			documentType: "lease",
			asTemplate:   true,
			wants:        []string{"document type is: lease", "[PARTY A]", "[EFFECTIVE DATE]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildSystemPrompt(tt.documentType, tt.asTemplate)
			for _, want := range tt.wants {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt missing %q: %s", want, prompt)
				}
			}
			for _, reject := range tt.rejects {
				if strings.Contains(prompt, reject) {
					t.Errorf("prompt should not contain %q: %s", reject, prompt)
				}
			}
		})
	}
}

func TestNewOpenAIDefaultsModel(t *testing.T) {
	g := NewOpenAI("sk-test", "")
	if g.model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %s", g.model)
	}

	g = NewOpenAI("sk-test", "gpt-4o")
	if g.model != "gpt-4o" {
		t.Errorf("expected explicit model, got %s", g.model)
	}
}
