package export

import (
	"html/template"
	"strings"
	"testing"
	"time"
)

func TestContentToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "simple paragraph",
			input:    "This Agreement is entered into by both parties.",
			expected: "<p>This Agreement is entered into by both parties.</p>",
		},
		{
			name:     "heading",
			input:    "## Confidentiality",
			expected: "<h2>Confidentiality</h2>",
		},
		{
			name:     "line break inside paragraph",
			input:    "Party A\nParty B",
			expected: "<p>Party A<br>Party B</p>",
		},
		{
			name:     "escapes markup",
			input:    "1 < 2 & <script>",
			expected: "<p>1 &lt; 2 &amp; &lt;script&gt;</p>",
		},
		{
			name:     "heading then paragraph",
			input:    "# Lease Agreement\n\nThe landlord agrees to lease the premises.",
			expected: "<h1>Lease Agreement</h1>",
		},
		{
			name:     "four hashes is a paragraph",
			input:    "#### not a heading",
			expected: "<p>#### not a heading</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := strings.TrimSpace(ContentToHTML(tt.input))
			if !strings.Contains(result, strings.TrimSpace(tt.expected)) {
				t.Errorf("ContentToHTML() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello-World"},
		{"My Document v1.2", "My-Document-v12"},
		{"Special!@#$%Chars", "SpecialChars"},
		{"", "document"},
		{"Very Long Title That Exceeds Fifty Characters Limit", "Very-Long-Title-That-Exceeds-Fifty-Characters-Limi"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "hello%20world"},       // Spaces encoded as %20, not +
		{"test+sign", "test%2Bsign"},           // + signs are encoded
		{"special<>", "special%3C%3E"},         // Special chars encoded
		{"normal-text.txt", "normal-text.txt"}, // Unreserved chars pass through
		{"", ""},                               // Empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := percentEncodeForDataURL(tt.input)
			if result != tt.expected {
				t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRenderDocumentHTML(t *testing.T) {
	data := TemplateData{
		Title:       "Mutual NDA",
		DocType:     "nda",
		ContentHTML: template.HTML("<p>This is the content.</p>"),
		Author:      "Ada Paralegal",
		Tags:        []string{"confidential", "mutual"},
		UpdatedAt:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	html, err := RenderDocumentHTML(data)
	if err != nil {
		t.Fatalf("RenderDocumentHTML() error = %v", err)
	}

	if !strings.Contains(html, "Mutual NDA") {
		t.Error("HTML missing title")
	}
	if !strings.Contains(html, "Ada Paralegal") {
		t.Error("HTML missing author")
	}
	if !strings.Contains(html, "confidential") {
		t.Error("HTML missing tags")
	}

	// If ContentHTML were escaped, we would see &lt;p&gt; instead of <p>
	if strings.Contains(html, "&lt;p&gt;") {
		t.Error("HTML content was escaped - should be rendered as raw HTML")
	}
	if !strings.Contains(html, "<p>This is the content.</p>") {
		t.Error("HTML content should contain unescaped <p> tags")
	}
}
