package email

import (
	"strings"
	"testing"
)

func TestServiceIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "empty config",
			config:   Config{},
			expected: false,
		},
		{
			name: "missing host",
			config: Config{
				Port: "587",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing port",
			config: Config{
				Host: "smtp.example.com",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing from",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
				From: "test@example.com",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.config)
			if svc.IsConfigured() != tt.expected {
				t.Errorf("IsConfigured() = %v, want %v", svc.IsConfigured(), tt.expected)
			}
		})
	}
}

func TestRenderShareNotificationTemplate(t *testing.T) {
	data := ShareNotificationData{
		AppName:       "LexiDraft",
		GranteeName:   "Robin Lee",
		OwnerName:     "Avery Chen",
		DocumentTitle: "Mutual NDA",
		Permission:    "write",
		DocumentURL:   "https://example.com/documents/doc_abc",
	}

	html, err := renderTemplate(shareNotificationTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}

	if !strings.Contains(html, "LexiDraft") {
		t.Error("template should contain app name")
	}
	if !strings.Contains(html, "Robin Lee") {
		t.Error("template should contain grantee name")
	}
	if !strings.Contains(html, "Mutual NDA") {
		t.Error("template should contain document title")
	}
	if !strings.Contains(html, "https://example.com/documents/doc_abc") {
		t.Error("template should contain document URL")
	}
	if !strings.Contains(html, "write") {
		t.Error("template should contain the granted permission")
	}
}

func TestRenderShareLinkTemplate(t *testing.T) {
	data := ShareLinkData{
		AppName:       "LexiDraft",
		OwnerName:     "Avery Chen",
		DocumentTitle: "Lease Agreement",
		LinkURL:       "https://example.com/share/tok123",
		HasPassword:   true,
		ExpiresAt:     "March 14, 2026",
	}

	html, err := renderTemplate(shareLinkTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}

	if !strings.Contains(html, "Lease Agreement") {
		t.Error("template should contain document title")
	}
	if !strings.Contains(html, "https://example.com/share/tok123") {
		t.Error("template should contain link URL")
	}
	if !strings.Contains(html, "password protected") {
		t.Error("template should mention password protection")
	}
	if !strings.Contains(html, "March 14, 2026") {
		t.Error("template should mention expiration")
	}
}
