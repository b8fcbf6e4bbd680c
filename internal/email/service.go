// Package email provides email sending capabilities via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration
type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
	FromName  string
	EnableTLS bool
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

// NewService creates a new email service
func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg)
}

// SendHTMLEmail sends an HTML email
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	boundary := "boundary-lexidraft"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	// Plain text part (fallback)
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	// HTML part
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// ShareNotificationData holds data for the share notification email
type ShareNotificationData struct {
	AppName       string
	GranteeName   string
	OwnerName     string
	DocumentTitle string
	Permission    string
	DocumentURL   string
}

// ShareLinkData holds data for the share link email
type ShareLinkData struct {
	AppName       string
	OwnerName     string
	DocumentTitle string
	LinkURL       string
	HasPassword   bool
	ExpiresAt     string
}

// SendShareNotification tells a user that a document was shared with them.
func (s *Service) SendShareNotification(to, granteeName, ownerName, documentTitle, permission, documentURL string) error {
	data := ShareNotificationData{
		AppName:       "LexiDraft",
		GranteeName:   granteeName,
		OwnerName:     ownerName,
		DocumentTitle: documentTitle,
		Permission:    permission,
		DocumentURL:   documentURL,
	}

	subject := fmt.Sprintf("%s shared \"%s\" with you", ownerName, documentTitle)
	html, err := renderTemplate(shareNotificationTemplate, data)
	if err != nil {
		return fmt.Errorf("render share notification template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

// SendShareLink mails a tokenized document link to an outside recipient.
func (s *Service) SendShareLink(to, ownerName, documentTitle, linkURL string, hasPassword bool, expiresAt string) error {
	data := ShareLinkData{
		AppName:       "LexiDraft",
		OwnerName:     ownerName,
		DocumentTitle: documentTitle,
		LinkURL:       linkURL,
		HasPassword:   hasPassword,
		ExpiresAt:     expiresAt,
	}

	subject := fmt.Sprintf("%s sent you a document: %s", ownerName, documentTitle)
	html, err := renderTemplate(shareLinkTemplate, data)
	if err != nil {
		return fmt.Errorf("render share link template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const shareNotificationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.OwnerName}} shared a document with you</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #1a3c6e; padding-bottom: 10px; margin-bottom: 20px; }
        .button { display: inline-block; padding: 12px 24px; background: #1a3c6e; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
        .link { word-break: break-all; color: #1a3c6e; }
        .permission { text-transform: uppercase; font-size: 12px; letter-spacing: 0.05em; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Hello, {{.GranteeName}}!</h2>

    <p>{{.OwnerName}} shared the document <strong>{{.DocumentTitle}}</strong> with you.</p>
    <p class="permission">Access level: {{.Permission}}</p>

    <p>
        <a href="{{.DocumentURL}}" class="button">Open Document</a>
    </p>

    <p>Or copy and paste this link into your browser:</p>
    <p class="link">{{.DocumentURL}}</p>

    <div class="footer">
        <p>You received this email because a {{.AppName}} user shared a document with your account.</p>
    </div>
</body>
</html>`

const shareLinkTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.OwnerName}} sent you a document</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #1a3c6e; padding-bottom: 10px; margin-bottom: 20px; }
        .button { display: inline-block; padding: 12px 24px; background: #1a3c6e; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
        .link { word-break: break-all; color: #1a3c6e; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <p>{{.OwnerName}} sent you the document <strong>{{.DocumentTitle}}</strong>.</p>

    <p>
        <a href="{{.LinkURL}}" class="button">View Document</a>
    </p>

    <p>Or copy and paste this link into your browser:</p>
    <p class="link">{{.LinkURL}}</p>

    {{if .HasPassword}}<p>This link is password protected. The sender will share the password with you separately.</p>{{end}}
    {{if .ExpiresAt}}<p>This link expires on {{.ExpiresAt}}.</p>{{end}}

    <div class="footer">
        <p>You received this email because a {{.AppName}} user shared a document with this address.</p>
    </div>
</body>
</html>`
