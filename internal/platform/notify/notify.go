// Package notify delivers booking confirmation emails. Delivery is
// best-effort from the booking path's perspective: failures are reported to
// the caller for logging but must never fail or roll back a booking.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
)

// EmailSender is the interface for sending a single email with both plain
// text and HTML bodies.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// Template defines a reusable notification template. Placeholders use
// {{key}} syntax; keys absent from the data map are left as-is.
type Template struct {
	ID      string
	Subject string
	Text    string
	HTML    string
}

var builtIn = []Template{
	{
		ID:      "booking-confirmed-patient",
		Subject: "Booking confirmed: {{title}} on {{date}}",
		Text:    "Your appointment ({{title}}) at {{practice_name}} is confirmed for {{date}} at {{time}}.",
		HTML:    "<p>Your appointment (<strong>{{title}}</strong>) at {{practice_name}} is confirmed for {{date}} at {{time}}.</p>",
	},
	{
		ID:      "booking-confirmed-practice",
		Subject: "New booking: {{title}} on {{date}}",
		Text:    "A patient has booked {{title}} on {{date}} at {{time}}.",
		HTML:    "<p>A patient has booked <strong>{{title}}</strong> on {{date}} at {{time}}.</p>",
	},
}

// Mailer renders templates and dispatches them through an EmailSender.
type Mailer struct {
	sender    EmailSender
	mu        sync.RWMutex
	templates map[string]Template
}

// NewMailer constructs a Mailer with the built-in booking templates
// pre-registered.
func NewMailer(sender EmailSender) *Mailer {
	m := &Mailer{
		sender:    sender,
		templates: make(map[string]Template),
	}
	for _, t := range builtIn {
		m.templates[t.ID] = t
	}
	return m
}

// RegisterTemplate adds or replaces a template.
func (m *Mailer) RegisterTemplate(t Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t
}

// Render looks up a template and performs {{key}} substitution.
func (m *Mailer) Render(templateID string, data map[string]string) (subject, text, html string, err error) {
	m.mu.RLock()
	t, ok := m.templates[templateID]
	m.mu.RUnlock()
	if !ok {
		return "", "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject, text, html = t.Subject, t.Text, t.HTML
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		text = strings.ReplaceAll(text, placeholder, v)
		html = strings.ReplaceAll(html, placeholder, v)
	}
	return subject, text, html, nil
}

// SendTemplate renders a template and sends the result to the recipient.
func (m *Mailer) SendTemplate(ctx context.Context, templateID string, data map[string]string, to string) error {
	subject, text, html, err := m.Render(templateID, data)
	if err != nil {
		return err
	}
	return m.sender.SendEmail(ctx, to, subject, text, html)
}

// SMTPSender sends mail via unauthenticated SMTP, enough for a local relay
// or a Mailpit-style capture box.
type SMTPSender struct {
	addr string
	from string
}

// NewSMTPSender creates an SMTPSender for host:port, sending as from.
func NewSMTPSender(host, port, from string) *SMTPSender {
	if strings.TrimSpace(from) == "" {
		from = "no-reply@dental.local"
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%s", strings.TrimSpace(host), strings.TrimSpace(port)),
		from: from,
	}
}

func (s *SMTPSender) SendEmail(_ context.Context, to, subject, textBody, htmlBody string) error {
	msg := buildMessage(s.from, to, subject, textBody, htmlBody)
	return smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg))
}

const mimeBoundary = "b-dental-alt"

func buildMessage(from, to, subject, textBody, htmlBody string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n", from, to, subject)
	if htmlBody == "" {
		fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", textBody)
		return b.String()
	}
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mimeBoundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", mimeBoundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", mimeBoundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return b.String()
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, textBody, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, TextBody: textBody, HTMLBody: htmlBody})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
