// Copyright (c) 2026 SecureAuth. All rights reserved.

/*
Package mail implements outbound SMTP delivery for account notifications.

It renders embedded HTML templates and ships them through wneessen/go-mail
with a TLS policy derived from the configured port (implicit TLS on 465,
mandatory STARTTLS on 587, opportunistic elsewhere).

Core Responsibilities:

  - Rendering: html/template over an embedded template set.
  - Transport: authenticated SMTP with context-bounded dial-and-send.
  - Safety: failures return errors; this package never panics into callers.
*/
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/adewumi/secureauth/internal/platform/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names within the embedded set.
const (
	templateOTP          = "otp.html"
	templateResetSuccess = "reset_success.html"
)

// SMTPMailer delivers account emails over authenticated SMTP.
type SMTPMailer struct {
	client    *gomail.Client
	fromEmail string
	fromName  string
	loginURL  string
	templates *template.Template
}

// NewSMTPMailer builds the SMTP client and parses the embedded templates.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mail: failed to parse templates: %w", err)
	}

	options := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthLogin),
		gomail.WithUsername(cfg.SMTPUsername),
		gomail.WithPassword(cfg.SMTPPassword),
	}

	// TLS posture follows the port convention: 465 expects a TLS-wrapped
	// connection from the first byte, 587 upgrades via STARTTLS.
	switch cfg.SMTPPort {
	case 465:
		options = append(options, gomail.WithSSL())
	case 587:
		options = append(options, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		options = append(options, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(cfg.SMTPHost, options...)
	if err != nil {
		return nil, fmt.Errorf("mail: failed to build SMTP client: %w", err)
	}

	return &SMTPMailer{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		loginURL:  cfg.FrontendLoginURL,
		templates: templates,
	}, nil
}

/*
SendPasswordResetCode delivers the one-time code email.

Parameters:
  - context: context.Context
  - email: string (recipient)
  - name: string (personalization)
  - code: string (6-digit OTP)

Returns:
  - error: Rendering or SMTP dispatch failures
*/
func (mailer *SMTPMailer) SendPasswordResetCode(context context.Context, email, name, code string) error {
	body, err := mailer.render(templateOTP, map[string]any{
		"Name":          name,
		"Code":          code,
		"ExpiryMinutes": 10,
	})
	if err != nil {
		return err
	}

	return mailer.send(context, email, "Your password reset code", body)
}

/*
SendResetSuccess delivers the post-reset confirmation email.

Parameters:
  - context: context.Context
  - email: string (recipient)
  - name: string (personalization)
  - resetTime: time.Time (when the password was changed)

Returns:
  - error: Rendering or SMTP dispatch failures
*/
func (mailer *SMTPMailer) SendResetSuccess(context context.Context, email, name string, resetTime time.Time) error {
	body, err := mailer.render(templateResetSuccess, map[string]any{
		"Name":      name,
		"ResetTime": resetTime.Format(time.RFC1123),
		"LoginURL":  mailer.loginURL,
	})
	if err != nil {
		return err
	}

	return mailer.send(context, email, "Your password was changed", body)
}

// render executes a named template into an HTML string.
func (mailer *SMTPMailer) render(name string, data map[string]any) (string, error) {
	var buffer bytes.Buffer
	if err := mailer.templates.ExecuteTemplate(&buffer, name, data); err != nil {
		return "", fmt.Errorf("mail: failed to render %s: %w", name, err)
	}
	return buffer.String(), nil
}

// send assembles and dispatches a single HTML message.
func (mailer *SMTPMailer) send(context context.Context, recipient, subject, htmlBody string) error {
	message := gomail.NewMsg()

	if err := message.FromFormat(mailer.fromName, mailer.fromEmail); err != nil {
		return fmt.Errorf("mail: invalid sender address: %w", err)
	}
	if err := message.To(recipient); err != nil {
		return fmt.Errorf("mail: invalid recipient address: %w", err)
	}

	message.Subject(subject)
	message.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := mailer.client.DialAndSendWithContext(context, message); err != nil {
		return fmt.Errorf("mail: dispatch failed: %w", err)
	}

	return nil
}
