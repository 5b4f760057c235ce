package services

import (
	"fmt"
	"log"
	"strings"

	"juris_desk_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email using Resend API
func SendEmail(cfg *config.Config, email *Email) error {
	// In development mode, log the email instead of sending
	if cfg.EmailTestMode {
		logEmailToConsole(email)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)

	fromAddress := fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom)

	params := &resend.SendEmailRequest{
		From:    fromAddress,
		To:      email.To,
		Subject: email.Subject,
	}

	// Set body (prefer HTML if available)
	if email.HTMLBody != "" {
		params.Html = email.HTMLBody
	}
	if email.TextBody != "" {
		params.Text = email.TextBody
	}

	if params.Html == "" && params.Text == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %v", err)
	}

	log.Printf("Email sent successfully via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(email *Email) {
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\nEMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("To: %v", email.To)
	log.Printf("Subject: %s", email.Subject)
	log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	log.Printf("%s\n", separator)
}

// SendEmailAsync sends an email asynchronously using a goroutine
// This is the recommended method for sending emails in handlers to avoid blocking HTTP responses
func SendEmailAsync(cfg *config.Config, email *Email) {
	// Copy the email to avoid race conditions
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func(cfg *config.Config, email *Email) {
		if err := SendEmail(cfg, email); err != nil {
			log.Printf("Error sending async email: %v", err)
		}
	}(cfg, emailCopy)
}

// BuildPasswordResetEmail creates a password reset email
func BuildPasswordResetEmail(userEmail, userName, resetLink string) *Email {
	text := fmt.Sprintf(
		"Hello %s,\n\nA password reset was requested for your account. Open the link below to choose a new password. The link expires in 24 hours.\n\n%s\n\nIf you did not request this, you can ignore this message.",
		userName, resetLink,
	)
	html := fmt.Sprintf(
		`<p>Hello %s,</p><p>A password reset was requested for your account. Click the link below to choose a new password. The link expires in 24 hours.</p><p><a href="%s">Reset your password</a></p><p>If you did not request this, you can ignore this message.</p>`,
		userName, resetLink,
	)
	return &Email{
		To:       []string{userEmail},
		Subject:  "Reset your password",
		TextBody: text,
		HTMLBody: html,
	}
}

// BuildWelcomeEmail creates a welcome email for new users
func BuildWelcomeEmail(userEmail, userName string) *Email {
	text := fmt.Sprintf("Hello %s,\n\nYour account is ready. Sign in to start managing your clients, court dates and finances.", userName)
	return &Email{
		To:       []string{userEmail},
		Subject:  "Welcome to JurisDesk",
		TextBody: text,
		HTMLBody: fmt.Sprintf("<p>Hello %s,</p><p>Your account is ready. Sign in to start managing your clients, court dates and finances.</p>", userName),
	}
}
