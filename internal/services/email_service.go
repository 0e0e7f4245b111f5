// internal/services/email_service.go
// EmailSender is an external-collaborator contract (spec.md §1/§4): actual
// delivery is someone else's system. LoggingEmailSender is the only
// implementation this repo ships, grounded on the teacher's
// NotificationService placeholder idiom (other_services.go's "Would notify"
// log lines) generalized into an interface so a real SMTP/SES sender can be
// dropped in without touching call sites.

package services

import (
	"context"

	"github.com/rs/zerolog"
)

// EmailSender delivers transactional email. Call sites never see SMTP/SES
// details; swapping implementations is a one-line wiring change.
type EmailSender interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// LoggingEmailSender logs what would be sent instead of delivering it. This
// keeps the background task pool exercised end to end without requiring a
// live SMTP relay in every environment.
type LoggingEmailSender struct {
	logger zerolog.Logger
}

func NewLoggingEmailSender(logger zerolog.Logger) *LoggingEmailSender {
	return &LoggingEmailSender{logger: logger}
}

func (s *LoggingEmailSender) Send(ctx context.Context, toEmail, subject, body string) error {
	s.logger.Info().
		Str("to", toEmail).
		Str("subject", subject).
		Msg("would send email")
	return nil
}

// Canned subject/body builders for the flows spec.md names explicitly.

func RegistrationConfirmationEmail(eventTitle string) (string, string) {
	subject := "You're registered for " + eventTitle
	body := "Your registration for " + eventTitle + " is confirmed. Good luck!"
	return subject, body
}

func TeamCreatedEmail(eventTitle, teamCode string) (string, string) {
	subject := "Team created for " + eventTitle
	body := "Your team for " + eventTitle + " was created. Share this code with your teammates: " + teamCode
	return subject, body
}

func TeamJoinedEmail(eventTitle, joinerName string) (string, string) {
	subject := "New member joined your team"
	body := joinerName + " joined your team for " + eventTitle + "."
	return subject, body
}

func TeamInviteEmail(eventTitle, teamName string) (string, string) {
	subject := "You've been added to a team"
	body := "You've been added to " + teamName + " for " + eventTitle + "."
	return subject, body
}
