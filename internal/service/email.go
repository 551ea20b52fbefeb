package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"tradelink-backend/internal/domain"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendReviewDecision(ctx context.Context, email, name, orgName string, status domain.KYCStatus, reason string) error {
	subject := fmt.Sprintf("Verification update - %s", orgName)

	body := fmt.Sprintf("Hello %s,\n\nThe verification status of '%s' has been updated to: %s.", name, orgName, status)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	if status == domain.KYCStatusRejected {
		body += "\n\nYou may correct the flagged information and submit again."
	}
	body += "\n\nBest regards,\nThe TradeLink Team"

	return s.send(email, name, subject, body)
}

func (s *emailService) SendInfoRequest(ctx context.Context, email, name, orgName, message string, fields []string) error {
	subject := fmt.Sprintf("Additional information needed - %s", orgName)

	body := fmt.Sprintf("Hello %s,\n\nOur compliance team needs more information to complete the verification of '%s'.\n\n%s", name, orgName, message)
	if len(fields) > 0 {
		body += fmt.Sprintf("\n\nPlease review the following sections: %s", strings.Join(fields, ", "))
	}
	body += "\n\nYour onboarding has been unlocked so you can update and resubmit.\n\nBest regards,\nThe TradeLink Team"

	return s.send(email, name, subject, body)
}

func (s *emailService) SendPendingReviewDigest(ctx context.Context, email string, caseCodes []string) error {
	subject := fmt.Sprintf("Pending verification reviews: %d waiting", len(caseCodes))

	body := "The following verification cases have been waiting past the review target:\n\n"
	for _, code := range caseCodes {
		body += fmt.Sprintf("  - %s\n", code)
	}
	body += "\nBest regards,\nThe TradeLink Team"

	return s.send(email, "Operations", subject, body)
}
