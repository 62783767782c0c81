// utils/email.go
package utils

import (
	"fmt"
	"strings"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"go-tote-store/models"
	"go-tote-store/pricing"
)

// Mailer delivers a single email
type Mailer interface {
	Send(toEmail, subject, htmlContent, textContent string) error
}

// PostmarkMailer sends email through Postmark
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

func NewPostmarkMailer(apiToken, from string) *PostmarkMailer {
	return &PostmarkMailer{client: postmark.NewClient(apiToken, ""), from: from}
}

func (m *PostmarkMailer) Send(toEmail, subject, htmlContent, textContent string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: textContent,
	})
	if err != nil {
		return fmt.Errorf("postmark: failed to send email: %w", err)
	}
	return nil
}

// SendGridMailer sends email through SendGrid
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Tote Studio", from),
	}
}

func (m *SendGridMailer) Send(toEmail, subject, htmlContent, textContent string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", toEmail), textContent, htmlContent)
	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer only logs emails. Used when no provider is configured.
type LogMailer struct {
	Log *zap.Logger
}

func (m LogMailer) Send(toEmail, subject, htmlContent, textContent string) error {
	m.Log.Info("email not sent, no provider configured", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

// NewMailer picks a mailer for provider ("postmark", "sendgrid" or "log")
func NewMailer(provider, postmarkToken, sendgridKey, from string, log *zap.Logger) (Mailer, error) {
	switch strings.ToLower(provider) {
	case "postmark":
		if postmarkToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is not set")
		}
		return NewPostmarkMailer(postmarkToken, from), nil
	case "sendgrid":
		if sendgridKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
		return NewSendGridMailer(sendgridKey, from), nil
	case "", "log":
		return LogMailer{Log: log}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", provider)
	}
}

// EmailService composes storefront emails
type EmailService struct {
	mailer Mailer
}

func NewEmailService(mailer Mailer) *EmailService {
	return &EmailService{mailer: mailer}
}

func (es *EmailService) SendEmail(toEmail, subject, content string) error {
	return es.mailer.Send(toEmail, subject, content, content)
}

// SendOrderConfirmationEmail thanks the customer for a placed order
func (es *EmailService) SendOrderConfirmationEmail(order models.Order) error {
	subject := "Order Confirmation - Tote Studio"
	html := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully and is expected to arrive %s.<br><br>Total Amount: <strong>$%s</strong><br><br>Thank you for shopping with us!",
		order.ShippingAddress.Name,
		order.ID,
		order.EstimatedDelivery,
		pricing.FromMinorUnits(order.TotalCents).StringFixed(2),
	)
	text := fmt.Sprintf(
		"Dear %s,\n\nThank you for your purchase! Your order (ID: %s) has been placed successfully and is expected to arrive %s.\n\nTotal Amount: $%s\n\nThank you for shopping with us!\n",
		order.ShippingAddress.Name,
		order.ID,
		order.EstimatedDelivery,
		pricing.FromMinorUnits(order.TotalCents).StringFixed(2),
	)
	return es.mailer.Send(order.Email, subject, html, text)
}

// SendOrderStatusEmail tells the customer their order moved to a new status
func (es *EmailService) SendOrderStatusEmail(order models.Order) error {
	subject := "Order Status Updated - Tote Studio"
	content := fmt.Sprintf("Dear %s,\n\nYour order (ID: %s) is now '%s'.\n", order.ShippingAddress.Name, order.ID, order.Status)
	if order.TrackingNumber != "" {
		content += fmt.Sprintf("Tracking number: %s (%s)\n", order.TrackingNumber, order.TrackingURL)
	}
	content += "\nThank you for shopping with us!\n"
	return es.SendEmail(order.Email, subject, content)
}
