package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-tote-store/models"
)

type capturingMailer struct {
	to, subject, html, text string
}

func (m *capturingMailer) Send(toEmail, subject, htmlContent, textContent string) error {
	m.to, m.subject, m.html, m.text = toEmail, subject, htmlContent, textContent
	return nil
}

func TestSendOrderConfirmationEmail(t *testing.T) {
	m := &capturingMailer{}
	es := NewEmailService(m)

	err := es.SendOrderConfirmationEmail(models.Order{
		ID:                "ORD-12345",
		Email:             "ada@example.com",
		TotalCents:        4343,
		EstimatedDelivery: "in 5-7 business days",
		ShippingAddress:   models.Address{Name: "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", m.to)
	assert.Contains(t, m.text, "ORD-12345")
	assert.Contains(t, m.text, "$43.43")
	assert.Contains(t, m.html, "<strong>$43.43</strong>")
}

func TestNewMailer(t *testing.T) {
	log := zap.NewNop()

	m, err := NewMailer("", "", "", "shop@example.com", log)
	require.NoError(t, err)
	assert.IsType(t, LogMailer{}, m)

	_, err = NewMailer("postmark", "", "", "shop@example.com", log)
	assert.Error(t, err)

	m, err = NewMailer("sendgrid", "", "SG.key", "shop@example.com", log)
	require.NoError(t, err)
	assert.IsType(t, &SendGridMailer{}, m)

	_, err = NewMailer("carrier-pigeon", "", "", "", log)
	assert.Error(t, err)
}
