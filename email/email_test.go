package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailerDisabledWithoutHost(t *testing.T) {
	assert.Nil(t, NewSMTPMailer(Config{}))
}

func TestSendVerificationEmail(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "mail.local", From: "noreply@folio.dev", SiteURL: "https://folio.dev/"})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	m.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, m.SendVerificationEmail(context.Background(), "ana@example.com", "Ana", "tok123"))

	assert.Equal(t, "mail.local:587", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Confirm your email")
	assert.Contains(t, gotMsg, "https://folio.dev/api/auth/verify-email?token=tok123")
	assert.Contains(t, gotMsg, "Hi Ana")
}

func TestSendVerificationEmailWrapsError(t *testing.T) {
	m := NewSMTPMailer(Config{Host: "mail.local"})
	boom := errors.New("boom")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := m.SendVerificationEmail(context.Background(), "a@b.co", "", "t")
	assert.ErrorIs(t, err, boom)
}
