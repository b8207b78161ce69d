package email

import (
	"context"
	"strings"
	"testing"

	"github.com/rishtahub/rishta-backend/pkg/config"
)

func TestNewSMTPProviderRequiresHostWhenEnabled(t *testing.T) {
	_, err := NewSMTPProvider(config.EmailConfig{Enabled: true}, nil)
	if err == nil {
		t.Fatalf("expected error when enabled without host")
	}
}

func TestSendDisabledIsNoop(t *testing.T) {
	provider, err := NewSMTPProvider(config.EmailConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if err := provider.Send(context.Background(), Message{To: "a@b.com", Subject: "hi", Body: "body"}); err != nil {
		t.Fatalf("disabled send should be a noop: %v", err)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	provider, err := NewSMTPProvider(config.EmailConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if err := provider.Send(context.Background(), Message{Subject: "hi"}); err == nil {
		t.Fatalf("expected error without recipient")
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	payload := string(buildMessage("no-reply@rishtahub.com", Message{
		To:      "user@example.com",
		Subject: "Booking update",
		Body:    "Your booking was confirmed.",
	}))

	for _, want := range []string{
		"From: no-reply@rishtahub.com\r\n",
		"To: user@example.com\r\n",
		"Subject: Booking update\r\n",
		"Your booking was confirmed.",
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("message missing %q:\n%s", want, payload)
		}
	}
}
