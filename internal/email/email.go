package email

import (
	"context"
)

// Message is a plain-text email ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Provider delivers transactional email.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}
