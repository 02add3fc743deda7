// Package mailer defines the outbound email transport abstraction.
// Concrete providers live in subpackages; the pipeline only depends on
// Sender so the transport is swappable without touching dispatch logic.
package mailer

import (
	"context"
	"errors"
)

// ErrNoRecipient indicates an email without any destination address.
var ErrNoRecipient = errors.New("email requires at least one recipient")

// Attachment is a file attached to an outbound email.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Email is a provider-neutral outbound message.
type Email struct {
	To          []string
	From        string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Sender delivers an email through an external transport. Send is not
// idempotent at the transport layer; callers own duplicate suppression.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}
