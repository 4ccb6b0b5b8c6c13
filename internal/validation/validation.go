// Package validation provides functionality for validating webhook signatures to verify request authenticity.
package validation

import (
	"strings"

	"github.com/google/go-github/v84/github"
	"github.com/pkg/errors"
)

var (
	// ErrMissingSignature is returned when a secret is configured but the request carries no signature.
	ErrMissingSignature = errors.New("missing HMAC-SHA256 signature")
	// ErrInvalidSignature is returned when the signature does not match the payload.
	ErrInvalidSignature = errors.New("invalid HMAC-SHA256 signature")
)

// WebhookSecret represents a secret used to validate webhook signatures for verifying request authenticity.
type WebhookSecret string

// NewWebhookSecret creates a new WebhookSecret instance from the provided secret string and returns its address.
func NewWebhookSecret(secret string) *WebhookSecret {
	s := WebhookSecret(secret)
	return &s
}

// Enabled reports whether signature validation is active. An empty secret disables it.
func (s *WebhookSecret) Enabled() bool {
	return s != nil && *s != ""
}

// ValidateSignature validates the HMAC-SHA256 signature of a webhook request using the provided raw body and headers.
// Header keys are expected to be lower-cased. The comparison is constant-time.
func (s *WebhookSecret) ValidateSignature(body []byte, headers map[string]string) error {
	if !s.Enabled() {
		return nil
	}
	signature, found := headers[strings.ToLower(github.SHA256SignatureHeader)]
	if !found || signature == "" {
		return ErrMissingSignature
	}

	if err := github.ValidateSignature(signature, body, []byte(*s)); err != nil {
		return errors.Wrap(ErrInvalidSignature, err.Error())
	}
	return nil
}
