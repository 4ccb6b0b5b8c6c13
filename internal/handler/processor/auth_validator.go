package processor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-autoflow-app/internal/models"
	"github.com/isometry/gh-autoflow-app/internal/validation"
	"github.com/pkg/errors"
)

type authValidatorProcessor struct {
	secret *validation.WebhookSecret
}

// NewAuthValidatorProcessor returns a Processor that identifies the delivery from its headers
// and verifies its signature against the webhook secret.
func NewAuthValidatorProcessor(secret *validation.WebhookSecret) Processor {
	return &authValidatorProcessor{secret: secret}
}

func (p *authValidatorProcessor) Name() string {
	return "pre-processor:validator"
}

func (p *authValidatorProcessor) Process(_ context.Context, logger *slog.Logger, bus *Bus) error {
	bus.Event.Type = bus.Headers[strings.ToLower(github.EventTypeHeader)]
	bus.Event.DeliveryID = bus.Headers[strings.ToLower(github.DeliveryIDHeader)]
	logger = logger.With(slog.String("event", bus.Event.Type), slog.String("deliveryID", bus.Event.DeliveryID))

	if !p.secret.Enabled() {
		logger.Warn("webhook secret not configured. skipping signature validation")
		return nil
	}

	err := p.secret.ValidateSignature(bus.Event.Body, bus.Headers)
	switch {
	case err == nil:
		logger.Debug("request signature is valid")
		return nil
	case errors.Is(err, validation.ErrMissingSignature):
		logger.Warn("rejecting unsigned request")
		return &models.AuthenticationError{Reason: "Missing signature", Cause: err}
	default:
		logger.Warn("rejecting request with invalid signature", slog.Any("error", err))
		return &models.AuthenticationError{Reason: "Invalid signature", Cause: err}
	}
}
