package handler

import (
	"log/slog"

	"github.com/isometry/gh-autoflow-app/internal/handler/processor"
	"github.com/isometry/gh-autoflow-app/internal/validation"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithWebhookSecret configures the handler with a webhook secret for request validation.
// A nil or empty secret disables validation.
func WithWebhookSecret(secret *validation.WebhookSecret) Option {
	return func(h *Handler) {
		h.webhookSecret = secret
	}
}

// WithArchive enables archiving of every verified payload to the given bucket.
func WithArchive(archiver processor.Archiver, bucket string) Option {
	return func(h *Handler) {
		h.archiver = archiver
		h.archiveBucket = bucket
	}
}

// WithRateLimitReporter enables rate-limit reporting after successful deliveries.
func WithRateLimitReporter(reporter processor.RateLimitReporter) Option {
	return func(h *Handler) {
		h.reporter = reporter
	}
}
