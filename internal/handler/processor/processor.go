// Package processor provides a generic chain for running a webhook delivery through a list of processors.
package processor

import (
	"context"
	"log/slog"

	"github.com/isometry/gh-autoflow-app/internal/models"
)

// Bus carries one webhook delivery through the processor chain.
type Bus struct {
	Event    *models.WebhookEvent
	Headers  map[string]string
	Response models.Response
}

// Processor is an interface that defines a step of the chain.
// Processors are shared between concurrent deliveries and must not keep per-delivery state.
type Processor interface {
	Name() string
	Process(ctx context.Context, logger *slog.Logger, bus *Bus) error
}

// Process runs the bus through the processors in order and stops at the first error.
func Process(ctx context.Context, logger *slog.Logger, bus *Bus, processors ...Processor) error {
	for _, p := range processors {
		if err := p.Process(ctx, logger.WithGroup(p.Name()), bus); err != nil {
			return err
		}
	}
	return nil
}
