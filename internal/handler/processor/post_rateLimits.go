package processor

import (
	"context"
	"log/slog"
	"net/http"
)

// RateLimitReporter reports the remaining API quota.
type RateLimitReporter interface {
	LogRateLimits(ctx context.Context)
}

type rateLimitsPostProcessor struct {
	reporter RateLimitReporter
}

// NewRateLimitsPostProcessor returns a Processor reporting rate limits after successful deliveries.
func NewRateLimitsPostProcessor(reporter RateLimitReporter) Processor {
	return &rateLimitsPostProcessor{reporter: reporter}
}

func (p *rateLimitsPostProcessor) Name() string {
	return "post-processor:rate-limits"
}

func (p *rateLimitsPostProcessor) Process(ctx context.Context, logger *slog.Logger, bus *Bus) error {
	if bus.Response.StatusCode >= http.StatusMultipleChoices {
		logger.Debug("ignoring rate limits fetching for unsuccessful response", slog.Int("statusCode", bus.Response.StatusCode))
		return nil
	}
	p.reporter.LogRateLimits(ctx)
	return nil
}
