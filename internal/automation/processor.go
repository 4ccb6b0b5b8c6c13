package automation

import (
	"bytes"
	"context"
	"log/slog"
	"text/template"
	"time"

	_ "embed"

	"github.com/isometry/gh-autoflow-app/internal/helpers"
	"github.com/pkg/errors"
)

// ProcessResult is the outcome of a processing run.
type ProcessResult struct {
	Success   bool `json:"success"`
	Processed bool `json:"processed"`
}

// Processor is the unit of work run once per qualifying event.
type Processor interface {
	Process(ctx context.Context, issueNumber int) (*ProcessResult, error)
}

// Commenter posts comments to issues. Failures are the implementation's concern.
type Commenter interface {
	AddComment(ctx context.Context, issueNumber int, body string)
}

//go:embed templates/status-comment.md.tmpl
var statusCommentTemplate string

var statusComment = template.Must(template.New("status-comment").Funcs(template.FuncMap{
	"iso8601": func(t time.Time) string { return t.UTC().Format(helpers.ISO8601Milli) },
}).Parse(statusCommentTemplate))

// SimulatedProcessor stands in for real automation: it waits for a fixed delay and
// reports back on the issue with a status comment.
type SimulatedProcessor struct {
	delay     time.Duration
	commenter Commenter
	logger    *slog.Logger
	now       func() time.Time
}

// ProcessorOption is a functional option for the SimulatedProcessor.
type ProcessorOption func(*SimulatedProcessor)

// WithProcessingDelay sets the simulated processing duration.
func WithProcessingDelay(d time.Duration) ProcessorOption {
	return func(p *SimulatedProcessor) {
		p.delay = d
	}
}

// WithProcessorLogger sets the logger of the SimulatedProcessor.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *SimulatedProcessor) {
		p.logger = logger
	}
}

// WithClock overrides the time source used in status comments.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *SimulatedProcessor) {
		p.now = now
	}
}

// NewSimulatedProcessor creates a SimulatedProcessor posting through the given commenter.
func NewSimulatedProcessor(commenter Commenter, opts ...ProcessorOption) *SimulatedProcessor {
	_inst := &SimulatedProcessor{commenter: commenter}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.now == nil {
		_inst.now = time.Now
	}
	return _inst
}

// Process runs the simulated work for an issue.
func (p *SimulatedProcessor) Process(ctx context.Context, issueNumber int) (*ProcessResult, error) {
	logger := p.logger.With(slog.Int("issue", issueNumber))
	logger.Info("processing issue...", slog.Duration("delay", p.delay))

	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, &ProcessingError{IssueNumber: issueNumber, Cause: errors.Wrap(ctx.Err(), "processing interrupted")}
		}
	}

	var body bytes.Buffer
	if err := statusComment.Execute(&body, struct {
		IssueNumber int
		ProcessedAt time.Time
	}{
		IssueNumber: issueNumber,
		ProcessedAt: p.now(),
	}); err != nil {
		return nil, &ProcessingError{IssueNumber: issueNumber, Cause: errors.Wrap(err, "failed to render status comment")}
	}
	p.commenter.AddComment(ctx, issueNumber, body.String())

	logger.Info("issue processed successfully")
	return &ProcessResult{Success: true, Processed: true}, nil
}
