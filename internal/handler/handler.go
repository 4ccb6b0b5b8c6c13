// Package handler turns verified webhook deliveries and manual triggers into automation workflows.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-autoflow-app/internal/automation"
	"github.com/isometry/gh-autoflow-app/internal/controllers/github/event"
	"github.com/isometry/gh-autoflow-app/internal/handler/processor"
	"github.com/isometry/gh-autoflow-app/internal/helpers"
	"github.com/isometry/gh-autoflow-app/internal/models"
	"github.com/isometry/gh-autoflow-app/internal/validation"
	"github.com/pkg/errors"
)

// Workflow is the automation surface the handler dispatches to.
type Workflow interface {
	HandleIssueEvent(ctx context.Context, e *github.IssuesEvent) (*automation.IssueResult, error)
	HandleIssueComment(ctx context.Context, e *github.IssueCommentEvent) (*automation.CommentResult, error)
	Trigger(ctx context.Context, issueNumber int) (*automation.ProcessResult, error)
}

// Option is a functional option for the Handler.
type Option func(*Handler)

// Handler validates, routes and answers webhook deliveries and manual triggers.
type Handler struct {
	logger        *slog.Logger
	workflow      Workflow
	webhookSecret *validation.WebhookSecret
	archiver      processor.Archiver
	archiveBucket string
	reporter      processor.RateLimitReporter

	preProcessors  []processor.Processor
	postProcessors []processor.Processor
}

// NewHandler creates a Handler dispatching to the given workflow.
func NewHandler(workflow Workflow, opts ...Option) *Handler {
	_inst := &Handler{workflow: workflow}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}

	_inst.preProcessors = []processor.Processor{
		processor.NewAuthValidatorProcessor(_inst.webhookSecret),
	}
	if _inst.archiver != nil {
		_inst.postProcessors = append(_inst.postProcessors, processor.NewS3UploaderPostProcessor(_inst.archiver, _inst.archiveBucket))
	}
	if _inst.reporter != nil {
		_inst.postProcessors = append(_inst.postProcessors, processor.NewRateLimitsPostProcessor(_inst.reporter))
	}
	return _inst
}

// Webhook handles one webhook delivery: signature check, routing, then the post-processors.
// The workflow is detached from the caller's cancellation so a dropped connection never aborts it.
func (h *Handler) Webhook(ctx context.Context, req models.Request) models.Response {
	ctx = context.WithoutCancel(ctx)
	bus := &processor.Bus{
		Event: &models.WebhookEvent{
			Body:       req.Body,
			ReceivedAt: time.Now(),
		},
		Headers: helpers.LowerKeys(req.Headers),
	}

	if err := processor.Process(ctx, h.logger, bus, h.preProcessors...); err != nil {
		return h.errorResponse(err, bus.Event.Type)
	}
	logger := h.logger.With(slog.String("event", bus.Event.Type), slog.String("deliveryID", bus.Event.DeliveryID))
	logger.Info("processing webhook...")

	result, err := h.Route(ctx, bus.Event)
	if err != nil {
		logger.Error("webhook processing failed", slog.Any("error", err))
		bus.Response = h.errorResponse(err, bus.Event.Type)
	} else {
		bus.Response = models.Response{
			StatusCode: http.StatusOK,
			Body: WebhookResponse{
				Success:   true,
				Event:     bus.Event.Type,
				Result:    result,
				Timestamp: helpers.Timestamp(),
			},
		}
	}

	if err = processor.Process(ctx, logger, bus, h.postProcessors...); err != nil {
		logger.Warn("post-processing failed", slog.Any("error", err))
	}
	return bus.Response
}

// Route dispatches a verified delivery to exactly one handler by its event type.
// Unknown types are acknowledged as ignored; handler failures and panics are returned as errors.
func (h *Handler) Route(ctx context.Context, e *models.WebhookEvent) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("recovered from panic while routing", slog.String("event", e.Type), slog.Any("panic", r))
			result, err = nil, fmt.Errorf("panic while handling %s event: %v", e.Type, r)
		}
	}()

	eventType := event.Type(e.Type)
	switch {
	case eventType == event.Ping:
		return PingResult{Pong: true}, nil
	case !event.IsHandled(eventType):
		h.logger.Debug("ignoring unhandled event type", slog.String("event", e.Type))
		return IgnoredResult{Ignored: true, Event: e.Type}, nil
	}

	payload, err := github.ParseWebHook(e.Type, e.Body)
	if err != nil {
		return nil, &models.ValidationError{Message: "invalid " + e.Type + " payload", Cause: err}
	}
	e.Payload = payload

	switch p := payload.(type) {
	case *github.IssuesEvent:
		return h.workflow.HandleIssueEvent(ctx, p)
	case *github.IssueCommentEvent:
		return h.workflow.HandleIssueComment(ctx, p)
	default:
		return nil, errors.Errorf("unexpected payload type %T for %s event", payload, e.Type)
	}
}

// Trigger runs the processor for the given issue, bypassing trigger evaluation.
func (h *Handler) Trigger(ctx context.Context, rawIssueNumber string) models.Response {
	ctx = context.WithoutCancel(ctx)
	issueNumber, err := parseIssueNumber(rawIssueNumber)
	if err != nil {
		h.logger.Debug("rejecting manual trigger", slog.String("issueNumber", rawIssueNumber), slog.Any("error", err))
		return models.Response{
			StatusCode: http.StatusBadRequest,
			Body:       ErrorResponse{Error: "Invalid issue number"},
		}
	}

	result, err := h.workflow.Trigger(ctx, issueNumber)
	if err != nil {
		h.logger.Error("manual trigger failed", slog.Int("issue", issueNumber), slog.Any("error", err))
		return models.Response{
			StatusCode: http.StatusInternalServerError,
			Body: TriggerResponse{
				Error:       err.Error(),
				IssueNumber: issueNumber,
				Timestamp:   helpers.Timestamp(),
			},
		}
	}
	return models.Response{
		StatusCode: http.StatusOK,
		Body: TriggerResponse{
			Success:     true,
			IssueNumber: issueNumber,
			Result:      result,
			Timestamp:   helpers.Timestamp(),
		},
	}
}

// Health reports liveness. It never consults any other component.
func (h *Handler) Health() models.Response {
	return models.Response{
		StatusCode: http.StatusOK,
		Body:       HealthResponse{Status: "healthy", Timestamp: helpers.Timestamp()},
	}
}

// errorResponse picks the status code and body from the error kind.
func (h *Handler) errorResponse(err error, eventType string) models.Response {
	var (
		authErr       *models.AuthenticationError
		validationErr *models.ValidationError
	)
	switch {
	case errors.As(err, &authErr):
		return models.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       ErrorResponse{Error: authErr.Reason},
		}
	case errors.As(err, &validationErr):
		return models.Response{
			StatusCode: http.StatusBadRequest,
			Body:       WebhookResponse{Error: err.Error(), Event: eventType, Timestamp: helpers.Timestamp()},
		}
	default:
		return models.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       WebhookResponse{Error: err.Error(), Event: eventType, Timestamp: helpers.Timestamp()},
		}
	}
}

func parseIssueNumber(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &models.ValidationError{Message: "issue number is not numeric", Cause: err}
	}
	if n <= 0 {
		return 0, models.NewValidationError("issue number must be positive, got %d", n)
	}
	return n, nil
}
