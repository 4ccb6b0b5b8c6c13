// Package automation provides the issue automation core: trigger evaluation, label-encoded
// lifecycle tracking and the orchestration of processing runs.
package automation

import (
	"context"
	"log/slog"

	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-autoflow-app/internal/helpers"
	"github.com/pkg/errors"
)

// IssueResult is reported for issues events.
type IssueResult struct {
	Triggered   bool   `json:"triggered"`
	IssueNumber int    `json:"issueNumber"`
	Result      *bool  `json:"result,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// CommentResult is reported for issue_comment events.
type CommentResult struct {
	Ignored     bool   `json:"ignored,omitempty"`
	Triggered   *bool  `json:"triggered,omitempty"`
	IssueNumber int    `json:"issueNumber,omitempty"`
	Command     string `json:"command,omitempty"`
	Result      *bool  `json:"result,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Workflow orchestrates a processing run around the lifecycle bookkeeping.
type Workflow struct {
	state     *StateManager
	processor Processor
	logger    *slog.Logger
}

// WorkflowOption is a functional option for the Workflow.
type WorkflowOption func(*Workflow)

// WithWorkflowLogger sets the logger of the Workflow.
func WithWorkflowLogger(logger *slog.Logger) WorkflowOption {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// NewWorkflow creates a Workflow from its state manager and processor.
func NewWorkflow(state *StateManager, processor Processor, opts ...WorkflowOption) *Workflow {
	_inst := &Workflow{state: state, processor: processor}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// HandleIssueEvent runs the label-tracked workflow for an issues event.
// Processing failures move the issue to the failed state and are returned to the caller.
func (w *Workflow) HandleIssueEvent(ctx context.Context, e *github.IssuesEvent) (*IssueResult, error) {
	issue := e.GetIssue()
	if issue == nil {
		return nil, errors.New("issues event without issue")
	}
	issueNumber := issue.GetNumber()
	labels := labelNames(issue.Labels)
	logger := w.logger.With(slog.Int("issue", issueNumber), slog.String("action", e.GetAction()))
	logger.Info("processing issue event...", slog.String("title", issue.GetTitle()),
		slog.Any("labels", labels), slog.String("state", StateFromLabels(labels).String()))

	if !ShouldAutoTrigger(e.GetAction(), labels) {
		logger.Debug("auto-trigger conditions not met")
		return &IssueResult{
			Triggered:   false,
			IssueNumber: issueNumber,
			Reason:      "Auto-trigger conditions not met",
		}, nil
	}

	logger.Info("auto-triggering workflow...")
	w.state.AddLabel(ctx, issueNumber, StateProcessing.Label())

	if _, err := w.process(ctx, issueNumber); err != nil {
		logger.Error("workflow failed", slog.Any("error", err))
		w.transition(ctx, issueNumber, StateFailed)
		return nil, err
	}

	w.transition(ctx, issueNumber, StateImplemented)
	return &IssueResult{
		Triggered:   true,
		IssueNumber: issueNumber,
		Result:      github.Ptr(true),
	}, nil
}

// HandleIssueComment runs the reaction-tracked workflow for an issue_comment event.
func (w *Workflow) HandleIssueComment(ctx context.Context, e *github.IssueCommentEvent) (*CommentResult, error) {
	trigger := EvaluateComment(e.GetAction(), e.GetComment().GetBody())
	if !trigger.Considered {
		return &CommentResult{Ignored: true, Reason: "Not a new comment"}, nil
	}
	if e.GetIssue() == nil || e.GetComment() == nil {
		return nil, errors.New("issue_comment event without issue or comment")
	}

	issueNumber := e.GetIssue().GetNumber()
	commentID := e.GetComment().GetID()
	logger := w.logger.With(slog.Int("issue", issueNumber), slog.Int64("comment", commentID))

	if !trigger.Triggered() {
		logger.Debug("no trigger command found")
		return &CommentResult{
			Triggered:   github.Ptr(false),
			IssueNumber: issueNumber,
			Reason:      "No trigger command found",
		}, nil
	}

	logger.Info("manual trigger detected", slog.String("command", trigger.Command))
	w.state.AddReaction(ctx, commentID, ReactionPlusOne)

	if _, err := w.process(ctx, issueNumber); err != nil {
		logger.Error("workflow failed", slog.Any("error", err))
		w.state.AddReaction(ctx, commentID, ReactionConfused)
		return nil, err
	}

	w.state.AddReaction(ctx, commentID, ReactionRocket)
	return &CommentResult{
		Triggered:   github.Ptr(true),
		IssueNumber: issueNumber,
		Command:     trigger.Command,
		Result:      github.Ptr(true),
	}, nil
}

// Trigger runs the processor for an issue without evaluating any trigger rule or touching labels.
func (w *Workflow) Trigger(ctx context.Context, issueNumber int) (*ProcessResult, error) {
	w.logger.Info("manual trigger", slog.Int("issue", issueNumber))
	return w.process(ctx, issueNumber)
}

// process is the single path through which processor failures propagate.
func (w *Workflow) process(ctx context.Context, issueNumber int) (*ProcessResult, error) {
	result, err := w.processor.Process(ctx, issueNumber)
	if err != nil {
		var pErr *ProcessingError
		if !errors.As(err, &pErr) {
			err = &ProcessingError{IssueNumber: issueNumber, Cause: err}
		}
		return nil, err
	}
	return result, nil
}

// transition moves an in-flight issue to a terminal state.
func (w *Workflow) transition(ctx context.Context, issueNumber int, to State) {
	w.state.RemoveLabel(ctx, issueNumber, StateProcessing.Label())
	w.state.AddLabel(ctx, issueNumber, to.Label())
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}
