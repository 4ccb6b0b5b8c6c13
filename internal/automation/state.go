package automation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/isometry/gh-autoflow-app/internal/helpers"
	"github.com/pkg/errors"
)

const (
	// LabelProcessing marks an issue whose processing is in flight.
	LabelProcessing = "claude-flow:processing"
	// LabelImplemented marks an issue whose processing succeeded.
	LabelImplemented = "claude-flow:implemented"
	// LabelFailed marks an issue whose processing failed.
	LabelFailed = "claude-flow:failed"

	// DefaultLabelColor is used when a missing lifecycle label has to be created.
	DefaultLabelColor = "f29513"
)

// State is the processing lifecycle of an issue as encoded in its labels.
// none -> processing -> {implemented | failed}
type State int

const (
	StateNone State = iota
	StateProcessing
	StateImplemented
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateProcessing:
		return "processing"
	case StateImplemented:
		return "implemented"
	case StateFailed:
		return "failed"
	default:
		return "none"
	}
}

// Label returns the label encoding the state, or an empty string for StateNone.
func (s State) Label() string {
	switch s {
	case StateProcessing:
		return LabelProcessing
	case StateImplemented:
		return LabelImplemented
	case StateFailed:
		return LabelFailed
	default:
		return ""
	}
}

// StateFromLabels derives the lifecycle state from a label snapshot.
// The snapshot is advisory: concurrent events may leave more than one lifecycle label behind,
// in which case processing wins over failed, and failed over implemented.
func StateFromLabels(labels []string) State {
	switch {
	case slices.Contains(labels, LabelProcessing):
		return StateProcessing
	case slices.Contains(labels, LabelFailed):
		return StateFailed
	case slices.Contains(labels, LabelImplemented):
		return StateImplemented
	default:
		return StateNone
	}
}

// Reaction is the content of an emoji reaction on a comment.
type Reaction string

const (
	ReactionPlusOne  Reaction = "+1"
	ReactionRocket   Reaction = "rocket"
	ReactionConfused Reaction = "confused"
)

// Tracker is the remote issue tracker surface used by the StateManager.
// Implementations report HTTP failures as *RemoteAPIError.
type Tracker interface {
	AddLabels(ctx context.Context, issueNumber int, labels ...string) error
	RemoveLabel(ctx context.Context, issueNumber int, label string) error
	CreateLabel(ctx context.Context, name, color, description string) error
	CreateComment(ctx context.Context, issueNumber int, body string) error
	CreateCommentReaction(ctx context.Context, commentID int64, content string) error
}

// StateManager mutates labels, comments and reactions on a best-effort basis.
// None of its operations return errors: bookkeeping failures are logged and absorbed.
type StateManager struct {
	tracker Tracker
	logger  *slog.Logger
}

// StateOption is a functional option for the StateManager.
type StateOption func(*StateManager)

// WithStateLogger sets the logger of the StateManager.
func WithStateLogger(logger *slog.Logger) StateOption {
	return func(m *StateManager) {
		m.logger = logger
	}
}

// NewStateManager creates a StateManager on top of the given tracker.
func NewStateManager(tracker Tracker, opts ...StateOption) *StateManager {
	_inst := &StateManager{tracker: tracker}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// AddLabel adds a label to an issue. If the label does not exist yet it is created
// and the addition is retried exactly once.
func (m *StateManager) AddLabel(ctx context.Context, issueNumber int, label string) {
	logger := m.logger.With(slog.Int("issue", issueNumber), slog.String("label", label))
	logger.Debug("adding label...")

	err := m.tracker.AddLabels(ctx, issueNumber, label)
	if err == nil {
		logger.Info("label added")
		return
	}

	var apiErr *RemoteAPIError
	if !errors.As(err, &apiErr) || !apiErr.IsUnprocessable() {
		m.absorb(logger, "add label", err)
		return
	}

	logger.Warn("label rejected as unprocessable. creating it...", slog.Any("error", err))
	if cErr := m.tracker.CreateLabel(ctx, label, DefaultLabelColor, labelDescription(label)); cErr != nil {
		m.absorb(logger, "create label", cErr)
	} else {
		logger.Info("label created")
	}

	if rErr := m.tracker.AddLabels(ctx, issueNumber, label); rErr != nil {
		m.absorb(logger, "add label after creation", rErr)
		return
	}
	logger.Info("label added")
}

// RemoveLabel removes a label from an issue. An absent label is not an error worth surfacing.
func (m *StateManager) RemoveLabel(ctx context.Context, issueNumber int, label string) {
	logger := m.logger.With(slog.Int("issue", issueNumber), slog.String("label", label))
	logger.Debug("removing label...")
	if err := m.tracker.RemoveLabel(ctx, issueNumber, label); err != nil {
		m.absorb(logger, "remove label", err)
		return
	}
	logger.Info("label removed")
}

// AddComment posts a comment to an issue.
func (m *StateManager) AddComment(ctx context.Context, issueNumber int, body string) {
	logger := m.logger.With(slog.Int("issue", issueNumber))
	logger.Debug("adding comment...", slog.String("preview", helpers.Truncate(body, 64)))
	if err := m.tracker.CreateComment(ctx, issueNumber, body); err != nil {
		m.absorb(logger, "add comment", err)
		return
	}
	logger.Info("comment added")
}

// AddReaction attaches a reaction to an issue comment.
func (m *StateManager) AddReaction(ctx context.Context, commentID int64, reaction Reaction) {
	logger := m.logger.With(slog.Int64("comment", commentID), slog.String("reaction", string(reaction)))
	logger.Debug("adding reaction...")
	if err := m.tracker.CreateCommentReaction(ctx, commentID, string(reaction)); err != nil {
		m.absorb(logger, "add reaction", err)
		return
	}
	logger.Info("reaction added")
}

// absorb is the single sink for bookkeeping failures.
func (m *StateManager) absorb(logger *slog.Logger, op string, err error) {
	logger.Error(fmt.Sprintf("failed to %s", op), slog.Any("error", err))
}

func labelDescription(label string) string {
	return "Auto-generated label for Claude-Flow: " + label
}
