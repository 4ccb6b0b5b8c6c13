package automation

import (
	"slices"
	"strings"
)

var (
	// AutoTriggerLabels opt an issue into automatic processing.
	AutoTriggerLabels = []string{"claude-flow:auto", "auto-implement"}
	// TriggerCommands are matched against new comments, in priority order.
	TriggerCommands = []string{"/claude-flow", "/autofix", "/implement", "/merge-me"}
	// autoTriggerActions are the issue actions that may start processing.
	autoTriggerActions = []string{"opened", "labeled"}
)

// ShouldAutoTrigger decides whether an issue event starts processing.
// The issue must carry an opt-in label and must be neither in progress nor failed.
func ShouldAutoTrigger(action string, labels []string) bool {
	if !slices.Contains(autoTriggerActions, action) {
		return false
	}
	hasAutoLabel := slices.ContainsFunc(labels, func(l string) bool {
		return slices.Contains(AutoTriggerLabels, l)
	})
	if !hasAutoLabel {
		return false
	}
	switch StateFromLabels(labels) {
	case StateProcessing, StateFailed:
		return false
	default:
		return true
	}
}

// CommentTrigger is the outcome of evaluating an issue comment.
type CommentTrigger struct {
	// Considered is false for anything but newly created comments.
	Considered bool
	// Command is the matched trigger command, empty if none matched.
	Command string
}

// Triggered reports whether the comment requested processing.
func (c CommentTrigger) Triggered() bool {
	return c.Considered && c.Command != ""
}

// EvaluateComment scans a comment body for the first trigger command it contains.
func EvaluateComment(action, body string) CommentTrigger {
	if action != "created" {
		return CommentTrigger{}
	}
	normalised := strings.ToLower(strings.TrimSpace(body))
	for _, cmd := range TriggerCommands {
		if strings.Contains(normalised, cmd) {
			return CommentTrigger{Considered: true, Command: cmd}
		}
	}
	return CommentTrigger{Considered: true}
}
