package automation_test

import (
	"context"
	"testing"

	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-autoflow-app/internal/automation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuesEvent(action string, number int, labels ...string) *github.IssuesEvent {
	issue := &github.Issue{Number: github.Ptr(number), Title: github.Ptr("Add dark mode")}
	for _, l := range labels {
		issue.Labels = append(issue.Labels, &github.Label{Name: github.Ptr(l)})
	}
	return &github.IssuesEvent{Action: github.Ptr(action), Issue: issue}
}

func commentEvent(action string, number int, commentID int64, body string) *github.IssueCommentEvent {
	return &github.IssueCommentEvent{
		Action:  github.Ptr(action),
		Issue:   &github.Issue{Number: github.Ptr(number)},
		Comment: &github.IssueComment{ID: github.Ptr(commentID), Body: github.Ptr(body)},
	}
}

func newWorkflow(tracker *fakeTracker, processor automation.Processor) *automation.Workflow {
	return automation.NewWorkflow(automation.NewStateManager(tracker), processor)
}

func TestWorkflow_HandleIssueEvent(t *testing.T) {
	testCases := []struct {
		Name          string
		Event         *github.IssuesEvent
		ProcessorErr  error
		Expected      *automation.IssueResult
		ExpectedCalls []string
		ExpectError   bool
	}{
		{
			Name:  "auto_triggered_success",
			Event: issuesEvent("opened", 42, "claude-flow:auto"),
			Expected: &automation.IssueResult{
				Triggered:   true,
				IssueNumber: 42,
				Result:      github.Ptr(true),
			},
			ExpectedCalls: []string{
				"add-label:claude-flow:processing",
				"remove-label:claude-flow:processing",
				"add-label:claude-flow:implemented",
			},
		},
		{
			Name:         "auto_triggered_failure",
			Event:        issuesEvent("labeled", 42, "auto-implement"),
			ProcessorErr: errors.New("simulated failure"),
			ExpectedCalls: []string{
				"add-label:claude-flow:processing",
				"remove-label:claude-flow:processing",
				"add-label:claude-flow:failed",
			},
			ExpectError: true,
		},
		{
			Name:  "not_triggered",
			Event: issuesEvent("opened", 5, "bug"),
			Expected: &automation.IssueResult{
				Triggered:   false,
				IssueNumber: 5,
				Reason:      "Auto-trigger conditions not met",
			},
		},
		{
			Name:  "already_processing",
			Event: issuesEvent("labeled", 5, "claude-flow:auto", "claude-flow:processing"),
			Expected: &automation.IssueResult{
				Triggered:   false,
				IssueNumber: 5,
				Reason:      "Auto-trigger conditions not met",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			tracker := newFakeTracker()
			processor := &fakeProcessor{err: tc.ProcessorErr}

			result, err := newWorkflow(tracker, processor).HandleIssueEvent(context.Background(), tc.Event)
			if tc.ExpectError {
				var pErr *automation.ProcessingError
				require.ErrorAs(t, err, &pErr)
				assert.Equal(t, tc.Event.GetIssue().GetNumber(), pErr.IssueNumber)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.Expected, result)
			}
			if tc.ExpectedCalls == nil {
				assert.Empty(t, tracker.Calls())
				assert.Empty(t, processor.issues)
			} else {
				assert.Equal(t, tc.ExpectedCalls, tracker.Calls())
				assert.Equal(t, []int{tc.Event.GetIssue().GetNumber()}, processor.issues)
			}
		})
	}
}

func TestWorkflow_HandleIssueEvent_BookkeepingFailureDoesNotAbort(t *testing.T) {
	tracker := newFakeTracker()
	tracker.fail("add-label", serverError("add labels"))
	tracker.fail("remove-label", serverError("remove label"))
	processor := &fakeProcessor{}

	result, err := newWorkflow(tracker, processor).HandleIssueEvent(context.Background(), issuesEvent("opened", 8, "claude-flow:auto"))
	require.NoError(t, err)
	assert.True(t, result.Triggered)
	assert.Equal(t, []int{8}, processor.issues)
}

func TestWorkflow_HandleIssueComment(t *testing.T) {
	testCases := []struct {
		Name          string
		Event         *github.IssueCommentEvent
		ProcessorErr  error
		Expected      *automation.CommentResult
		ExpectedCalls []string
		ExpectError   bool
	}{
		{
			Name:  "command_success",
			Event: commentEvent("created", 42, 1001, "Please /autofix this now"),
			Expected: &automation.CommentResult{
				Triggered:   github.Ptr(true),
				IssueNumber: 42,
				Command:     "/autofix",
				Result:      github.Ptr(true),
			},
			ExpectedCalls: []string{"reaction:1001=+1", "reaction:1001=rocket"},
		},
		{
			Name:          "command_failure",
			Event:         commentEvent("created", 42, 1001, "/implement"),
			ProcessorErr:  errors.New("simulated failure"),
			ExpectedCalls: []string{"reaction:1001=+1", "reaction:1001=confused"},
			ExpectError:   true,
		},
		{
			Name:  "no_command",
			Event: commentEvent("created", 42, 1001, "thanks!"),
			Expected: &automation.CommentResult{
				Triggered:   github.Ptr(false),
				IssueNumber: 42,
				Reason:      "No trigger command found",
			},
		},
		{
			Name:     "edited_comment",
			Event:    commentEvent("edited", 42, 1001, "/autofix"),
			Expected: &automation.CommentResult{Ignored: true, Reason: "Not a new comment"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			tracker := newFakeTracker()
			processor := &fakeProcessor{err: tc.ProcessorErr}

			result, err := newWorkflow(tracker, processor).HandleIssueComment(context.Background(), tc.Event)
			if tc.ExpectError {
				var pErr *automation.ProcessingError
				require.ErrorAs(t, err, &pErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.Expected, result)
			}
			if tc.ExpectedCalls == nil {
				assert.Empty(t, tracker.Calls())
			} else {
				assert.Equal(t, tc.ExpectedCalls, tracker.Calls())
			}
		})
	}
}

func TestWorkflow_Trigger(t *testing.T) {
	tracker := newFakeTracker()
	processor := &fakeProcessor{}

	result, err := newWorkflow(tracker, processor).Trigger(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &automation.ProcessResult{Success: true, Processed: true}, result)
	assert.Equal(t, []int{7}, processor.issues)
	assert.Empty(t, tracker.Calls())
}

func TestWorkflow_Trigger_PreservesProcessingError(t *testing.T) {
	cause := &automation.ProcessingError{IssueNumber: 7, Cause: errors.New("boom")}
	processor := &fakeProcessor{err: cause}

	_, err := newWorkflow(newFakeTracker(), processor).Trigger(context.Background(), 7)
	assert.Same(t, cause, err)
}
