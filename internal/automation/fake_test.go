package automation_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/isometry/gh-autoflow-app/internal/automation"
	"github.com/pkg/errors"
)

// fakeTracker records every call as "op:arg" and fails operations listed in failures.
type fakeTracker struct {
	mu       sync.Mutex
	calls    []string
	comments map[int][]string
	failures map[string][]error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{comments: map[int][]string{}, failures: map[string][]error{}}
}

// fail queues errors returned by successive calls of the given op.
func (f *fakeTracker) fail(op string, errs ...error) {
	f.failures[op] = append(f.failures[op], errs...)
}

func (f *fakeTracker) record(op, arg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+":"+arg)
	if queued := f.failures[op]; len(queued) > 0 {
		f.failures[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func (f *fakeTracker) AddLabels(_ context.Context, _ int, labels ...string) error {
	return f.record("add-label", strings.Join(labels, ","))
}

func (f *fakeTracker) RemoveLabel(_ context.Context, _ int, label string) error {
	return f.record("remove-label", label)
}

func (f *fakeTracker) CreateLabel(_ context.Context, name, color, _ string) error {
	return f.record("create-label", name+"#"+color)
}

func (f *fakeTracker) CreateComment(_ context.Context, issueNumber int, body string) error {
	f.mu.Lock()
	f.comments[issueNumber] = append(f.comments[issueNumber], body)
	f.mu.Unlock()
	return f.record("comment", fmt.Sprint(issueNumber))
}

func (f *fakeTracker) CreateCommentReaction(_ context.Context, commentID int64, content string) error {
	return f.record("reaction", fmt.Sprintf("%d=%s", commentID, content))
}

func (f *fakeTracker) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func unprocessable(op string) error {
	return &automation.RemoteAPIError{Op: op, StatusCode: http.StatusUnprocessableEntity, Cause: errors.New("Validation Failed")}
}

func serverError(op string) error {
	return &automation.RemoteAPIError{Op: op, StatusCode: http.StatusInternalServerError, Cause: errors.New("boom")}
}

// fakeProcessor returns err (if any) and counts invocations.
type fakeProcessor struct {
	mu     sync.Mutex
	issues []int
	err    error
}

func (p *fakeProcessor) Process(_ context.Context, issueNumber int) (*automation.ProcessResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issues = append(p.issues, issueNumber)
	if p.err != nil {
		return nil, p.err
	}
	return &automation.ProcessResult{Success: true, Processed: true}, nil
}
