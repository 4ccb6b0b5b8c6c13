// Package event provides the webhook event types the application understands.
package event

// Type represents the type of event that triggered the webhook, as sent in the X-GitHub-Event header.
type Type string

const (
	// Issues represents an issues event type.
	Issues Type = "issues"
	// IssueComment represents an issue comment event type.
	IssueComment Type = "issue_comment"
	// Ping represents the event GitHub sends when a webhook is first configured.
	Ping Type = "ping"
)

// IsHandled reports whether events of this type drive a workflow.
func IsHandled(t Type) bool {
	return t == Issues || t == IssueComment
}
