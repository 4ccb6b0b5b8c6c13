package models

import "time"

// WebhookEvent represents a single webhook delivery received from GitHub.
// It only lives for the duration of the request that carried it.
type WebhookEvent struct {
	Type       string    // Retrieved from X-GitHub-Event header
	DeliveryID string    // Retrieved from X-GitHub-Delivery header
	Body       []byte    // Raw payload, exactly as received
	Payload    any       // Parsed payload, set by the router
	ReceivedAt time.Time // Time when the event was received
}
