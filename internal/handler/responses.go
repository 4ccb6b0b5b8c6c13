package handler

// WebhookResponse is the envelope answered to webhook deliveries.
// Successful deliveries carry Result, failed ones carry Error.
type WebhookResponse struct {
	Success   bool   `json:"success"`
	Event     string `json:"event"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TriggerResponse is the envelope answered to manual triggers.
type TriggerResponse struct {
	Success     bool   `json:"success"`
	IssueNumber int    `json:"issueNumber"`
	Result      any    `json:"result,omitempty"`
	Error       string `json:"error,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// HealthResponse is the liveness answer.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is answered to requests rejected before any processing.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PingResult acknowledges the ping event.
type PingResult struct {
	Pong bool `json:"pong"`
}

// IgnoredResult is reported for event types without a workflow.
type IgnoredResult struct {
	Ignored bool   `json:"ignored"`
	Event   string `json:"event"`
}
