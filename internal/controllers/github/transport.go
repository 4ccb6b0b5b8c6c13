package github

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// levelTrace sits below debug so API traffic only shows up at the highest verbosity.
const levelTrace = slog.Level(-8)

type loggingRoundTripper struct {
	logger *slog.Logger
	next   http.RoundTripper
}

// RoundTrip logs the request and response.
func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if !l.logger.Enabled(ctx, levelTrace) {
		return l.next.RoundTrip(req)
	}

	var container any
	if req.Body != nil && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			var buf bytes.Buffer
			_, _ = io.Copy(&buf, body)
			_ = body.Close()
			_ = json.Unmarshal(buf.Bytes(), &container)
		}
	}
	l.logger.Log(ctx, levelTrace, "sending request", slog.String("method", req.Method), slog.String("url", req.URL.String()), slog.Any("body", container))
	resp, err := l.next.RoundTrip(req)
	if err != nil {
		l.logger.Log(ctx, levelTrace, "failed to send request", slog.Any("error", err))
		return nil, err
	}
	l.logger.Log(ctx, levelTrace, "received response", slog.String("status", resp.Status))
	return resp, nil
}
