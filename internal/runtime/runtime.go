// Package runtime exposes the handler over HTTP, either as a standalone server or behind AWS Lambda.
package runtime

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/isometry/gh-autoflow-app/internal/handler"
	"github.com/isometry/gh-autoflow-app/internal/helpers"
	"github.com/isometry/gh-autoflow-app/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	slogecho "github.com/samber/slog-echo"
)

const (
	// PathWebhook receives GitHub webhook deliveries.
	PathWebhook = "/webhook"
	// PathHealth answers liveness probes.
	PathHealth = "/health"
	// PathTrigger runs the processor for an issue on demand.
	PathTrigger = "/trigger/:issueNumber"
)

// Option is a functional option for the Runtime.
type Option func(*Runtime)

// WithLogger sets the logger of the Runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithBodyLimit caps the size of webhook payloads in bytes.
func WithBodyLimit(limit int64) Option {
	return func(r *Runtime) {
		r.bodyLimit = limit
	}
}

// WithLambdaPayloadType sets the event shape expected by HandleEvent.
func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.lambdaPayloadType = payloadType
	}
}

// Runtime routes HTTP requests to the handler.
type Runtime struct {
	*handler.Handler
	echo              *echo.Echo
	logger            *slog.Logger
	bodyLimit         int64
	lambdaPayloadType string
}

// NewRuntime creates a new runtime instance with its routes registered.
func NewRuntime(hdl *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{Handler: hdl, bodyLimit: 5 << 20}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(slogecho.New(_inst.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.POST(PathWebhook, _inst.handleWebhook, middleware.BodyLimit(strconv.FormatInt(_inst.bodyLimit, 10)+"B"))
	e.GET(PathHealth, _inst.handleHealth)
	e.POST(PathTrigger, _inst.handleTrigger)
	_inst.echo = e
	return _inst
}

// ServeHTTP is the HTTP handler for the runtime.
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.echo.ServeHTTP(resp, req)
}

// Start serves HTTP on addr until Shutdown is called. Reads are bounded by timeout; writes are not,
// since a webhook response is only written once its workflow has completed.
func (r *Runtime) Start(addr string, timeout time.Duration) error {
	r.echo.Server.ReadTimeout = timeout
	r.echo.Server.ReadHeaderTimeout = timeout
	r.echo.Server.IdleTimeout = timeout
	r.logger.Info("serving...", slog.String("address", addr), slog.String("timeout", timeout.String()))
	err := r.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}

func (r *Runtime) handleWebhook(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		r.logger.Error("failed to read request body", slog.Any("error", err))
		return c.JSON(http.StatusBadRequest, handler.ErrorResponse{Error: "failed to read request body"})
	}
	return respond(c, r.Webhook(req.Context(), models.Request{
		Body:    body,
		Headers: helpers.NormaliseHeaders(req.Header),
	}))
}

func (r *Runtime) handleHealth(c echo.Context) error {
	return respond(c, r.Health())
}

func (r *Runtime) handleTrigger(c echo.Context) error {
	return respond(c, r.Trigger(c.Request().Context(), c.Param("issueNumber")))
}

func respond(c echo.Context, resp models.Response) error {
	return c.JSON(resp.StatusCode, resp.Body)
}
