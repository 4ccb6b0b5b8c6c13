// Package github provides a Controller for GitHub operations and credentials management.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-autoflow-app/internal/automation"
	"github.com/isometry/gh-autoflow-app/internal/helpers"
	"github.com/isometry/gh-autoflow-app/internal/validation"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// SecretGetter retrieves secrets from a remote store.
type SecretGetter interface {
	GetSecret(ctx context.Context, key string, encrypted bool) (*string, error)
}

// GHOption is a functional option used to configure or modify the properties of a Controller instance.
type GHOption func(*Controller)

// Controller encapsulates GitHub operations against a single repository and the management of its credentials.
type Controller struct {
	Credentials

	authMode        string
	ssmKey          string
	owner           string
	repository      string
	apiURL          string
	fetchRateLimits bool
	transport       http.RoundTripper
	logger          *slog.Logger
	secrets         SecretGetter

	client       *github.Client
	rateLimitLog *rate.Sometimes
}

// Credentials is a helper struct to hold the GitHub credentials.
// It doubles as the JSON layout of the credential bundle stored in SSM.
type Credentials struct {
	AppID          int64                     `json:"app_id,omitempty"`
	PrivateKey     string                    `json:"private_key,omitempty"`
	InstallationID int64                     `json:"installation_id,omitempty"`
	WebhookSecret  *validation.WebhookSecret `json:"webhook_secret,omitempty"`
	Token          string                    `json:"token,omitempty"`
}

// NewController initializes a Controller with the provided options, retrieves its credentials
// and spawns the API client. The client lives as long as the Controller.
func NewController(ctx context.Context, opts ...GHOption) (*Controller, error) {
	_inst := new(Controller)
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.transport == nil {
		_inst.transport = http.DefaultTransport
	}
	_inst.authMode = strings.TrimSpace(strings.ToLower(_inst.authMode))
	_inst.logger = _inst.logger.With("controller", "github", "authMode", _inst.authMode)
	_inst.rateLimitLog = helpers.NewOnceAMinute()

	if _inst.owner == "" || _inst.repository == "" {
		return nil, errors.New("missing repository coordinates")
	}
	if err := _inst.RetrieveCredentials(ctx); err != nil {
		return nil, err
	}
	client, err := _inst.newClient()
	if err != nil {
		return nil, err
	}
	_inst.client = client
	return _inst, nil
}

// RetrieveCredentials validates the configured credentials or fetches them from SSM.
func (g *Controller) RetrieveCredentials(ctx context.Context) error {
	switch g.authMode {
	case "token":
		if g.Token == "" {
			return errors.New("missing [GITHUB_TOKEN]")
		}
	case "app":
		if err := g.Credentials.validateApp(); err != nil {
			return err
		}
	case "ssm":
		if g.secrets == nil {
			return errors.New("ssm auth mode requires an AWS controller")
		}
		g.logger.Debug("retrieving credentials from SSM...", slog.String("key", g.ssmKey))
		secret, err := g.secrets.GetSecret(ctx, g.ssmKey, true)
		if err != nil {
			return errors.Wrap(err, "failed to fetch credentials from SSM")
		}
		if secret == nil {
			return errors.Errorf("SSM parameter %s has no value", g.ssmKey)
		}
		var fetched Credentials
		if err = json.Unmarshal([]byte(*secret), &fetched); err != nil {
			return errors.Wrap(err, "failed to unmarshal credentials")
		}
		g.Credentials.merge(fetched)
		if g.Token == "" {
			if err = g.Credentials.validateApp(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported auth mode: %s", g.authMode)
	}
	return nil
}

func (c *Credentials) validateApp() error {
	if c.AppID == 0 || c.PrivateKey == "" || c.InstallationID == 0 {
		return errors.New("missing GitHub App credentials: app id, private key and installation id are required")
	}
	return nil
}

// merge overlays the non-empty fields of o onto c.
func (c *Credentials) merge(o Credentials) {
	if o.AppID != 0 {
		c.AppID = o.AppID
	}
	if o.PrivateKey != "" {
		c.PrivateKey = o.PrivateKey
	}
	if o.InstallationID != 0 {
		c.InstallationID = o.InstallationID
	}
	if o.WebhookSecret.Enabled() {
		c.WebhookSecret = o.WebhookSecret
	}
	if o.Token != "" {
		c.Token = o.Token
	}
}

// newClient spawns the REST client: credentials on top of request logging, with rate-limit waiting outermost.
func (g *Controller) newClient() (*github.Client, error) {
	roundTripper := &loggingRoundTripper{logger: g.logger, next: g.transport}

	var authenticated http.RoundTripper
	if g.Token != "" {
		g.logger.Debug("[GITHUB_TOKEN] detected. Spawning client using PAT...")
		authenticated = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: g.Token}),
			Base:   roundTripper,
		}
	} else {
		g.logger.Debug("spawning client using GitHub App credentials...", slog.Int64("appId", g.AppID), slog.Int64("installationId", g.InstallationID))
		transport, err := ghinstallation.New(roundTripper, g.AppID, g.InstallationID, []byte(g.PrivateKey))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create installation transport")
		}
		if g.apiURL != "" {
			transport.BaseURL = strings.TrimSuffix(g.apiURL, "/")
		}
		authenticated = transport
	}

	client := github.NewClient(github_ratelimit.NewClient(authenticated))
	if g.apiURL != "" {
		var err error
		if client, err = client.WithEnterpriseURLs(g.apiURL, g.apiURL); err != nil {
			return nil, errors.Wrapf(err, "invalid GitHub API URL %s", g.apiURL)
		}
	}
	return client, nil
}

// WebhookSecret returns the secret webhook signatures are validated against, if any.
func (g *Controller) WebhookSecret() *validation.WebhookSecret {
	return g.Credentials.WebhookSecret
}

// Repository returns the owner/name coordinates of the managed repository.
func (g *Controller) Repository() string {
	return g.owner + "/" + g.repository
}

// AddLabels adds labels to an issue.
func (g *Controller) AddLabels(ctx context.Context, issueNumber int, labels ...string) error {
	_, resp, err := g.client.Issues.AddLabelsToIssue(ctx, g.owner, g.repository, issueNumber, labels)
	return apiError("add labels", resp, err)
}

// RemoveLabel removes a label from an issue.
func (g *Controller) RemoveLabel(ctx context.Context, issueNumber int, label string) error {
	resp, err := g.client.Issues.RemoveLabelForIssue(ctx, g.owner, g.repository, issueNumber, label)
	return apiError("remove label", resp, err)
}

// CreateLabel creates a label in the repository.
func (g *Controller) CreateLabel(ctx context.Context, name, color, description string) error {
	_, resp, err := g.client.Issues.CreateLabel(ctx, g.owner, g.repository, &github.Label{
		Name:        github.Ptr(name),
		Color:       github.Ptr(color),
		Description: github.Ptr(description),
	})
	return apiError("create label", resp, err)
}

// CreateComment posts a comment to an issue.
func (g *Controller) CreateComment(ctx context.Context, issueNumber int, body string) error {
	_, resp, err := g.client.Issues.CreateComment(ctx, g.owner, g.repository, issueNumber, &github.IssueComment{
		Body: github.Ptr(body),
	})
	return apiError("create comment", resp, err)
}

// CreateCommentReaction attaches a reaction to an issue comment.
func (g *Controller) CreateCommentReaction(ctx context.Context, commentID int64, content string) error {
	_, resp, err := g.client.Reactions.CreateIssueCommentReaction(ctx, g.owner, g.repository, commentID, content)
	return apiError("create reaction", resp, err)
}

// RateLimits fetches the current core API quota.
func (g *Controller) RateLimits(ctx context.Context) (*github.Rate, error) {
	limits, resp, err := g.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, apiError("get rate limits", resp, err)
	}
	return limits.GetCore(), nil
}

// LogRateLimits logs the remaining API quota, at most once a minute and only when enabled.
func (g *Controller) LogRateLimits(ctx context.Context) {
	if !g.fetchRateLimits {
		return
	}
	g.rateLimitLog.Do(func() {
		core, err := g.RateLimits(ctx)
		if err != nil {
			g.logger.Warn("failed to fetch rate limits", slog.Any("error", err))
			return
		}
		if core == nil {
			return
		}
		g.logger.Info("rate limits",
			slog.Int("limit", core.Limit),
			slog.Int("remaining", core.Remaining),
			slog.String("reset", core.Reset.UTC().Format(time.RFC3339)))
	})
}

// apiError converts a go-github failure into the tracker error shape, keeping the HTTP status when known.
func apiError(op string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	apiErr := &automation.RemoteAPIError{Op: op, Cause: err}
	var ghErr *github.ErrorResponse
	switch {
	case errors.As(err, &ghErr) && ghErr.Response != nil:
		apiErr.StatusCode = ghErr.Response.StatusCode
	case resp != nil && resp.Response != nil:
		apiErr.StatusCode = resp.StatusCode
	}
	return apiErr
}

var _ automation.Tracker = (*Controller)(nil)
