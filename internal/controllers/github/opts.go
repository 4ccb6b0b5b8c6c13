package github

import (
	"log/slog"
	"net/http"

	"github.com/isometry/gh-autoflow-app/internal/validation"
)

// WithToken sets the GitHub authentication token for the Controller instance.
func WithToken(token string) GHOption {
	return func(a *Controller) {
		a.Token = token
	}
}

// WithAppCredentials sets the GitHub App identity used to mint installation tokens.
func WithAppCredentials(appID int64, privateKey string, installationID int64) GHOption {
	return func(a *Controller) {
		a.AppID = appID
		a.PrivateKey = privateKey
		a.InstallationID = installationID
	}
}

// WithAuthMode sets the authentication mode for a Controller instance using the given mode string.
func WithAuthMode(mode string) GHOption {
	return func(a *Controller) {
		a.authMode = mode
	}
}

// WithSecretGetter sets the store the ssm auth mode fetches its credential bundle from.
func WithSecretGetter(secrets SecretGetter) GHOption {
	return func(a *Controller) {
		a.secrets = secrets
	}
}

// WithSSMKey sets the SSM key used for fetching credentials and applies it to the Controller instance.
func WithSSMKey(key string) GHOption {
	return func(a *Controller) {
		a.ssmKey = key
	}
}

// WithRepository sets the owner and name of the repository the Controller operates on.
func WithRepository(owner, repository string) GHOption {
	return func(a *Controller) {
		a.owner = owner
		a.repository = repository
	}
}

// WithAPIURL points the Controller at a GitHub Enterprise Server API endpoint.
func WithAPIURL(url string) GHOption {
	return func(a *Controller) {
		a.apiURL = url
	}
}

// WithFetchRateLimits enables periodic logging of the remaining API quota.
func WithFetchRateLimits(enabled bool) GHOption {
	return func(a *Controller) {
		a.fetchRateLimits = enabled
	}
}

// WithTransport sets the base transport underneath authentication and logging.
func WithTransport(transport http.RoundTripper) GHOption {
	return func(a *Controller) {
		a.transport = transport
	}
}

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) GHOption {
	return func(a *Controller) {
		a.logger = logger
	}
}

// WithWebhookSecret configures a Controller instance to use the provided webhook secret for validating webhook signatures.
func WithWebhookSecret(secret *validation.WebhookSecret) GHOption {
	return func(a *Controller) {
		a.Credentials.WebhookSecret = secret
	}
}
