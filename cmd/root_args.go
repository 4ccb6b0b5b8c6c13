package cmd

import (
	"time"

	"github.com/isometry/gh-autoflow-app/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&cfg.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'service' and 'lambda'",
		Short:       helpers.Ptr("m"),
	},
	&cfg.Global.Logging.Level: {
		Name:        "log-level",
		Description: "The log level (debug, info, warn, error). Takes precedence over --verbosity",
		Env:         helpers.Ptr("LOG_LEVEL"),
	},
	&cfg.GitHub.AuthMode: {
		Name:        "github-auth-mode",
		Description: "Authentication credentials provider. Supported values are 'token', 'app' and 'ssm'.",
		Short:       helpers.Ptr("A"),
	},
	&cfg.GitHub.Token: {
		Name:        "github-token",
		Description: "The token used in 'token' auth mode",
		Env:         helpers.Ptr("GITHUB_TOKEN"),
		Hidden:      true,
	},
	&cfg.GitHub.AppPrivateKey: {
		Name:        "github-app-private-key",
		Description: "The PEM encoded private key of the GitHub App used in 'app' auth mode",
		Hidden:      true,
	},
	&cfg.GitHub.SSMKey: {
		Name:        "github-app-ssm-arn",
		Description: "The SSM parameter key to use when fetching GitHub credentials",
	},
	&cfg.GitHub.WebhookSecret: {
		Name:        "github-webhook-secret",
		Description: "The secret to use when validating incoming GitHub webhook payloads. If not specified, no validation is performed",
		Hidden:      true,
	},
	&cfg.GitHub.Repository: {
		Name:        "github-repository",
		Description: "The repository to act on, in the owner/name form",
		Short:       helpers.Ptr("r"),
	},
	&cfg.GitHub.APIURL: {
		Name:        "github-api-url",
		Description: "The GitHub REST API URL, for GitHub Enterprise Server",
	},
	&cfg.Archive.S3.BucketName: {
		Name:        "archive-s3-bucket",
		Description: "The S3 bucket to use when archiving webhook payloads",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&cfg.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&cfg.GitHub.FetchRateLimits: {
		Name:        "github-fetch-rate-limits",
		Description: "Periodically log the remaining GitHub API quota",
	},
	&cfg.Archive.S3.Enabled: {
		Name:        "archive-s3",
		Description: "Enable S3 archiving of verified webhook payloads",
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&cfg.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapInt64 = map[*int64]boundEnvVar[int64]{
	&cfg.GitHub.AppID: {
		Name:        "github-app-id",
		Description: "The GitHub App ID used in 'app' auth mode",
	},
	&cfg.GitHub.AppInstallationID: {
		Name:        "github-app-installation-id",
		Description: "The GitHub App installation ID used in 'app' auth mode",
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&cfg.Automation.ProcessingDelay: {
		Name:        "automation-processing-delay",
		Description: "The simulated duration of an issue processing run",
		Env:         helpers.Ptr("PROCESSING_DELAY"),
	},
}
