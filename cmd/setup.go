package cmd

import (
	"context"

	"github.com/isometry/gh-autoflow-app/internal/automation"
	"github.com/isometry/gh-autoflow-app/internal/config"
	awsctl "github.com/isometry/gh-autoflow-app/internal/controllers/aws"
	ghctl "github.com/isometry/gh-autoflow-app/internal/controllers/github"
	"github.com/isometry/gh-autoflow-app/internal/handler"
	"github.com/isometry/gh-autoflow-app/internal/runtime"
	"github.com/isometry/gh-autoflow-app/internal/validation"
	"github.com/pkg/errors"
)

// setup assembles the component graph from the configuration:
// controllers -> state manager -> processor -> workflow -> handler -> runtime.
func setup(ctx context.Context) (*runtime.Runtime, error) {
	owner, repository, err := cfg.GitHub.OwnerRepo()
	if err != nil {
		return nil, err
	}

	var aws *awsctl.Controller
	if cfg.GitHub.AuthMode == config.AuthModeSSM || cfg.Archive.S3.Enabled {
		logger.Debug("creating AWS controller...")
		if aws, err = awsctl.NewController(ctx, awsctl.WithLogger(logger.With("controller", "aws"))); err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
	}

	logger.Debug("creating GitHub controller...")
	ghOpts := []ghctl.GHOption{
		ghctl.WithAuthMode(cfg.GitHub.AuthMode),
		ghctl.WithToken(cfg.GitHub.Token),
		ghctl.WithAppCredentials(cfg.GitHub.AppID, cfg.GitHub.AppPrivateKey, cfg.GitHub.AppInstallationID),
		ghctl.WithSSMKey(cfg.GitHub.SSMKey),
		ghctl.WithWebhookSecret(validation.NewWebhookSecret(cfg.GitHub.WebhookSecret)),
		ghctl.WithRepository(owner, repository),
		ghctl.WithAPIURL(cfg.GitHub.APIURL),
		ghctl.WithFetchRateLimits(cfg.GitHub.FetchRateLimits),
		ghctl.WithLogger(logger),
	}
	if aws != nil {
		ghOpts = append(ghOpts, ghctl.WithSecretGetter(aws))
	}
	gh, err := ghctl.NewController(ctx, ghOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GitHub controller")
	}

	state := automation.NewStateManager(gh, automation.WithStateLogger(logger.With("component", "state")))
	processor := automation.NewSimulatedProcessor(state,
		automation.WithProcessingDelay(cfg.Automation.ProcessingDelay),
		automation.WithProcessorLogger(logger.With("component", "processor")))
	workflow := automation.NewWorkflow(state, processor,
		automation.WithWorkflowLogger(logger.With("component", "workflow")))

	hdlOpts := []handler.Option{
		handler.WithLogger(logger.With("component", "handler")),
		handler.WithWebhookSecret(gh.WebhookSecret()),
		handler.WithRateLimitReporter(gh),
	}
	if cfg.Archive.S3.Enabled {
		hdlOpts = append(hdlOpts, handler.WithArchive(aws, cfg.Archive.S3.BucketName))
	}
	if !gh.WebhookSecret().Enabled() {
		logger.Warn("no webhook secret configured: signatures will not be verified")
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(handler.NewHandler(workflow, hdlOpts...),
		runtime.WithLogger(logger.With("component", "runtime")),
		runtime.WithBodyLimit(cfg.Service.BodyLimit),
		runtime.WithLambdaPayloadType(cfg.Lambda.PayloadType)), nil
}
