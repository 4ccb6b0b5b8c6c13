// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

const (
	// ModeService runs the application as a long-lived HTTP server.
	ModeService = "service"
	// ModeLambda runs the application behind AWS Lambda.
	ModeLambda = "lambda"
)

const (
	// AuthModeToken authenticates against GitHub with a static token.
	AuthModeToken = "token"
	// AuthModeApp authenticates as a GitHub App installation.
	AuthModeApp = "app"
	// AuthModeSSM fetches the credential bundle from AWS SSM Parameter Store.
	AuthModeSSM = "ssm"
)

// Config holds the complete application configuration.
// It is assembled once at startup and handed to every component; nothing mutates it afterwards.
type Config struct {
	Global     Global     `yaml:"global,omitempty"`
	GitHub     GitHub     `yaml:"github,omitempty"`
	Automation Automation `yaml:"automation,omitempty"`
	Service    Service    `yaml:"service,omitempty"`
	Lambda     Lambda     `yaml:"lambda,omitempty"`
	Archive    Archive    `yaml:"archive,omitempty"`
}

// Global contains the runtime-wide settings.
type Global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// Level overrides Verbosity when set. Accepts slog level names.
		Level string `yaml:"level,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

// GitHub contains the credentials and coordinates used against the GitHub API.
type GitHub struct {
	AuthMode          string `yaml:"authMode,omitempty" default:"token"`
	Token             string `yaml:"token,omitempty"`
	AppID             int64  `yaml:"appId,omitempty"`
	AppPrivateKey     string `yaml:"appPrivateKey,omitempty"`
	AppInstallationID int64  `yaml:"appInstallationId,omitempty"`
	SSMKey            string `yaml:"ssmKey,omitempty"`
	WebhookSecret     string `yaml:"webhookSecret,omitempty"`
	// Repository is the target repository in the owner/name form.
	Repository string `yaml:"repository,omitempty"`
	// APIURL overrides the REST endpoint, e.g. for GitHub Enterprise Server.
	APIURL string `yaml:"apiUrl,omitempty"`
	// FetchRateLimits enables periodic logging of the remaining API quota.
	FetchRateLimits bool `yaml:"fetchRateLimits,omitempty"`
}

// Automation contains the settings of the issue processing pipeline.
type Automation struct {
	// ProcessingDelay is the simulated duration of a processing run.
	ProcessingDelay time.Duration `yaml:"processingDelay,omitempty" default:"2s"`
}

// Service contains the settings of the standalone HTTP server.
type Service struct {
	Addr string `yaml:"addr,omitempty"`
	Port string `yaml:"port,omitempty" default:"3001"`
	// BodyLimit is the maximum accepted webhook payload size in bytes.
	BodyLimit int64 `yaml:"bodyLimit,omitempty" default:"5242880"`
	// Timeout bounds reads of the request. Writes are not bounded since workflows run to completion.
	Timeout time.Duration `yaml:"timeout,omitempty" default:"10s"`
}

// Lambda contains the settings of the lambda runtime.
type Lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// Archive contains the settings of the optional webhook payload archive.
type Archive struct {
	S3 struct {
		Enabled    bool   `yaml:"enabled,omitempty"`
		BucketName string `yaml:"bucketName,omitempty"`
	} `yaml:"s3,omitempty"`
}

// SetDefaults sets the default values for the configuration.
func (c *Config) SetDefaults() error {
	return defaults.Set(c)
}

// LoadFromFile loads the configuration from a file.
// A missing file is not an error: flags and environment variables remain the primary source.
func (c *Config) LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "failed to read configuration file %s", path)
	}
	var loaded Config
	if err = yaml.Unmarshal(content, &loaded); err != nil {
		return errors.Wrapf(err, "failed to unmarshal configuration file %s", path)
	}
	*c = loaded
	return nil
}

// Validate checks the configuration for settings the application cannot run without.
func (c *Config) Validate() error {
	switch c.Global.Mode {
	case ModeService, ModeLambda:
	default:
		return fmt.Errorf("invalid mode: %s", c.Global.Mode)
	}
	if _, _, err := c.GitHub.OwnerRepo(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.GitHub.AuthMode)) {
	case AuthModeToken, AuthModeApp, AuthModeSSM:
	default:
		return fmt.Errorf("unsupported auth mode: %s", c.GitHub.AuthMode)
	}
	if c.Service.BodyLimit <= 0 {
		return fmt.Errorf("invalid body limit: %d", c.Service.BodyLimit)
	}
	if c.Automation.ProcessingDelay < 0 {
		return fmt.Errorf("invalid processing delay: %s", c.Automation.ProcessingDelay)
	}
	if c.Archive.S3.Enabled && c.Archive.S3.BucketName == "" {
		return errors.New("archive upload is enabled but no bucket is configured")
	}
	return nil
}

// OwnerRepo splits the configured repository into its owner and name.
func (g GitHub) OwnerRepo() (owner, repo string, err error) {
	owner, repo, found := strings.Cut(strings.TrimSpace(g.Repository), "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", g.Repository)
	}
	return owner, repo, nil
}

// LogLevel resolves the effective slog level. An explicit Level wins over Verbosity.
func (g Global) LogLevel() slog.Level {
	if g.Logging.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(g.Logging.Level)); err == nil {
			return lvl
		}
	}
	return slog.LevelWarn - slog.Level(g.Logging.Verbosity*4)
}
