// Package cmd provides the entrypoint for the gh-autoflow-app cli.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/isometry/gh-autoflow-app/internal/config"
	"github.com/isometry/gh-autoflow-app/internal/helpers"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigFile = "config.yaml"

var (
	cfg    config.Config
	logger *slog.Logger
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
}

// New returns the root command for the gh-autoflow-app.
func New() *cobra.Command {
	return newRoot(os.Args[1:])
}

func newRoot(args []string) *cobra.Command {
	// A missing .env is the normal case outside of local development.
	_ = godotenv.Load()

	cmd := &cobra.Command{
		Use:          "gh-autoflow-app",
		Short:        "GitHub webhook receiver driving label-tracked issue automation",
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			// Subcommands are named after the mode they run.
			switch c.Name() {
			case config.ModeService, config.ModeLambda:
				cfg.Global.Mode = c.Name()
			}
			cfg.Global.Mode = strings.TrimSpace(cfg.Global.Mode)
			cfg.GitHub.AuthMode = strings.ToLower(strings.TrimSpace(cfg.GitHub.AuthMode))
			logger = helpers.NewJSONLogger(cfg.Global.LogLevel(), cfg.Global.Logging.CallerTrace).
				With("mode", cfg.Global.Mode)
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch cfg.Global.Mode {
			case config.ModeService:
				return runService(cmd)
			case config.ModeLambda:
				return runLambda(cmd)
			default:
				return fmt.Errorf("invalid mode: %s", cfg.Global.Mode)
			}
		},
	}

	// Configuration loading & defaults, before flags so that file values become flag defaults
	configFilePath := configPathFromArgs(args)
	cmd.PersistentFlags().StringP("config", "c", configFilePath, "[CONFIG_FILE] path to the configuration file")
	if err := errors.Join(
		cfg.LoadFromFile(configFilePath),
		cfg.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)
	cmd.SetArgs(args)

	return cmd
}

// configPathFromArgs resolves the configuration file ahead of the full flag parse.
// The --config flag wins over CONFIG_FILE.
func configPathFromArgs(args []string) string {
	path := defaultConfigFile
	if env, found := os.LookupEnv("CONFIG_FILE"); found && env != "" {
		path = env
	}
	for i, arg := range args {
		switch {
		case arg == "--":
			return path
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				path = args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-c="):
			path = strings.TrimPrefix(arg, "-c=")
		}
	}
	return path
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapInt64)
	bindEnvMap(cmd, envMapDuration)
	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapInt64)
	bindEnvMap(cmd, svcEnvMapDuration)
	bindEnvMap(cmd, lambdaEnvMapString)
}
