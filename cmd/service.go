package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isometry/gh-autoflow-app/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// shutdownGrace bounds how long in-flight workflows may run once a stop signal is received.
const shutdownGrace = 30 * time.Second

func cmdService() *cobra.Command {
	return &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		Short:   "Run the webhook receiver as a standalone HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd)
		},
	}
}

func runService(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("spawning...")
	rt, err := setup(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to setup service")
	}

	addr := net.JoinHostPort(cfg.Service.Addr, cfg.Service.Port)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- rt.Start(addr, cfg.Service.Timeout)
	}()

	base := baseURL(cfg.Service.Addr, cfg.Service.Port)
	logger.Info("webhook receiver started",
		slog.String("repository", cfg.GitHub.Repository),
		slog.String("webhook", base+runtime.PathWebhook),
		slog.String("health", base+runtime.PathHealth))

	select {
	case err = <-serveErr:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err = rt.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down gracefully")
	}
	return <-serveErr
}

func baseURL(addr, port string) string {
	if addr == "" {
		addr = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(addr, port))
}
