package cmd

import (
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run the webhook receiver behind AWS Lambda",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd)
		},
	}
}

func runLambda(cmd *cobra.Command) error {
	rt, err := setup(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.Info("lambda starting...", slog.String("payloadType", cfg.Lambda.PayloadType))
	lambda.StartWithOptions(rt.HandleEvent, lambda.WithContext(cmd.Context()))
	return nil
}
