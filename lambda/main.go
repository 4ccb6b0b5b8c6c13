// Package main is the AWS Lambda entrypoint of gh-autoflow-app, built as the function bootstrap.
// It runs the root command pinned to the lambda mode.
package main

import (
	"os"

	"github.com/isometry/gh-autoflow-app/cmd"
)

func main() {
	root := cmd.New()
	root.SetArgs(append([]string{"lambda"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
