// Package main provides the entrypoint for gh-autoflow-app.
package main

import (
	"os"

	"github.com/isometry/gh-autoflow-app/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
