// Package main is the standalone server entrypoint of gh-autoflow-app.
// It runs the root command pinned to the service mode.
package main

import (
	"os"

	"github.com/isometry/gh-autoflow-app/cmd"
)

func main() {
	root := cmd.New()
	root.SetArgs(append([]string{"service"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
