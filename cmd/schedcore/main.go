package main

import (
	"fmt"
	"os"

	logginginfra "github.com/mouselight/pipeline-scheduler/internal/infrastructure/logging"
)

func newLogger(level string) (*logginginfra.Logger, error) {
	return logginginfra.New(logginginfra.Options{
		Level:     level,
		Component: "cli",
		Layer:     "infrastructure",
	})
}

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
