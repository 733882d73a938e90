// Package logging builds the process logger and scrubs secrets from log
// output.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger creates a zap logger appropriate for the environment: JSON
// production logging for "production", human-readable development output
// otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
