// Package observability provides logger construction and formatted output
// utilities for verbose CLI mode.
package observability

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/dataset-hub/internal/config"
)

// NewLogger builds a zap logger for the given environment: JSON output in
// production, console output everywhere else.
func NewLogger(environment string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if environment == config.EnvProduction {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}
