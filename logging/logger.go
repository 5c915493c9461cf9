// Package logging builds the application's zap logger.
package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a JSON production logger or a console development logger.
// debug lowers the level to Debug in either mode.
func New(mode string, debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "dev", "development":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
