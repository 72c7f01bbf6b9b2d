package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console logger for development or a JSON production logger,
// both at the given level ("debug", "info", "warn", "error").
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	var c zap.Config
	if development {
		c = zap.NewDevelopmentConfig()
	} else {
		c = zap.NewProductionConfig()
	}
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.OutputPaths = []string{"stderr"}
	z, err := c.Build()
	if err != nil {
		return nil, err
	}
	if development {
		z = z.With(zap.String("env", "dev"))
	}
	return z, nil
}
