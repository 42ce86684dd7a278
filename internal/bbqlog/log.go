// Package bbqlog configures the zap logger used by cmd/bbqbench, trimmed
// down to three knobs: level, output target, and console or JSON
// encoding.
package bbqlog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how New builds a logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string
	// Output is "stdout" or "stderr". Defaults to "stdout".
	Output string
	// Development enables human-friendly console encoding instead of JSON.
	Development bool
}

// SetDefaults fills in zero-valued fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

// New builds a *zap.SugaredLogger from cfg.
func New(cfg Config) (*zap.SugaredLogger, error) {
	cfg.SetDefaults()

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("bbqlog: invalid level %q: %w", cfg.Level, err)
	}

	var encoder zapcore.Encoder
	if cfg.Development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	var ws zapcore.WriteSyncer
	switch cfg.Output {
	case "stderr":
		ws = zapcore.Lock(zapcore.AddSync(os.Stderr))
	default:
		ws = zapcore.Lock(zapcore.AddSync(os.Stdout))
	}

	core := zapcore.NewCore(encoder, ws, level)
	logger := zap.New(core, zap.AddCaller())
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
