// Package cli holds the state shared by trag subcommands: global flags,
// configuration loading and component bootstrap.
package cli

import (
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"transcript-rag/internal/app"
	"transcript-rag/internal/app/logging"
	"transcript-rag/internal/config"
)

// Global flags, bound by the root command
var (
	ConfigPath string
	Verbose    bool
)

// LoadConfig loads --config, falling back to the default search paths
func LoadConfig() (*config.Config, error) {
	path := ConfigPath
	if path == "" {
		path = config.FindConfigFile()
	}
	return config.Load(path)
}

// NewLogger builds the CLI logger. --verbose selects the development
// encoder at debug level; otherwise only warnings and errors are printed.
func NewLogger() (*logging.ZapLogger, error) {
	l, err := newZap()
	if err != nil {
		return nil, err
	}
	return logging.NewZapLogger(l), nil
}

func newZap() (*zap.Logger, error) {
	l, err := logging.NewLogger(Verbose)
	if err != nil {
		return nil, err
	}
	if !Verbose {
		l = l.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}
	return l, nil
}

// Bootstrap loads configuration and wires the application. The cleanup
// closes stores and flushes the logger.
func Bootstrap(ctx context.Context) (*app.App, *logging.ZapLogger, func(), error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := NewLogger()
	if err != nil {
		return nil, nil, nil, err
	}

	a, cleanup, err := app.InitializeApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return a, logger, func() {
		cleanup()
		_ = logger.Sync()
	}, nil
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
