// Package logging builds the logrus logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/lifeshock/internal/sim"
)

// New returns a JSON logger at level. Output goes to path (appended) when
// set, otherwise to stderr. The returned closer releases the file.
func New(level, path string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if path == "" {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating log dir: %w", err)
	}
	//nolint:gosec // log path is configured by the local user
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Transitions returns an engine observer that logs every phase change.
func Transitions(log logrus.FieldLogger) func(sim.Transition) {
	return func(t sim.Transition) {
		log.WithFields(logrus.Fields{
			"run":    t.Run,
			"from":   t.From.String(),
			"to":     t.To.String(),
			"reason": string(t.Reason),
		}).Info("phase transition")
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
