package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileLogger returns a logrus logger writing to both stderr and the given
// file, creating parent directories as needed. The caller owns the file.
func FileLogger(level logrus.Level, path string) (*os.File, *logrus.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	logger.SetFormatter(&logrus.JSONFormatter{})
	return f, logger, nil
}

// ConsoleLogger returns a plain stderr logger at the given level.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(level)
	return logger
}
