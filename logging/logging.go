// Package logging configures the process-wide logrus logger. It is called once
// at startup, before the first probe, and not reconfigured during a scan.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	logDirPerm  = 0o750
	logFilePerm = 0o600

	DefaultFile = "port_scan.log"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Config struct {
	// File is a path, or "stdout"/"stderr". Files are appended to.
	File    string
	Format  Format
	Verbose bool
}

func DefaultConfig() Config {
	return Config{
		File:   DefaultFile,
		Format: FormatText,
	}
}

// Configure applies cfg to logger and returns a closer for the log file, if
// one was opened.
func Configure(logger *logrus.Logger, cfg Config) (io.Closer, error) {

	writer, closer, err := openOutput(cfg.File)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(writer)

	switch Format(strings.ToLower(string(cfg.Format))) {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	case FormatText, "":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			DisableColors:    closer != nil,
			QuoteEmptyFields: true,
		})
	default:
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("unknown log format '%s'", cfg.Format)
	}

	logger.SetLevel(logrus.InfoLevel)
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if closer == nil {
		closer = io.NopCloser(nil)
	}
	return closer, nil
}

func openOutput(path string) (io.Writer, io.Closer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil, nil
	case "", "stderr":
		return os.Stderr, nil, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, logDirPerm); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f, nil
}
