// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagewatch/internal/config"
)

// Setup applies the configured level and format to the standard logger.
// Logs go to stderr so CLI output on stdout stays machine-readable.
func Setup(cfg config.LoggingConfig) error {
	return setup(cfg, os.Stderr)
}

func setup(cfg config.LoggingConfig, out io.Writer) error {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("logging.format: unknown format %q (want text or json)", cfg.Format)
	}

	log.SetLevel(lvl)
	log.SetOutput(out)
	return nil
}
