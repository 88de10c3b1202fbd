// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pion/logging"
)

// Static errors for err113 compliance.
var (
	ErrInvalidLevel = errors.New("invalid log level")
)

// ParseLevel maps a level name to a pion log level.
func ParseLevel(level string) (logging.LogLevel, error) {
	switch strings.ToLower(level) {
	case "disabled", "off":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info", "":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
}

// NewLoggerFactory returns a factory whose loggers write to w at level.
func NewLoggerFactory(w io.Writer, level string) (*logging.DefaultLoggerFactory, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	factory := logging.NewDefaultLoggerFactory()
	factory.Writer = w
	factory.DefaultLogLevel = lvl

	return factory, nil
}
