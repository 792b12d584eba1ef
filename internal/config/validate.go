package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidMode indicates an unknown mode value
	ErrInvalidMode = errors.New("invalid mode")

	// ErrEmptyCommand indicates a missing external command
	ErrEmptyCommand = errors.New("empty command")

	// ErrInvalidBackend indicates an unknown locator backend
	ErrInvalidBackend = errors.New("invalid locator backend")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidPattern indicates an ignore glob that does not compile
	ErrInvalidPattern = errors.New("invalid ignore pattern")
)

// Validate checks every section and reports all problems at once
func Validate(cfg *Config) error {
	var result *multierror.Error

	if strings.TrimSpace(cfg.Highlighter.Command) == "" {
		result = multierror.Append(result, fmt.Errorf("%w: highlighter.command", ErrEmptyCommand))
	}

	result = multierror.Append(result, oneOf("pager.mode", cfg.Pager.Mode, "auto", "always", "never"))
	result = multierror.Append(result, oneOf("selector.mode", cfg.Selector.Mode, "interactive", "first"))
	if cfg.Selector.Mode == "interactive" && strings.TrimSpace(cfg.Selector.Command) == "" {
		result = multierror.Append(result, fmt.Errorf("%w: selector.command is required in interactive mode", ErrEmptyCommand))
	}
	result = multierror.Append(result, oneOf("snippet.mode", cfg.Snippet.Mode, "range", "extract"))

	switch cfg.Locator.Backend {
	case BackendSource, BackendIndex, BackendPackages:
	default:
		result = multierror.Append(result, fmt.Errorf("%w: must be %q, %q or %q, got %q",
			ErrInvalidBackend, BackendSource, BackendIndex, BackendPackages, cfg.Locator.Backend))
	}
	for _, pattern := range cfg.Locator.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	if cfg.Index.Workers < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: index.workers must be >= 0, got %d", ErrInvalidWorkers, cfg.Index.Workers))
	}

	if hclog.LevelFromString(cfg.Log.Level) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Log.Level))
	}

	return result.ErrorOrNil()
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidMode, key, strings.Join(allowed, ", "), value)
}
