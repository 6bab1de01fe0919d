package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/crosspost/internal/target"
)

// ConfigError is returned when credentials or endpoints are missing. It does not
// resolve without operator action, so callers never retry it.
type ConfigError struct {
	Provider target.Provider
	Missing  []string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s is not configured", e.Provider)
	}
	return fmt.Sprintf("%s is not configured (missing %s)", e.Provider, strings.Join(e.Missing, ", "))
}

// RequireSettings returns a *ConfigError naming every empty setting, or nil.
func RequireSettings(p target.Provider, settings ...[2]string) error {
	var missing []string
	for _, s := range settings {
		if strings.TrimSpace(s[1]) == "" {
			missing = append(missing, s[0])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ConfigError{Provider: p, Missing: missing}
}

// StatusError is a non-2xx upstream response. Body keeps the raw text.
type StatusError struct {
	Provider   target.Provider
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s API error: %s", e.Provider, e.Status)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// ErrorKind classifies a failed cell.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindDispatch      ErrorKind = "dispatch"
	KindTimeout       ErrorKind = "timeout"
)

// Classify maps an adapter error onto its kind.
func Classify(err error) ErrorKind {
	var cfgErr *ConfigError
	switch {
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindDispatch
	}
}
