package conformance

import (
	"fmt"
	"time"
)

// ConfigurationError reports an invalid harness configuration. It is the only
// error kind that aborts a run before any kernel invocation.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("conformance: invalid configuration %s: %s", e.Field, e.Message)
}

func configErrorf(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TimeoutError reports that one kernel invocation exceeded the configured
// timeout. It fails the single WidthReport it occurred in; remaining test
// cases still run.
type TimeoutError struct {
	Width int
	Input float64
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("conformance: kernel width=%d input=%g did not return within %v",
		e.Width, e.Input, e.After)
}
