package app

import "fmt"

// ConfigurationError reports an invocation that cannot run at all.
// It aborts before any genome is processed.
type ConfigurationError struct {
	// Field names the offending option.
	Field string

	// Reason describes what is wrong with it.
	Reason string

	// Err is the underlying cause, when one exists.
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
