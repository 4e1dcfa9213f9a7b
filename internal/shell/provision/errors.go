package provision

import (
	"fmt"
	"time"
)

// ConfigurationError reports a required deployment setting that neither the
// request nor the template supplied.
type ConfigurationError struct {
	Field string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required setting: %s (set it in %s or pass an override)", e.Field, "deploy.yml")
}

// ProvisionError reports a fatal failure creating the instance. Provisioning
// aborts whole: no resource is left untagged or half-configured.
type ProvisionError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ProvisionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provisioning failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("provisioning failed: %s", e.Reason)
}

// Unwrap returns the underlying API error, if any.
func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// PollTimeoutError reports a bounded wait that exceeded its deadline.
type PollTimeoutError struct {
	Target  string
	Elapsed time.Duration
}

// Error implements the error interface.
func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s after %s", e.Target, e.Elapsed)
}
