package domain

import "strings"

// =============================================================================
// Deployment Status
// =============================================================================

// Status is the externally reported deployment status. It folds the
// provider's instance lifecycle state and the application health probe into a
// single value.
type Status string

const (
	StatusProvisioning Status = "provisioning"
	StatusBooting      Status = "booting"
	StatusRunning      Status = "running"
	StatusDegraded     Status = "degraded"
	StatusStopped      Status = "stopped"
	StatusFailed       Status = "failed"
	StatusMissing      Status = "missing"
	StatusUnknown      Status = "unknown"
)

// MapInstanceStatus maps a provider instance state to a Status. The mapping
// is total: every input, known or not, yields a valid Status. Transitional
// provider states (booting, rebooting, migrating, busy) all fold into
// provisioning - nothing downstream distinguishes them.
func MapInstanceStatus(instanceStatus string) Status {
	switch strings.ToLower(instanceStatus) {
	case "running":
		return StatusRunning
	case "provisioning", "booting", "rebooting", "migrating", "busy":
		return StatusProvisioning
	case "offline", "stopped":
		return StatusStopped
	case "failed":
		return StatusFailed
	default:
		return StatusUnknown
	}
}
