package domain

import (
	"fmt"
	"time"
)

// =============================================================================
// Instance Labels
// =============================================================================

// MaxLabelLength caps the instance label. The provider accepts up to 64
// characters for a label.
const MaxLabelLength = 64

// labelTimestampLayout is a compact UTC timestamp (month day hour minute).
const labelTimestampLayout = "01021504"

// CompactTimestamp formats a creation time for use in an instance label.
func CompactTimestamp(t time.Time) string {
	return t.UTC().Format(labelTimestampLayout)
}

// BuildLabel builds a human-scannable instance label:
// "build-{app-slug}-{env-slug}-{timestamp}", hard-capped at MaxLabelLength.
// The output uses only [A-Za-z0-9_.-].
func BuildLabel(appName, envName, timestamp string) string {
	label := fmt.Sprintf("build-%s-%s-%s", Slugify(appName, 10), Slugify(envName, 6), timestamp)
	if len(label) > MaxLabelLength {
		label = label[:MaxLabelLength]
	}
	return label
}
