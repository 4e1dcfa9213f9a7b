package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Label Tests
// =============================================================================

func labelCharsetOK(label string) bool {
	for _, r := range label {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '_' || r == '.' || r == '-' {
			continue
		}
		return false
	}
	return true
}

func TestCompactTimestamp(t *testing.T) {
	ts := time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "08261430", CompactTimestamp(ts))
}

func TestCompactTimestamp_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 8, 26, 14, 30, 0, 0, loc)
	assert.Equal(t, "08261230", CompactTimestamp(ts))
}

func TestBuildLabel_Basic(t *testing.T) {
	label := BuildLabel("chat-agent", "prod", "08261430")
	assert.Equal(t, "build-chat-agent-prod-08261430", label)
}

func TestBuildLabel_SlugsComponents(t *testing.T) {
	label := BuildLabel("My Chat App!!", "pro duction", "08261430")
	assert.True(t, labelCharsetOK(label), "label %q has illegal characters", label)
	assert.LessOrEqual(t, len(label), MaxLabelLength)
}

func TestBuildLabel_AppSlugBounded(t *testing.T) {
	label := BuildLabel("application-with-a-very-long-name", "production-environment", "08261430")
	assert.LessOrEqual(t, len(label), MaxLabelLength)
	// App contributes at most ten characters, env at most six.
	assert.Equal(t, "build-applicatio-produc-08261430", label)
}

func TestBuildLabel_NeverExceedsCap(t *testing.T) {
	label := BuildLabel("0123456789", "prodxx", "08261430000000000000000000000000000000000000000000000000")
	assert.LessOrEqual(t, len(label), MaxLabelLength)
}
