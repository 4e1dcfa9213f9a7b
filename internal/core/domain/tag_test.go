package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// BuildTag Tests
// =============================================================================

func TestBuildTag_Basic(t *testing.T) {
	tag := BuildTag(TagPrefixApp, "My Cool App!!")
	assert.Equal(t, "build-app:My-Cool-App", tag)
}

func TestBuildTag_NeverExceedsLimit(t *testing.T) {
	tag := BuildTag(TagPrefixApp, "an-extremely-long-application-name-that-keeps-going-and-going")
	assert.LessOrEqual(t, len(tag), MaxTagLength)
}

func TestBuildTag_PrefixNeverTruncated(t *testing.T) {
	tag := BuildTag(TagPrefixTemplate, "very-long-template-name-meant-to-hit-the-tag-budget")
	assert.Contains(t, tag, TagPrefixTemplate+":")
	assert.LessOrEqual(t, len(tag), MaxTagLength)
}

func TestBuildTag_DegeneratePrefix(t *testing.T) {
	prefix := "build-prefix-that-uses-the-entire-fifty-char-cap!!"
	require.GreaterOrEqual(t, len(prefix)+1, MaxTagLength)

	tag := BuildTag(prefix, "value")
	assert.Equal(t, "value", tag)
	assert.LessOrEqual(t, len(tag), MaxTagLength)
}

// =============================================================================
// BuildTags / ParseTags Tests
// =============================================================================

func TestBuildTags_FiveIdentityTags(t *testing.T) {
	tags := BuildTags("abc12345", "chat-agent", "prod", "fastapi", "1.2.0")
	assert.Equal(t, []string{
		"build-id:abc12345",
		"build-app:chat-agent",
		"build-env:prod",
		"build-tmpl:fastapi",
		"build-ver:1.2.0",
	}, tags)
}

func TestParseTags_RoundTrip(t *testing.T) {
	tags := BuildTags("abc12345", "chat-agent", "prod", "fastapi", "1.2.0")
	parsed := ParseTags(tags)

	assert.Equal(t, "abc12345", parsed["id"])
	assert.Equal(t, "chat-agent", parsed["app"])
	assert.Equal(t, "prod", parsed["env"])
	assert.Equal(t, "fastapi", parsed["tmpl"])
	assert.Equal(t, "1.2.0", parsed["ver"])
}

func TestParseTags_IgnoresForeignTags(t *testing.T) {
	parsed := ParseTags([]string{"billing:team-a", "web", "build-id:abc12345"})
	assert.Equal(t, map[string]string{"id": "abc12345"}, parsed)
}

func TestParseTags_IgnoresValuelessTags(t *testing.T) {
	parsed := ParseTags([]string{"build-id", "build-app:chat"})
	assert.Equal(t, map[string]string{"app": "chat"}, parsed)
}

func TestParseTags_Empty(t *testing.T) {
	assert.Empty(t, ParseTags(nil))
}
