package domain

import "strings"

// =============================================================================
// Tag Encoding
// =============================================================================

// Tags attach deployment identity directly to the cloud resource, in place of
// a separate datastore. Each tag is "prefix:value" where the value is
// charset-restricted and length-bounded so the whole tag never exceeds
// MaxTagLength.

// MaxTagLength is the provider's limit on a single tag.
const MaxTagLength = 50

// Tag prefixes emitted at provisioning time.
const (
	TagPrefixID       = "build-id"
	TagPrefixApp      = "build-app"
	TagPrefixEnv      = "build-env"
	TagPrefixTemplate = "build-tmpl"
	TagPrefixVersion  = "build-ver"
)

// tagNamespace marks which tags this tool owns when parsing a resource.
const tagNamespace = "build-"

// BuildTag builds a "prefix:value" tag. Only the value is slugged and
// truncated; the prefix is never cut. A degenerate prefix that leaves no
// value budget yields a bare slug bounded to MaxTagLength.
//
// Example:
//
//	BuildTag("build-app", "My Cool App!!") // returns "build-app:My-Cool-App"
func BuildTag(prefix, value string) string {
	budget := MaxTagLength - len(prefix) - 1
	if budget < 1 {
		return Slugify(value, MaxTagLength)
	}
	return prefix + ":" + Slugify(value, budget)
}

// BuildTags returns the identity tags for a new deployment.
func BuildTags(deploymentID, appName, envName, templateName, templateVersion string) []string {
	return []string{
		BuildTag(TagPrefixID, deploymentID),
		BuildTag(TagPrefixApp, appName),
		BuildTag(TagPrefixEnv, envName),
		BuildTag(TagPrefixTemplate, templateName),
		BuildTag(TagPrefixVersion, templateVersion),
	}
}

// ParseTags parses a resource's tags into a prefix-suffix -> value map:
// "build-app:chat" becomes {"app": "chat"}. Tags outside the build-*
// namespace and tags without a value are ignored.
func ParseTags(tags []string) map[string]string {
	parsed := make(map[string]string)
	for _, tag := range tags {
		if !strings.HasPrefix(tag, tagNamespace) {
			continue
		}
		prefix, value, ok := strings.Cut(tag, ":")
		if !ok {
			continue
		}
		parsed[strings.TrimPrefix(prefix, tagNamespace)] = value
	}
	return parsed
}
