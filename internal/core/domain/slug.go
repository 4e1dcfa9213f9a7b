// Package domain contains the core deployment types and identity encoding
// logic. This is part of the Functional Core - all functions are pure with
// no I/O.
package domain

import "strings"

// =============================================================================
// Slug Generation
// =============================================================================

// Slugify converts a value to a cloud-safe slug bounded to maxLength.
//
// The transformation rules are:
//   - Characters in [A-Za-z0-9_.-] are kept as-is (case is preserved)
//   - Every other character becomes a hyphen
//   - Runs of hyphens collapse to one
//   - Leading and trailing hyphens are trimmed
//   - An empty result falls back to "x"
//   - The result is truncated to maxLength
//
// This is a pure function with no side effects.
//
// Example:
//
//	Slugify("My Cool App!!", 40) // returns "My-Cool-App"
//	Slugify("chat agent", 4)     // returns "chat"
func Slugify(value string, maxLength int) string {
	var b strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '_' || r == '.' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}

	text := b.String()
	for strings.Contains(text, "--") {
		text = strings.ReplaceAll(text, "--", "-")
	}
	text = strings.Trim(text, "-")
	if text == "" {
		text = "x"
	}
	if len(text) > maxLength {
		text = text[:maxLength]
	}
	return text
}
