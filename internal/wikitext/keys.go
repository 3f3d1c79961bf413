package wikitext

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey converts a free-text name to a lowercase underscore identifier
// so that "Steel bar" and "steel bar" collapse to "steel_bar".
func NormalizeKey(name string) string {
	key := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(key, "_")
}

// linkTarget returns the page part of a [[target|display]] link body.
func linkTarget(body string) string {
	if i := strings.Index(body, "|"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}
