package wikitext

import (
	"regexp"
	"strings"
)

var (
	pipedLinkPattern = regexp.MustCompile(`\[\[([^\|\]]+)(?:\|([^\]]+))?\]\]`)
	templatePattern  = regexp.MustCompile(`\{\{[^\}]+\}\}`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
	whitespace       = regexp.MustCompile(`\s+`)

	// {{SCP|Mining|30}} -> 30 Mining
	scpPattern = regexp.MustCompile(`(?i)\{\{scp\|([^\|\}]+)\|([^\|\}]+)[^\}]*\}\}`)
	// {{plink|Bucket of milk}} -> Bucket of milk
	plinkPattern = regexp.MustCompile(`(?i)\{\{plinkp?\|([^\|\}]+)[^\}]*\}\}`)
	// {{Coins|100}} -> 100 coins
	coinsPattern = regexp.MustCompile(`(?i)\{\{coins\|([^\|\}]+)\}\}`)
)

// CleanMarkup reduces a wikitext value to readable text: links keep their
// display text, a few common inline templates are rendered, remaining
// templates and tags are dropped.
func CleanMarkup(value string) string {
	value = strings.TrimSpace(value)

	value = pipedLinkPattern.ReplaceAllStringFunc(value, func(match string) string {
		parts := pipedLinkPattern.FindStringSubmatch(match)
		if len(parts) > 2 && parts[2] != "" {
			return parts[2]
		}
		return parts[1]
	})

	value = scpPattern.ReplaceAllString(value, "$2 $1")
	value = plinkPattern.ReplaceAllString(value, "$1")
	value = coinsPattern.ReplaceAllString(value, "$1 coins")
	value = templatePattern.ReplaceAllString(value, "")
	value = htmlTagPattern.ReplaceAllString(value, "")

	value = strings.ReplaceAll(value, "'''", "")
	value = strings.ReplaceAll(value, "''", "")

	return strings.TrimSpace(whitespace.ReplaceAllString(value, " "))
}

var bulletPattern = regexp.MustCompile(`^\*+\s*(.*)$`)

// BulletLines returns the cleaned text of every bulleted line.
func BulletLines(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		m := bulletPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if cleaned := CleanMarkup(m[1]); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}

// FindInfobox returns the first template whose title starts with "Infobox".
func FindInfobox(templates []Template) (Template, bool) {
	for _, t := range templates {
		if strings.HasPrefix(strings.ToLower(t.Title), "infobox") {
			return t, true
		}
	}
	return Template{}, false
}
