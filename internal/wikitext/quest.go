package wikitext

import "regexp"

// Release holds the parts of a "[[DD Month]] [[YYYY]]" release value.
type Release struct {
	Day   int
	Month string
	Year  int
}

var (
	releasePattern    = regexp.MustCompile(`\[\[(\d+)\s+([^\]]+)\]\]\s*\[\[(\d+)\]\]`)
	questGiverPattern = regexp.MustCompile(`(?i)(?:speak|talk)\s+(?:to|with)\s+\[\[([^\]]+)\]\]`)
)

// ParseRelease splits a release value such as "[[28 February]] [[2005]]".
func ParseRelease(value string) (Release, bool) {
	m := releasePattern.FindStringSubmatch(value)
	if m == nil {
		return Release{}, false
	}

	day, ok := leadingInt(m[1])
	if !ok {
		return Release{}, false
	}
	year, ok := leadingInt(m[3])
	if !ok {
		return Release{}, false
	}

	return Release{Day: day, Month: m[2], Year: year}, true
}

// ParseQuestGiver finds the NPC named in "Speak to [[Name]]" style text.
func ParseQuestGiver(start string) (string, bool) {
	m := questGiverPattern.FindStringSubmatch(start)
	if m == nil {
		return "", false
	}

	name := linkTarget(m[1])
	return name, name != ""
}
