package wikitext

import (
	"regexp"
	"strings"
)

// Enemy is a monster to defeat with the combat levels it may appear at.
type Enemy struct {
	Name   string `json:"name"`
	Levels []int  `json:"levels"`
}

var (
	enemyLinePattern = regexp.MustCompile(`^\*+\s*\[\[([^\]]+)\]\]`)
	levelAnnotation  = regexp.MustCompile(`\((?i:level)\s+([^)]+)\)`)
)

// ParseEnemies reads one enemy per bulleted line, with levels taken from a
// "(level N)" or "(level N/M/...)" annotation on the same line. A later line
// for the same enemy replaces the earlier one.
func ParseEnemies(text string) map[string]Enemy {
	enemies := make(map[string]Enemy)

	for _, line := range strings.Split(text, "\n") {
		m := enemyLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := linkTarget(m[1])
		if name == "" {
			continue
		}

		levels := make([]int, 0)
		if ann := levelAnnotation.FindStringSubmatch(line); ann != nil {
			for _, part := range strings.Split(ann[1], "/") {
				if level, ok := leadingInt(part); ok {
					levels = append(levels, level)
				}
			}
		}

		enemies[NormalizeKey(name)] = Enemy{Name: name, Levels: levels}
	}

	return enemies
}
