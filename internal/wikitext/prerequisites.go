package wikitext

import (
	"regexp"
	"strings"
)

// Prerequisite is a node in the quest prerequisite forest. PreReq names the
// quest one bullet level shallower, and is empty for roots.
type Prerequisite struct {
	PreReq string `json:"preReq,omitempty"`
}

const questSectionMarker = "Completion of the following quest"

var questLinePattern = regexp.MustCompile(`^(\*+)\s*\[\[([^\]]+)\]\]`)

// ParseQuestPrerequisites reads the bulleted quest list that follows a
// "Completion of the following quests" line. Two asterisks is a root quest,
// each extra asterisk nests one level deeper under the most recent quest at
// the shallower level. The list ends at the first line opening a template
// or containing "items =".
func ParseQuestPrerequisites(text string) map[string]Prerequisite {
	quests := make(map[string]Prerequisite)

	var stack []string
	inSection := false

	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, questSectionMarker) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if opensTemplate(line) || strings.Contains(line, "items =") {
			break
		}

		m := questLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := linkTarget(m[2])
		if name == "" {
			continue
		}

		depth := len(m[1]) - 2
		if depth < 0 {
			depth = 0
		}

		for len(stack) <= depth {
			stack = append(stack, "")
		}
		stack[depth] = name
		stack = stack[:depth+1]

		entry := Prerequisite{}
		if depth > 0 {
			entry.PreReq = stack[depth-1]
		}
		quests[name] = entry
	}

	return quests
}

func opensTemplate(line string) bool {
	return strings.Contains(line, "<template") || strings.Contains(line, "{{")
}
