package wikitext

import "strings"

// SkillLevel is a skill paired with the level it requires or recommends.
type SkillLevel struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// TitleMatcher selects templates by title.
type TitleMatcher func(title string) bool

// RequiredSkillTitle accepts the skill clickpic template in any of the
// casings seen in requirement fields.
func RequiredSkillTitle(title string) bool {
	switch title {
	case "SCP", "Scp", "scp":
		return true
	}
	return false
}

// RecommendedSkillTitle accepts only the canonical "SCP" title.
func RecommendedSkillTitle(title string) bool {
	return title == "SCP"
}

// ParseSkillLevels reads skill name (parameter 1) and level (parameter 2)
// from every matching template. Templates with a non-numeric level are
// skipped; repeated skills keep the highest level.
func ParseSkillLevels(templates []Template, match TitleMatcher) map[string]SkillLevel {
	skills := make(map[string]SkillLevel)

	for _, t := range templates {
		if !match(t.Title) {
			continue
		}

		name := strings.TrimSpace(t.Param("1"))
		levelStr := strings.TrimSpace(t.Param("2"))
		if name == "" || levelStr == "" {
			continue
		}

		level, ok := leadingInt(levelStr)
		if !ok {
			continue
		}

		key := NormalizeKey(name)
		if current, exists := skills[key]; exists && current.Level >= level {
			continue
		}
		skills[key] = SkillLevel{Name: name, Level: level}
	}

	return skills
}

// ParseExperience reads experience rewards from skill clickpic templates,
// where parameter 2 is an amount that may use thousands separators.
func ParseExperience(templates []Template) map[string]int {
	xp := make(map[string]int)

	for _, t := range templates {
		if !RequiredSkillTitle(t.Title) {
			continue
		}

		name := strings.TrimSpace(t.Param("1"))
		amount, ok := leadingInt(strings.ReplaceAll(t.Param("2"), ",", ""))
		if name == "" || !ok {
			continue
		}

		xp[NormalizeKey(name)] += amount
	}

	return xp
}
