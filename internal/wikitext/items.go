package wikitext

import (
	"regexp"
	"strconv"
	"strings"
)

// ItemCount is a quantity requirement for one item.
type ItemCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DefaultNonItemKeywords lists link targets that show up in item fields but
// name transport, locations or mechanics rather than items. Matching is a
// case-sensitive substring test, so each casing variant is listed.
var DefaultNonItemKeywords = []string{
	"Fairy Rings", "Fairy rings", "fairy rings",
	"Balloon transport", "Gnome Glider", "gnome glider",
	"Eagle transport", "eagle transport",
	"Grouping", "grouping",
	"Multicombat", "multicombat",
	"Brimhaven", "Port Sarim", "Draynor Village", "Varrock", "Barbarian Village",
	"Dwarven Mine", "Taverley", "White Wolf Mountain", "Catherby", "Seer's Village",
	"Fishing Guild", "East Ardougne", "Port Khazard", "Ardougne Monastery",
	"Ranging Guild", "Feldip Hills", "H.A.M. Hideout", "Edgeville Monastery",
	"Shilo Village",
}

// Exclusions is a set of keywords; any item name containing one is dropped.
type Exclusions []string

// Excludes reports whether name contains any keyword.
func (e Exclusions) Excludes(name string) bool {
	for _, keyword := range e {
		if keyword != "" && strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

var (
	linkPattern      = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	trailingQuantity = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)\s*$`)
)

// ParseQuantifiedItems extracts item links and their quantities from a
// bulleted wikitext field. Every link on a line is considered; the integer
// immediately before a link is its quantity (default 1). Counts for the same
// normalized name accumulate across the whole field.
func ParseQuantifiedItems(text string, exclude Exclusions) map[string]ItemCount {
	items := make(map[string]ItemCount)

	for _, line := range strings.Split(text, "\n") {
		for _, loc := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
			name := linkTarget(line[loc[2]:loc[3]])
			if name == "" || exclude.Excludes(name) {
				continue
			}

			key := NormalizeKey(name)
			if key == "" {
				continue
			}

			quantity := quantityBefore(line[:loc[0]])
			if entry, ok := items[key]; ok {
				entry.Count += quantity
				items[key] = entry
				continue
			}
			items[key] = ItemCount{Name: name, Count: quantity}
		}
	}

	return items
}

func quantityBefore(prefix string) int {
	m := trailingQuantity.FindStringSubmatch(prefix)
	if m == nil {
		return 1
	}

	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
