package quest

import (
	"fmt"
	"strings"

	"github.com/yourusername/osrs-mcp/internal/wikitext"
)

// Template titles anchoring a quest page.
const (
	InfoboxTemplate = "Infobox Quest"
	DetailsTemplate = "Quest details"
	RewardsTemplate = "Quest rewards"
)

// Info is the normalized record assembled from a quest page. Collections are
// never nil so absent sections serialize as empty objects.
type Info struct {
	Name              string `json:"name"`
	QuestNumber       int    `json:"questNumber,omitempty"`
	FeaturedImageName string `json:"featuredImageName,omitempty"`
	ReleaseDay        int    `json:"releaseDay,omitempty"`
	ReleaseMonth      string `json:"releaseMonth,omitempty"`
	ReleaseYear       int    `json:"releaseYear,omitempty"`
	Update            string `json:"update,omitempty"`
	MembersOnly       bool   `json:"membersOnly"`
	Series            string `json:"series,omitempty"`
	Developer         string `json:"developer,omitempty"`
	Aka               string `json:"aka,omitempty"`

	Difficulty    string `json:"difficulty,omitempty"`
	Length        string `json:"length,omitempty"`
	StartingPoint string `json:"startingPoint,omitempty"`
	StartMap      string `json:"startMap,omitempty"`
	QuestGiver    string `json:"questGiver,omitempty"`

	RequiredItems     map[string]wikitext.ItemCount    `json:"requiredItems"`
	RequiredQuests    map[string]wikitext.Prerequisite `json:"requiredQuests"`
	RequiredSkills    map[string]wikitext.SkillLevel   `json:"requiredSkills"`
	RecommendedItems  map[string]wikitext.ItemCount    `json:"recommendedItems"`
	RecommendedSkills map[string]wikitext.SkillLevel   `json:"recommendedSkills"`
	EnemiesToDefeat   map[string]wikitext.Enemy        `json:"enemiesToDefeat"`

	QuestPoints int            `json:"questPoints"`
	XPRewards   map[string]int `json:"xpRewards"`
	Rewards     []string       `json:"rewards"`
}

func newInfo(name string) *Info {
	return &Info{
		Name:              name,
		RequiredItems:     map[string]wikitext.ItemCount{},
		RequiredQuests:    map[string]wikitext.Prerequisite{},
		RequiredSkills:    map[string]wikitext.SkillLevel{},
		RecommendedItems:  map[string]wikitext.ItemCount{},
		RecommendedSkills: map[string]wikitext.SkillLevel{},
		EnemiesToDefeat:   map[string]wikitext.Enemy{},
		XPRewards:         map[string]int{},
		Rewards:           []string{},
	}
}

// Summary renders a one-line overview for chat transports.
func (i *Info) Summary() string {
	var b strings.Builder
	b.WriteString(i.Name)

	var facets []string
	if i.Difficulty != "" {
		facets = append(facets, i.Difficulty)
	}
	if i.Length != "" {
		facets = append(facets, i.Length)
	}
	if i.MembersOnly {
		facets = append(facets, "members")
	} else {
		facets = append(facets, "free-to-play")
	}
	b.WriteString(" (" + strings.Join(facets, ", ") + ")")

	fmt.Fprintf(&b, ": %d quest point(s); requires %d quest(s), %d skill(s), %d item(s)",
		i.QuestPoints, len(i.RequiredQuests), len(i.RequiredSkills), len(i.RequiredItems))
	if len(i.EnemiesToDefeat) > 0 {
		fmt.Fprintf(&b, "; %d enemy type(s) to defeat", len(i.EnemiesToDefeat))
	}
	return b.String()
}
