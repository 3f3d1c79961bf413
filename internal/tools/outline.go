package tools

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// GetPageOutline retrieves page structure without full content
func GetPageOutline(ctx context.Context, client *wiki.Client, title string) (*wiki.PageOutline, error) {
	cacheKey := wiki.PageCacheKey(title + ":outline")
	if cached, ok := client.GetCache().Get(cacheKey); ok {
		return cached.(*wiki.PageOutline), nil
	}

	// Page structure first; no section parameter
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "sections|categories|links")
	params.Set("redirects", "1")
	params.Set("disableeditsection", "1")

	resp, err := client.MakeRequest(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "get page outline")
	}

	if resp.Parse == nil {
		return nil, eris.Wrap(wiki.ErrEmptyResponse, "get page outline")
	}

	leadParams := url.Values{}
	leadParams.Set("action", "parse")
	leadParams.Set("page", resp.Parse.Title)
	leadParams.Set("prop", "text")
	leadParams.Set("section", "0")
	leadParams.Set("disableeditsection", "1")

	leadResp, err := client.MakeRequest(ctx, leadParams)
	if err != nil {
		return nil, eris.Wrap(err, "get lead section")
	}
	if leadResp.Parse == nil {
		return nil, eris.Wrap(wiki.ErrEmptyResponse, "get lead section")
	}

	leadMarkdown, err := wiki.HTMLToMarkdown(leadResp.Parse.Text.Content)
	if err != nil {
		return nil, err
	}

	sections := buildSectionsTree(resp.Parse.Sections, leadMarkdown)

	categories := make([]string, 0, len(resp.Parse.Categories))
	for _, cat := range resp.Parse.Categories {
		if cat.Hidden {
			continue
		}
		categories = append(categories, strings.ReplaceAll(cat.Category, "_", " "))
	}

	totalWords := totalWordCount(sections, leadMarkdown)

	outline := &wiki.PageOutline{
		Title:          resp.Parse.Title,
		Exists:         true,
		Summary:        wiki.ExtractPreview(leadMarkdown, 100),
		SummaryLinks:   wiki.ExtractLinks(leadResp.Parse.Text.Content),
		Sections:       sections,
		Categories:     categories,
		SeeAlso:        extractSeeAlsoLinks(resp.Parse.Links),
		TotalWordCount: totalWords,
	}

	// The infobox is optional; pages without one still get an outline
	if tree, err := client.ParseTree(ctx, resp.Parse.Title); err == nil {
		outline.InfoboxType, outline.Infobox = wiki.ExtractInfobox(tree)
	}

	client.GetCache().Set(cacheKey, outline, client.GetCacheTTL())

	return outline, nil
}

// buildSectionsTree nests the flat parse section list under a synthetic lead
// section, using toclevel to find each section's parent.
func buildSectionsTree(mwSections []wiki.MWSection, leadContent string) []*wiki.Section {
	if len(mwSections) == 0 {
		return []*wiki.Section{}
	}

	sections := []*wiki.Section{{
		Index:     0,
		Title:     "Lead",
		Level:     1,
		Preview:   wiki.ExtractPreview(leadContent, 50),
		WordCount: wiki.CountWords(leadContent),
	}}

	var open []*wiki.Section
	for _, mwSec := range mwSections {
		// Transcluded sections carry a "T-" prefixed index and cannot be
		// fetched by number
		index, err := strconv.Atoi(mwSec.Index)
		if err != nil {
			continue
		}

		section := &wiki.Section{
			Index:       index,
			Title:       stripTags(mwSec.Line),
			Level:       mwSec.TocLevel + 1, // lead is level 1
			Subsections: []*wiki.Section{},
		}

		for len(open) > 0 && open[len(open)-1].Level >= section.Level {
			open = open[:len(open)-1]
		}

		if len(open) == 0 {
			sections = append(sections, section)
		} else {
			parent := open[len(open)-1]
			parent.Subsections = append(parent.Subsections, section)
		}

		open = append(open, section)
	}

	return sections
}

// totalWordCount sums the section tree. The synthetic lead section already
// holds the lead's words; a page without headings is all lead.
func totalWordCount(sections []*wiki.Section, leadContent string) int {
	if len(sections) == 0 {
		return wiki.CountWords(leadContent)
	}

	total := 0
	for _, section := range sections {
		total += section.WordCount + countSubsectionWords(section)
	}
	return total
}

func countSubsectionWords(section *wiki.Section) int {
	count := 0
	for _, sub := range section.Subsections {
		count += sub.WordCount + countSubsectionWords(sub)
	}
	return count
}

var metaNamespaces = []string{"Category:", "File:", "RuneScape:", "Template:", "Help:", "Module:", "Update:"}

const maxSeeAlso = 10

// extractSeeAlsoLinks picks the first distinct article links of a page
func extractSeeAlsoLinks(links []wiki.MWLink) []string {
	seeAlso := make([]string, 0, maxSeeAlso)
	seen := make(map[string]bool)

	for _, link := range links {
		if seen[link.Title] || isMetaTitle(link.Title) {
			continue
		}
		seen[link.Title] = true

		seeAlso = append(seeAlso, link.Title)
		if len(seeAlso) == maxSeeAlso {
			break
		}
	}

	return seeAlso
}

func isMetaTitle(title string) bool {
	for _, prefix := range metaNamespaces {
		if strings.HasPrefix(title, prefix) {
			return true
		}
	}
	return false
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
