package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// GetPageSection retrieves one section of a page along with its parent and
// neighbours, so callers can walk a long quest guide step by step
func GetPageSection(ctx context.Context, client *wiki.Client, title string, sectionIndex int) (*wiki.PageSection, error) {
	cacheKey := wiki.SectionCacheKey(title, strconv.Itoa(sectionIndex))
	if cached, ok := client.GetCache().Get(cacheKey); ok {
		return cached.(*wiki.PageSection), nil
	}

	outline, err := GetPageOutline(ctx, client, title)
	if err != nil {
		return nil, err
	}

	flat := flattenSections(outline.Sections)
	pos := -1
	for i, sec := range flat {
		if sec.Index == sectionIndex {
			pos = i
			break
		}
	}

	if pos < 0 {
		return nil, &SectionNotFoundError{
			SectionIndex:      sectionIndex,
			AvailableSections: len(flat),
		}
	}
	target := flat[pos]

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", outline.Title)
	params.Set("section", strconv.Itoa(sectionIndex))
	params.Set("prop", "text|links")
	params.Set("disableeditsection", "1")

	resp, err := client.MakeRequest(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "get section")
	}

	if resp.Parse == nil {
		return nil, eris.Wrap(wiki.ErrEmptyResponse, "get section")
	}

	markdown, err := wiki.HTMLToMarkdown(resp.Parse.Text.Content)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(resp.Parse.Links))
	for _, link := range resp.Parse.Links {
		links = append(links, link.Title)
	}

	pageSection := &wiki.PageSection{
		Title: outline.Title,
		Section: &wiki.Section{
			Index:     target.Index,
			Title:     target.Title,
			Level:     target.Level,
			Content:   markdown,
			Links:     links,
			WordCount: wiki.CountWords(markdown),
		},
	}

	for j := pos - 1; j >= 0; j-- {
		if flat[j].Level < target.Level {
			pageSection.ParentSection = refOf(flat[j])
			break
		}
	}
	if pos > 0 {
		pageSection.Previous = refOf(flat[pos-1])
	}
	if pos < len(flat)-1 {
		pageSection.Next = refOf(flat[pos+1])
	}

	client.GetCache().Set(cacheKey, pageSection, client.GetCacheTTL())

	return pageSection, nil
}

func refOf(sec *wiki.Section) *wiki.SectionRef {
	return &wiki.SectionRef{Index: sec.Index, Title: sec.Title}
}

// flattenSections converts a tree of sections to a pre-order list
func flattenSections(sections []*wiki.Section) []*wiki.Section {
	result := make([]*wiki.Section, 0)
	for _, sec := range sections {
		result = append(result, sec)
		result = append(result, flattenSections(sec.Subsections)...)
	}
	return result
}

// SectionNotFoundError represents an error when a section doesn't exist
type SectionNotFoundError struct {
	SectionIndex      int
	AvailableSections int
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("section index %d does not exist (page has %d sections)", e.SectionIndex, e.AvailableSections)
}
