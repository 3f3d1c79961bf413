package tools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// largePageWords is the size above which callers are nudged towards
// outline + section retrieval.
const largePageWords = 5000

// GetPageContent retrieves the entire rendered content of a page as markdown
func GetPageContent(ctx context.Context, client *wiki.Client, title string) (*wiki.PageContent, error) {
	cacheKey := wiki.PageCacheKey(title)
	if cached, ok := client.GetCache().Get(cacheKey); ok {
		return cached.(*wiki.PageContent), nil
	}

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text|links")
	params.Set("redirects", "1")
	params.Set("disableeditsection", "1")
	params.Set("disabletoc", "1")

	resp, err := client.MakeRequest(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "get page content")
	}

	if resp.Parse == nil {
		return nil, eris.Wrap(wiki.ErrEmptyResponse, "get page content")
	}

	markdown, err := wiki.HTMLToMarkdown(resp.Parse.Text.Content)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(resp.Parse.Links))
	for _, link := range resp.Parse.Links {
		links = append(links, link.Title)
	}

	wordCount := wiki.CountWords(markdown)

	page := &wiki.PageContent{
		Title:     resp.Parse.Title,
		Content:   markdown,
		Links:     links,
		WordCount: wordCount,
	}

	if wordCount > largePageWords {
		warning := fmt.Sprintf("Large page (%d words). Consider using osrs_wiki_page_outline + osrs_wiki_page_section for targeted retrieval.", wordCount)
		page.Warning = &warning
	}

	client.GetCache().Set(cacheKey, page, client.GetCacheTTL())

	return page, nil
}
