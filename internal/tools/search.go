package tools

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// searchTTL is short because search rankings shift with edits.
const searchTTL = time.Minute

// SearchWiki searches OSRS Wiki pages by keyword
func SearchWiki(ctx context.Context, client *wiki.Client, query string, limit int) (*wiki.SearchResponse, error) {
	cacheKey := wiki.SearchCacheKey(query, limit)
	if cached, ok := client.GetCache().Get(cacheKey); ok {
		return cached.(*wiki.SearchResponse), nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srprop", "snippet|wordcount")

	resp, err := client.MakeRequest(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "search wiki")
	}

	if resp.Query == nil {
		return nil, eris.Wrap(wiki.ErrEmptyResponse, "search wiki")
	}

	searchResp := &wiki.SearchResponse{
		Results:   make([]wiki.SearchResult, 0, len(resp.Query.Search)),
		TotalHits: len(resp.Query.Search),
	}

	for _, result := range resp.Query.Search {
		// Snippets carry searchmatch spans; fall back to raw HTML on failure
		markdown, err := wiki.HTMLToMarkdown(result.Snippet)
		if err != nil {
			markdown = result.Snippet
		}

		searchResp.Results = append(searchResp.Results, wiki.SearchResult{
			Title:        result.Title,
			Snippet:      markdown,
			SnippetLinks: wiki.ExtractLinks(result.Snippet),
			WordCount:    result.WordCount,
		})
	}

	if info := resp.Query.SearchInfo; info != nil {
		if info.TotalHits > 0 {
			searchResp.TotalHits = info.TotalHits
		}
		if info.Suggestion != "" {
			suggestion := info.Suggestion
			searchResp.Suggestion = &suggestion
		}
	}

	client.GetCache().Set(cacheKey, searchResp, searchTTL)

	return searchResp, nil
}
