package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// GetBacklinks retrieves pages that link to a given page
func GetBacklinks(ctx context.Context, client *wiki.Client, title string, limit int, cont string) (*wiki.BacklinksResponse, error) {
	cacheKey := wiki.BacklinksCacheKey(title+":"+strconv.Itoa(limit), cont)
	if cached, ok := client.GetCache().Get(cacheKey); ok {
		return cached.(*wiki.BacklinksResponse), nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "backlinks")
	params.Set("bltitle", title)
	params.Set("bllimit", strconv.Itoa(limit))
	params.Set("blnamespace", "0")
	if cont != "" {
		params.Set("blcontinue", cont)
	}

	resp, err := client.MakeRequest(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "get backlinks")
	}

	if resp.Query == nil {
		return nil, eris.Wrap(wiki.ErrEmptyResponse, "get backlinks")
	}

	backlinks := make([]wiki.Backlink, 0, len(resp.Query.Backlinks))
	for _, bl := range resp.Query.Backlinks {
		backlinks = append(backlinks, wiki.Backlink{Title: bl.Title})
	}

	backlinksResp := &wiki.BacklinksResponse{
		Title:         title,
		Backlinks:     backlinks,
		TotalCount:    len(backlinks),
		ContinueToken: continueToken(resp.Continue, "blcontinue"),
	}

	client.GetCache().Set(cacheKey, backlinksResp, client.GetCacheTTL())

	return backlinksResp, nil
}

// continueToken pulls a list continuation value out of the API envelope
func continueToken(cont map[string]string, key string) *string {
	if token, ok := cont[key]; ok && token != "" {
		return &token
	}
	return nil
}
