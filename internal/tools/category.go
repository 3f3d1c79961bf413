package tools

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// GetCategory retrieves pages in a category, such as "Quests" or
// "Members' quests"
func GetCategory(ctx context.Context, client *wiki.Client, category string, limit int, cont string) (*wiki.CategoryResponse, error) {
	if !strings.HasPrefix(category, "Category:") {
		category = "Category:" + category
	}

	cacheKey := wiki.CategoryCacheKey(category+":"+strconv.Itoa(limit), cont)
	if cached, ok := client.GetCache().Get(cacheKey); ok {
		return cached.(*wiki.CategoryResponse), nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "categorymembers")
	params.Set("cmtitle", category)
	params.Set("cmlimit", strconv.Itoa(limit))
	params.Set("cmprop", "title|type")
	if cont != "" {
		params.Set("cmcontinue", cont)
	}

	resp, err := client.MakeRequest(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "get category")
	}

	if resp.Query == nil {
		return nil, eris.Wrap(wiki.ErrEmptyResponse, "get category")
	}

	members := make([]wiki.CategoryMember, 0, len(resp.Query.Categorymembers))
	for _, member := range resp.Query.Categorymembers {
		memberType := member.Type
		if memberType == "" {
			memberType = "page"
		}

		members = append(members, wiki.CategoryMember{
			Title: member.Title,
			Type:  memberType,
		})
	}

	// Parent categories are decoration; a failure here is not fatal
	parentCategories, err := getParentCategories(ctx, client, category)
	if err != nil {
		parentCategories = []string{}
	}

	categoryResp := &wiki.CategoryResponse{
		Category:         strings.TrimPrefix(category, "Category:"),
		Members:          members,
		ParentCategories: parentCategories,
		TotalMembers:     len(members),
		ContinueToken:    continueToken(resp.Continue, "cmcontinue"),
	}

	client.GetCache().Set(cacheKey, categoryResp, client.GetCacheTTL())

	return categoryResp, nil
}

func getParentCategories(ctx context.Context, client *wiki.Client, category string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", category)
	params.Set("prop", "categories")
	params.Set("cllimit", "10")

	resp, err := client.MakeRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	parents := make([]string, 0)
	if resp.Query == nil {
		return parents, nil
	}

	for _, page := range resp.Query.Pages {
		for _, cat := range page.Categories {
			parents = append(parents, strings.TrimPrefix(cat.Title, "Category:"))
		}
	}

	return parents, nil
}
