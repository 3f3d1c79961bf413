package tools

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// maxImageBytes caps lead image downloads
const maxImageBytes = 5 << 20

// ErrNoPageImage is returned when a page has no lead image
var ErrNoPageImage = eris.New("page has no main image")

// GetPageMainImage fetches the lead image chosen by the PageImages extension
func GetPageMainImage(ctx context.Context, client *wiki.Client, title string) (*wiki.PageImage, error) {
	cacheKey := wiki.ImageCacheKey(title)
	if cached, ok := client.GetCache().Get(cacheKey); ok {
		return cached.(*wiki.PageImage), nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "pageimages")
	params.Set("piprop", "original|name")
	params.Set("redirects", "1")

	resp, err := client.MakeRequest(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "get page image")
	}

	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return nil, eris.Wrap(wiki.ErrEmptyResponse, "get page image")
	}

	page := resp.Query.Pages[0]
	if page.Missing {
		return nil, &wiki.APIError{Code: "missingtitle", Message: "The page you specified doesn't exist."}
	}
	if page.Original == nil || page.Original.Source == "" {
		return nil, eris.Wrapf(ErrNoPageImage, "%q", title)
	}

	data, mimeType, err := client.Download(ctx, page.Original.Source, maxImageBytes)
	if err != nil {
		return nil, eris.Wrap(err, "download page image")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, eris.Errorf("page image for %q has content type %s", title, mimeType)
	}

	image := &wiki.PageImage{
		Title:    page.Title,
		FileName: page.PageImage,
		URL:      page.Original.Source,
		Width:    page.Original.Width,
		Height:   page.Original.Height,
		MIMEType: mimeType,
		Data:     data,
	}

	client.GetCache().Set(cacheKey, image, client.GetCacheTTLInfo())

	return image, nil
}
