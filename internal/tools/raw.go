package tools

import (
	"context"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// GetPageRaw retrieves the unrendered wikitext of a page
func GetPageRaw(ctx context.Context, client *wiki.Client, title string) (*wiki.PageRaw, error) {
	return client.Wikitext(ctx, title)
}
