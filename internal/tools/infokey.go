package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// GetPageInfoKey returns the value of one infobox field, such as "members"
// or "release". Keys match case-insensitively with spaces and underscores
// treated alike.
func GetPageInfoKey(ctx context.Context, client *wiki.Client, title, key string) (*wiki.PageInfoKey, error) {
	tree, err := client.ParseTree(ctx, title)
	if err != nil {
		return nil, err
	}

	infoboxType, fields := wiki.ExtractInfobox(tree)

	value, found := fields[key]
	name := key
	if !found {
		want := normalizeInfoKey(key)
		for k, v := range fields {
			if normalizeInfoKey(k) == want {
				name, value, found = k, v, true
				break
			}
		}
	}

	if !found {
		available := make([]string, 0, len(fields))
		for k := range fields {
			available = append(available, k)
		}
		sort.Strings(available)

		return nil, &InfoKeyNotFoundError{
			Title:         title,
			Key:           key,
			InfoboxType:   infoboxType,
			AvailableKeys: available,
		}
	}

	return &wiki.PageInfoKey{
		Title:       title,
		InfoboxType: infoboxType,
		Key:         name,
		Value:       value,
	}, nil
}

func normalizeInfoKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), " ", "_"))
}

// InfoKeyNotFoundError reports a key absent from a page's infobox
type InfoKeyNotFoundError struct {
	Title         string
	Key           string
	InfoboxType   string
	AvailableKeys []string
}

func (e *InfoKeyNotFoundError) Error() string {
	if e.InfoboxType == "" {
		return fmt.Sprintf("page %q has no infobox", e.Title)
	}
	return fmt.Sprintf("key %q not found in %s on page %q", e.Key, e.InfoboxType, e.Title)
}
