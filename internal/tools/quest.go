package tools

import (
	"context"

	"github.com/yourusername/osrs-mcp/internal/quest"
	"github.com/yourusername/osrs-mcp/internal/wiki"
)

// GetQuestInfo assembles the structured record for a quest page. Quest pages
// change rarely, so results share the long parse-tree TTL.
func GetQuestInfo(ctx context.Context, client *wiki.Client, svc *quest.Service, name string) (*quest.Info, error) {
	cacheKey := wiki.QuestCacheKey(name)
	if cached, ok := client.GetCache().Get(cacheKey); ok {
		return cached.(*quest.Info), nil
	}

	info, err := svc.GetQuestInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	client.GetCache().Set(cacheKey, info, client.GetCacheTTLInfo())

	return info, nil
}
