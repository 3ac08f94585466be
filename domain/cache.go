package domain

import "context"

// PageCache is a whole-page cache sitting in front of the global feed.
// Entries expire after a fixed TTL. Clear wipes everything at once - the
// cache is deliberately coarse-grained, there is no per-entry invalidation.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte) error
	Clear(ctx context.Context) error
}
