package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lanternworks/boardman/internal/board"
)

// IssueLister abstracts the remote issue source.
// This mirrors the github client's surface to avoid an import cycle.
type IssueLister interface {
	ListIssues(ctx context.Context, state string, limit int) ([]board.Item, error)
}

// CachingIssueLister wraps an IssueLister and memoizes list results under
// "github:issues:" keys, so repeated tool invocations within the TTL
// share one remote call. Values are stored as marshaled JSON so the list
// shares the cache instance used for every other tool result.
type CachingIssueLister struct {
	inner IssueLister
	cache *Cache[json.RawMessage]
	ttl   time.Duration
}

// NewCachingIssueLister creates a caching wrapper around an IssueLister.
func NewCachingIssueLister(inner IssueLister, c *Cache[json.RawMessage], ttl time.Duration) *CachingIssueLister {
	return &CachingIssueLister{inner: inner, cache: c, ttl: ttl}
}

// ListIssues returns the cached item list for the filter, computing it
// via the inner lister on miss. A failed inner call passes through
// uncached.
func (c *CachingIssueLister) ListIssues(ctx context.Context, state string, limit int) ([]board.Item, error) {
	raw, err := c.cache.GetOrCompute(IssuesKey(state, limit), c.ttl, func() (json.RawMessage, error) {
		items, err := c.inner.ListIssues(ctx, state, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(items)
	})
	if err != nil {
		return nil, err
	}
	var items []board.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cached issue list: %w", err)
	}
	return items, nil
}

// IssuesKey builds the cache key for an issue list lookup.
func IssuesKey(state string, limit int) string {
	if state == "" {
		state = "all"
	}
	return fmt.Sprintf("github:issues:%s:%d", state, limit)
}
