package cache

import (
	"context"
	"time"

	"financas/internal/core"
	"financas/internal/store"
)

// Categories fronts a CategoryReader with a per-user LRU cache. Category
// lists change rarely, so a short TTL is enough to keep them fresh.
type Categories struct {
	next  store.CategoryReader
	cache *LRUCache[[]core.Category]
}

var _ store.CategoryReader = (*Categories)(nil)

func NewCategories(next store.CategoryReader, maxUsers int, ttl time.Duration) *Categories {
	return &Categories{
		next:  next,
		cache: NewLRUCache[[]core.Category](maxUsers, ttl),
	}
}

// ListCategories returns a copy of the cached list, loading it on a miss.
// Failed loads are not cached.
func (c *Categories) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	if cats, ok := c.cache.Get(userID); ok {
		return clone(cats), nil
	}
	cats, err := c.next.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(userID, clone(cats))
	return cats, nil
}

// CleanExpired lets a Manager sweep the underlying cache.
func (c *Categories) CleanExpired() int {
	return c.cache.CleanExpired()
}

func clone(cats []core.Category) []core.Category {
	if cats == nil {
		return nil
	}
	out := make([]core.Category, len(cats))
	for i, cat := range cats {
		if cat.Tags != nil {
			cat.Tags = append([]string(nil), cat.Tags...)
		}
		out[i] = cat
	}
	return out
}

// Reader combines a transaction source with a cached category source.
type Reader struct {
	store.TransactionReader
	*Categories
}

// WithCategoryCache wraps r so category lookups go through the cache.
func WithCategoryCache(r store.Reader, maxUsers int, ttl time.Duration) *Reader {
	return &Reader{TransactionReader: r, Categories: NewCategories(r, maxUsers, ttl)}
}
