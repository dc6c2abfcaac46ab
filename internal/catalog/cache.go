package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pricewatch/pricewatch/internal/platform/constants"
	"github.com/pricewatch/pricewatch/internal/pricing"
	"github.com/pricewatch/pricewatch/pkg/normalize"
)

// # Search Cache

// CachedMovieSearcher wraps a [MovieSearcher] with a Redis read-through
// cache. Upstream quota is the scarce resource here: a cache hit costs
// nothing against the twenty-calls-per-minute store limit.
//
// Cache failures are never fatal; a broken Redis degrades to uncached
// searches with a warning.
type CachedMovieSearcher struct {
	inner  MovieSearcher
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedMovieSearcher decorates a movie searcher with caching.
func NewCachedMovieSearcher(inner MovieSearcher, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedMovieSearcher {
	return &CachedMovieSearcher{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Search serves from cache when possible. Only successful, non-empty
// responses are cached; rate-limit and not-found outcomes always go back
// to the upstream so a transient failure is not pinned for the TTL.
func (searcher *CachedMovieSearcher) Search(ctx context.Context, query string) ([]Candidate, error) {
	key := constants.RedisPrefixMovieSearch + normalize.Title(query)

	if cached, ok := searcher.lookup(ctx, key); ok {
		return cached, nil
	}

	candidates, err := searcher.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	searcher.store(ctx, key, candidates)
	return candidates, nil
}

// LookupByID passes straight through. Exact-id refreshes exist to observe
// price changes, which a cache would mask.
func (searcher *CachedMovieSearcher) LookupByID(ctx context.Context, externalID string) (*Candidate, error) {
	return searcher.inner.LookupByID(ctx, externalID)
}

func (searcher *CachedMovieSearcher) lookup(ctx context.Context, key string) ([]Candidate, bool) {
	payload, err := searcher.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			searcher.logger.WarnContext(ctx, "catalog_cache_get_failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return nil, false
	}

	var candidates []Candidate
	if err := json.Unmarshal(payload, &candidates); err != nil {
		searcher.logger.WarnContext(ctx, "catalog_cache_decode_failed", slog.String("key", key))
		return nil, false
	}
	return candidates, true
}

func (searcher *CachedMovieSearcher) store(ctx context.Context, key string, candidates []Candidate) {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	if err := searcher.client.Set(ctx, key, payload, searcher.ttl).Err(); err != nil {
		searcher.logger.WarnContext(ctx, "catalog_cache_set_failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// CachedBookSearcher is the book-side counterpart of [CachedMovieSearcher].
type CachedBookSearcher struct {
	inner  BookSearcher
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedBookSearcher decorates a book searcher with caching.
func NewCachedBookSearcher(inner BookSearcher, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedBookSearcher {
	return &CachedBookSearcher{inner: inner, client: client, ttl: ttl, logger: logger}
}

// SearchBooks serves from cache, falling through to the upstream on any
// cache miss or Redis failure. Sample-only responses are not cached so a
// recovered upstream becomes visible immediately.
func (searcher *CachedBookSearcher) SearchBooks(ctx context.Context, query string) ([]Candidate, error) {
	key := constants.RedisPrefixBookSearch + normalize.Title(query)

	payload, err := searcher.client.Get(ctx, key).Bytes()
	if err == nil {
		var candidates []Candidate
		if decodeErr := json.Unmarshal(payload, &candidates); decodeErr == nil {
			return candidates, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		searcher.logger.WarnContext(ctx, "catalog_cache_get_failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	candidates, err := searcher.inner.SearchBooks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("book search: %w", err)
	}

	if !sampleOnly(candidates) {
		if encoded, marshalErr := json.Marshal(candidates); marshalErr == nil {
			if setErr := searcher.client.Set(ctx, key, encoded, searcher.ttl).Err(); setErr != nil {
				searcher.logger.WarnContext(ctx, "catalog_cache_set_failed",
					slog.String("key", key),
					slog.String("error", setErr.Error()))
			}
		}
	}
	return candidates, nil
}

func sampleOnly(candidates []Candidate) bool {
	for _, candidate := range candidates {
		if candidate.Source != pricing.SourceSample {
			return false
		}
	}
	return len(candidates) > 0
}
