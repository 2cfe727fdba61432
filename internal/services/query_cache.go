package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"paper_summaries_go_backend/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	queryCachePrefix        = "papers:query"
	queryCacheGenerationKey = "papers:query:generation"
)

// RedisQueryCache caches list pages in Redis. Keys embed a generation number
// and Invalidate bumps it, so entries written before a mutation are never
// read again and expire on their TTL.
type RedisQueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisQueryCache(client *redis.Client, ttl time.Duration) *RedisQueryCache {
	return &RedisQueryCache{client: client, ttl: ttl}
}

func (c *RedisQueryCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, queryCacheGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func queryCacheKey(generation int64, query models.PaperQuery) string {
	values := url.Values{}
	values.Set("search", query.Search)
	values.Set("category", string(query.Category))
	values.Set("page", fmt.Sprint(query.Page))
	values.Set("limit", fmt.Sprint(query.Limit))
	return fmt.Sprintf("%s:%d:%s", queryCachePrefix, generation, values.Encode())
}

func (c *RedisQueryCache) GetPage(ctx context.Context, query models.PaperQuery) (*models.PaperPage, string, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Query cache generation lookup failed")
		return nil, "", false
	}
	key := queryCacheKey(gen, query)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("Query cache read failed")
		}
		return nil, key, false
	}
	var page models.PaperPage
	if err := json.Unmarshal(data, &page); err != nil {
		log.Warn().Err(err).Msg("Query cache entry is corrupt")
		return nil, key, false
	}
	return &page, key, true
}

func (c *RedisQueryCache) SetPage(ctx context.Context, key string, page *models.PaperPage) {
	data, err := json.Marshal(page)
	if err != nil {
		log.Warn().Err(err).Msg("Query cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Query cache write failed")
	}
}

func (c *RedisQueryCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, queryCacheGenerationKey).Err()
}
