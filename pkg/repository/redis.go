package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/rostishop/pkg/config"
	"github.com/example/rostishop/pkg/models"
)

// ErrCacheMiss is returned when a key is absent; callers fall through to the
// database.
var ErrCacheMiss = errors.New("cache miss")

const productCacheTTL = 5 * time.Minute

type RedisCache struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisCache(cfg *config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) setJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisCache) getJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func productKey(filter ProductFilter) string {
	return fmt.Sprintf("products:%t:%s:%s", filter.ActiveOnly, filter.Category, filter.Search)
}

func (r *RedisCache) GetProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var products []models.Product
	if err := r.getJSON(ctx, productKey(filter), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *RedisCache) SetProducts(ctx context.Context, filter ProductFilter, products []models.Product) error {
	return r.setJSON(ctx, productKey(filter), products, productCacheTTL)
}

// InvalidateProducts drops every cached product listing. Called on any admin
// write to the catalog.
func (r *RedisCache) InvalidateProducts(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "products:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
