package tasks

import (
	"context"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
)

// RoomDataCacheRedis caches room snapshots in redis so a room reload stays
// warm across engine processes
type RoomDataCacheRedis struct {
	Cache *cache.Cache
}

// NewRoomDataCacheRedis initializes a new RoomDataCacheRedis
func NewRoomDataCacheRedis(redisClient *redis.Client) (*RoomDataCacheRedis, error) {
	redisCache := cache.New(&cache.Options{
		Redis: redisClient,
	})

	return &RoomDataCacheRedis{
		Cache: redisCache,
	}, nil
}

// Add adds a RoomDataCacheEntry
func (c *RoomDataCacheRedis) Add(ctx context.Context, roomID string, entry *RoomDataCacheEntry) error {
	err := c.Cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   roomID,
		Value: entry,
		TTL:   time.Minute * 10,
	})
	if err != nil {
		return err
	}

	return nil
}

// Invalidate invalidates an entry
func (c *RoomDataCacheRedis) Invalidate(ctx context.Context, roomID string) error {
	err := c.Cache.Delete(ctx, roomID)
	if err != nil {
		return err
	}

	return nil
}

// Get retrieves a RoomDataCacheEntry
func (c *RoomDataCacheRedis) Get(ctx context.Context, roomID string) (*RoomDataCacheEntry, error) {
	result := RoomDataCacheEntry{}
	err := c.Cache.Get(ctx, roomID, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
