package tasks

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// RoomDataCacheMemory caches room snapshots in process memory
type RoomDataCacheMemory struct {
	Cache *lru.Cache
}

// NewRoomDataCacheMemory initializes a new RoomDataCacheMemory
func NewRoomDataCacheMemory() (*RoomDataCacheMemory, error) {
	cache, err := lru.New(100)
	if err != nil {
		return nil, err
	}

	return &RoomDataCacheMemory{
		Cache: cache,
	}, nil
}

// Add adds a RoomDataCacheEntry to the cache
func (c *RoomDataCacheMemory) Add(_ context.Context, roomID string, entry *RoomDataCacheEntry) error {
	_ = c.Cache.Add(roomID, entry)
	return nil
}

// Invalidate removes a RoomDataCacheEntry from the cache
func (c *RoomDataCacheMemory) Invalidate(_ context.Context, roomID string) error {
	c.Cache.Remove(roomID)
	return nil
}

// Get retrieves a RoomDataCacheEntry from the cache
func (c *RoomDataCacheMemory) Get(_ context.Context, roomID string) (*RoomDataCacheEntry, error) {
	result, ok := c.Cache.Get(roomID)
	if !ok {
		return nil, fmt.Errorf("could not find room %s in snapshot cache", roomID)
	}

	entry, ok := result.(*RoomDataCacheEntry)
	if !ok {
		return nil, fmt.Errorf("cache entry was not a room snapshot entry")
	}

	return entry, nil
}
