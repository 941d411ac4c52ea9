package tasks

import (
	"context"
)

// RoomDataCacheInterface caches room task snapshots so reactivating a
// recently used room skips the database round trip
type RoomDataCacheInterface interface {
	Add(ctx context.Context, roomID string, entry *RoomDataCacheEntry) error
	Invalidate(ctx context.Context, roomID string) error
	Get(ctx context.Context, roomID string) (*RoomDataCacheEntry, error)
}

// RoomDataCacheEntry holds one room's persisted task snapshot
type RoomDataCacheEntry struct {
	Tasks []Task
}
