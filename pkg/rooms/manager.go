package rooms

import (
	"context"
	"fmt"
	"reflect"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/iconix/fortudo/pkg/locking"
	"github.com/iconix/fortudo/pkg/logger"
	"github.com/iconix/fortudo/pkg/tasks"
)

const activationLockTTL = time.Second * 10

type engineEntry struct {
	workflow *tasks.Workflow
	ticker   *tasks.BoundaryTicker
}

// Manager activates and owns the per-room engines. Visiting a room for the
// first time registers it; reactivating a recently used room reuses the live
// engine from the LRU. Activation is guarded by a per-room lock so two
// concurrent requests cannot build two engines for the same room.
type Manager struct {
	RoomRepository RoomRepositoryInterface
	TaskRepository tasks.TaskRepositoryInterface
	Cache          tasks.RoomDataCacheInterface
	Locker         locking.LockerInterface
	Logger         logger.Interface

	engines *lru.Cache
}

// NewManager initializes a Manager. Evicted engines get their boundary
// tickers stopped.
func NewManager(roomRepository RoomRepositoryInterface, taskRepository tasks.TaskRepositoryInterface,
	cache tasks.RoomDataCacheInterface, locker locking.LockerInterface, log logger.Interface) (*Manager, error) {
	manager := &Manager{
		RoomRepository: roomRepository,
		TaskRepository: taskRepository,
		Cache:          cache,
		Locker:         locker,
		Logger:         log,
	}

	engines, err := lru.NewWithEvict(100, func(_ interface{}, value interface{}) {
		if entry, ok := value.(*engineEntry); ok {
			entry.ticker.Stop()
		}
	})
	if err != nil {
		return nil, err
	}

	manager.engines = engines
	return manager, nil
}

// Engine returns the live engine for a room, activating it when needed
func (m *Manager) Engine(ctx context.Context, roomID string) (*tasks.Workflow, error) {
	if cached, ok := m.engines.Get(roomID); ok {
		return cached.(*engineEntry).workflow, nil
	}

	lock, err := m.Locker.Acquire(ctx, "room-activation:"+roomID, activationLockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "could not lock room activation")
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			m.Logger.Error("could not release room activation lock", err)
		}
	}()

	if cached, ok := m.engines.Get(roomID); ok {
		return cached.(*engineEntry).workflow, nil
	}

	if err := m.register(ctx, roomID); err != nil {
		return nil, err
	}

	snapshot, err := m.snapshot(ctx, roomID)
	if err != nil {
		return nil, err
	}

	store := tasks.NewStore(roomID, snapshot)
	store.Subscribe(&tasks.RepositorySink{
		Repository: m.TaskRepository,
		Cache:      m.Cache,
		Logger:     m.Logger,
	})

	entry := &engineEntry{
		workflow: tasks.NewWorkflow(store, m.Logger),
		ticker:   m.newBoundaryTicker(roomID, store),
	}
	entry.ticker.Start(context.Background())

	m.engines.Add(roomID, entry)
	return entry.workflow, nil
}

// register creates the room document on first visit
func (m *Manager) register(ctx context.Context, roomID string) error {
	_, err := m.RoomRepository.FindByCode(ctx, roomID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrRoomNotFound) {
		return err
	}

	m.Logger.Info(fmt.Sprintf("Registering new room %s", roomID))
	return m.RoomRepository.Add(ctx, &Room{Code: roomID, CreatedAt: time.Now()})
}

// snapshot loads a room's task snapshot, preferring the cache
func (m *Manager) snapshot(ctx context.Context, roomID string) ([]tasks.Task, error) {
	if entry, err := m.Cache.Get(ctx, roomID); err == nil {
		return entry.Tasks, nil
	}

	snapshot, err := m.TaskRepository.FindAllByRoom(ctx, roomID)
	if err != nil {
		return nil, errors.Wrap(err, "could not load room snapshot")
	}

	if err := m.Cache.Add(ctx, roomID, &tasks.RoomDataCacheEntry{Tasks: snapshot}); err != nil {
		m.Logger.Warning(fmt.Sprintf("could not cache room snapshot: %v", err))
	}

	return snapshot, nil
}

func (m *Manager) newBoundaryTicker(roomID string, store *tasks.Store) *tasks.BoundaryTicker {
	var previous []tasks.BoundaryMarker
	return tasks.NewBoundaryTicker(store, func(markers []tasks.BoundaryMarker) {
		if reflect.DeepEqual(markers, previous) {
			return
		}
		previous = markers
		m.Logger.Debug(fmt.Sprintf("Boundary markers changed for room %s", roomID))
	})
}

// WarmUp prefetches every known room's snapshot into the cache
func (m *Manager) WarmUp(ctx context.Context) error {
	rooms, err := m.RoomRepository.FindAll(ctx)
	if err != nil {
		return errors.Wrap(err, "could not list rooms")
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, room := range rooms {
		roomID := room.Code
		group.Go(func() error {
			_, err := m.snapshot(ctx, roomID)
			return err
		})
	}

	return group.Wait()
}

// Deactivate drops a room's live engine, stopping its ticker
func (m *Manager) Deactivate(roomID string) {
	m.engines.Remove(roomID)
}

// Shutdown tears down all live engines
func (m *Manager) Shutdown() {
	m.engines.Purge()
}
