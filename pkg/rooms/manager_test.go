package rooms

import (
	"context"
	"testing"
	"time"

	"github.com/iconix/fortudo/pkg/locking"
	"github.com/iconix/fortudo/pkg/logger"
	"github.com/iconix/fortudo/pkg/tasks"
)

func newTestManager(t *testing.T) (*Manager, *MockRoomRepository, *tasks.MockTaskRepository) {
	t.Helper()

	roomRepository := &MockRoomRepository{}
	taskRepository := &tasks.MockTaskRepository{}

	cache, err := tasks.NewRoomDataCacheMemory()
	if err != nil {
		t.Fatalf("NewRoomDataCacheMemory() error = %v", err)
	}

	manager, err := NewManager(roomRepository, taskRepository, cache, locking.NewLockerMemory(), logger.Logger{})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(manager.Shutdown)

	return manager, roomRepository, taskRepository
}

func TestManager_Engine_RegistersRoomOnFirstVisit(t *testing.T) {
	manager, roomRepository, _ := newTestManager(t)
	ctx := context.Background()

	engine, err := manager.Engine(ctx, "demo")
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	if engine.Store().RoomID() != "demo" {
		t.Errorf("RoomID() = %q, want %q", engine.Store().RoomID(), "demo")
	}

	room, err := roomRepository.FindByCode(ctx, "demo")
	if err != nil {
		t.Fatalf("room was not registered: %v", err)
	}
	if room.CreatedAt.IsZero() {
		t.Errorf("registered room has no creation timestamp")
	}
}

func TestManager_Engine_ReusesLiveEngine(t *testing.T) {
	manager, _, _ := newTestManager(t)
	ctx := context.Background()

	first, err := manager.Engine(ctx, "demo")
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	second, err := manager.Engine(ctx, "demo")
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}

	if first != second {
		t.Errorf("Engine() built a second engine for a live room")
	}

	other, err := manager.Engine(ctx, "other")
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	if other == first {
		t.Errorf("Engine() shared one engine across rooms")
	}
}

func TestManager_Engine_LoadsSnapshot(t *testing.T) {
	manager, _, taskRepository := newTestManager(t)
	ctx := context.Background()

	seed := tasks.Task{
		ID:              "1",
		RoomID:          "demo",
		Kind:            tasks.KindScheduled,
		Description:     "Standup",
		StartTime:       540,
		DurationMinutes: 30,
		CreatedAt:       time.Now(),
	}
	if err := taskRepository.Upsert(ctx, &seed); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	engine, err := manager.Engine(ctx, "demo")
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}

	scheduled := engine.Store().Scheduled()
	if len(scheduled) != 1 || scheduled[0].Description != "Standup" {
		t.Errorf("engine did not load the persisted snapshot: %v", scheduled)
	}
}

func TestManager_Engine_PersistsMutations(t *testing.T) {
	manager, _, taskRepository := newTestManager(t)
	ctx := context.Background()

	engine, err := manager.Engine(ctx, "demo")
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}

	task, err := engine.SubmitCandidate(tasks.SurfaceAddForm, tasks.Candidate{
		Description:     "Standup",
		Scheduled:       true,
		StartTime:       540,
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("SubmitCandidate() error = %v", err)
	}

	persisted, err := taskRepository.FindAllByRoom(ctx, "demo")
	if err != nil {
		t.Fatalf("FindAllByRoom() error = %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != task.ID {
		t.Errorf("engine mutation was not persisted: %v", persisted)
	}
}

func TestManager_Engine_SurvivesDeactivation(t *testing.T) {
	manager, _, _ := newTestManager(t)
	ctx := context.Background()

	engine, err := manager.Engine(ctx, "demo")
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}

	if _, err := engine.SubmitCandidate(tasks.SurfaceAddForm, tasks.Candidate{
		Description:     "Standup",
		Scheduled:       true,
		StartTime:       540,
		DurationMinutes: 30,
	}); err != nil {
		t.Fatalf("SubmitCandidate() error = %v", err)
	}

	manager.Deactivate("demo")

	reactivated, err := manager.Engine(ctx, "demo")
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	if reactivated == engine {
		t.Errorf("Engine() returned a deactivated engine")
	}
	if len(reactivated.Store().Scheduled()) != 1 {
		t.Errorf("reactivated engine lost the persisted tasks")
	}
}

func TestManager_WarmUp(t *testing.T) {
	manager, roomRepository, taskRepository := newTestManager(t)
	ctx := context.Background()

	for _, code := range []string{"alpha", "beta"} {
		if err := roomRepository.Add(ctx, &Room{Code: code, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	seed := tasks.Task{ID: "1", RoomID: "alpha", Kind: tasks.KindScheduled,
		Description: "Standup", StartTime: 540, DurationMinutes: 30, CreatedAt: time.Now()}
	if err := taskRepository.Upsert(ctx, &seed); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := manager.WarmUp(ctx); err != nil {
		t.Fatalf("WarmUp() error = %v", err)
	}

	entry, err := manager.Cache.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("cache miss after warm up: %v", err)
	}
	if len(entry.Tasks) != 1 {
		t.Errorf("warmed snapshot has %d tasks, want 1", len(entry.Tasks))
	}

	if _, err := manager.Cache.Get(ctx, "beta"); err != nil {
		t.Errorf("cache miss for empty room after warm up: %v", err)
	}
}
