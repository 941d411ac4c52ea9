package tasks

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrTaskNotFound is returned when an operation references a task id absent
// from the store
var ErrTaskNotFound = errors.New("task not found")

// ErrEmptyDescription is returned when a task is written without a description
var ErrEmptyDescription = errors.New("task description must not be empty")

// ErrNotScheduled is returned when a scheduled-only operation targets an
// unscheduled task
var ErrNotScheduled = errors.New("task is not scheduled")

// ErrNotUnscheduled is returned when an unscheduled-only operation targets a
// scheduled task
var ErrNotUnscheduled = errors.New("task is not unscheduled")

// StoreEventType marks a store mutation as an upsert or a delete
type StoreEventType string

// The two mutation event types the persistence collaborator consumes
const (
	EventUpsert StoreEventType = "upsert"
	EventDelete StoreEventType = "delete"
)

// StoreEvent is emitted to observers on every store mutation
type StoreEvent struct {
	Type StoreEventType
	Task Task
}

// StoreObserver is an Observer of store mutations
type StoreObserver interface {
	OnTaskEvent(event StoreEvent)
}

// Store is the in-memory ordered collection of one room's tasks. It holds
// no timers; every mutation happens synchronously and is published to the
// subscribed observers. The store itself does not forbid overlapping
// scheduled tasks, the workflow gates whether an overlapping write needs
// pre-approval.
type Store struct {
	roomID      string
	tasks       []*Task
	subscribers []StoreObserver
	mutex       sync.RWMutex
}

// NewStore builds a Store for a room from a persisted snapshot
func NewStore(roomID string, snapshot []Task) *Store {
	store := &Store{roomID: roomID}
	for i := range snapshot {
		task := snapshot[i]
		store.tasks = append(store.tasks, &task)
	}
	return store
}

// RoomID returns the room this store belongs to
func (s *Store) RoomID() string {
	return s.roomID
}

// Subscribe registers a StoreObserver
func (s *Store) Subscribe(o StoreObserver) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.subscribers = append(s.subscribers, o)
}

func (s *Store) publish(eventType StoreEventType, task Task) {
	for _, subscriber := range s.subscribers {
		subscriber.OnTaskEvent(StoreEvent{Type: eventType, Task: task})
	}
}

// Add adds a task, assigning an id and creation timestamp when missing
func (s *Store) Add(task *Task) error {
	if strings.TrimSpace(task.Description) == "" {
		return ErrEmptyDescription
	}

	if !task.IsScheduled() && !task.Priority.IsValid() {
		return errors.Errorf("unscheduled task needs a priority, got %q", task.Priority)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.RoomID = s.roomID

	s.tasks = append(s.tasks, task)
	s.publish(EventUpsert, *task)

	return nil
}

// Update applies a partial patch to a task
func (s *Store) Update(id string, patch TaskPatch) (*Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, ErrEmptyDescription
		}
		task.Description = *patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.StartTime != nil {
		task.StartTime = *patch.StartTime
	}
	if patch.DurationMinutes != nil {
		task.DurationMinutes = *patch.DurationMinutes
	}
	if patch.EstimatedDurationMinutes != nil {
		task.EstimatedDurationMinutes = *patch.EstimatedDurationMinutes
	}
	if patch.Priority != nil {
		if !patch.Priority.IsValid() {
			return nil, errors.Errorf("invalid priority %q", *patch.Priority)
		}
		task.Priority = *patch.Priority
	}

	s.publish(EventUpsert, *task)

	updated := *task
	return &updated, nil
}

// Remove deletes a task from the store
func (s *Store) Remove(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, task := range s.tasks {
		if task.ID == id {
			removed := *task
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.publish(EventDelete, removed)
			return nil
		}
	}

	return ErrTaskNotFound
}

// ToggleComplete flips a task's completed flag
func (s *Store) ToggleComplete(id string) (*Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, err := s.find(id)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	s.publish(EventUpsert, *task)

	toggled := *task
	return &toggled, nil
}

// ToggleLock flips the locked flag of a scheduled task
func (s *Store) ToggleLock(id string) (*Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if !task.IsScheduled() {
		return nil, ErrNotScheduled
	}

	task.Locked = !task.Locked
	s.publish(EventUpsert, *task)

	toggled := *task
	return &toggled, nil
}

// Schedule moves an unscheduled task into the scheduled set at a concrete
// start time and duration
func (s *Store) Schedule(id string, startTime int, durationMinutes int) (*Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if task.IsScheduled() {
		return nil, ErrNotUnscheduled
	}

	task.Kind = KindScheduled
	task.StartTime = startTime
	task.DurationMinutes = durationMinutes
	task.EstimatedDurationMinutes = 0
	task.Priority = ""

	s.publish(EventUpsert, *task)

	scheduled := *task
	return &scheduled, nil
}

// Unschedule moves a scheduled task back to the unscheduled set. The
// previous duration becomes the estimate and the task lands on the middle
// priority tier, since scheduled tasks carry no priority of their own.
func (s *Store) Unschedule(id string) (*Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if !task.IsScheduled() {
		return nil, ErrNotScheduled
	}

	task.Kind = KindUnscheduled
	task.EstimatedDurationMinutes = task.DurationMinutes
	task.Priority = PriorityMedium
	task.StartTime = 0
	task.DurationMinutes = 0
	task.Locked = false

	s.publish(EventUpsert, *task)

	unscheduled := *task
	return &unscheduled, nil
}

// ClearAll removes every task in the room
func (s *Store) ClearAll() int {
	return s.clear(func(*Task) bool { return true })
}

// ClearScheduled removes only the scheduled tasks
func (s *Store) ClearScheduled() int {
	return s.clear(func(t *Task) bool { return t.IsScheduled() })
}

// ClearCompleted removes only the completed tasks
func (s *Store) ClearCompleted() int {
	return s.clear(func(t *Task) bool { return t.Completed })
}

func (s *Store) clear(match func(*Task) bool) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var kept []*Task
	var removed []Task
	for _, task := range s.tasks {
		if match(task) {
			removed = append(removed, *task)
			continue
		}
		kept = append(kept, task)
	}
	s.tasks = kept

	for _, task := range removed {
		s.publish(EventDelete, task)
	}

	return len(removed)
}

// Find returns a copy of a task by id
func (s *Store) Find(id string) (*Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	task, err := s.find(id)
	if err != nil {
		return nil, err
	}

	found := *task
	return &found, nil
}

func (s *Store) find(id string) (*Task, error) {
	for _, task := range s.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return nil, ErrTaskNotFound
}

// Scheduled returns the scheduled tasks in ascending start-time order,
// ties broken by insertion time
func (s *Store) Scheduled() []Task {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var scheduled []Task
	for _, task := range s.tasks {
		if task.IsScheduled() {
			scheduled = append(scheduled, *task)
		}
	}

	sort.SliceStable(scheduled, func(i, j int) bool {
		if scheduled[i].StartTime != scheduled[j].StartTime {
			return scheduled[i].StartTime < scheduled[j].StartTime
		}
		return scheduled[i].CreatedAt.Before(scheduled[j].CreatedAt)
	})

	return scheduled
}

// Unscheduled returns the unscheduled tasks ordered by priority descending,
// ties broken by insertion order
func (s *Store) Unscheduled() []Task {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var unscheduled []Task
	for _, task := range s.tasks {
		if !task.IsScheduled() {
			unscheduled = append(unscheduled, *task)
		}
	}

	sort.SliceStable(unscheduled, func(i, j int) bool {
		return unscheduled[i].Priority.Rank() > unscheduled[j].Priority.Rank()
	})

	return unscheduled
}

// Len returns the total number of tasks in the store
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.tasks)
}
