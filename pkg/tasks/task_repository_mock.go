package tasks

import (
	"context"
)

// MockTaskRepository is a task repository for testing
type MockTaskRepository struct {
	Tasks []*Task
}

// Upsert adds or replaces a task
func (m *MockTaskRepository) Upsert(_ context.Context, task *Task) error {
	stored := *task
	for i, t := range m.Tasks {
		if t.ID == task.ID && t.RoomID == task.RoomID {
			m.Tasks[i] = &stored
			return nil
		}
	}

	m.Tasks = append(m.Tasks, &stored)
	return nil
}

// Delete removes a task
func (m *MockTaskRepository) Delete(_ context.Context, roomID string, taskID string) error {
	for i, t := range m.Tasks {
		if t.ID == taskID && t.RoomID == roomID {
			m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
			return nil
		}
	}

	return ErrTaskNotFound
}

// FindAllByRoom finds all tasks of a room in insertion order
func (m *MockTaskRepository) FindAllByRoom(_ context.Context, roomID string) ([]Task, error) {
	tasks := []Task{}
	for _, t := range m.Tasks {
		if t.RoomID == roomID {
			tasks = append(tasks, *t)
		}
	}

	return tasks, nil
}
