package rooms

import (
	"context"
)

// MockRoomRepository is a room repository for testing
type MockRoomRepository struct {
	Rooms []*Room
}

// Add adds a room
func (m *MockRoomRepository) Add(_ context.Context, room *Room) error {
	stored := *room
	m.Rooms = append(m.Rooms, &stored)
	return nil
}

// FindByCode finds a room by its code
func (m *MockRoomRepository) FindByCode(_ context.Context, code string) (*Room, error) {
	for _, room := range m.Rooms {
		if room.Code == code {
			found := *room
			return &found, nil
		}
	}

	return nil, ErrRoomNotFound
}

// FindAll lists all rooms in insertion order
func (m *MockRoomRepository) FindAll(_ context.Context) ([]Room, error) {
	rooms := []Room{}
	for _, room := range m.Rooms {
		rooms = append(rooms, *room)
	}

	return rooms, nil
}

// Remove deletes a room
func (m *MockRoomRepository) Remove(_ context.Context, code string) error {
	for i, room := range m.Rooms {
		if room.Code == code {
			m.Rooms = append(m.Rooms[:i], m.Rooms[i+1:]...)
			return nil
		}
	}

	return ErrRoomNotFound
}
