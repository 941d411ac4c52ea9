package tasks

import (
	"time"

	"github.com/iconix/fortudo/pkg/date"
)

// Kind tags the two task variants
type Kind string

// The two task variants: bound to a concrete time, or bound to a priority tier
const (
	KindScheduled   Kind = "scheduled"
	KindUnscheduled Kind = "unscheduled"
)

// Priority is the tier of an unscheduled task
type Priority string

// Priority tiers, highest first in every unscheduled listing
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority tier to a sortable weight, higher is more urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// IsValid reports whether the value is one of the known tiers
func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Task is the model for a task. Kind decides which of the variant fields
// are meaningful: scheduled tasks carry StartTime/DurationMinutes/Locked,
// unscheduled tasks carry EstimatedDurationMinutes/Priority.
type Task struct {
	ID          string    `json:"id" bson:"_id"`
	RoomID      string    `json:"roomId" bson:"roomId" validate:"required"`
	Kind        Kind      `json:"kind" bson:"kind" validate:"required,oneof=scheduled unscheduled"`
	Description string    `json:"description" bson:"description" validate:"required"`
	Completed   bool      `json:"completed" bson:"completed"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`

	StartTime       int  `json:"startTime" bson:"startTime"`
	DurationMinutes int  `json:"durationMinutes" bson:"durationMinutes"`
	Locked          bool `json:"locked" bson:"locked"`

	EstimatedDurationMinutes int      `json:"estimatedDurationMinutes" bson:"estimatedDurationMinutes"`
	Priority                 Priority `json:"priority,omitempty" bson:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// IsScheduled reports whether the task is the time-bound variant
func (t *Task) IsScheduled() bool {
	return t.Kind == KindScheduled
}

// EndTime is the derived end minute of a scheduled task. It may exceed the
// day when the task runs past midnight.
func (t *Task) EndTime() int {
	return t.StartTime + t.DurationMinutes
}

// Interval returns the occupied half-open interval of a scheduled task
func (t *Task) Interval() date.Interval {
	return date.NewInterval(t.StartTime, t.DurationMinutes)
}

// TaskPatch is the partial view of a task for an update; nil fields are
// left untouched
type TaskPatch struct {
	Description              *string   `json:"description"`
	Completed                *bool     `json:"completed"`
	StartTime                *int      `json:"startTime"`
	DurationMinutes          *int      `json:"durationMinutes"`
	EstimatedDurationMinutes *int      `json:"estimatedDurationMinutes"`
	Priority                 *Priority `json:"priority"`
}
