package tasks

import (
	"fmt"

	"github.com/iconix/fortudo/pkg/date"
)

// FindConflicts returns every scheduled task whose interval overlaps the
// candidate, in ascending start-time order. excludeTaskID skips the task
// being edited so it cannot conflict with itself. The detector is pure: the
// same comparison runs for the add form, the inline edit form and the
// schedule modal.
func FindConflicts(scheduled []Task, candidate date.Interval, excludeTaskID string) []Task {
	var conflicts []Task
	for _, task := range scheduled {
		if task.ID == excludeTaskID {
			continue
		}
		if task.Interval().Overlaps(candidate) {
			conflicts = append(conflicts, task)
		}
	}
	return conflicts
}

// FindConflicts runs the conflict detector against the store's current
// scheduled list
func (s *Store) FindConflicts(candidate date.Interval, excludeTaskID string) []Task {
	return FindConflicts(s.Scheduled(), candidate, excludeTaskID)
}

// DescribeConflicts renders a warning sentence for a conflict list. The
// first conflicting task's description appears verbatim so callers can
// assert on it; the empty string means no conflict.
func DescribeConflicts(conflicts []Task) string {
	if len(conflicts) == 0 {
		return ""
	}

	first := conflicts[0]
	description := fmt.Sprintf("Overlaps with %q (%s - %s)",
		first.Description,
		date.FormatClock12(first.StartTime),
		date.FormatClock12(first.EndTime()))

	switch len(conflicts) {
	case 1:
		return description + "."
	case 2:
		return description + " and 1 more task."
	default:
		return fmt.Sprintf("%s and %d more tasks.", description, len(conflicts)-1)
	}
}
