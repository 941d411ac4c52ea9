package tasks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/iconix/fortudo/pkg/date"
	"github.com/iconix/fortudo/pkg/logger"
)

// ErrNegativeDuration is returned when a candidate carries a negative total
// duration. Zero is permitted by the store.
var ErrNegativeDuration = errors.New("duration must not be negative")

// ErrGapNotFound is returned when a gap selection no longer matches the
// current schedule
var ErrGapNotFound = errors.New("gap not found")

// ErrConfirmationRequired is returned when a destructive action is executed
// without a valid confirmation token
var ErrConfirmationRequired = errors.New("destructive action requires confirmation")

// SurfaceKind names the three editing surfaces that share one
// conflict-detection contract
type SurfaceKind string

// The editing surfaces
const (
	SurfaceAddForm       SurfaceKind = "add-form"
	SurfaceInlineEdit    SurfaceKind = "inline-edit"
	SurfaceScheduleModal SurfaceKind = "schedule-modal"
)

// SurfaceState is the confirmation state of an editing surface
type SurfaceState string

// Surface states: a conflicted surface has already shown its warning, so
// submitting from it is pre-approved
const (
	StateIdle       SurfaceState = "idle"
	StateConflicted SurfaceState = "conflicted"
)

var defaultSubmitLabels = map[SurfaceKind]string{
	SurfaceAddForm:       "Add",
	SurfaceInlineEdit:    "Save",
	SurfaceScheduleModal: "Schedule",
}

// rescheduleLabel replaces the submit label while a surface is conflicted
const rescheduleLabel = "Reschedule"

// Candidate is the task draft a surface is currently editing
type Candidate struct {
	Description     string   `json:"description"`
	Scheduled       bool     `json:"scheduled"`
	StartTime       int      `json:"startTime"`
	DurationMinutes int      `json:"durationMinutes"`
	Priority        Priority `json:"priority"`
	TargetTaskID    string   `json:"targetTaskId"`
}

func (c Candidate) interval() date.Interval {
	return date.NewInterval(c.StartTime, c.DurationMinutes)
}

// Review is the live validation result for a candidate: the conflict list,
// the warning to show and the submit affordance to render
type Review struct {
	Surface     SurfaceKind  `json:"surface"`
	State       SurfaceState `json:"state"`
	Conflicts   []Task       `json:"conflicts"`
	Warning     string       `json:"warning"`
	SubmitLabel string       `json:"submitLabel"`
	PreApproved bool         `json:"preApproved"`
	EndTimeHint string       `json:"endTimeHint"`
}

// GapSelection is the picker payload for a selected gap: the gap itself and
// the unscheduled tasks eligible to fill it, in priority order
type GapSelection struct {
	Gap   Gap    `json:"gap"`
	Tasks []Task `json:"tasks"`
}

// ModalPrefill pre-fills the schedule modal for a gap-fill: the gap's start
// time and the chosen task's own estimated duration
type ModalPrefill struct {
	TaskID          string `json:"taskId"`
	Description     string `json:"description"`
	StartTime       int    `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Review          Review `json:"review"`
}

// DestructiveAction names a bulk operation that always needs an explicit
// confirmation step, regardless of prior state
type DestructiveAction string

// The destructive bulk operations
const (
	ActionClearAll       DestructiveAction = "clear-all"
	ActionClearScheduled DestructiveAction = "clear-scheduled"
	ActionClearCompleted DestructiveAction = "clear-completed"
)

var destructiveMessages = map[DestructiveAction]string{
	ActionClearAll:       "Clear all tasks? This cannot be undone.",
	ActionClearScheduled: "Clear all scheduled tasks? This cannot be undone.",
	ActionClearCompleted: "Clear all completed tasks? This cannot be undone.",
}

// Confirmation is a pending destructive action awaiting its confirm step
type Confirmation struct {
	Token   string            `json:"token"`
	Action  DestructiveAction `json:"action"`
	Message string            `json:"message"`
}

// Workflow orchestrates the add/edit/reschedule/gap-fill flows for one
// room. It is the sole writer to the Store and the only component with a
// confirmation-visible side effect. Conflicting writes surfaced live on a
// surface are pre-approved; destructive bulk operations never are.
type Workflow struct {
	store         *Store
	logger        logger.Interface
	states        map[SurfaceKind]SurfaceState
	confirmations map[string]DestructiveAction
	mutex         sync.Mutex
}

// NewWorkflow builds a Workflow around a room's store
func NewWorkflow(store *Store, log logger.Interface) *Workflow {
	return &Workflow{
		store:         store,
		logger:        log,
		states:        map[SurfaceKind]SurfaceState{},
		confirmations: map[string]DestructiveAction{},
	}
}

// Store exposes the underlying task store for read views
func (w *Workflow) Store() *Store {
	return w.store
}

// SurfaceState returns the current confirmation state of a surface
func (w *Workflow) SurfaceState(surface SurfaceKind) SurfaceState {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if state, ok := w.states[surface]; ok {
		return state
	}
	return StateIdle
}

// EditCandidateChange revalidates a candidate after a field change. The
// same detector runs for all three surfaces, but only time-bound drafts are
// checked: an unscheduled draft occupies no interval. A conflicting
// candidate moves the surface to the conflicted state and swaps the submit
// affordance to the reschedule label, a clean one restores the default.
func (w *Workflow) EditCandidateChange(surface SurfaceKind, candidate Candidate) Review {
	review := Review{
		Surface:     surface,
		State:       StateIdle,
		SubmitLabel: defaultSubmitLabels[surface],
	}

	if candidate.Scheduled || surface == SurfaceScheduleModal {
		review.Conflicts = w.store.FindConflicts(candidate.interval(), candidate.TargetTaskID)
		review.Warning = DescribeConflicts(review.Conflicts)
		review.EndTimeHint = fmt.Sprintf("ends %s", date.FormatClock12(candidate.interval().End))
	}

	if len(review.Conflicts) > 0 {
		review.State = StateConflicted
		review.SubmitLabel = rescheduleLabel
		review.PreApproved = true
	}

	w.mutex.Lock()
	w.states[surface] = review.State
	w.mutex.Unlock()

	return review
}

// SubmitCandidate performs the write for a surface's candidate. An empty
// description or a negative duration is rejected with no store mutation and
// no state change. Conflicts never block the write here: a conflicted
// surface has already surfaced its warning, which counts as the
// confirmation (pre-approved reschedule).
func (w *Workflow) SubmitCandidate(surface SurfaceKind, candidate Candidate) (*Task, error) {
	if candidate.DurationMinutes < 0 {
		return nil, ErrNegativeDuration
	}

	if surface != SurfaceScheduleModal && strings.TrimSpace(candidate.Description) == "" {
		return nil, ErrEmptyDescription
	}

	if conflicts := w.store.FindConflicts(candidate.interval(), candidate.TargetTaskID); len(conflicts) > 0 {
		w.logger.Debug(fmt.Sprintf("pre-approved reschedule on %s over %d conflicting task(s)", surface, len(conflicts)))
	}

	task, err := w.submit(surface, candidate)
	if err != nil {
		return nil, err
	}

	w.mutex.Lock()
	w.states[surface] = StateIdle
	w.mutex.Unlock()

	return task, nil
}

func (w *Workflow) submit(surface SurfaceKind, candidate Candidate) (*Task, error) {
	switch surface {
	case SurfaceAddForm:
		task := Task{
			Description: candidate.Description,
		}
		if candidate.Scheduled {
			task.Kind = KindScheduled
			task.StartTime = candidate.StartTime
			task.DurationMinutes = candidate.DurationMinutes
		} else {
			task.Kind = KindUnscheduled
			task.EstimatedDurationMinutes = candidate.DurationMinutes
			task.Priority = candidate.Priority
		}

		if err := w.store.Add(&task); err != nil {
			return nil, err
		}
		return &task, nil

	case SurfaceInlineEdit:
		patch := TaskPatch{Description: &candidate.Description}
		if candidate.Scheduled {
			patch.StartTime = &candidate.StartTime
			patch.DurationMinutes = &candidate.DurationMinutes
		} else {
			patch.EstimatedDurationMinutes = &candidate.DurationMinutes
			if candidate.Priority != "" {
				patch.Priority = &candidate.Priority
			}
		}
		return w.store.Update(candidate.TargetTaskID, patch)

	case SurfaceScheduleModal:
		return w.store.Schedule(candidate.TargetTaskID, candidate.StartTime, candidate.DurationMinutes)
	}

	return nil, errors.Errorf("unknown surface %q", surface)
}

// SelectGap opens the gap-fill picker for the gap starting at the given
// minute: the gap plus the unscheduled tasks eligible to fill it
func (w *Workflow) SelectGap(startTime int) (*GapSelection, error) {
	for _, gap := range w.store.Gaps() {
		if gap.StartTime == startTime {
			return &GapSelection{
				Gap:   gap,
				Tasks: w.store.Unscheduled(),
			}, nil
		}
	}

	return nil, ErrGapNotFound
}

// FillGap pre-fills the schedule modal for the chosen unscheduled task:
// the gap's start time and the task's own estimated duration, which may be
// shorter or longer than the gap. The returned review has already run the
// standard conflict detection for that combination.
func (w *Workflow) FillGap(gapStartTime int, taskID string) (*ModalPrefill, error) {
	if _, err := w.SelectGap(gapStartTime); err != nil {
		return nil, err
	}

	task, err := w.store.Find(taskID)
	if err != nil {
		return nil, err
	}
	if task.IsScheduled() {
		return nil, ErrNotUnscheduled
	}

	candidate := Candidate{
		Scheduled:       true,
		StartTime:       gapStartTime,
		DurationMinutes: task.EstimatedDurationMinutes,
		TargetTaskID:    task.ID,
	}

	return &ModalPrefill{
		TaskID:          task.ID,
		Description:     task.Description,
		StartTime:       candidate.StartTime,
		DurationMinutes: candidate.DurationMinutes,
		Review:          w.EditCandidateChange(SurfaceScheduleModal, candidate),
	}, nil
}

// RequestDestructive starts the confirmation step for a destructive bulk
// action. Unlike live-validated reschedules, these are never pre-approved.
func (w *Workflow) RequestDestructive(action DestructiveAction) (*Confirmation, error) {
	message, ok := destructiveMessages[action]
	if !ok {
		return nil, errors.Errorf("unknown destructive action %q", action)
	}

	confirmation := &Confirmation{
		Token:   uuid.NewString(),
		Action:  action,
		Message: message,
	}

	w.mutex.Lock()
	w.confirmations[confirmation.Token] = action
	w.mutex.Unlock()

	return confirmation, nil
}

// ConfirmDestructive executes a previously requested destructive action and
// returns the number of removed tasks
func (w *Workflow) ConfirmDestructive(token string) (int, error) {
	w.mutex.Lock()
	action, ok := w.confirmations[token]
	if ok {
		delete(w.confirmations, token)
	}
	w.mutex.Unlock()

	if !ok {
		return 0, ErrConfirmationRequired
	}

	switch action {
	case ActionClearAll:
		return w.store.ClearAll(), nil
	case ActionClearScheduled:
		return w.store.ClearScheduled(), nil
	case ActionClearCompleted:
		return w.store.ClearCompleted(), nil
	}

	return 0, errors.Errorf("unknown destructive action %q", action)
}

// CancelDestructive drops a pending confirmation without executing it
func (w *Workflow) CancelDestructive(token string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	delete(w.confirmations, token)
}
