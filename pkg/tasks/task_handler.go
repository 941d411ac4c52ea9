package tasks

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/iconix/fortudo/pkg/communication"
	"github.com/iconix/fortudo/pkg/date"
	"github.com/iconix/fortudo/pkg/logger"
)

// EngineProviderInterface resolves the active engine for a room
type EngineProviderInterface interface {
	Engine(ctx context.Context, roomID string) (*Workflow, error)
}

// Handler handles all task related API calls
type Handler struct {
	Engines         EngineProviderInterface
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
}

// candidateRequest is the wire form of a surface's candidate: the time as
// "HH:MM" text and the duration as separate hours/minutes fields, exactly
// as the form collects them
type candidateRequest struct {
	Surface         SurfaceKind `json:"surface" validate:"omitempty,oneof=add-form inline-edit schedule-modal"`
	Description     string      `json:"description"`
	Scheduled       bool        `json:"scheduled"`
	StartTime       string      `json:"startTime"`
	DurationHours   int         `json:"durationHours"`
	DurationMinutes int         `json:"durationMinutes"`
	Priority        Priority    `json:"priority" validate:"omitempty,oneof=low medium high"`
	TargetTaskID    string      `json:"targetTaskId"`
}

func (r *candidateRequest) toCandidate() (Candidate, error) {
	candidate := Candidate{
		Description:     r.Description,
		Scheduled:       r.Scheduled,
		DurationMinutes: date.CombineDuration(r.DurationHours, r.DurationMinutes),
		Priority:        r.Priority,
		TargetTaskID:    r.TargetTaskID,
	}

	if r.StartTime != "" {
		startTime, err := date.ParseClock(r.StartTime)
		if err != nil {
			return Candidate{}, err
		}
		candidate.StartTime = startTime
	}

	return candidate, nil
}

func (handler *Handler) engine(writer http.ResponseWriter, request *http.Request) (*Workflow, bool) {
	roomID := mux.Vars(request)["roomID"]

	engine, err := handler.Engines.Engine(request.Context(), roomID)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not activate room", err)
		return nil, false
	}

	return engine, true
}

func (handler *Handler) decode(writer http.ResponseWriter, request *http.Request, payload interface{}) bool {
	err := json.NewDecoder(request.Body).Decode(payload)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return false
	}

	v := validator.New()
	err = v.Struct(payload)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return false
		}
	}

	return true
}

func (handler *Handler) respondWithEngineError(writer http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrGapNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrEmptyDescription), errors.Is(err, ErrNegativeDuration),
		errors.Is(err, ErrNotScheduled), errors.Is(err, ErrNotUnscheduled):
		status = http.StatusBadRequest
	case errors.Is(err, ErrConfirmationRequired):
		status = http.StatusConflict
	}

	handler.ResponseManager.RespondWithError(writer, status, message, err)
}

// ScheduleGet is the route for the full derived view of a room: ordered
// scheduled list, ordered unscheduled list, gaps and boundary markers
func (handler *Handler) ScheduleGet(writer http.ResponseWriter, request *http.Request) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	store := engine.Store()

	var response = map[string]interface{}{
		"scheduled":   store.Scheduled(),
		"unscheduled": store.Unscheduled(),
		"gaps":        store.Gaps(),
		"boundaries":  store.Boundaries(),
	}

	handler.ResponseManager.Respond(writer, response)
}

// CandidateReview is the route behind every keystroke on a candidate time
// or duration field
func (handler *Handler) CandidateReview(writer http.ResponseWriter, request *http.Request) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	payload := candidateRequest{}
	if !handler.decode(writer, request, &payload) {
		return
	}

	candidate, err := payload.toCandidate()
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Bad start time", err)
		return
	}

	review := engine.EditCandidateChange(payload.Surface, candidate)
	handler.ResponseManager.Respond(writer, review)
}

// TaskAdd is the route for submitting the add form
func (handler *Handler) TaskAdd(writer http.ResponseWriter, request *http.Request) {
	handler.submit(writer, request, SurfaceAddForm)
}

// TaskEdit is the route for submitting the inline edit form
func (handler *Handler) TaskEdit(writer http.ResponseWriter, request *http.Request) {
	handler.submit(writer, request, SurfaceInlineEdit)
}

// TaskScheduleModal is the route for confirming the schedule modal
func (handler *Handler) TaskScheduleModal(writer http.ResponseWriter, request *http.Request) {
	handler.submit(writer, request, SurfaceScheduleModal)
}

func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request, surface SurfaceKind) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	payload := candidateRequest{}
	if !handler.decode(writer, request, &payload) {
		return
	}

	candidate, err := payload.toCandidate()
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Bad start time", err)
		return
	}

	if taskID := mux.Vars(request)["taskID"]; taskID != "" {
		candidate.TargetTaskID = taskID
	}

	task, err := engine.SubmitCandidate(surface, candidate)
	if err != nil {
		handler.respondWithEngineError(writer, "Could not submit task", err)
		return
	}

	handler.ResponseManager.Respond(writer, task)
}

// TaskDelete deletes a task. The two-step delete confirmation is chrome
// owned by the presentation collaborator.
func (handler *Handler) TaskDelete(writer http.ResponseWriter, request *http.Request) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	err := engine.Store().Remove(mux.Vars(request)["taskID"])
	if err != nil {
		handler.respondWithEngineError(writer, "Could not delete task", err)
		return
	}

	handler.ResponseManager.RespondWithNoContent(writer)
}

// TaskToggleComplete flips a task's completed flag
func (handler *Handler) TaskToggleComplete(writer http.ResponseWriter, request *http.Request) {
	handler.toggle(writer, request, func(store *Store, taskID string) (*Task, error) {
		return store.ToggleComplete(taskID)
	})
}

// TaskToggleLock flips a scheduled task's locked flag
func (handler *Handler) TaskToggleLock(writer http.ResponseWriter, request *http.Request) {
	handler.toggle(writer, request, func(store *Store, taskID string) (*Task, error) {
		return store.ToggleLock(taskID)
	})
}

// TaskUnschedule moves a scheduled task back to the unscheduled list
func (handler *Handler) TaskUnschedule(writer http.ResponseWriter, request *http.Request) {
	handler.toggle(writer, request, func(store *Store, taskID string) (*Task, error) {
		return store.Unschedule(taskID)
	})
}

func (handler *Handler) toggle(writer http.ResponseWriter, request *http.Request, operation func(*Store, string) (*Task, error)) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	task, err := operation(engine.Store(), mux.Vars(request)["taskID"])
	if err != nil {
		handler.respondWithEngineError(writer, "Could not update task", err)
		return
	}

	handler.ResponseManager.Respond(writer, task)
}

type gapSelectRequest struct {
	StartTime int    `json:"startTime"`
	TaskID    string `json:"taskId"`
}

// GapSelect opens the gap-fill picker for a clicked gap
func (handler *Handler) GapSelect(writer http.ResponseWriter, request *http.Request) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	payload := gapSelectRequest{}
	if !handler.decode(writer, request, &payload) {
		return
	}

	selection, err := engine.SelectGap(payload.StartTime)
	if err != nil {
		handler.respondWithEngineError(writer, "Could not select gap", err)
		return
	}

	handler.ResponseManager.Respond(writer, selection)
}

// GapFill pre-fills the schedule modal for a picked unscheduled task
func (handler *Handler) GapFill(writer http.ResponseWriter, request *http.Request) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	payload := gapSelectRequest{}
	if !handler.decode(writer, request, &payload) {
		return
	}

	prefill, err := engine.FillGap(payload.StartTime, payload.TaskID)
	if err != nil {
		handler.respondWithEngineError(writer, "Could not fill gap", err)
		return
	}

	handler.ResponseManager.Respond(writer, prefill)
}

type destructiveRequest struct {
	Action DestructiveAction `json:"action" validate:"required,oneof=clear-all clear-scheduled clear-completed"`
}

type destructiveConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}

// DestructiveRequest starts the confirmation step for a bulk clear
func (handler *Handler) DestructiveRequest(writer http.ResponseWriter, request *http.Request) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	payload := destructiveRequest{}
	if !handler.decode(writer, request, &payload) {
		return
	}

	confirmation, err := engine.RequestDestructive(payload.Action)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Unknown action", err)
		return
	}

	handler.ResponseManager.Respond(writer, confirmation)
}

// DestructiveConfirm executes a previously requested bulk clear
func (handler *Handler) DestructiveConfirm(writer http.ResponseWriter, request *http.Request) {
	engine, ok := handler.engine(writer, request)
	if !ok {
		return
	}

	payload := destructiveConfirmRequest{}
	if !handler.decode(writer, request, &payload) {
		return
	}

	removed, err := engine.ConfirmDestructive(payload.Token)
	if err != nil {
		handler.respondWithEngineError(writer, "Confirmation invalid", err)
		return
	}

	handler.ResponseManager.Respond(writer, map[string]interface{}{"removed": removed})
}
