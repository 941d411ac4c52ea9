package rooms

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/iconix/fortudo/pkg/communication"
	"github.com/iconix/fortudo/pkg/logger"
)

// Handler handles all room related API calls
type Handler struct {
	Manager         *Manager
	Logger          logger.Interface
	ResponseManager *communication.ResponseManager
}

// RoomGetAll lists all known rooms
func (handler *Handler) RoomGetAll(writer http.ResponseWriter, request *http.Request) {
	rooms, err := handler.Manager.RoomRepository.FindAll(request.Context())
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not list rooms", err)
		return
	}

	handler.ResponseManager.Respond(writer, rooms)
}

// RoomAdd registers a room explicitly. Visiting an unknown room registers it
// implicitly, so this exists for clients that create rooms ahead of time.
func (handler *Handler) RoomAdd(writer http.ResponseWriter, request *http.Request) {
	room := Room{}

	err := json.NewDecoder(request.Body).Decode(&room)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, "Wrong format", err)
		return
	}

	v := validator.New()
	err = v.Struct(room)
	if err != nil {
		for _, e := range err.(validator.ValidationErrors) {
			handler.ResponseManager.RespondWithError(writer, http.StatusBadRequest, e.Error(), e)
			return
		}
	}

	if _, err := handler.Manager.Engine(request.Context(), room.Code); err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not create room", err)
		return
	}

	created, err := handler.Manager.RoomRepository.FindByCode(request.Context(), room.Code)
	if err != nil {
		handler.ResponseManager.RespondWithError(writer, http.StatusInternalServerError,
			"Could not create room", err)
		return
	}

	handler.ResponseManager.RespondWithStatus(writer, created, http.StatusCreated)
}

// RoomDelete removes a room and drops its live engine
func (handler *Handler) RoomDelete(writer http.ResponseWriter, request *http.Request) {
	roomID := mux.Vars(request)["roomID"]

	err := handler.Manager.RoomRepository.Remove(request.Context(), roomID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		handler.ResponseManager.RespondWithError(writer, status, "Could not delete room", err)
		return
	}

	handler.Manager.Deactivate(roomID)

	handler.ResponseManager.RespondWithNoContent(writer)
}
