package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"roombooking/internal/delivery/http/helpers"
	"roombooking/internal/domain"
)

// ListRoomsSuccessResponse is the success response envelope for GET /api/rooms (200).
type ListRoomsSuccessResponse struct {
	Data  []*domain.Room    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetRoomSuccessResponse is the success response envelope for GET /api/rooms/{roomID} (200).
type GetRoomSuccessResponse struct {
	Data  *domain.Room      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type RoomController struct {
	Logger  *zap.Logger
	Service domain.RoomService
}

func NewRoomController(logger *zap.Logger, svc domain.RoomService) *RoomController {
	return &RoomController{
		Logger:  logger,
		Service: svc,
	}
}

// ListRooms godoc
// @Summary List rooms
// @Description Returns every bookable room ordered by name.
// @Tags rooms
// @Produce json
// @Success 200 {object} controllers.ListRoomsSuccessResponse "data contains the rooms"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/rooms [get]
func (c *RoomController) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.Service.List(r.Context())
	if err != nil {
		internalError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rooms)
}

// GetRoom godoc
// @Summary Get a room by ID
// @Tags rooms
// @Produce json
// @Param roomID path string true "Room ID (UUID)"
// @Success 200 {object} controllers.GetRoomSuccessResponse "data contains the room"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/rooms/{roomID} [get]
func (c *RoomController) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if roomID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing roomID")
		return
	}
	room, err := c.Service.GetByID(r.Context(), roomID)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		internalError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, room)
}

// internalError logs err and answers 500 without leaking the cause.
func internalError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err),
	)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
}
