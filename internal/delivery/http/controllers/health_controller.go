package controllers

import (
	"net/http"

	"roombooking/internal/delivery/http/helpers"
)

// StatusResponse is the data for the liveness endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// Root godoc
// @Summary API root
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router / [get]
func (c *HealthController) Root(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "ok", Message: "Room Booking API is running"})
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "healthy"})
}
