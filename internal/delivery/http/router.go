package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"roombooking/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	healthController *controllers.HealthController,
	roomController *controllers.RoomController,
	bookingController *controllers.BookingController,
	assistantController *controllers.AssistantController,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /{$}", healthController.Root)
	mux.HandleFunc("GET /health", healthController.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Rooms
	mux.HandleFunc("GET /api/rooms", roomController.ListRooms)
	mux.HandleFunc("GET /api/rooms/{roomID}", roomController.GetRoom)

	// Bookings
	mux.HandleFunc("GET /api/bookings", bookingController.ListBookings)
	mux.HandleFunc("POST /api/bookings", bookingController.CreateBooking)
	mux.HandleFunc("DELETE /api/bookings/{bookingID}", bookingController.CancelBooking)

	// Assistant
	mux.HandleFunc("POST /api/bookings/parse", assistantController.ParseBooking)
	mux.HandleFunc("POST /api/assistant/chat", assistantController.Chat)
	mux.HandleFunc("POST /api/assistant/confirm", assistantController.ConfirmBooking)
	mux.HandleFunc("DELETE /api/assistant/sessions/{sessionID}", assistantController.ResetSession)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
