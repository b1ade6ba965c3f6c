package controllers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"roombooking/internal/delivery/http/helpers"
	"roombooking/internal/domain"
)

// CreateBookingRequest is the request body for POST /api/bookings.
// booking_date is YYYY-MM-DD; start_time and end_time are HH:MM or HH:MM:SS.
type CreateBookingRequest struct {
	RoomID      string `json:"room_id"`
	Title       string `json:"title"`
	BookedBy    string `json:"booked_by"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// Validate implements Validator. Range, past date and requester rules are business
// rules checked by the booking service.
func (c CreateBookingRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.RoomID) == "" {
		errs = append(errs, "room_id is required")
	}
	if c.BookingDate == "" {
		errs = append(errs, "booking_date is required")
	} else if _, err := domain.ParseDate(c.BookingDate); err != nil {
		errs = append(errs, "booking_date must be YYYY-MM-DD")
	}
	if c.StartTime == "" {
		errs = append(errs, "start_time is required")
	} else if _, err := domain.ParseClock(c.StartTime); err != nil {
		errs = append(errs, "start_time must be HH:MM")
	}
	if c.EndTime == "" {
		errs = append(errs, "end_time is required")
	} else if _, err := domain.ParseClock(c.EndTime); err != nil {
		errs = append(errs, "end_time must be HH:MM")
	}
	return errs
}

// toBooking converts a request that already passed Validate.
func (c CreateBookingRequest) toBooking() *domain.Booking {
	date, _ := domain.ParseDate(c.BookingDate)
	start, _ := domain.ParseClock(c.StartTime)
	end, _ := domain.ParseClock(c.EndTime)
	return domain.NewBooking(strings.TrimSpace(c.RoomID), c.Title, c.BookedBy, date, start, end)
}

// BookingSuccessResponse is the success response envelope for POST /api/bookings (201).
type BookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListBookingsResponse is the data for GET /api/bookings. Pagination is present only
// when page or page_size was requested.
type ListBookingsResponse struct {
	Bookings   []*domain.Booking       `json:"bookings"`
	Pagination *helpers.PaginationMeta `json:"pagination,omitempty"`
}

// ListBookingsSuccessResponse is the success response envelope for GET /api/bookings (200).
type ListBookingsSuccessResponse struct {
	Data  ListBookingsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CancelBookingResponse is the data for DELETE /api/bookings/{bookingID}.
type CancelBookingResponse struct {
	Message string `json:"message"`
}

// CancelBookingSuccessResponse is the success response envelope for DELETE /api/bookings/{bookingID} (200).
type CancelBookingSuccessResponse struct {
	Data  CancelBookingResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type BookingController struct {
	Logger  *zap.Logger
	Service domain.BookingService
}

func NewBookingController(logger *zap.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// ListBookings godoc
// @Summary List bookings
// @Description Lists bookings ordered by date then start time, optionally filtered by room and date.
// @Tags bookings
// @Produce json
// @Param room_id query string false "Room ID"
// @Param booking_date query string false "Date (YYYY-MM-DD)"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} controllers.ListBookingsSuccessResponse "data contains bookings and optional pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bookings [get]
func (c *BookingController) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.BookingFilter{RoomID: strings.TrimSpace(q.Get("room_id"))}
	if s := q.Get("booking_date"); s != "" {
		date, err := domain.ParseDate(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "booking_date must be YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}
	page, paged, err := helpers.ParsePagination(q)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	filter.Pagination = page

	bookings, total, err := c.Service.List(r.Context(), filter)
	if err != nil {
		internalError(c.Logger, w, r, err)
		return
	}
	resp := ListBookingsResponse{Bookings: bookings}
	if paged {
		meta := helpers.NewPaginationMeta(filter.Pagination, total)
		resp.Pagination = &meta
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// CreateBooking godoc
// @Summary Create a booking
// @Description Books a room for a half-open time window. Back-to-back bookings are allowed.
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body CreateBookingRequest true "Booking data"
// @Success 201 {object} controllers.BookingSuccessResponse "data contains the created booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking, err := c.Service.Create(r.Context(), req.toBooking())
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		internalError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// CancelBooking godoc
// @Summary Cancel a booking
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Success 200 {object} controllers.CancelBookingSuccessResponse "data.message confirms the cancellation"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bookings/{bookingID} [delete]
func (c *BookingController) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if bookingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return
	}
	ok, err := c.Service.Cancel(r.Context(), bookingID)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		internalError(c.Logger, w, r, err)
		return
	}
	if !ok {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "booking not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CancelBookingResponse{Message: "Booking cancelled successfully"})
}
