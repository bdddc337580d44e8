package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"homefinder-backend/internal/domains/booking/model"
	"homefinder-backend/internal/domains/booking/service"
	"homefinder-backend/internal/shared/middleware"
	"homefinder-backend/internal/shared/response"
	"homefinder-backend/internal/shared/utils"
	"homefinder-backend/pkg/logger"
)

type BookingHandler struct {
	service service.ServiceInterface
}

func NewBookingHandler(service service.ServiceInterface) *BookingHandler {
	return &BookingHandler{service: service}
}

// ========================================
// AVAILABILITY
// ========================================

// CheckAvailability handles GET and POST /properties/:id/check-availability
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	propertyID, ok := parseID(c, model.ErrCodePropertyNotFound)
	if !ok {
		return
	}

	var dates model.DateRange
	if c.Request.Method == http.MethodGet {
		_ = c.ShouldBindQuery(&dates)
	} else if err := c.ShouldBindJSON(&dates); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), propertyID, dates)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, result)
}

// ========================================
// CREATE
// ========================================

// CreateBooking handles POST /properties/:id/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	propertyID, ok := parseID(c, model.ErrCodePropertyNotFound)
	if !ok {
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), propertyID, requester, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondCreated(c, result)
}

// CreateDemoBooking handles POST /properties/:id/bookings/demo-booking
func (h *BookingHandler) CreateDemoBooking(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	propertyID, ok := parseID(c, model.ErrCodePropertyNotFound)
	if !ok {
		return
	}

	var req model.CreateDemoBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.service.CreateDemoBooking(c.Request.Context(), propertyID, requester, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondCreated(c, result)
}

// ========================================
// READ / UPDATE / DELETE
// ========================================

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	id, ok := parseID(c, model.ErrCodeBookingNotFound)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id, requester)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, booking)
}

// UpdateBooking handles PUT /bookings/:id
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	id, ok := parseID(c, model.ErrCodeBookingNotFound)
	if !ok {
		return
	}

	var req model.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	booking, err := h.service.UpdateBooking(c.Request.Context(), id, requester, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, booking)
}

// DeleteBooking handles DELETE /bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	id, ok := parseID(c, model.ErrCodeBookingNotFound)
	if !ok {
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), id, requester); err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{})
}

// ========================================
// LISTING
// ========================================

// ListAll handles GET /bookings (admin)
func (h *BookingHandler) ListAll(c *gin.Context) {
	page := utils.ParsePagination(c, 25, 100)

	bookings, total, err := h.service.ListAll(c.Request.Context(), page)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, bookings, response.NewMeta(page.Page, page.Limit, total))
}

// ListPropertyBookings handles GET /properties/:id/bookings
func (h *BookingHandler) ListPropertyBookings(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	propertyID, ok := parseID(c, model.ErrCodePropertyNotFound)
	if !ok {
		return
	}

	bookings, err := h.service.ListPropertyBookings(c.Request.Context(), propertyID, requester)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondList(c, bookings)
}

// ListMyBookings handles GET /bookings/my-bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	bookings, err := h.service.ListMyBookings(c.Request.Context(), requester.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondList(c, bookings)
}

// ListMyPropertyBookings handles GET /bookings/my-property-bookings
func (h *BookingHandler) ListMyPropertyBookings(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	bookings, err := h.service.ListMyPropertyBookings(c.Request.Context(), requester.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondList(c, bookings)
}

// ========================================
// HELPER FUNCTIONS
// ========================================

// parseID reads :id; a malformed id cannot match any row, so it is reported as not found.
func parseID(c *gin.Context, notFoundCode string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, notFoundCode, "No resource found with id of "+c.Param("id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) handleError(c *gin.Context, err error) {
	status, code := mapBookingError(err)
	if code == "INTERNAL_ERROR" {
		logger.Error("booking request failed", err)
		respondError(c, status, code, "Internal server error")
		return
	}

	var bookingErr *model.BookingError
	if errors.As(err, &bookingErr) {
		var fields validation.Errors
		if errors.As(err, &fields) {
			response.ErrorWithDetails(c, status, code, bookingErr.Message, fields)
			return
		}
		respondError(c, status, code, bookingErr.Message)
		return
	}
	respondError(c, status, code, err.Error())
}

// mapBookingError maps booking errors to HTTP status codes
func mapBookingError(err error) (int, string) {
	var bookingErr *model.BookingError
	if !errors.As(err, &bookingErr) {
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	switch bookingErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidTransition:
		return http.StatusBadRequest, bookingErr.Code
	case model.ErrCodeForbidden, model.ErrCodeSelfBooking:
		return http.StatusForbidden, bookingErr.Code
	case model.ErrCodeBookingNotFound, model.ErrCodePropertyNotFound:
		return http.StatusNotFound, bookingErr.Code
	case model.ErrCodeOverlap, model.ErrCodePropertyUnavailable:
		return http.StatusConflict, bookingErr.Code
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func respondCreated(c *gin.Context, result *model.BookingResult) {
	body := gin.H{
		"success": true,
		"message": result.Message,
		"data":    result.Booking,
	}
	if result.EmailSendError {
		body["emailSendError"] = true
	}
	c.JSON(http.StatusCreated, body)
}

func respondList(c *gin.Context, bookings []*model.Booking) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(bookings),
		"data":    bookings,
	})
}

func respondSuccess(c *gin.Context, statusCode int, data interface{}) {
	response.SuccessWithMeta(c, statusCode, data, nil)
}

func respondError(c *gin.Context, statusCode int, code, message string) {
	response.ErrorResponse(c, statusCode, code, message)
}
