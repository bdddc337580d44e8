package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homefinder-backend/internal/domains/location/service"
	"homefinder-backend/internal/infrastructure/geocoding"
	"homefinder-backend/internal/shared/response"
	"homefinder-backend/pkg/logger"
)

type LocationHandler struct {
	service service.ServiceInterface
}

func NewLocationHandler(service service.ServiceInterface) *LocationHandler {
	return &LocationHandler{service: service}
}

// Reverse handles GET /geocode/reverse?lat=&lng=
func (h *LocationHandler) Reverse(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		response.BadRequest(c, "Latitude and longitude are required")
		return
	}

	addr, err := h.service.Reverse(c.Request.Context(), lat, lng)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "address": addr})
}

// Forward handles GET /geocode/forward?address=
func (h *LocationHandler) Forward(c *gin.Context) {
	query := c.Query("address")
	if query == "" {
		response.BadRequest(c, "Address is required")
		return
	}

	addr, err := h.service.Forward(c.Request.Context(), query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "address": addr})
}

func (h *LocationHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, geocoding.ErrInvalidArgs):
		response.BadRequest(c, "Invalid coordinates or address")
	case errors.Is(err, geocoding.ErrNoResult):
		response.NotFound(c, "No address found for this location")
	case errors.Is(err, geocoding.ErrUpstream):
		response.ErrorResponse(c, http.StatusBadGateway, "GEOCODING_ERROR", "Geocoding service unavailable")
	default:
		logger.Error("geocoding request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}
