package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"homefinder-backend/internal/domains/property/model"
	"homefinder-backend/internal/domains/property/service"
	"homefinder-backend/internal/shared/middleware"
	"homefinder-backend/internal/shared/response"
	"homefinder-backend/internal/shared/utils"
	"homefinder-backend/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PropertyHandler struct {
	service      service.ServiceInterface
	maxImageSize int64
}

func NewPropertyHandler(service service.ServiceInterface, maxImageSize int64) *PropertyHandler {
	if maxImageSize <= 0 {
		maxImageSize = 10 * 1024 * 1024
	}
	return &PropertyHandler{service: service, maxImageSize: maxImageSize}
}

// ========================================
// PUBLIC ENDPOINTS
// ========================================

// ListProperties handles GET /properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	req, err := parseListRequest(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, model.ErrCodeValidation, err.Error())
		return
	}

	properties, total, err := h.service.ListProperties(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, properties, response.NewMeta(req.Page, req.Limit, total))
}

// ListWithAvailability handles GET /properties/with-availability
func (h *PropertyHandler) ListWithAvailability(c *gin.Context) {
	properties, err := h.service.ListWithAvailability(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(properties),
		"data":    properties,
	})
}

// GetProperty handles GET /properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	property, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, property)
}

// ========================================
// OWNER ENDPOINTS
// ========================================

// GetMyProperties handles GET /properties/my-properties
func (h *PropertyHandler) GetMyProperties(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	properties, err := h.service.ListMyProperties(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(properties),
		"data":    properties,
	})
}

// ExportMyProperties handles GET /properties/my-properties/export
func (h *PropertyHandler) ExportMyProperties(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	f, err := h.service.ExportMyProperties(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("properties_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error("failed to write property export", err)
	}
}

// CreateProperty handles POST /properties (multipart/form-data)
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	var form model.PropertyForm
	if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid form data")
		return
	}

	req, err := form.ToCreateRequest()
	if err != nil {
		respondError(c, http.StatusBadRequest, model.ErrCodeValidation, err.Error())
		return
	}

	if req.Images, err = h.readImages(c); err != nil {
		respondError(c, http.StatusBadRequest, model.ErrCodeInvalidImage, err.Error())
		return
	}

	property, err := h.service.CreateProperty(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, property)
}

// UpdateProperty handles PUT /properties/:id (multipart/form-data or JSON)
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.UpdatePropertyRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var form model.PropertyForm
		if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid form data")
			return
		}

		var err error
		if req, err = form.ToUpdateRequest(); err != nil {
			respondError(c, http.StatusBadRequest, model.ErrCodeValidation, err.Error())
			return
		}
		if req.NewImages, err = h.readImages(c); err != nil {
			respondError(c, http.StatusBadRequest, model.ErrCodeInvalidImage, err.Error())
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	property, err := h.service.UpdateProperty(c.Request.Context(), id, requester, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, property)
}

// DeleteProperty handles DELETE /properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	requester, ok := middleware.CurrentRequester(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProperty(c.Request.Context(), id, requester); err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{})
}

// ========================================
// HELPER FUNCTIONS
// ========================================

// readImages loads the uploaded files under "images" or "images[]". Reads stop one
// byte past the size limit so the processor can reject oversized files.
func (h *PropertyHandler) readImages(c *gin.Context) ([]model.ImageUpload, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	files := append(mf.File["images"], mf.File["images[]"]...)
	uploads := make([]model.ImageUpload, 0, len(files))
	for _, fh := range files {
		data, err := readFile(fh, h.maxImageSize+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		uploads = append(uploads, model.ImageUpload{Name: fh.Filename, Data: data})
	}
	return uploads, nil
}

func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}

func parseListRequest(c *gin.Context) (model.ListPropertiesRequest, error) {
	page := utils.ParsePagination(c, 20, 100)
	req := model.ListPropertiesRequest{
		City:         c.Query("city"),
		PropertyType: c.Query("propertyType"),
		Status:       c.Query("status"),
		Page:         page.Page,
		Limit:        page.Limit,
	}

	if v := c.Query("owner"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return req, errors.New("owner: invalid id")
		}
		req.OwnerID = &id
	}
	if v := c.Query("minPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return req, errors.New("minPrice: must be a number")
		}
		req.MinPrice = &d
	}
	if v := c.Query("maxPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return req, errors.New("maxPrice: must be a number")
		}
		req.MaxPrice = &d
	}
	if v := c.Query("bedrooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, errors.New("bedrooms: must be an integer")
		}
		req.Bedrooms = &n
	}
	return req, nil
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, model.ErrCodePropertyNotFound,
			fmt.Sprintf("No property found with id of %s", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func (h *PropertyHandler) handleError(c *gin.Context, err error) {
	status, code := mapPropertyError(err)
	if code == "INTERNAL_ERROR" {
		logger.Error("property request failed", err)
		respondError(c, status, code, "Internal server error")
		return
	}

	var propErr *model.PropertyError
	if errors.As(err, &propErr) {
		var fields validation.Errors
		if errors.As(err, &fields) {
			response.ErrorWithDetails(c, status, code, propErr.Message, fields)
			return
		}
		respondError(c, status, code, propErr.Message)
		return
	}
	respondError(c, status, code, err.Error())
}

// mapPropertyError maps property errors to HTTP status codes
func mapPropertyError(err error) (int, string) {
	var propErr *model.PropertyError
	if !errors.As(err, &propErr) {
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	switch propErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidImage, model.ErrCodeTooManyImages:
		return http.StatusBadRequest, propErr.Code
	case model.ErrCodeForbidden:
		return http.StatusForbidden, propErr.Code
	case model.ErrCodePropertyNotFound:
		return http.StatusNotFound, propErr.Code
	case model.ErrCodeImageUpload:
		return http.StatusBadGateway, propErr.Code
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func respondSuccess(c *gin.Context, statusCode int, data interface{}) {
	response.SuccessWithMeta(c, statusCode, data, nil)
}

func respondError(c *gin.Context, statusCode int, code, message string) {
	response.ErrorResponse(c, statusCode, code, message)
}
