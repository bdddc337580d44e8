package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"homefinder-backend/internal/domains/chat/model"
	"homefinder-backend/internal/domains/chat/service"
	"homefinder-backend/internal/shared/middleware"
	"homefinder-backend/internal/shared/response"
	"homefinder-backend/internal/shared/utils"
	"homefinder-backend/pkg/logger"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 100
)

type ChatHandler struct {
	service service.ServiceInterface
}

func NewChatHandler(service service.ServiceInterface) *ChatHandler {
	return &ChatHandler{service: service}
}

// ListMyChats handles GET /chats
func (h *ChatHandler) ListMyChats(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	chats, err := h.service.ListMyChats(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(chats),
		"data":    chats,
	})
}

// GetChat handles GET /chats/:id
func (h *ChatHandler) GetChat(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	page := utils.ParsePagination(c, defaultMessagePage, maxMessagePage)

	chat, total, err := h.service.GetChat(c.Request.Context(), c.Param("id"), userID, page)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, chat, response.NewMeta(page.Page, page.Limit, total))
}

// StartChat handles POST /chats
func (h *ChatHandler) StartChat(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	var req model.StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	chat, created, err := h.service.StartChat(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(c, status, chat)
}

// SendMessage handles POST /chats/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, msg)
}

// MarkRead handles PUT /chats/:id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	// The body is optional
	var req model.MarkReadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
	}

	updated, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"updatedCount": updated})
}

// UnreadCount handles GET /chats/unread-count
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"unreadCount": count})
}

// ========================================
// HELPER FUNCTIONS
// ========================================

func (h *ChatHandler) handleError(c *gin.Context, err error) {
	status, code := mapChatError(err)
	if code == "INTERNAL_ERROR" {
		logger.Error("chat request failed", err)
		respondError(c, status, code, "Internal server error")
		return
	}

	var chatErr *model.ChatError
	if errors.As(err, &chatErr) {
		var fields validation.Errors
		if errors.As(err, &fields) {
			response.ErrorWithDetails(c, status, code, chatErr.Message, fields)
			return
		}
		respondError(c, status, code, chatErr.Message)
		return
	}
	respondError(c, status, code, err.Error())
}

// mapChatError maps chat errors to HTTP status codes
func mapChatError(err error) (int, string) {
	var chatErr *model.ChatError
	if !errors.As(err, &chatErr) {
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	switch chatErr.Code {
	case model.ErrCodeValidation:
		return http.StatusBadRequest, chatErr.Code
	case model.ErrCodeForbidden:
		return http.StatusForbidden, chatErr.Code
	case model.ErrCodeChatNotFound, model.ErrCodeRecipientNotFound,
		model.ErrCodePropertyNotFound, model.ErrCodeMessageNotFound:
		return http.StatusNotFound, chatErr.Code
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
