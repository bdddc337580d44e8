package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"homefinder-backend/internal/domains/user/model"
	"homefinder-backend/internal/domains/user/service"
	"homefinder-backend/internal/shared/middleware"
	"homefinder-backend/internal/shared/response"
	"homefinder-backend/pkg/logger"
)

// CookieConfig controls the session cookie written on sign-in.
type CookieConfig struct {
	Name   string
	MaxAge int
	Secure bool
}

type UserHandler struct {
	service service.ServiceInterface
	cookie  CookieConfig
}

func NewUserHandler(service service.ServiceInterface, cookie CookieConfig) *UserHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &UserHandler{service: service, cookie: cookie}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register handles POST /auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"message":        res.Message,
		"userId":         res.UserID,
		"emailSendError": res.EmailSendError,
	})
}

// VerifyEmailOTP handles POST /auth/verify-email-otp
func (h *UserHandler) VerifyEmailOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.service.VerifyEmailOTP(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if res.Auth == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": res.Message})
		return
	}

	if res.Auth.Message == "" {
		res.Auth.Message = res.Message
	}
	h.sendTokenResponse(c, res.Auth)
}

// Login handles POST /auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.sendTokenResponse(c, res)
}

// Logout handles POST /auth/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if claims, ok := middleware.CurrentClaims(c); ok {
		if err := h.service.Logout(c.Request.Context(), claims); err != nil {
			// The cookie is still cleared below.
			logger.Error("Failed to revoke token on logout", err)
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)

	respondSuccess(c, http.StatusOK, gin.H{})
}

// ForgotPassword handles POST /auth/forgotpassword
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.service.ForgotPassword(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"data":           res.Message,
		"emailSendError": res.EmailSendError,
	})
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// GetMe handles GET /auth/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	res, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, res)
}

// UpdateDetails handles PUT /auth/updatedetails
func (h *UserHandler) UpdateDetails(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	var req model.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.service.UpdateDetails(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, res)
}

// UpdatePassword handles PUT /auth/updatepassword
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "AUTH_ERROR", "Unauthorized")
		return
	}

	var req model.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.service.UpdatePassword(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.sendTokenResponse(c, res)
}

// ========================================
// HELPER FUNCTIONS
// ========================================

// sendTokenResponse sets the HttpOnly session cookie and returns token + user.
func (h *UserHandler) sendTokenResponse(c *gin.Context, res *model.AuthResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, res.Token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)

	body := gin.H{
		"success":   true,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	}
	if res.Message != "" {
		body["message"] = res.Message
	}
	if res.EmailSendError {
		body["emailSendError"] = true
	}
	c.JSON(http.StatusOK, body)
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	status, code := mapUserError(err)
	if code == "INTERNAL_ERROR" {
		logger.Error("user request failed", err)
		respondError(c, status, code, "Internal server error")
		return
	}

	var userErr *model.UserError
	if errors.As(err, &userErr) {
		var fields validation.Errors
		if errors.As(err, &fields) {
			response.ErrorWithDetails(c, status, code, userErr.Message, fields)
			return
		}
		respondError(c, status, code, userErr.Message)
		return
	}
	respondError(c, status, code, err.Error())
}

// mapUserError maps user errors to HTTP status codes
func mapUserError(err error) (int, string) {
	var userErr *model.UserError
	if !errors.As(err, &userErr) {
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	switch userErr.Code {
	case model.ErrCodeValidation,
		model.ErrCodeAlreadyVerified,
		model.ErrCodeInvalidOTP,
		model.ErrCodeOTPExpired,
		model.ErrCodeInvalidEmail:
		return http.StatusBadRequest, userErr.Code
	case model.ErrCodeInvalidCredentials, model.ErrCodeNotVerified, model.ErrCodeIncorrectPassword:
		return http.StatusUnauthorized, userErr.Code
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound, userErr.Code
	case model.ErrCodeEmailExists:
		return http.StatusConflict, userErr.Code
	case model.ErrCodeEmailDelivery:
		return http.StatusInternalServerError, userErr.Code
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
