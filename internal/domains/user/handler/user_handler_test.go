package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinder-backend/internal/domains/user/model"
	"homefinder-backend/internal/domains/user/service"
	"homefinder-backend/pkg/jwt"
)

type stubService struct {
	service.ServiceInterface
	registerErr error
	loginResp   *model.AuthResponse
	loginErr    error
}

func (s *stubService) Register(_ context.Context, _ model.RegisterRequest) (*model.RegisterResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &model.RegisterResponse{UserID: uuid.New(), Message: "ok", EmailSendError: true}, nil
}

func (s *stubService) Login(_ context.Context, _ model.LoginRequest) (*model.AuthResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubService) Logout(_ context.Context, _ *jwt.Claims) error { return nil }

func newRouter(svc service.ServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(svc, CookieConfig{Name: "token", MaxAge: 3600})
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_Created(t *testing.T) {
	w := post(newRouter(&stubService{}), "/auth/register", `{"name":"Ann","email":"a@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["emailSendError"])
	assert.NotEmpty(t, body["userId"])
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"duplicate", model.NewEmailExistsError(), http.StatusConflict},
		{"validation", model.NewValidationError(errors.New("name: cannot be blank")), http.StatusBadRequest},
		{"unknown", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newRouter(&stubService{registerErr: tt.err}), "/auth/register", `{}`)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "db down")
			}
		})
	}
}

func TestLogin_SetsCookie(t *testing.T) {
	svc := &stubService{loginResp: &model.AuthResponse{Token: "tok", User: &model.UserResponse{Name: "Ann"}}}
	w := post(newRouter(svc), "/auth/login", `{"email":"a@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "token=tok")
	assert.Contains(t, cookie, "HttpOnly")
}

func TestLogin_Unverified(t *testing.T) {
	w := post(newRouter(&stubService{loginErr: model.NewNotVerifiedError()}), "/auth/login", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), model.ErrCodeNotVerified)
}

func TestLogout_ClearsCookie(t *testing.T) {
	w := post(newRouter(&stubService{}), "/auth/logout", ``)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
