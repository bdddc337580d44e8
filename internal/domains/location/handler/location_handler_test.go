package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinder-backend/internal/infrastructure/geocoding"
)

type stubService struct {
	err error
}

func (s *stubService) Reverse(_ context.Context, lat, lng float64) (*geocoding.Address, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &geocoding.Address{City: "Pune", Coordinates: &geocoding.Coordinates{Lat: lat, Lng: lng}}, nil
}

func (s *stubService) Forward(_ context.Context, address string) (*geocoding.Address, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &geocoding.Address{Full: address}, nil
}

func newRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLocationHandler(svc)
	r := gin.New()
	r.GET("/geocode/reverse", h.Reverse)
	r.GET("/geocode/forward", h.Forward)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReverse(t *testing.T) {
	w := get(newRouter(&stubService{}), "/geocode/reverse?lat=18.52&lng=73.85")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"city":"Pune"`)
	assert.Contains(t, w.Body.String(), `"lng":73.85`)

	w = get(newRouter(&stubService{}), "/geocode/reverse?lat=north")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForward(t *testing.T) {
	w := get(newRouter(&stubService{}), "/geocode/forward?address=Baner")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"full":"Baner"`)

	w = get(newRouter(&stubService{}), "/geocode/forward")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeocodeErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: status 503", geocoding.ErrUpstream), http.StatusBadGateway},
		{geocoding.ErrNoResult, http.StatusNotFound},
		{geocoding.ErrInvalidArgs, http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := get(newRouter(&stubService{err: tt.err}), "/geocode/forward?address=x")
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), `"success":false`)
	}
}
