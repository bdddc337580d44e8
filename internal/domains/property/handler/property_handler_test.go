package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"homefinder-backend/internal/domains/property/model"
	"homefinder-backend/internal/domains/property/service"
	"homefinder-backend/internal/shared"
	"homefinder-backend/internal/shared/access"
)

type stubService struct {
	service.ServiceInterface

	gotCreate model.CreatePropertyRequest
	gotUpdate model.UpdatePropertyRequest
	gotList   model.ListPropertiesRequest
	gotActor  access.Requester
	err       error
}

func (s *stubService) CreateProperty(_ context.Context, ownerID uuid.UUID, req model.CreatePropertyRequest) (*model.Property, error) {
	s.gotCreate = req
	if s.err != nil {
		return nil, s.err
	}
	return &model.Property{ID: uuid.New(), OwnerID: ownerID, Title: req.Title}, nil
}

func (s *stubService) UpdateProperty(_ context.Context, id uuid.UUID, r access.Requester, req model.UpdatePropertyRequest) (*model.Property, error) {
	s.gotUpdate = req
	s.gotActor = r
	if s.err != nil {
		return nil, s.err
	}
	return &model.Property{ID: id}, nil
}

func (s *stubService) GetProperty(_ context.Context, id uuid.UUID) (*model.Property, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Property{ID: id}, nil
}

func (s *stubService) ListProperties(_ context.Context, req model.ListPropertiesRequest) ([]*model.Property, int64, error) {
	s.gotList = req
	return []*model.Property{}, 0, s.err
}

func (s *stubService) ExportMyProperties(_ context.Context, _ uuid.UUID) (*excelize.File, error) {
	return excelize.NewFile(), nil
}

var testUser = uuid.New()

func newRouter(svc service.ServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPropertyHandler(svc, 1024)
	r := gin.New()
	r.GET("/properties", h.ListProperties)
	r.GET("/properties/:id", h.GetProperty)

	authed := r.Group("/", func(c *gin.Context) {
		c.Set(shared.ContextUserID, testUser)
		c.Set(shared.ContextRole, shared.RoleUser)
	})
	authed.POST("/properties", h.CreateProperty)
	authed.PUT("/properties/:id", h.UpdateProperty)
	authed.GET("/my-properties/export", h.ExportMyProperties)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartBody(t *testing.T, fields map[string][]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestListProperties_ParsesFilters(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc)

	w := do(r, httptest.NewRequest(http.MethodGet, "/properties?city=Pune&minPrice=100&bedrooms=2&page=2&limit=500", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pune", svc.gotList.City)
	assert.Equal(t, "100", svc.gotList.MinPrice.String())
	assert.Equal(t, 2, *svc.gotList.Bedrooms)
	assert.Equal(t, 2, svc.gotList.Page)
	assert.Equal(t, 100, svc.gotList.Limit)

	w = do(r, httptest.NewRequest(http.MethodGet, "/properties?maxPrice=cheap", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProperty_BadID(t *testing.T) {
	w := do(newRouter(&stubService{}), httptest.NewRequest(http.MethodGet, "/properties/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No property found with id of not-a-uuid")
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", model.NewPropertyNotFoundError(uuid.New()), http.StatusNotFound},
		{"forbidden", model.NewForbiddenError(uuid.New(), "update"), http.StatusForbidden},
		{"validation", model.NewValidationMessage("bad"), http.StatusBadRequest},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubService{err: tt.err})
			w := do(r, httptest.NewRequest(http.MethodGet, "/properties/"+uuid.NewString(), nil))
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "db down")
			}
		})
	}
}

func TestCreateProperty_Multipart(t *testing.T) {
	svc := &stubService{}
	body, contentType := multipartBody(t, map[string][]string{
		"title":        {"Flat A"},
		"price":        {"10000"},
		"bedrooms":     {"2"},
		"propertyType": {"apartment"},
		"amenities":    {"Parking,Lift", "Gym"},
	}, map[string]string{"front.png": "png-bytes"})

	req := httptest.NewRequest(http.MethodPost, "/properties", body)
	req.Header.Set("Content-Type", contentType)
	w := do(newRouter(svc), req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Flat A", svc.gotCreate.Title)
	assert.Equal(t, "10000", svc.gotCreate.Price.String())
	assert.Equal(t, 2, svc.gotCreate.Bedrooms)
	assert.Equal(t, []string{"Parking", "Lift", "Gym"}, svc.gotCreate.Amenities)
	require.Len(t, svc.gotCreate.Images, 1)
	assert.Equal(t, "front.png", svc.gotCreate.Images[0].Name)
	assert.Equal(t, []byte("png-bytes"), svc.gotCreate.Images[0].Data)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
}

func TestCreateProperty_BadNumber(t *testing.T) {
	body, contentType := multipartBody(t, map[string][]string{"price": {"lots"}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/properties", body)
	req.Header.Set("Content-Type", contentType)

	w := do(newRouter(&stubService{}), req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "price")
}

func TestUpdateProperty_JSON(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPut, "/properties/"+uuid.NewString(),
		strings.NewReader(`{"title":"New","price":"12000","removeImages":["http://minio/a.jpg"]}`))
	req.Header.Set("Content-Type", "application/json")

	w := do(newRouter(svc), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "New", *svc.gotUpdate.Title)
	assert.Equal(t, "12000", svc.gotUpdate.Price.String())
	assert.Equal(t, []string{"http://minio/a.jpg"}, svc.gotUpdate.RemoveImages)
	assert.Equal(t, testUser, svc.gotActor.UserID)
}

func TestExportMyProperties(t *testing.T) {
	w := do(newRouter(&stubService{}), httptest.NewRequest(http.MethodGet, "/my-properties/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}
