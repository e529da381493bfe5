package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"log-query-translator/internal/model"
	"log-query-translator/internal/repository"
	"log-query-translator/internal/store"
)

type fakeCatalogService struct {
	current    *model.FieldCatalog
	currentErr error
	refreshErr error
}

func (f *fakeCatalogService) Refresh(context.Context) (*model.FieldCatalog, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.current, nil
}

func (f *fakeCatalogService) Current(context.Context) (*model.FieldCatalog, error) {
	return f.current, f.currentErr
}

func catalogRouter(svc *fakeCatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterFieldCatalogRoutes(r, NewFieldCatalogController(svc))
	return r
}

func TestGetFields(t *testing.T) {
	svc := &fakeCatalogService{current: &model.FieldCatalog{
		IndexPattern: "logs-*",
		Fields:       []model.Field{{Name: "level", Type: "keyword"}},
		UpdatedAt:    time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
	}}
	w := httptest.NewRecorder()
	catalogRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/indices-fields", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"index_pattern":"logs-*","fields":{"level":"keyword"},"field_count":1,"updated_at":"2026-10-15T08:00:00Z"}`, w.Body.String())
}

func TestGetFields_NotLoaded(t *testing.T) {
	w := httptest.NewRecorder()
	catalogRouter(&fakeCatalogService{currentErr: store.ErrCatalogNotLoaded}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/indices-fields", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshFields_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"disabled", repository.ErrDiscoveryDisabled, http.StatusServiceUnavailable},
		{"cluster failure", errors.New("connection refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			catalogRouter(&fakeCatalogService{refreshErr: tt.err}).
				ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/indices-fields/refresh", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
