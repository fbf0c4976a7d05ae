package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	exists bool
	err    error
}

func (s stubChecker) BucketExists(ctx context.Context) (bool, error) {
	return s.exists, s.err
}

func serveStorageHealth(checker BucketChecker) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health/storage", NewHealthHandler(checker).Storage)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/storage", nil))
	return rec
}

func TestStorageHealth(t *testing.T) {
	tests := []struct {
		name   string
		checker BucketChecker
		want   int
	}{
		{"bucket present", stubChecker{exists: true}, http.StatusOK},
		{"bucket missing", stubChecker{exists: false}, http.StatusServiceUnavailable},
		{"store unreachable", stubChecker{err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable},
		{"not configured", nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveStorageHealth(tt.checker)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
