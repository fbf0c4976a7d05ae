package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc *Service) *gin.Engine {
	router := gin.New()
	NewController(svc, 1<<20).RegisterRoutes(router.Group("/api"))
	return router
}

func multipartBody(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="avatar"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadImageEndpoint(t *testing.T) {
	backend := newFakeBackend()
	router := newTestRouter(newTestService(backend, newMemoryAssets()))

	body, contentType := multipartBody(t, "image/png", pngFixture(t, 64, 64))
	req := httptest.NewRequest(http.MethodPut, "/api/storage/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "http://localhost:9000/default/user-1/pictures/user-1.jpg", rec.Body.String())
	assert.True(t, backend.has("user-1/pictures/user-1.jpg"))
}

func TestUploadImageRejectsNonImages(t *testing.T) {
	router := newTestRouter(newTestService(newFakeBackend(), newMemoryAssets()))

	body, contentType := multipartBody(t, "application/pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPut, "/api/storage/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "doesn't seem to be an image")
}

func TestUploadImageRejectsUndecodableImage(t *testing.T) {
	router := newTestRouter(newTestService(newFakeBackend(), newMemoryAssets()))

	body, contentType := multipartBody(t, "image/png", []byte("garbage"))
	req := httptest.NewRequest(http.MethodPut, "/api/storage/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserRoutesRequireUser(t *testing.T) {
	router := newTestRouter(newTestService(newFakeBackend(), newMemoryAssets()))

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/storage/image"},
		{http.MethodDelete, "/api/storage/image"},
		{http.MethodGet, "/api/storage/assets"},
		{http.MethodGet, "/api/storage/presign/user-1/resumes/cv.pdf"},
		{http.MethodGet, "/api/storage/object/user-1/resumes/cv.pdf"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestGetObjectEndpoint(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(backend, newMemoryAssets())
	_, err := svc.UploadObject(context.Background(), "user-1", KindResumes, []byte("%PDF-data"), "cv")
	require.NoError(t, err)
	router := newTestRouter(svc)

	get := func(user, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if user != "" {
			req.Header.Set(middleware.UserIDHeader, user)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := get("user-1", "/api/storage/object/user-1/resumes/cv.pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-data", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `"etag-user-1/resumes/cv.pdf"`, rec.Header().Get("ETag"))

	rec = get("user-1", "/api/storage/object/user-1/resumes/missing.pdf")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get("user-2", "/api/storage/object/user-1/resumes/cv.pdf")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = get("", "/api/storage/object/user-1/resumes/cv.pdf")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPresignEndpoint(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(backend, newMemoryAssets())
	_, err := svc.UploadObject(context.Background(), "user-1", KindResumes, []byte("%PDF"), "cv")
	require.NoError(t, err)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/storage/presign/user-1/resumes/cv.pdf", nil)
	req.Header.Set(middleware.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Contains(t, payload["url"], "user-1/resumes/cv.pdf")

	req = httptest.NewRequest(http.MethodGet, "/api/storage/presign/user-1/resumes/cv.pdf", nil)
	req.Header.Set(middleware.UserIDHeader, "user-2")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteImageAndListAssetsEndpoints(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(backend, newMemoryAssets())
	_, err := svc.UploadObject(context.Background(), "user-1", KindPictures, pngFixture(t, 10, 10), "user-1")
	require.NoError(t, err)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/storage/assets", nil)
	req.Header.Set(middleware.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var assets []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assets))
	require.Len(t, assets, 1)
	assert.Equal(t, "user-1/pictures/user-1.jpg", assets[0]["key"])

	req = httptest.NewRequest(http.MethodDelete, "/api/storage/image", nil)
	req.Header.Set(middleware.UserIDHeader, "user-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, backend.has("user-1/pictures/user-1.jpg"))
}

func TestUploadImageRejectsOversizedBody(t *testing.T) {
	backend := newFakeBackend()
	router := gin.New()
	NewController(newTestService(backend, newMemoryAssets()), 1024).RegisterRoutes(router.Group("/api"))

	body, contentType := multipartBody(t, "image/png", bytes.Repeat([]byte{0x89}, 1<<20))
	req := httptest.NewRequest(http.MethodPut, "/api/storage/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"file is too large"}`, rec.Body.String())
	assert.False(t, backend.has("user-1/pictures/user-1.jpg"))
}
