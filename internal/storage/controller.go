package storage

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxUploadBytes = 10 << 20
	notAnImageMessage     = "The file you uploaded doesn't seem to be an image, please upload a file that ends in .jp(e)g or .png."
)

type Controller struct {
	service        *Service
	maxUploadBytes int64
}

func NewController(service *Service, maxUploadBytes int64) *Controller {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Controller{service: service, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes mounts the storage endpoints under group/storage.
func (h *Controller) RegisterRoutes(group *gin.RouterGroup) {
	storageGroup := group.Group("/storage")
	{
		userGroup := storageGroup.Group("", middleware.RequireUser())
		userGroup.GET("/object/*key", h.GetObject)
		userGroup.PUT("/image", h.UploadImage)
		userGroup.DELETE("/image", h.DeleteImage)
		userGroup.GET("/assets", h.ListAssets)
		userGroup.GET("/presign/*key", h.Presign)
	}
}

// UploadImage stores the caller's profile picture and responds with its URL.
func (h *Controller) UploadImage(c *gin.Context) {
	userID := middleware.UserID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image") {
		c.JSON(http.StatusBadRequest, gin.H{"error": notAnImageMessage})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	url, err := h.service.UploadObject(c.Request.Context(), userID, KindPictures, data, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": notAnImageMessage})
		case errors.Is(err, ErrInvalidKey):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "There was an error while uploading the file."})
		}
		return
	}

	c.String(http.StatusOK, url)
}

func (h *Controller) DeleteImage(c *gin.Context) {
	userID := middleware.UserID(c)

	if err := h.service.DeleteObject(c.Request.Context(), userID, KindPictures, userID); err != nil {
		h.writeError(c, err, "failed to delete image")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Controller) ListAssets(c *gin.Context) {
	assets, err := h.service.ListAssets(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err, "failed to fetch assets")
		return
	}
	c.JSON(http.StatusOK, assets)
}

// ownedKey returns the wildcard key when it lies in the caller's folder and
// answers 403 otherwise.
func ownedKey(c *gin.Context) (string, bool) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !strings.HasPrefix(key, middleware.UserID(c)+"/") {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return "", false
	}
	return key, true
}

// Presign hands out a temporary URL for one of the caller's own objects.
func (h *Controller) Presign(c *gin.Context) {
	key, ok := ownedKey(c)
	if !ok {
		return
	}

	url, err := h.service.PresignedURL(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err, "failed to presign object")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GetObject streams one of the caller's own objects from the store.
func (h *Controller) GetObject(c *gin.Context) {
	key, ok := ownedKey(c)
	if !ok {
		return
	}

	body, info, err := h.service.GetObject(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err, "failed to fetch object")
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{
		"Cache-Control": "public, max-age=" + strconv.Itoa(3600),
	}
	if info.ETag != "" {
		headers["ETag"] = `"` + strings.Trim(info.ETag, `"`) + `"`
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, body, headers)
}

func (h *Controller) writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrObjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
	case errors.Is(err, ErrInvalidKey), errors.Is(err, ErrInvalidKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
