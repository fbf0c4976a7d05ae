package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const storageCheckTimeout = 5 * time.Second

// BucketChecker reports whether the storage bucket is reachable.
type BucketChecker interface {
	BucketExists(ctx context.Context) (bool, error)
}

type HealthHandler struct {
	storage BucketChecker
}

func NewHealthHandler(storage BucketChecker) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Health reports process liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Storage reports whether the bucket can be reached.
func (h *HealthHandler) Storage(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": "storage is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storageCheckTimeout)
	defer cancel()

	exists, err := h.storage.BucketExists(ctx)
	if err != nil {
		log.Error().Err(err).Msg("storage health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": "storage is unreachable"})
		return
	}
	if !exists {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": "bucket does not exist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "up"})
}
