package web

import (
	"context"
	"fmt"
	"net/http"

	"geoclip-service/domain/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Housekeeper is the application service behind the /trimmed endpoints
type Housekeeper interface {
	Count(ctx context.Context) (int, error)
	PurgeAll(ctx context.Context) (*storage.PurgeResult, error)
}

// HousekeepingHandler exposes clip count and purge
type HousekeepingHandler struct {
	housekeeper Housekeeper
	logger      logrus.FieldLogger
}

// NewHousekeepingHandler creates a new housekeeping handler
func NewHousekeepingHandler(housekeeper Housekeeper, logger logrus.FieldLogger) *HousekeepingHandler {
	return &HousekeepingHandler{
		housekeeper: housekeeper,
		logger:      logger,
	}
}

// Count handles GET /trimmed/count
func (h *HousekeepingHandler) Count(c *gin.Context) {
	n, err := h.housekeeper.Count(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		h.logger.WithError(err).Error("Failed to count clips")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting videos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// DeleteAll handles DELETE /trimmed/delete-all
func (h *HousekeepingHandler) DeleteAll(c *gin.Context) {
	result, err := h.housekeeper.PurgeAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		h.logger.WithError(err).Error("Failed to delete clips")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting videos"})
		return
	}

	names := result.Names()
	c.JSON(http.StatusOK, gin.H{
		"deleted": names,
		"message": fmt.Sprintf("Deleted %d videos", len(names)),
	})
}

// Ping handles GET /ping
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
