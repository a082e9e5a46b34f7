package web

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"geoclip-service/domain/storage"
	"geoclip-service/domain/video"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// VideoHandler serves stored clips with single-range support
type VideoHandler struct {
	store  storage.ClipStore
	logger logrus.FieldLogger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(store storage.ClipStore, logger logrus.FieldLogger) *VideoHandler {
	return &VideoHandler{
		store:  store,
		logger: logger,
	}
}

// ServeVideo handles GET and HEAD /video/:filename
func (h *VideoHandler) ServeVideo(c *gin.Context) {
	name := c.Param("filename")
	if !video.IsSafeFileName(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}

	f, err := os.Open(h.store.Path(name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.WithError(err).WithField("file", name).Error("Failed to open clip")
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	size := info.Size()

	header := c.Writer.Header()
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Type", video.MimeTypeMP4)

	r, err := video.ParseByteRange(c.GetHeader("Range"), size)
	switch {
	case err == nil:
		header.Set("Content-Range", r.ContentRange())
		h.write(c, http.StatusPartialContent, io.NewSectionReader(f, r.Start, r.Length()), r.Length())

	case errors.Is(err, video.ErrUnsatisfiableRange):
		header.Set("Content-Range", video.UnsatisfiedContentRange(size))
		c.Status(http.StatusRequestedRangeNotSatisfiable)

	default:
		h.write(c, http.StatusOK, f, size)
	}
}

func (h *VideoHandler) write(c *gin.Context, status int, body io.Reader, length int64) {
	c.Writer.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	c.Status(status)

	if c.Request.Method == http.MethodHead {
		c.Writer.WriteHeaderNow()
		return
	}

	if _, err := io.CopyN(c.Writer, body, length); err != nil {
		// Headers are already sent; the client usually went away
		h.logger.WithError(err).Debug("Clip transfer ended early")
	}
}
