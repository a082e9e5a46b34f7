package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"geoclip-service/application/trim"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Trimmer is the application operation behind POST /trim
type Trimmer interface {
	Trim(ctx context.Context, input trim.Input) (*trim.Result, error)
}

// TrimHandler handles clip creation requests
type TrimHandler struct {
	trimmer       Trimmer
	publicBaseURL string
	logger        logrus.FieldLogger
}

// NewTrimHandler creates a new trim handler. When publicBaseURL is empty the
// clip URL is derived from the request.
func NewTrimHandler(trimmer Trimmer, publicBaseURL string, logger logrus.FieldLogger) *TrimHandler {
	return &TrimHandler{
		trimmer:       trimmer,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// TrimRequest is the body of POST /trim. Coordinates may be JSON numbers or
// numeric strings.
type TrimRequest struct {
	Source   json.RawMessage `json:"source"`
	StartLat json.RawMessage `json:"start_lat"`
	StartLon json.RawMessage `json:"start_lon"`
	EndLat   json.RawMessage `json:"end_lat"`
	EndLon   json.RawMessage `json:"end_lon"`
}

// Input converts the raw body into a trim.Input. Unusable coordinates become
// NaN so the service reports them after the source check.
func (r TrimRequest) Input() trim.Input {
	var src string
	if err := json.Unmarshal(r.Source, &src); err != nil {
		src = ""
	}
	return trim.Input{
		Source:   src,
		StartLat: parseCoordinate(r.StartLat),
		StartLon: parseCoordinate(r.StartLon),
		EndLat:   parseCoordinate(r.EndLat),
		EndLon:   parseCoordinate(r.EndLon),
	}
}

func parseCoordinate(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// TrimResponse is the success body of POST /trim
type TrimResponse struct {
	VideoURL string `json:"video_url"`
}

// Trim handles POST /trim
func (h *TrimHandler) Trim(c *gin.Context) {
	var req TrimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		h.logger.WithError(err).Warn("Invalid trim request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.trimmer.Trim(c.Request.Context(), req.Input())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, TrimResponse{
		VideoURL: h.baseURL(c) + "/video/" + result.Filename,
	})
}

func (h *TrimHandler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var clientErr *trim.ClientInputError
	var procErr *trim.ProcessingError
	switch {
	case errors.As(err, &clientErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": clientErr.Message})
	case errors.As(err, &procErr):
		h.logger.WithError(err).Error("Clip extraction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": procErr.Message})
	default:
		h.logger.WithError(err).Error("Unexpected trim failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": trim.MsgInternal})
	}
}

func (h *TrimHandler) baseURL(c *gin.Context) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := c.Request.Host
	if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return scheme + "://" + host
}
