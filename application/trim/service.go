package trim

import (
	"context"
	"errors"
	"fmt"

	"geoclip-service/domain/geo"
	"geoclip-service/domain/source"
	"geoclip-service/domain/storage"
	"geoclip-service/domain/video"

	"github.com/sirupsen/logrus"
)

// Input represents the input for a trim operation
type Input struct {
	Source   string
	StartLat float64
	StartLon float64
	EndLat   float64
	EndLon   float64
}

// Result contains the result of a trim operation
type Result struct {
	Filename string
	Interval video.TimeInterval
	Source   string
}

// Service maps a pair of positions on a source route to a new clip
type Service struct {
	catalog     *source.Catalog
	logReader   geo.LogReader
	extractor   video.ClipExtractor
	fileChecker video.FileChecker
	store       storage.ClipStore
	logger      logrus.FieldLogger
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new trim Service
func NewService(
	catalog *source.Catalog,
	logReader geo.LogReader,
	extractor video.ClipExtractor,
	fileChecker video.FileChecker,
	store storage.ClipStore,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		catalog:     catalog,
		logReader:   logReader,
		extractor:   extractor,
		fileChecker: fileChecker,
		store:       store,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trim resolves the input positions to an interval of the source video and
// extracts it into a new clip. Client input errors are detected before the
// extractor is invoked.
func (s *Service) Trim(ctx context.Context, input Input) (*Result, error) {
	src, err := s.catalog.Lookup(input.Source)
	if err != nil {
		return nil, &ClientInputError{Message: MsgInvalidSource, Err: err}
	}

	start, err := geo.NewPoint(input.StartLat, input.StartLon)
	if err != nil {
		return nil, &ClientInputError{Message: MsgInvalidCoordinates, Err: err}
	}
	end, err := geo.NewPoint(input.EndLat, input.EndLon)
	if err != nil {
		return nil, &ClientInputError{Message: MsgInvalidCoordinates, Err: err}
	}

	startTS, endTS, err := geo.ResolveFile(ctx, s.logReader, src.CoordinatesPath, start, end)
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			s.logger.WithError(err).WithField("source", src.ID).Warn("Could not resolve coordinates")
			return nil, &ClientInputError{Message: MsgUnresolvable, Err: err}
		}
		return nil, err
	}

	interval, err := video.NewInterval(startTS, endTS)
	if err != nil {
		return nil, &ClientInputError{Message: MsgUnresolvable, Err: err}
	}

	if !s.fileChecker.Exists(src.VideoPath) {
		return nil, fmt.Errorf("source video for %s does not exist: %s", src.ID, src.VideoPath)
	}

	req, err := video.NewClipRequest(src.VideoPath, interval)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"source":   src.ID,
		"interval": interval.String(),
		"clip":     req.ClipName,
	})
	log.Info("Extracting clip")

	if err := s.extractor.Extract(ctx, req, s.store.Path(req.ClipName)); err != nil {
		return nil, classifyExtractError(err)
	}

	log.Info("Clip ready")

	return &Result{
		Filename: req.ClipName,
		Interval: interval,
		Source:   src.ID,
	}, nil
}

func classifyExtractError(err error) error {
	var procErr *video.ProcessError
	switch {
	case errors.Is(err, video.ErrExtractTimeout):
		return &ProcessingError{Message: MsgTimeout, Err: err}
	case errors.Is(err, video.ErrExtractorBusy):
		return &ProcessingError{Message: MsgBusy, Err: err}
	case errors.As(err, &procErr):
		return &ProcessingError{Message: "FFmpeg error: " + procErr.Diagnostic, Err: err}
	default:
		return fmt.Errorf("clip extraction failed: %w", err)
	}
}
