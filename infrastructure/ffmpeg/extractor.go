package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"geoclip-service/domain/video"

	"github.com/sirupsen/logrus"
)

// Defaults used when no option overrides them
const (
	DefaultTimeout       = 30 * time.Second
	DefaultVideoCodec    = "libx264"
	DefaultPreset        = "fast"
	DefaultAudioCodec    = "aac"
	DefaultMaxConcurrent = 4

	// AutoVideoCodec selects h264_nvenc when ffmpeg reports it, else libx264
	AutoVideoCodec = "auto"
)

// exitCoder is satisfied by *exec.ExitError
type exitCoder interface {
	error
	ExitCode() int
}

// maxDiagnosticBytes is how much of ffmpeg's error output is reported
const maxDiagnosticBytes = 2048

// ClipExtractor implements video.ClipExtractor using ffmpeg.
// Output is re-encoded into a fragmented MP4 so it streams while cut
// points need not fall on keyframes.
type ClipExtractor struct {
	ffmpegPath string
	runner     CommandRunner
	timeout    time.Duration
	videoCodec string
	preset     string
	audioCodec string
	slots      chan struct{}
	logger     logrus.FieldLogger
}

// ClipExtractorOption is a functional option for configuring ClipExtractor
type ClipExtractorOption func(*ClipExtractor)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) ClipExtractorOption {
	return func(e *ClipExtractor) {
		e.ffmpegPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) ClipExtractorOption {
	return func(e *ClipExtractor) {
		e.runner = runner
	}
}

// WithTimeout sets the processing deadline for one extraction
func WithTimeout(d time.Duration) ClipExtractorOption {
	return func(e *ClipExtractor) {
		e.timeout = d
	}
}

// WithCodecs sets the video codec, its preset and the audio codec
func WithCodecs(videoCodec, preset, audioCodec string) ClipExtractorOption {
	return func(e *ClipExtractor) {
		if videoCodec != "" {
			e.videoCodec = videoCodec
		}
		e.preset = preset
		if audioCodec != "" {
			e.audioCodec = audioCodec
		}
	}
}

// WithMaxConcurrent limits how many ffmpeg processes run at once
func WithMaxConcurrent(n int) ClipExtractorOption {
	return func(e *ClipExtractor) {
		if n > 0 {
			e.slots = make(chan struct{}, n)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) ClipExtractorOption {
	return func(e *ClipExtractor) {
		e.logger = logger
	}
}

// NewClipExtractor creates a new FFmpeg-based clip extractor
func NewClipExtractor(opts ...ClipExtractorOption) *ClipExtractor {
	e := &ClipExtractor{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		timeout:    DefaultTimeout,
		videoCodec: DefaultVideoCodec,
		preset:     DefaultPreset,
		audioCodec: DefaultAudioCodec,
		slots:      make(chan struct{}, DefaultMaxConcurrent),
		logger:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract implements video.ClipExtractor
func (e *ClipExtractor) Extract(ctx context.Context, req *video.ClipRequest, outputPath string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	select {
	case e.slots <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", video.ErrExtractorBusy, ctx.Err())
	}
	defer func() { <-e.slots }()

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	log := e.logger.WithFields(logrus.Fields{
		"clip":     req.ClipName,
		"interval": req.Interval.String(),
	})
	started := time.Now()

	stderr, err := e.runner.Run(runCtx, e.ffmpegPath, e.Args(req, outputPath)...)
	if err != nil {
		e.removePartial(outputPath)

		switch {
		case ctx.Err() != nil:
			return fmt.Errorf("clip extraction cancelled: %w", ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			log.WithField("timeout", e.timeout).Warn("ffmpeg timed out")
			return video.ErrExtractTimeout
		}

		var exitErr exitCoder
		if errors.As(err, &exitErr) {
			perr := &video.ProcessError{
				ExitCode:   exitErr.ExitCode(),
				Diagnostic: Redact(tail(stderr, maxDiagnosticBytes), req.SourcePath, outputPath),
			}
			log.WithField("exit_code", perr.ExitCode).Warn("ffmpeg failed")
			return perr
		}
		return fmt.Errorf("failed to run ffmpeg: %w", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return &video.ProcessError{Diagnostic: "ffmpeg produced no output"}
	}

	log.WithField("elapsed", time.Since(started).String()).Debug("clip extracted")
	return nil
}

// Args returns the ffmpeg arguments for a clip request
func (e *ClipExtractor) Args(req *video.ClipRequest, outputPath string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-ss", video.FormatSeconds(req.Interval.StartSec),
		"-to", video.FormatSeconds(req.Interval.EndSec),
		"-i", req.SourcePath,
		"-c:v", e.videoCodec,
	}
	if e.preset != "" {
		args = append(args, "-preset", e.preset)
	}
	args = append(args,
		"-c:a", e.audioCodec,
		"-movflags", "frag_keyframe+empty_moov",
		"-f", "mp4",
		outputPath,
	)
	return args
}

// VideoCodec returns the video codec in use
func (e *ClipExtractor) VideoCodec() string {
	return e.videoCodec
}

// VerifyInstalled checks that ffmpeg is available
func (e *ClipExtractor) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// ResolveAutoCodec replaces the "auto" video codec with h264_nvenc when the
// ffmpeg build lists it, and libx264 otherwise
func (e *ClipExtractor) ResolveAutoCodec(ctx context.Context) string {
	if e.videoCodec != AutoVideoCodec {
		return e.videoCodec
	}

	e.videoCodec = DefaultVideoCodec
	output, err := e.runner.Output(ctx, e.ffmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		e.logger.WithError(err).Warn("failed to list ffmpeg encoders, using libx264")
		return e.videoCodec
	}

	if strings.Contains(string(output), "h264_nvenc") {
		e.videoCodec = "h264_nvenc"
		// NVENC presets are p1..p7
		e.preset = "p1"
	}
	e.logger.WithField("codec", e.videoCodec).Info("video encoder selected")
	return e.videoCodec
}

func (e *ClipExtractor) removePartial(outputPath string) {
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.logger.WithError(err).Warn("failed to remove partial clip")
	}
}

// Redact replaces the given paths and their directories in diagnostic
// output with base names so filesystem layout is not exposed
func Redact(s string, paths ...string) string {
	var targets []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		targets = append(targets, p)
		if abs, err := filepath.Abs(p); err == nil && abs != p {
			targets = append(targets, abs)
		}
	}
	// Longest first so a directory never splits a longer path
	sort.Slice(targets, func(i, j int) bool {
		return len(targets[i]) > len(targets[j])
	})

	for _, t := range targets {
		s = strings.ReplaceAll(s, t, filepath.Base(t))
	}

	for _, t := range targets {
		dir := filepath.Dir(t)
		if dir == "." || dir == string(filepath.Separator) {
			continue
		}
		s = strings.ReplaceAll(s, dir+string(filepath.Separator), "")
		s = strings.ReplaceAll(s, dir, "")
	}
	return s
}

// tail returns the last n bytes of b as trimmed text, starting on a line
// boundary when one is available
func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
		if i := strings.IndexByte(string(b), '\n'); i >= 0 && i < len(b)-1 {
			b = b[i+1:]
		}
	}
	return strings.TrimSpace(string(b))
}

// Ensure ClipExtractor implements video.ClipExtractor
var _ video.ClipExtractor = (*ClipExtractor)(nil)
