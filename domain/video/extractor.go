package video

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrExtractTimeout is returned when the transcoder exceeds its deadline
	ErrExtractTimeout = errors.New("video processing timed out")

	// ErrExtractorBusy is returned when no extraction slot frees up in time
	ErrExtractorBusy = errors.New("video processing is busy")
)

// ProcessError is returned when the transcoder exits unsuccessfully.
// Diagnostic holds its redacted error output.
type ProcessError struct {
	ExitCode   int
	Diagnostic string
}

func (e *ProcessError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("transcoder exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("transcoder exited with status %d: %s", e.ExitCode, e.Diagnostic)
}

// ClipExtractor defines the interface for clip extraction operations
// This is a port that can be implemented by different infrastructure adapters
type ClipExtractor interface {
	// Extract cuts req.Interval out of req.SourcePath into a new file at outputPath
	Extract(ctx context.Context, req *ClipRequest, outputPath string) error
}

// FileChecker defines the interface for checking file existence
// This is used to validate that source files exist before extraction
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}
