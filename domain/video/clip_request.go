package video

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ClipExtension is the container extension of every generated clip
const ClipExtension = ".mp4"

// MimeTypeMP4 is the content type clips are served with
const MimeTypeMP4 = "video/mp4"

// clipNameRegex matches generated clip names: 32 lowercase hex chars + .mp4
var clipNameRegex = regexp.MustCompile(`^[0-9a-f]{32}\.mp4$`)

// ClipRequest represents a request to cut an interval out of a source video
type ClipRequest struct {
	SourcePath string
	Interval   TimeInterval
	ClipName   string
}

// NewClipRequest creates a new ClipRequest with a freshly generated clip name
func NewClipRequest(sourcePath string, interval TimeInterval) (*ClipRequest, error) {
	req := &ClipRequest{
		SourcePath: sourcePath,
		Interval:   interval,
		ClipName:   NewClipName(),
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks that the clip request is valid
func (r *ClipRequest) Validate() error {
	if r.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if r.ClipName == "" {
		return fmt.Errorf("clip name is required")
	}
	return r.Interval.Validate()
}

// OutputPath returns the full output path given an output directory
func (r *ClipRequest) OutputPath(outputDir string) string {
	return filepath.Join(outputDir, r.ClipName)
}

// NewClipName returns an opaque unique clip file name
func NewClipName() string {
	id := uuid.New()
	return hex.EncodeToString(id[:]) + ClipExtension
}

// IsClipName returns true if name has the shape of a generated clip name
func IsClipName(name string) bool {
	return clipNameRegex.MatchString(name)
}

// IsSafeFileName returns true if name is a single path element
func IsSafeFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
