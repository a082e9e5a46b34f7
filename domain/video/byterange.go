package video

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNoRange means the Range header is absent or not usable and the
	// whole file should be served
	ErrNoRange = errors.New("no usable range")

	// ErrUnsatisfiableRange means the range cannot be served (416)
	ErrUnsatisfiableRange = errors.New("range not satisfiable")
)

// ByteRange is an inclusive byte span of a file of Size bytes
type ByteRange struct {
	Start int64
	End   int64
	Size  int64
}

// Length returns the number of bytes in the range
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange returns the Content-Range header value
func (r ByteRange) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Size)
}

// UnsatisfiedContentRange returns the Content-Range header value for a 416
func UnsatisfiedContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}

// ParseByteRange parses a single "bytes=start-end" range against a file size.
// A missing end means end of file, an end past the file is clamped, and
// "bytes=-N" selects the last N bytes. Syntax that is not a byte range
// yields ErrNoRange. Ranges that cannot be satisfied, including multiple
// ranges, yield ErrUnsatisfiableRange.
func ParseByteRange(header string, size int64) (ByteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return ByteRange{}, ErrNoRange
	}

	rangeSpec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return ByteRange{}, ErrNoRange
	}
	if strings.Contains(rangeSpec, ",") {
		return ByteRange{}, fmt.Errorf("%w: multiple ranges are not supported", ErrUnsatisfiableRange)
	}

	startStr, endStr, ok := strings.Cut(strings.TrimSpace(rangeSpec), "-")
	if !ok {
		return ByteRange{}, ErrNoRange
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		return parseSuffixRange(endStr, size)
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, ErrNoRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return ByteRange{}, ErrNoRange
		}
	}

	if start >= size {
		return ByteRange{}, fmt.Errorf("%w: start %d is beyond file size %d", ErrUnsatisfiableRange, start, size)
	}
	if start > end {
		return ByteRange{}, fmt.Errorf("%w: start %d is after end %d", ErrUnsatisfiableRange, start, end)
	}
	if end >= size {
		end = size - 1
	}

	return ByteRange{Start: start, End: end, Size: size}, nil
}

func parseSuffixRange(suffixStr string, size int64) (ByteRange, error) {
	n, err := strconv.ParseInt(suffixStr, 10, 64)
	if err != nil || n < 0 {
		return ByteRange{}, ErrNoRange
	}
	if n == 0 || size == 0 {
		return ByteRange{}, fmt.Errorf("%w: empty suffix range", ErrUnsatisfiableRange)
	}
	if n > size {
		n = size
	}
	return ByteRange{Start: size - n, End: size - 1, Size: size}, nil
}
