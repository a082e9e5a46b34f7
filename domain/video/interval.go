package video

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidInterval is returned when an interval does not start before it ends
var ErrInvalidInterval = errors.New("invalid time interval")

// TimeInterval is a span of video time in seconds
type TimeInterval struct {
	StartSec float64
	EndSec   float64
}

// NewInterval creates a TimeInterval, requiring start < end
func NewInterval(startSec, endSec float64) (TimeInterval, error) {
	i := TimeInterval{StartSec: startSec, EndSec: endSec}
	if err := i.Validate(); err != nil {
		return TimeInterval{}, err
	}
	return i, nil
}

// Validate checks that both bounds are finite and start is before end
func (i TimeInterval) Validate() error {
	if math.IsNaN(i.StartSec) || math.IsInf(i.StartSec, 0) || math.IsNaN(i.EndSec) || math.IsInf(i.EndSec, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidInterval)
	}
	if i.StartSec >= i.EndSec {
		return fmt.Errorf("%w: end %s must be after start %s", ErrInvalidInterval, FormatSeconds(i.EndSec), FormatSeconds(i.StartSec))
	}
	return nil
}

// Duration returns the interval length in seconds
func (i TimeInterval) Duration() float64 {
	return i.EndSec - i.StartSec
}

// String returns the interval as "start-end" in seconds
func (i TimeInterval) String() string {
	return FormatSeconds(i.StartSec) + "-" + FormatSeconds(i.EndSec)
}

// FormatSeconds formats seconds the way ffmpeg accepts them for -ss and -to
func FormatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64)
}
