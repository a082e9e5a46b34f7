package trim

import "fmt"

// Client-facing messages
const (
	MsgInvalidSource      = "Invalid source video name"
	MsgInvalidCoordinates = "Invalid coordinate values"
	MsgUnresolvable       = "Invalid coordinates or timestamps"
	MsgTimeout            = "Video processing timed out"
	MsgBusy               = "Video processing is busy"
	MsgInternal           = "Internal Server Error"
)

// ClientInputError means the request itself was wrong. Message is safe to
// return to the caller.
type ClientInputError struct {
	Message string
	Err     error
}

func (e *ClientInputError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ClientInputError) Unwrap() error {
	return e.Err
}

// ProcessingError means clip extraction failed. Message is safe to return
// to the caller and never contains the command line or local paths.
type ProcessingError struct {
	Message string
	Err     error
}

func (e *ProcessingError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
