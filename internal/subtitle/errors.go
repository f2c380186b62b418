package subtitle

import (
	"errors"
	"fmt"
)

// ErrInvalidTimestamp is returned for negative or non-finite second values.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// IOError reports a subtitle document that could not be written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("write subtitle %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
