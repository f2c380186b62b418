package caption

import (
	"errors"
	"fmt"
)

// ErrNoOutput is returned when the muxer exits cleanly without writing
// the output video.
var ErrNoOutput = errors.New("muxer produced no output file")

// MuxError reports a muxer process that exited with a non-zero code.
type MuxError struct {
	Code        int
	Diagnostics string
}

func (e *MuxError) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("muxer exited with code %d", e.Code)
	}
	return fmt.Sprintf("muxer exited with code %d: %s", e.Code, e.Diagnostics)
}
