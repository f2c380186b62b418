package subtitle

import (
	"fmt"
	"math"
)

// Timestamp is a cue boundary split into clock fields.
type Timestamp struct {
	Hours        int
	Minutes      int
	Seconds      int
	Milliseconds int
}

// NewTimestamp converts seconds into a Timestamp, truncating to whole
// milliseconds. The field total always equals floor(seconds * 1000).
func NewTimestamp(seconds float64) (Timestamp, error) {
	if math.IsNaN(seconds) || seconds < 0 || seconds*1000 >= math.MaxInt64 {
		return Timestamp{}, fmt.Errorf("%w: %v seconds", ErrInvalidTimestamp, seconds)
	}
	return FromMilliseconds(int64(math.Floor(seconds * 1000))), nil
}

// FromMilliseconds splits a non-negative millisecond count into fields.
func FromMilliseconds(total int64) Timestamp {
	if total < 0 {
		total = 0
	}
	return Timestamp{
		Hours:        int(total / 3_600_000),
		Minutes:      int(total % 3_600_000 / 60_000),
		Seconds:      int(total % 60_000 / 1000),
		Milliseconds: int(total % 1000),
	}
}

// TotalMilliseconds returns the total millisecond count.
func (t Timestamp) TotalMilliseconds() int64 {
	return int64(t.Hours)*3_600_000 +
		int64(t.Minutes)*60_000 +
		int64(t.Seconds)*1000 +
		int64(t.Milliseconds)
}

// String renders HH:MM:SS,mmm.
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d,%03d", t.Hours, t.Minutes, t.Seconds, t.Milliseconds)
}

// FormatTimestamp renders seconds as an SRT timestamp.
func FormatTimestamp(seconds float64) (string, error) {
	ts, err := NewTimestamp(seconds)
	if err != nil {
		return "", err
	}
	return ts.String(), nil
}
