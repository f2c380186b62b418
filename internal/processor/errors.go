package processor

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/caption-studio/internal/caption"
	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
)

var (
	ErrAudioExtraction = errors.New("audio extraction failed")
	ErrTranscription   = errors.New("transcription failed")
)

// Error kinds reported to callers so each failure gets its own remediation.
const (
	KindInvalidTimestamp = "invalid_timestamp"
	KindIOFailure        = "io_failure"
	KindMuxFailure       = "mux_failure"
	KindAudioFailure     = "audio_failure"
	KindTranscription    = "transcription_failure"
	KindCanceled         = "canceled"
	KindUnknown          = "unknown"
)

// ErrorKind classifies a pipeline error.
func ErrorKind(err error) string {
	var (
		ioErr  *subtitle.IOError
		muxErr *caption.MuxError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, subtitle.ErrInvalidTimestamp):
		return KindInvalidTimestamp
	case errors.As(err, &ioErr):
		return KindIOFailure
	case errors.As(err, &muxErr), errors.Is(err, caption.ErrNoOutput):
		return KindMuxFailure
	case errors.Is(err, ErrAudioExtraction):
		return KindAudioFailure
	case errors.Is(err, ErrTranscription):
		return KindTranscription
	default:
		return KindUnknown
	}
}
