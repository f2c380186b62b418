package transcriber

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
)

// Task selects between same-language transcription and translation to English.
type Task string

const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

// ParseTask validates a task name. An empty name means TaskTranscribe.
func ParseTask(name string) (Task, error) {
	switch Task(name) {
	case "", TaskTranscribe:
		return TaskTranscribe, nil
	case TaskTranslate:
		return TaskTranslate, nil
	}
	return "", fmt.Errorf("unknown task %q", name)
}

// Suffix is appended to output file names produced for the task.
func (t Task) Suffix() string {
	if t == TaskTranslate {
		return "_english"
	}
	return "_original"
}

// Transcriber converts an audio file into ordered speech segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, task Task) ([]subtitle.Segment, error)
}
