package jobs

import "time"

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Kind names the operation a job performs.
type Kind string

const (
	KindCaption   Kind = "caption"
	KindSummarize Kind = "summarize"
	KindGenerate  Kind = "generate"
)

// Job is one recorded run.
type Job struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Source       string    `json:"source"`
	Status       Status    `json:"status"`
	Stage        string    `json:"stage,omitempty"`
	SubtitlePath string    `json:"subtitle_path,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Terminal reports whether the job has finished.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
