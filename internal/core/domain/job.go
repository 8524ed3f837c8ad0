package domain

// JobState is the lifecycle state of a batch job.
type JobState string

const (
	JobIdle       JobState = "idle"
	JobSubmitting JobState = "submitting"
	JobPolling    JobState = "polling"
	JobFetching   JobState = "fetching"
	JobDecoding   JobState = "decoding"
	JobDone       JobState = "done"
	JobFailed     JobState = "failed"
)

// IsTerminal reports whether no further automatic transition leaves s.
func (s JobState) IsTerminal() bool {
	return s == JobDone || s == JobFailed
}

// ErrorInfo is the user-facing description of a job failure.
type ErrorInfo struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// BatchJob is a remote batch validation job.
// The ID is assigned by the remote service on submission.
type BatchJob struct {
	ID       string     `json:"id,omitempty"`
	State    JobState   `json:"state"`
	Progress int        `json:"progress"`
	Err      error      `json:"-"`
	Error    *ErrorInfo `json:"error,omitempty"`
}

