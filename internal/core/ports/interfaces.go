package ports

import (
	"context"
	"io"
	"strings"

	"leadkit/internal/core/domain"
)

// Credential authenticates calls to the remote validation service.
type Credential struct {
	APIKey string
}

// UploadFile is a record file submitted for batch validation.
type UploadFile struct {
	Name          string
	Content       []byte
	AddressColumn int  // 1-based column holding the address
	HasHeaderRow  bool // first line is a header, not an address
}

// SubmitResponse is the service's answer to a batch submission.
type SubmitResponse struct {
	Success bool
	JobID   string
	Message string
}

// JobStatus is one status report for a batch job.
type JobStatus struct {
	CompletionPercent string // numeric text, possibly suffixed with "%"
	State             string // e.g. "Processing", "Complete"
	ErrorReason       string
}

// IsComplete reports whether the remote job finished processing.
func (s JobStatus) IsComplete() bool {
	return strings.EqualFold(strings.TrimSpace(s.State), "Complete")
}

// SingleResult is the validation outcome of a single address.
type SingleResult struct {
	Address    string            `json:"address"`
	Status     domain.StatusCode `json:"status"`
	SubStatus  string            `json:"sub_status"`
	DidYouMean string            `json:"did_you_mean,omitempty"`
}

// BulkValidator defines the contract for the remote batch validation API.
type BulkValidator interface {
	// SubmitFile uploads a record file and returns the assigned job id.
	SubmitFile(ctx context.Context, cred Credential, file UploadFile) (*SubmitResponse, error)

	// PollStatus reports the progress of a submitted job.
	PollStatus(ctx context.Context, cred Credential, jobID string) (*JobStatus, error)

	// FetchResult returns the raw delimited-text result payload.
	FetchResult(ctx context.Context, cred Credential, jobID string) ([]byte, error)
}

// SingleValidator defines the contract for validating one address.
type SingleValidator interface {
	ValidateOne(ctx context.Context, cred Credential, address string) (*SingleResult, error)
}

// SpreadsheetCodec encodes and decodes binary spreadsheet containers.
type SpreadsheetCodec interface {
	// Decode returns the cells of the first sheet, row by row.
	Decode(r io.Reader) ([][]string, error)

	// Encode writes a single-sheet container with a header row.
	Encode(sheet string, header []string, rows [][]any) ([]byte, error)
}

// Notifier receives user-visible notices.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notice)
}

// Downloader defines the contract for streaming remote payloads.
type Downloader interface {
	// Download fetches the resource at the given URL.
	// Returns a ReadCloser that the caller must close.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Storage defines the contract for persisting run artifacts.
type Storage interface {
	// InitRun creates the run directory structure.
	InitRun(ctx context.Context, runID string) error

	// SaveArtifact writes one named artifact for the run.
	SaveArtifact(ctx context.Context, runID, name string, reader io.Reader) error

	// GetRunPath returns the filesystem path for a given run ID.
	GetRunPath(runID string) string
}
