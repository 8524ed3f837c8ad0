// Package zerobounce implements the batch and single validation ports
// against the ZeroBounce v2 HTTP API.
package zerobounce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leadkit/internal/adapters/downloader"
	"leadkit/internal/core/domain"
	"leadkit/internal/core/ports"
)

const (
	DefaultAPIURL  = "https://api.zerobounce.net/v2"
	DefaultBulkURL = "https://bulkapi.zerobounce.net/v2"
)

// Config holds the client settings.
type Config struct {
	APIURL  string
	BulkURL string
	Timeout time.Duration
}

// Client implements ports.BulkValidator and ports.SingleValidator.
type Client struct {
	apiURL     string
	bulkURL    string
	client     *http.Client
	downloader ports.Downloader
}

// NewClient creates a new Client. Result files are fetched through dl; a
// nil dl uses an HTTPDownloader with the same timeout.
func NewClient(cfg Config, dl ports.Downloader) (*Client, error) {
	if strings.TrimSpace(cfg.APIURL) == "" || strings.TrimSpace(cfg.BulkURL) == "" {
		return nil, &domain.ConfigError{Detail: "validation service URLs are not set"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if dl == nil {
		dl = downloader.NewHTTPDownloader(cfg.Timeout)
	}
	return &Client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		bulkURL:    strings.TrimRight(cfg.BulkURL, "/"),
		client:     &http.Client{Timeout: cfg.Timeout},
		downloader: dl,
	}, nil
}

// SubmitFile uploads a record file for batch validation.
func (c *Client) SubmitFile(ctx context.Context, cred ports.Credential, file ports.UploadFile) (*ports.SubmitResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("api_key", cred.APIKey); err != nil {
		return nil, err
	}
	column := file.AddressColumn
	if column <= 0 {
		column = 1
	}
	if err := mw.WriteField("email_address_column", strconv.Itoa(column)); err != nil {
		return nil, err
	}
	if err := mw.WriteField("has_header_row", strconv.FormatBool(file.HasHeaderRow)); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(file.Content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bulkURL+"/sendfile", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result struct {
		Success bool   `json:"success"`
		Message any    `json:"message"`
		FileID  string `json:"file_id"`
	}
	if err := c.doJSON(req, "submit", &result); err != nil {
		return nil, err
	}

	return &ports.SubmitResponse{
		Success: result.Success,
		JobID:   result.FileID,
		Message: messageText(result.Message),
	}, nil
}

// PollStatus reports the progress of a submitted file.
func (c *Client) PollStatus(ctx context.Context, cred ports.Credential, jobID string) (*ports.JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL("filestatus", cred, jobID), nil)
	if err != nil {
		return nil, err
	}

	var status struct {
		Success            *bool           `json:"success"`
		Message            any             `json:"message"`
		CompletePercentage json.RawMessage `json:"complete_percentage"`
		FileStatus         string          `json:"file_status"`
		ErrorReason        *string         `json:"error_reason"`
	}
	if err := c.doJSON(req, "poll", &status); err != nil {
		return nil, err
	}
	if status.Success != nil && !*status.Success {
		return nil, &domain.RemoteRejectionError{Op: "poll", Message: messageText(status.Message)}
	}

	out := &ports.JobStatus{
		CompletionPercent: rawText(status.CompletePercentage),
		State:             status.FileStatus,
	}
	if status.ErrorReason != nil {
		out.ErrorReason = *status.ErrorReason
	}
	return out, nil
}

// FetchResult downloads the result file of a completed job.
func (c *Client) FetchResult(ctx context.Context, cred ports.Credential, jobID string) ([]byte, error) {
	rc, err := c.downloader.Download(ctx, c.fileURL("getfile", cred, jobID))
	if err != nil {
		var statusErr *downloader.StatusError
		if errors.As(err, &statusErr) {
			return nil, &domain.RemoteRejectionError{Op: "fetch", Message: rejectionText(statusErr.Code, []byte(statusErr.Body))}
		}
		return nil, &domain.TransportError{Op: "fetch", Err: redact(err)}
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, &domain.TransportError{Op: "fetch", Err: redact(err)}
	}

	// Failures are reported as a JSON object with a 200 status.
	if trimmed := bytes.TrimSpace(payload); len(trimmed) > 0 && trimmed[0] == '{' {
		var failure struct {
			Success *bool `json:"success"`
			Message any   `json:"message"`
			Error   any   `json:"error"`
		}
		if json.Unmarshal(trimmed, &failure) == nil && failure.Success != nil && !*failure.Success {
			msg := messageText(failure.Message)
			if msg == "" {
				msg = messageText(failure.Error)
			}
			return nil, &domain.RemoteRejectionError{Op: "fetch", Message: msg}
		}
	}
	return payload, nil
}

// ValidateOne validates a single address.
func (c *Client) ValidateOne(ctx context.Context, cred ports.Credential, address string) (*ports.SingleResult, error) {
	q := url.Values{}
	q.Set("api_key", cred.APIKey)
	q.Set("email", address)
	q.Set("ip_address", "")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/validate?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Error      string `json:"error"`
		Address    string `json:"address"`
		Status     string `json:"status"`
		SubStatus  string `json:"sub_status"`
		DidYouMean string `json:"did_you_mean"`
	}
	if err := c.doJSON(req, "validate", &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, &domain.RemoteRejectionError{Op: "validate", Message: result.Error}
	}

	if result.Address == "" {
		result.Address = address
	}
	return &ports.SingleResult{
		Address:    result.Address,
		Status:     domain.ParseStatusCode(result.Status),
		SubStatus:  result.SubStatus,
		DidYouMean: result.DidYouMean,
	}, nil
}

// doJSON sends req and decodes a JSON response into out.
func (c *Client) doJSON(req *http.Request, op string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: redact(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: redact(err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.RemoteRejectionError{Op: op, Message: rejectionText(resp.StatusCode, body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.RemoteRejectionError{Op: op, Message: fmt.Sprintf("unreadable response: %v", err)}
	}
	return nil
}

func (c *Client) fileURL(endpoint string, cred ports.Credential, jobID string) string {
	q := url.Values{}
	q.Set("api_key", cred.APIKey)
	q.Set("file_id", jobID)
	return c.bulkURL + "/" + endpoint + "?" + q.Encode()
}

// rejectionText extracts the service message from an error body, falling
// back to the HTTP status.
func rejectionText(code int, body []byte) string {
	var payload struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if msg := messageText(payload.Message); msg != "" {
			return msg
		}
		if msg := messageText(payload.Error); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return fmt.Sprintf("status %d: %s", code, text)
	}
	return fmt.Sprintf("status %d: %s", code, http.StatusText(code))
}

// messageText flattens a message that may be a string or a list of strings.
func messageText(v any) string {
	switch m := v.(type) {
	case string:
		return strings.TrimSpace(m)
	case []any:
		parts := make([]string, 0, len(m))
		for _, p := range m {
			if s := messageText(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// rawText returns a JSON string or number as plain text.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// redact strips the query string, which carries the API key, from URL
// errors. Wrapping errors keep the unredacted text, so the url.Error itself
// is returned.
func redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	if u, perr := url.Parse(ue.URL); perr == nil {
		u.RawQuery = ""
		ue.URL = u.String()
	}
	return ue
}
