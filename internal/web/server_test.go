package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadkit/internal/core/domain"
	"leadkit/internal/core/ports"
	"leadkit/internal/service"
)

const resultPayload = "\"Email Address\",\"ZB Status\",\"ZB Sub Status\"\r\n" +
	"\"ana@acme.com\",\"valid\",\"\"\r\n" +
	"\"bia@acme.com\",\"invalid\",\"mailbox_not_found\"\r\n"

// fakeRemote completes every job on the first poll.
type fakeRemote struct {
	submitted []byte
}

func (f *fakeRemote) SubmitFile(_ context.Context, _ ports.Credential, file ports.UploadFile) (*ports.SubmitResponse, error) {
	f.submitted = file.Content
	return &ports.SubmitResponse{Success: true, JobID: "job-1", Message: "File Accepted"}, nil
}

func (f *fakeRemote) PollStatus(context.Context, ports.Credential, string) (*ports.JobStatus, error) {
	return &ports.JobStatus{CompletionPercent: "100", State: "Complete"}, nil
}

func (f *fakeRemote) FetchResult(context.Context, ports.Credential, string) ([]byte, error) {
	return []byte(resultPayload), nil
}

func (f *fakeRemote) ValidateOne(_ context.Context, _ ports.Credential, address string) (*ports.SingleResult, error) {
	return &ports.SingleResult{Address: address, Status: domain.StatusValid}, nil
}

type testEnv struct {
	srv       *Server
	remote    *fakeRemote
	scheduler *service.ManualScheduler
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()
	remote := &fakeRemote{}
	sched := service.NewManualScheduler()
	cred := ports.Credential{APIKey: apiKey}
	srv := NewServer(Deps{
		Batch:   service.NewOrchestrator(remote, sched, nil, service.OrchestratorConfig{Credential: cred}, nil),
		Single:  service.NewValidator(remote, cred, nil),
		Extract: service.NewExtractor(nil, nil, nil),
	})
	return &testEnv{srv: srv, remote: remote, scheduler: sched}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body is not JSON: %q", rec.Body.String())
	}
	return e
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, "k")
	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "ok", apiKey: "k", body: `{"email":"ana@acme.com"}`, wantCode: http.StatusOK},
		{name: "no key", apiKey: "", body: `{"email":"ana@acme.com"}`, wantCode: http.StatusServiceUnavailable, wantErr: "CFG001"},
		{name: "blank address", apiKey: "k", body: `{"email":"  "}`, wantCode: http.StatusUnprocessableEntity, wantErr: "INP001"},
		{name: "bad json", apiKey: "k", body: `email=ana`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.apiKey)
			rec := env.do(httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(tt.body)))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if got := decodeError(t, rec).Code; got != tt.wantErr {
					t.Errorf("code = %q, want %q", got, tt.wantErr)
				}
			}
			if tt.wantCode == http.StatusOK {
				var res ports.SingleResult
				json.Unmarshal(rec.Body.Bytes(), &res)
				if res.Address != "ana@acme.com" || res.Status != domain.StatusValid {
					t.Errorf("result = %+v", res)
				}
			}
		})
	}
}

func TestBatchLifecycle(t *testing.T) {
	env := newTestEnv(t, "k")

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/batch/results", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("results before submit: status = %d", rec.Code)
	}

	rec = env.do(uploadRequest(t, "/api/batch", "emails.csv", "email\nana@acme.com\nbia@acme.com\n"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit: status = %d (%s)", rec.Code, rec.Body.String())
	}
	var handle service.JobHandle
	json.Unmarshal(rec.Body.Bytes(), &handle)
	if handle.ID != "job-1" {
		t.Errorf("handle = %+v", handle)
	}
	if string(env.remote.submitted) != "email\nana@acme.com\nbia@acme.com\n" {
		t.Errorf("uploaded = %q", env.remote.submitted)
	}

	rec = env.do(uploadRequest(t, "/api/batch", "emails.csv", "email\nc@acme.com\n"))
	if rec.Code != http.StatusConflict || decodeError(t, rec).Code != "STA001" {
		t.Errorf("second submit: status = %d (%s)", rec.Code, rec.Body.String())
	}

	if out, ok := env.scheduler.Tick(); !ok || out != service.StepComplete {
		t.Fatalf("Tick() = %v, %v", out, ok)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/batch", nil))
	var job domain.BatchJob
	json.Unmarshal(rec.Body.Bytes(), &job)
	if job.State != domain.JobDone || job.Progress != 100 {
		t.Errorf("job = %+v", job)
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/batch/results", nil))
	var records []domain.ValidationRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil || len(records) != 2 {
		t.Fatalf("results = %s", rec.Body.String())
	}
	if records[1].Status != domain.StatusInvalid || records[1].SubStatus != "mailbox_not_found" {
		t.Errorf("records[1] = %+v", records[1])
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/batch/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, exportName) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	for _, want := range []string{"E-mail", "Sub-Status", "bia@acme.com", "mailbox_not_found"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("export missing %q", want)
		}
	}

	rec = env.do(httptest.NewRequest(http.MethodPost, "/api/batch/reset", nil))
	json.Unmarshal(rec.Body.Bytes(), &job)
	if rec.Code != http.StatusOK || job.State != domain.JobIdle {
		t.Errorf("reset: status = %d job = %+v", rec.Code, job)
	}
}

func TestBatchCancel(t *testing.T) {
	env := newTestEnv(t, "k")

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/api/batch", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("cancel while idle: status = %d", rec.Code)
	}

	env.do(uploadRequest(t, "/api/batch", "emails.txt", "ana@acme.com\n"))
	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/batch", nil))
	var job domain.BatchJob
	json.Unmarshal(rec.Body.Bytes(), &job)
	if rec.Code != http.StatusOK || job.State != domain.JobIdle {
		t.Errorf("cancel: status = %d job = %+v", rec.Code, job)
	}
	if env.scheduler.Active() {
		t.Error("polling still scheduled after cancel")
	}
}

func TestExtract(t *testing.T) {
	partners := "razao_social,nome_socio,email_socio,telefone_socio\n" +
		"Acme,Ana,ana@acme.com,11999998888\n"

	tests := []struct {
		name     string
		path     string
		file     string
		content  string
		wantCode int
		wantBody string
		wantErr  string
	}{
		{
			name: "emails", path: "/api/extract/emails", file: "socios.csv", content: partners,
			wantCode: http.StatusOK, wantBody: "email\nana@acme.com\n",
		},
		{
			name: "contacts", path: "/api/extract/contacts", file: "socios.csv", content: partners,
			wantCode: http.StatusOK, wantBody: "name,phone_number,business,prompt\nAna,+5511999998888,Acme,",
		},
		{
			name: "missing columns", path: "/api/extract/emails", file: "socios.csv", content: "razao_social\nAcme\n",
			wantCode: http.StatusUnprocessableEntity, wantErr: "SCH001",
		},
		{
			name: "unsupported file", path: "/api/extract/emails", file: "socios.pdf", content: "%PDF",
			wantCode: http.StatusUnsupportedMediaType, wantErr: "FMT001",
		},
		{
			name: "workbook without codec", path: "/api/extract/contacts?format=xlsx", file: "socios.csv", content: partners,
			wantCode: http.StatusServiceUnavailable, wantErr: "CFG001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "k")
			rec := env.do(uploadRequest(t, tt.path, tt.file, tt.content))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantBody != "" && !strings.HasPrefix(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want prefix %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantErr != "" {
				if got := decodeError(t, rec).Code; got != tt.wantErr {
					t.Errorf("code = %q, want %q", got, tt.wantErr)
				}
			}
		})
	}
}

func TestUploadWithoutFile(t *testing.T) {
	env := newTestEnv(t, "k")
	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/batch", strings.NewReader("{}")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}
