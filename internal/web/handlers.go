package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"leadkit/internal/core/domain"
	"leadkit/internal/logging"
	"leadkit/internal/service"
	"leadkit/internal/tabular"
)

// exportName is the download name of the validation results spreadsheet.
const exportName = "validation_results.xls"

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		badRequest(w, "body must be a JSON object with an email field")
		return
	}

	result, err := s.deps.Single.Validate(r.Context(), req.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	name, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	addresses, err := service.AddressesFromFile(name, data, s.deps.Codec)
	if err != nil {
		respondError(w, r, err)
		return
	}

	handle, err := s.deps.Batch.Submit(r.Context(), addresses)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "job_id", handle.ID).Info("batch submitted", "addresses", len(addresses))
	writeJSON(w, http.StatusAccepted, handle)
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Batch.Snapshot())
}

func (s *Server) handleCancelBatch(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Batch.Cancel(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Batch.Snapshot())
}

func (s *Server) handleResetBatch(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Batch.Reset(); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Batch.Snapshot())
}

func (s *Server) handleBatchResults(w http.ResponseWriter, r *http.Request) {
	records, err := s.doneResults("read results")
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExportBatch(w http.ResponseWriter, r *http.Request) {
	records, err := s.doneResults("export")
	if err != nil {
		respondError(w, r, err)
		return
	}
	doc := tabular.RenderSpreadsheet(tabular.ValidationRecords(records), tabular.ValidationColumns)
	writeDownload(w, r, exportName, service.ContentTypeXLS, doc)
}

// doneResults returns the records of a finished job.
func (s *Server) doneResults(op string) ([]domain.ValidationRecord, error) {
	if job := s.deps.Batch.Snapshot(); job.State != domain.JobDone {
		return nil, &domain.InvalidStateError{Op: op, State: job.State}
	}
	records := s.deps.Batch.Results()
	if records == nil {
		records = []domain.ValidationRecord{}
	}
	return records, nil
}

// handleExtract serves one artifact of an extraction run.
func (s *Server) handleExtract(artifact string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, data, ok := s.readUpload(w, r)
		if !ok {
			return
		}

		res, err := s.deps.Extract.Extract(r.Context(), name, data)
		if err != nil {
			respondError(w, r, err)
			return
		}
		a, found := res.Artifact(artifact)
		if !found {
			respondError(w, r, &domain.ConfigError{Detail: artifact + " was not produced"})
			return
		}
		if res.RunID != "" {
			w.Header().Set("X-Run-ID", res.RunID)
		}
		writeDownload(w, r, a.Name, a.ContentType, a.Data)
	}
}

// handleExtractContacts serves the contacts list; ?format=xlsx selects the
// workbook instead of delimited text.
func (s *Server) handleExtractContacts(w http.ResponseWriter, r *http.Request) {
	artifact := service.ContactsArtifact
	if r.URL.Query().Get("format") == "xlsx" {
		artifact = service.ContactsXLSXArtifact
	}
	s.handleExtract(artifact)(w, r)
}

// readUpload returns the name and content of the multipart "file" field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadSize)
	if err := r.ParseMultipartForm(s.deps.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error:  "File too large",
				Title:  "File too large",
				Detail: fmt.Sprintf("uploads are limited to %d bytes", s.deps.MaxUploadSize),
			})
			return "", nil, false
		}
		badRequest(w, "expected a multipart form")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "no file provided")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "could not read the uploaded file")
		return "", nil, false
	}
	return header.Filename, data, true
}

// writeDownload sends data as a file attachment.
func writeDownload(w http.ResponseWriter, r *http.Request, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Error("download write error", "name", name, "error", err)
	}
}
