package web

import (
	"net/http"

	"leadkit/internal/core/domain"
	"leadkit/internal/logging"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error  string `json:"error"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// statusByCode maps support codes to HTTP statuses.
var statusByCode = map[string]int{
	"CFG001": http.StatusServiceUnavailable,
	"INP001": http.StatusUnprocessableEntity,
	"SCH001": http.StatusUnprocessableEntity,
	"MRK001": http.StatusUnprocessableEntity,
	"REM001": http.StatusBadGateway,
	"NET001": http.StatusBadGateway,
	"STA001": http.StatusConflict,
	"FMT001": http.StatusUnsupportedMediaType,
	"JOB001": http.StatusConflict,
	"CTX001": http.StatusRequestTimeout,
}

// statusFor returns the HTTP status for err.
func statusFor(err error) int {
	if status, ok := statusByCode[domain.Code(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes its user-facing description.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	n := domain.Describe(err)
	status := statusFor(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", n.Code,
		"error", err.Error(),
	)

	writeJSON(w, status, ErrorResponse{
		Error:  n.Title + ": " + n.Detail,
		Title:  n.Title,
		Detail: n.Detail,
		Code:   n.Code,
	})
}

// badRequest writes a 400 for malformed requests.
func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "Bad request: " + detail,
		Title:  "Bad request",
		Detail: detail,
	})
}
