package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"leadkit/internal/core/domain"
)

func TestLogNotifier_Notify(t *testing.T) {
	tests := []struct {
		name      string
		notice    domain.Notice
		wantLevel string
		wantCode  bool
	}{
		{
			name:      "success",
			notice:    domain.Notice{Title: "Validation complete", Detail: "3 addresses validated", Severity: domain.SeveritySuccess},
			wantLevel: "INFO",
		},
		{
			name:      "error with code",
			notice:    domain.Notice{Title: "Validation service error", Detail: "api_key is invalid", Severity: domain.SeverityError, Code: "REM001"},
			wantLevel: "ERROR",
			wantCode:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))
			n.Notify(context.Background(), tt.notice)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log entry is not JSON: %v (%q)", err, buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["msg"] != tt.notice.Title || entry["detail"] != tt.notice.Detail {
				t.Errorf("entry = %v", entry)
			}
			if _, ok := entry["code"]; ok != tt.wantCode {
				t.Errorf("code present = %v, want %v", ok, tt.wantCode)
			}
		})
	}
}
