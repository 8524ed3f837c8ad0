package downloader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHTTPDownloader_Download(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Email Address,ZB Status,ZB Sub Status\n"))
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "file not found", http.StatusNotFound)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	d := NewHTTPDownloader(0)

	t.Run("ok", func(t *testing.T) {
		body, err := d.Download(context.Background(), srv.URL+"/ok")
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		defer body.Close()
		b, _ := io.ReadAll(body)
		if string(b) != "Email Address,ZB Status,ZB Sub Status\n" {
			t.Errorf("body = %q", b)
		}
	})

	t.Run("non-200", func(t *testing.T) {
		_, err := d.Download(context.Background(), srv.URL+"/missing")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("Download() error = %v, want StatusError", err)
		}
		if statusErr.Code != http.StatusNotFound || statusErr.Body != "file not found\n" {
			t.Errorf("StatusError = %+v", statusErr)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := d.Download(context.Background(), "http://127.0.0.1:1/nothing")
		var statusErr *StatusError
		if err == nil || errors.As(err, &statusErr) {
			t.Errorf("Download() error = %v, want transport error", err)
		}
	})
}
