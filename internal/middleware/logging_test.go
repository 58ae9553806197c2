package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// captureLogs routes the default slog logger into a buffer for one test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger(t *testing.T) {
	t.Run("passes status through and logs the request id", func(t *testing.T) {
		logs := captureLogs(t)
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		handler := chimw.RequestID(Logger(inner))

		req := httptest.NewRequest(http.MethodGet, "/api/categories/x", nil)
		req.Header.Set(chimw.RequestIDHeader, "req-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
		out := logs.String()
		for _, want := range []string{"status=404", "request_id=req-123", "path=/api/categories/x"} {
			if !strings.Contains(out, want) {
				t.Errorf("log %q missing %q", out, want)
			}
		}
	})

	t.Run("server errors log at error level", func(t *testing.T) {
		logs := captureLogs(t)
		handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/products/", nil))

		if !strings.Contains(logs.String(), "level=ERROR") {
			t.Errorf("log %q should be at error level", logs.String())
		}
	})

	t.Run("handles write without explicit WriteHeader", func(t *testing.T) {
		captureLogs(t)
		handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("hello"))
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
		if rr.Body.String() != "hello" {
			t.Errorf("body: got %q, want %q", rr.Body.String(), "hello")
		}
	})
}

// TestResponseWriter verifies the wrapper captures status codes.
func TestResponseWriter(t *testing.T) {
	t.Run("WriteHeader only captures first call", func(t *testing.T) {
		rw := wrap(httptest.NewRecorder())

		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusInternalServerError)

		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode: got %d, want 404 (first call)", rw.statusCode)
		}
	})

	t.Run("Write sets default 200 status", func(t *testing.T) {
		rw := wrap(httptest.NewRecorder())

		n, err := rw.Write([]byte("test"))
		if err != nil {
			t.Fatalf("Write error: %v", err)
		}
		if n != 4 {
			t.Errorf("bytes written: got %d, want 4", n)
		}
		if rw.statusCode != http.StatusOK || !rw.written {
			t.Errorf("statusCode: got %d written=%v, want 200 written", rw.statusCode, rw.written)
		}
	})

	t.Run("wrap reuses an existing wrapper", func(t *testing.T) {
		rw := wrap(httptest.NewRecorder())
		if wrap(rw) != rw {
			t.Error("wrap should not double-wrap")
		}
	})
}
