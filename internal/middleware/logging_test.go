package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// captureLogs routes the default slog logger into a buffer for the
// duration of the test.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger(t *testing.T) {
	t.Run("calls next handler and logs the request", func(t *testing.T) {
		logs := captureLogs(t, slog.LevelInfo)
		var called bool
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.Write([]byte("hello"))
		})

		handler := RequestID(Logger(inner))

		req := httptest.NewRequest(http.MethodGet, "/release-1-0", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if !called {
			t.Error("next handler should have been called")
		}
		out := logs.String()
		for _, want := range []string{"path=/release-1-0", "status=200", "bytes=5", "request_id=abc-123"} {
			if !strings.Contains(out, want) {
				t.Errorf("log output %q should contain %q", out, want)
			}
		}
	})

	t.Run("captures non-200 status code", func(t *testing.T) {
		logs := captureLogs(t, slog.LevelInfo)
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		req := httptest.NewRequest(http.MethodGet, "/not-found", nil)
		rr := httptest.NewRecorder()
		Logger(inner).ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
		if !strings.Contains(logs.String(), "status=404") {
			t.Errorf("log output should record status 404, got %q", logs.String())
		}
	})

	t.Run("health checks log at debug level", func(t *testing.T) {
		logs := captureLogs(t, slog.LevelInfo)
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		Logger(inner).ServeHTTP(httptest.NewRecorder(), req)

		if logs.Len() != 0 {
			t.Errorf("health check should not be logged at info level, got %q", logs.String())
		}
	})
}

// TestResponseWriter tests the responseWriter wrapper used by the Logger
// middleware.
func TestResponseWriter(t *testing.T) {
	t.Run("WriteHeader only captures first call", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusInternalServerError)

		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode: got %d, want 404 (first call)", rw.statusCode)
		}
		if !rw.written {
			t.Error("written should be true after WriteHeader")
		}
	})

	t.Run("Write sets default 200 status and counts bytes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

		rw.Write([]byte("test"))
		rw.Write([]byte("ing"))

		if rw.statusCode != http.StatusOK {
			t.Errorf("statusCode: got %d, want 200", rw.statusCode)
		}
		if rw.bytes != 7 {
			t.Errorf("bytes: got %d, want 7", rw.bytes)
		}
	})

	t.Run("Write does not override explicit WriteHeader", func(t *testing.T) {
		rr := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusCreated)
		rw.Write([]byte("created"))

		if rw.statusCode != http.StatusCreated {
			t.Errorf("statusCode: got %d, want 201", rw.statusCode)
		}
	})
}
