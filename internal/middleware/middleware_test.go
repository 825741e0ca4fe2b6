package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompressionCompressesLargeJSON(t *testing.T) {
	body := strings.Repeat(`{"key":"value"},`, 200)
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))

	request := httptest.NewRequest(http.MethodGet, "/api/roots", nil)
	request.Header.Set("Accept-Encoding", "gzip")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if got := recorder.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
	reader, err := gzip.NewReader(recorder.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	decompressed, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(decompressed) != body {
		t.Error("decompressed body does not match original")
	}
}

func TestCompressionSkipsSmallResponses(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))

	request := httptest.NewRequest(http.MethodGet, "/api/roots", nil)
	request.Header.Set("Accept-Encoding", "gzip")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if got := recorder.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Content-Encoding = %q, want empty", got)
	}
	if recorder.Body.String() != `{"ok":true}` {
		t.Errorf("body = %q", recorder.Body.String())
	}
}

func TestCompressionSkipsWithoutAcceptEncoding(t *testing.T) {
	body := strings.Repeat("x", 4096)
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(body))
	}))

	request := httptest.NewRequest(http.MethodGet, "/api/roots", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if got := recorder.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Content-Encoding = %q, want empty", got)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with\nnewline", "with newline"},
		{"null\x00byte", "nullbyte"},
		{"ansi\x1b[31mred", "ansi[31mred"},
		{"tab\tok", "tab\tok"},
	}
	for _, test := range tests {
		if got := sanitizeLogField(test.input); got != test.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.1.2.3:4567"
	if got := getClientIP(request); got != "10.1.2.3" {
		t.Errorf("remote addr ip = %q", got)
	}

	request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := getClientIP(request); got != "203.0.113.7" {
		t.Errorf("forwarded ip = %q", got)
	}
}

func TestLoggerSkipsHealthChecks(t *testing.T) {
	config := DefaultLoggingConfig()
	if !shouldSkipLogging("/healthz", config) {
		t.Error("health checks should be skipped by default")
	}
	if shouldSkipLogging("/api/roots", config) {
		t.Error("api paths should be logged")
	}
	if !shouldSkipLogging("/metrics", config) {
		t.Error("metrics endpoint should be skipped")
	}
}
