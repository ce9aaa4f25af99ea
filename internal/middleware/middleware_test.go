package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriterCapturesStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", rw.statusCode)
	}

	// Second WriteHeader is swallowed
	rw.WriteHeader(http.StatusOK)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode after second WriteHeader = %d, want 404", rw.statusCode)
	}
}

func TestResponseWriterCountsBytes(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := rw.Write([]byte(" world")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if rw.bytesWritten != 11 {
		t.Errorf("bytesWritten = %d, want 11", rw.bytesWritten)
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("implicit statusCode = %d, want 200", rw.statusCode)
	}
}

func TestSanitizeLogField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "/files/search", "/files/search"},
		{"newline replaced", "a\nb", "a b"},
		{"carriage return replaced", "a\rb", "a b"},
		{"null stripped", "a\x00b", "ab"},
		{"ansi escape stripped", "a\x1b[31mb", "a[31mb"},
		{"tab preserved", "a\tb", "a\tb"},
		{"other control stripped", "a\x07b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShouldSkip(t *testing.T) {
	t.Parallel()

	config := LoggingConfig{
		SkipPaths:       []string{"/internal"},
		LogHealthChecks: false,
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/files/search", false},
		{"/internal/debug", true},
		{"/healthz", true},
		{"/livez", true},
		{"/health", true},
		{"/version", false},
	}

	for _, tt := range tests {
		if got := shouldSkip(tt.path, config); got != tt.want {
			t.Errorf("shouldSkip(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	// Health checks logged when enabled
	config.LogHealthChecks = true
	if shouldSkip("/healthz", config) {
		t.Error("healthz should be logged when LogHealthChecks is set")
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.0.0.1:51234", "10.0.0.1"},
		{"x-forwarded-for single", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "10.0.0.1:51234", "1.2.3.4"},
		{"x-forwarded-for chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "10.0.0.1:51234", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "10.0.0.1:51234", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/stats", "/stats"},
		{"/process/42", "/process/{id}"},
		{"/process/batch", "/process/batch"},
		{"/process/simulate/7", "/process/simulate/{id}"},
		{"/files/unprocessed", "/files/unprocessed"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsMiddlewarePassthrough(t *testing.T) {
	t.Parallel()

	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}

	// Skipped paths still reach the handler
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("skipped path status = %d, want 418", rec.Code)
	}
}

func TestLoggerMiddlewarePassthrough(t *testing.T) {
	t.Parallel()

	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("logger middleware altered the response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestEscapeW3CField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"curl/8.0", "curl/8.0"},
		{"Mozilla 5.0", `"Mozilla 5.0"`},
		{`say "hi"`, `"say ""hi"""`},
	}

	for _, tt := range tests {
		if got := escapeW3CField(tt.input); got != tt.want {
			t.Errorf("escapeW3CField(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
