package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

// maxLoggedBody caps how much of a request or response body reaches the log.
const maxLoggedBody = 4 << 10

const redacted = "[REDACTED]"

// secretMarkers are substrings of header, query and JSON key names whose
// values never reach the logs. Login bodies, refresh tokens and the
// websocket token query parameter all match.
var secretMarkers = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
	"api_key",
	"credential",
}

func isSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range secretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// LoggingMiddleware writes one access line per request and response through
// the request-scoped logger, so trace and employee ids set by earlier
// middleware are attached automatically.
func LoggingMiddleware(fallback *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := requestLogger(r, fallback)

			if lg.Enabled(r.Context(), slog.LevelDebug) {
				lg.DebugContext(r.Context(), "incoming request",
					"method", r.Method,
					"path", r.URL.Path,
					"query", redactQuery(r.URL.Query()),
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent(),
					"headers", redactHeaders(r.Header),
					"body", captureRequestBody(r),
				)
			}

			// upgraded connections are hijacked; there is no response to record
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}

			rec := &recordingWriter{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status()
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []any{
				"method", r.Method,
				"route", routePattern(r),
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", rec.written,
			}
			if level > slog.LevelInfo {
				attrs = append(attrs, "body", redactBody(rec.body.Bytes()))
			}
			lg.Log(r.Context(), level, "request completed", attrs...)
		})
	}
}

func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if lg, ok := logger.Lookup(r.Context()); ok {
		return lg
	}
	if fallback != nil {
		return fallback
	}
	return logger.LoggerWrapper()
}

// routePattern reports the matched chi pattern so ids do not explode log cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// captureRequestBody reads the body for logging and restores it for the handler.
// Multipart uploads are skipped.
func captureRequestBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return "[multipart]"
	}
	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	return redactBody(raw)
}

type recordingWriter struct {
	http.ResponseWriter
	code    int
	written int
	body    bytes.Buffer
}

func (rw *recordingWriter) status() int {
	if rw.code == 0 {
		return http.StatusOK
	}
	return rw.code
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.code = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		rw.body.Write(b[:room])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func (rw *recordingWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *recordingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSecret(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func redactQuery(values url.Values) string {
	out := url.Values{}
	for name, vals := range values {
		if isSecret(name) {
			out.Set(name, redacted)
			continue
		}
		out[name] = vals
	}
	return out.Encode()
}

// redactBody masks secret keys in JSON bodies. Non-JSON bodies are logged
// only when no secret marker appears in them.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		if isSecret(string(body)) {
			return redacted
		}
		return string(body)
	}

	masked, err := json.Marshal(redactJSON(doc))
	if err != nil {
		return redacted
	}
	return string(masked)
}

func redactJSON(v interface{}) interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(node))
		for key, value := range node {
			if isSecret(key) {
				out[key] = redacted
				continue
			}
			out[key] = redactJSON(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, item := range node {
			out[i] = redactJSON(item)
		}
		return out
	default:
		return v
	}
}
