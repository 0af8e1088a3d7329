package server

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

const maxLoggedBody = 2048

// requestLogger logs each request and the response sent for it.
func requestLogger(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var reqBody []byte
			if r.Body != nil {
				reqBody, _ = io.ReadAll(r.Body)
				r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(reqBody))
			}

			log.InfoObj("request received", "request", map[string]any{
				"method":  r.Method,
				"url":     r.URL.RequestURI(),
				"headers": redactHeaders(r.Header),
				"body":    truncate(reqBody),
			})

			var respBody bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&respBody)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.InfoObj("response sent", "response", map[string]any{
				"method":     r.Method,
				"url":        r.URL.RequestURI(),
				"status":     status,
				"body":       truncate(respBody.Bytes()),
				"elapsed_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// redactHeaders flattens headers for logging and masks credentials.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		v := h.Get(k)
		if k == "Authorization" && v != "" {
			v = "<redacted>"
		}
		out[k] = v
	}
	return out
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}
