package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	readerCookie = "docpager_reader"
	readerHeader = "X-Reader-ID"
)

type ctxKey int

const readerKey ctxKey = iota

// AuthMiddleware validates the docpager API key.
func AuthMiddleware(apiKey string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				jsonError(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(auth, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				log.Warn("rejected api key", "path", r.URL.Path)
				jsonError(w, "invalid api key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ReaderMiddleware identifies the reader. An X-Reader-ID header wins over the
// reader cookie; readers with neither get a fresh ID and a cookie.
func ReaderMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reader := validReaderID(r.Header.Get(readerHeader))
			if reader == "" {
				if c, err := r.Cookie(readerCookie); err == nil {
					reader = validReaderID(c.Value)
				}
			}
			if reader == "" {
				reader = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     readerCookie,
					Value:    reader,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				log.Debug("new reader", "reader", reader)
			}
			ctx := context.WithValue(r.Context(), readerKey, reader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validReaderID(s string) string {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return id.String()
}

// readerID returns the reader set by ReaderMiddleware.
func readerID(r *http.Request) string {
	v, _ := r.Context().Value(readerKey).(string)
	return v
}

// RequestLogger logs incoming requests.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
