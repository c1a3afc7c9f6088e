package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/logging"
)

// responseRecorder はステータスコードと書き込みバイト数を記録する
type responseRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (rr *responseRecorder) WriteHeader(code int) {
	if !rr.wroteHeader {
		rr.status = code
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	n, err := rr.ResponseWriter.Write(b)
	rr.bytes += n
	return n, err
}

// Unwrap は http.ResponseController から元の writer に届くようにする
func (rr *responseRecorder) Unwrap() http.ResponseWriter { return rr.ResponseWriter }

// RequestLogger はリクエストごとに 1 行ログを出す。4xx は WARN、5xx は ERROR。
// request_id を載せるため RequestID の内側で使う。
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rr, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rr.status,
			"bytes", rr.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, "query", r.URL.RawQuery)
		}

		level := slog.LevelInfo
		switch {
		case rr.status >= 500:
			level = slog.LevelError
		case rr.status >= 400:
			level = slog.LevelWarn
		case r.URL.Path == "/api/health":
			// ロードバランサのヘルスチェックでログを埋めない
			level = slog.LevelDebug
		}
		logging.FromContext(r.Context()).Log(r.Context(), level, "request completed", attrs...)
	})
}
