package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/AnnaNajafiH/SabaStudio/internal/logging"
	"github.com/AnnaNajafiH/SabaStudio/internal/notify"
	"github.com/AnnaNajafiH/SabaStudio/internal/ratelimit"
	"github.com/AnnaNajafiH/SabaStudio/internal/service"
)

// レスポンスの status。fail はクライアント側、error はサーバ側のエラー
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// envelope はすべての API レスポンスの本体
type envelope struct {
	Status  string               `json:"status"`
	Message string               `json:"message,omitempty"`
	Data    any                  `json:"data,omitempty"`
	Errors  []service.FieldError `json:"errors,omitempty"`
	Detail  string               `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// Responder は envelope を書き出す。Dev の場合 5xx に詳細を付ける
type Responder struct {
	Dev bool
}

func (rs Responder) success(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, envelope{Status: statusSuccess, Message: message, Data: data})
}

func (rs Responder) fail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Status: statusFail, Message: message})
}

// err はサービス層のエラーをステータスコードと envelope に変換する
func (rs Responder) err(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *service.ValidationError
		rlErr  *service.RateLimitError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Status: statusFail, Message: "Validation failed", Errors: verr.Fields})
	case errors.As(err, &rlErr):
		w.Header().Set("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(rlErr.RetryAfter)))
		rs.fail(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
	case errors.Is(err, service.ErrDuplicateSubmission):
		rs.fail(w, http.StatusTooManyRequests, "A message from this email address was just received. Please wait before sending another.")
	case errors.Is(err, service.ErrNotFound):
		rs.fail(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrConflict):
		msg := strings.TrimPrefix(err.Error(), service.ErrConflict.Error()+": ")
		if msg == service.ErrConflict.Error() {
			msg = "Resource already exists"
		}
		rs.fail(w, http.StatusConflict, msg)
	case errors.Is(err, service.ErrUnauthorized):
		rs.fail(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrForbidden):
		rs.fail(w, http.StatusForbidden, "Access denied")
	case errors.As(err, &tooBig):
		rs.fail(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, notify.ErrDisabled):
		rs.fail(w, http.StatusServiceUnavailable, "Email is not configured")
	default:
		logging.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		body := envelope{Status: statusError, Message: "Internal server error"}
		if rs.Dev {
			body.Detail = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

// decodeJSON は最大 maxBodyBytes の JSON ボディを v に読み込む
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		return service.NewValidationError("body", "must be valid JSON")
	}
	return nil
}

const maxBodyBytes = 1 << 20
