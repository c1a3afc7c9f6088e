package handler

import (
	"net/http"
)

// Health は GET /api/health を処理する
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		body := envelope{Status: statusError, Message: "unhealthy"}
		if h.rs.Dev {
			body.Detail = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	h.rs.success(w, http.StatusOK, "SabaStudio API is running", map[string]string{"version": h.version})
}
