package handler

import (
	"net/http"
	"strings"

	"github.com/AnnaNajafiH/SabaStudio/internal/service"
)

// ContactHandler はお問い合わせ送信と管理者向け受信箱のハンドラ
type ContactHandler struct {
	contactService    service.ContactService
	trustedProxyCount int
	rs                Responder
}

// NewContactHandler は ContactHandler を生成する。trustedProxyCount は
// X-Forwarded-For に追記するリバースプロキシの段数。
func NewContactHandler(contactService service.ContactService, trustedProxyCount int, rs Responder) *ContactHandler {
	return &ContactHandler{contactService: contactService, trustedProxyCount: trustedProxyCount, rs: rs}
}

// Submit は POST /api/v1/contact を処理する
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.err(w, r, err)
		return
	}
	receipt, err := h.contactService.Submit(r.Context(), in, service.ClientContext{
		IP:        ClientIP(r, h.trustedProxyCount),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusCreated, "Thank you for your message! We will get back to you soon.", receipt)
}

// List は GET /api/v1/contact を処理する（admin）。
// クエリ: status, page, limit
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := service.ContactListParams{Status: strings.TrimSpace(q.Get("status"))}
	if err := positiveInt(q, "page", &params.Page); err != nil {
		h.rs.err(w, r, err)
		return
	}
	if err := positiveInt(q, "limit", &params.Limit); err != nil {
		h.rs.err(w, r, err)
		return
	}
	page, err := h.contactService.List(r.Context(), params)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", page)
}

// Get は GET /api/v1/contact/{id} を処理する（admin）。new のメッセージは read になる
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	msg, err := h.contactService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", msg)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus は PUT /api/v1/contact/{id}/status を処理する（admin）
func (h *ContactHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.err(w, r, err)
		return
	}
	msg, err := h.contactService.SetStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "Status updated successfully", msg)
}

// Delete は DELETE /api/v1/contact/{id} を処理する（admin）
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contactService.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "Message deleted successfully", nil)
}

type testEmailRequest struct {
	Email string `json:"email"`
}

// TestEmail は POST /api/v1/contact/test-email を処理する（admin）
func (h *ContactHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.err(w, r, err)
		return
	}
	if err := h.contactService.SendTestEmail(r.Context(), req.Email); err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "Test email sent", nil)
}
