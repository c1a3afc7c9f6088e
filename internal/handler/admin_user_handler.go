package handler

import (
	"net/http"

	"github.com/AnnaNajafiH/SabaStudio/internal/service"
	"github.com/AnnaNajafiH/SabaStudio/pkg/auth"
)

// AdminUserHandler は管理者向けユーザー管理のハンドラ
type AdminUserHandler struct {
	adminSvc service.AdminUserService
	rs       Responder
}

// NewAdminUserHandler は AdminUserHandler を生成する
func NewAdminUserHandler(adminSvc service.AdminUserService, rs Responder) *AdminUserHandler {
	return &AdminUserHandler{adminSvc: adminSvc, rs: rs}
}

// List は GET /api/v1/users を処理する（admin）
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := 1, service.DefaultUserLimit
	if err := positiveInt(q, "page", &page); err != nil {
		h.rs.err(w, r, err)
		return
	}
	if err := positiveInt(q, "limit", &limit); err != nil {
		h.rs.err(w, r, err)
		return
	}

	users, err := h.adminSvc.ListUsers(r.Context(), page, limit)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", users)
}

// Get は GET /api/v1/users/{id} を処理する（admin）
func (h *AdminUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.adminSvc.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", user)
}

// Update は PATCH /api/v1/users/{id} を処理する（admin）。
// name, role, isActive はいずれも省略可能。
func (h *AdminUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UserUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.err(w, r, err)
		return
	}
	actorID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.adminSvc.UpdateUser(r.Context(), actorID, r.PathValue("id"), in)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "User updated successfully", user)
}

// Delete は DELETE /api/v1/users/{id} を処理する（admin）
func (h *AdminUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.UserIDFromContext(r.Context())
	if err := h.adminSvc.DeleteUser(r.Context(), actorID, r.PathValue("id")); err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "User deleted successfully", nil)
}
