package handler

import (
	"net/http"

	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
)

// Handler は運用系エンドポイントを提供する
type Handler struct {
	db      repository.DB
	version string
	rs      Responder
}

func New(db repository.DB, version string, rs Responder) *Handler {
	return &Handler{db: db, version: version, rs: rs}
}

type endpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var apiIndex = []endpointInfo{
	{"GET", "/api/v1/projects", "List published projects"},
	{"GET", "/api/v1/projects/featured", "Featured projects"},
	{"GET", "/api/v1/projects/categories", "Project categories with counts"},
	{"GET", "/api/v1/projects/category/{category}", "Projects in one category"},
	{"GET", "/api/v1/projects/{idOrSlug}", "Project by id or slug"},
	{"POST", "/api/v1/contact", "Submit the contact form"},
	{"POST", "/api/v1/auth/login", "Admin sign-in"},
}

// Index は GET /api/v1 を処理する
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.rs.success(w, http.StatusOK, "SabaStudio API", map[string]any{
		"version":   h.version,
		"endpoints": apiIndex,
	})
}
