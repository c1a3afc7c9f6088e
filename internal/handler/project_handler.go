package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/AnnaNajafiH/SabaStudio/internal/service"
	"github.com/AnnaNajafiH/SabaStudio/pkg/auth"
)

// ProjectHandler はプロジェクト API の HTTP ハンドラ
type ProjectHandler struct {
	projectService service.ProjectService
	rs             Responder
}

// NewProjectHandler は ProjectHandler を生成する
func NewProjectHandler(projectService service.ProjectService, rs Responder) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, rs: rs}
}

// positiveInt は q[key] があれば正の整数として dst に読み込む。なければ dst はそのまま
func positiveInt(q url.Values, key string, dst *int) error {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return service.NewValidationError(key, "must be a positive integer")
	}
	*dst = n
	return nil
}

// parseListParams はクエリ文字列から一覧条件を組み立てる
func parseListParams(q url.Values) (service.ProjectListParams, error) {
	p := service.ProjectListParams{
		Category:  strings.ToLower(strings.TrimSpace(q.Get("category"))),
		Status:    strings.ToLower(strings.TrimSpace(q.Get("status"))),
		Search:    strings.TrimSpace(q.Get("search")),
		Published: strings.ToLower(strings.TrimSpace(q.Get("published"))),
		Sort:      strings.TrimSpace(q.Get("sort")),
	}
	if err := positiveInt(q, "page", &p.Page); err != nil {
		return p, err
	}
	if err := positiveInt(q, "limit", &p.Limit); err != nil {
		return p, err
	}
	switch v := q.Get("featured"); v {
	case "":
	case "true", "false":
		b := v == "true"
		p.Featured = &b
	default:
		return p, service.NewValidationError("featured", "must be true or false")
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return p, service.NewValidationError("year", "must be an integer")
		}
		p.Year = &y
	}
	switch p.Published {
	case "", service.PublishedOnly, service.UnpublishedOnly, service.PublishedAll:
	default:
		return p, service.NewValidationError("published", "must be true, false or all")
	}
	return p, nil
}

// List は GET /api/v1/projects を処理する
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	params.Admin = auth.IsAdminFromContext(r.Context())

	page, err := h.projectService.List(r.Context(), params)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", page)
}

// Featured は GET /api/v1/projects/featured を処理する
func (h *ProjectHandler) Featured(w http.ResponseWriter, r *http.Request) {
	var limit int
	if err := positiveInt(r.URL.Query(), "limit", &limit); err != nil {
		h.rs.err(w, r, err)
		return
	}
	projects, err := h.projectService.Featured(r.Context(), limit)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", projects)
}

// Categories は GET /api/v1/projects/categories を処理する
func (h *ProjectHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.projectService.Categories(r.Context())
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", cats)
}

// ByCategory は GET /api/v1/projects/category/{category} を処理する
func (h *ProjectHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	var pg, limit int
	q := r.URL.Query()
	if err := positiveInt(q, "page", &pg); err != nil {
		h.rs.err(w, r, err)
		return
	}
	if err := positiveInt(q, "limit", &limit); err != nil {
		h.rs.err(w, r, err)
		return
	}
	category := strings.ToLower(r.PathValue("category"))
	page, err := h.projectService.ListByCategory(r.Context(), category, pg, limit)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", page)
}

// Get は GET /api/v1/projects/{idOrSlug} を処理する
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.projectService.Get(r.Context(), r.PathValue("idOrSlug"), auth.IsAdminFromContext(r.Context()))
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", p)
}

// Create は POST /api/v1/projects を処理する（admin）
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.err(w, r, err)
		return
	}
	p, err := h.projectService.Create(r.Context(), in)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusCreated, "Project created successfully", p)
}

// Update は PUT /api/v1/projects/{id} を処理する（admin）
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.rs.err(w, r, err)
		return
	}
	p, err := h.projectService.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "Project updated successfully", p)
}

// Delete は DELETE /api/v1/projects/{id} を処理する（admin）
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "Project deleted successfully", nil)
}

// ToggleFeatured は PATCH /api/v1/projects/{id}/featured を処理する（admin）
func (h *ProjectHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	p, err := h.projectService.ToggleFeatured(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	msg := "Project removed from featured"
	if p.Featured {
		msg = "Project marked as featured"
	}
	h.rs.success(w, http.StatusOK, msg, p)
}

// TogglePublished は PATCH /api/v1/projects/{id}/published を処理する（admin）
func (h *ProjectHandler) TogglePublished(w http.ResponseWriter, r *http.Request) {
	p, err := h.projectService.TogglePublished(r.Context(), r.PathValue("id"))
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	msg := "Project unpublished"
	if p.Published {
		msg = "Project published"
	}
	h.rs.success(w, http.StatusOK, msg, p)
}
