package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/AnnaNajafiH/SabaStudio/internal/service"
)

// DefaultUploadMaxBytes は設定がない場合のアップロード上限
const DefaultUploadMaxBytes = 10 << 20 // 10MB

// ImageHandler はプロジェクト画像のアップロードを処理する
type ImageHandler struct {
	projectService service.ProjectService
	maxBytes       int64
	rs             Responder
}

// NewImageHandler は ImageHandler を生成する
func NewImageHandler(ps service.ProjectService, maxBytes int64, rs Responder) *ImageHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &ImageHandler{projectService: ps, maxBytes: maxBytes, rs: rs}
}

// Upload は POST /api/v1/projects/{id}/images を処理する（admin）
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// multipart のヘッダ分の余裕を持たせる
	limit := h.maxBytes + 64<<10
	if r.ContentLength > limit {
		h.rs.fail(w, http.StatusRequestEntityTooLarge, "Image is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.rs.err(w, r, err)
			return
		}
		h.rs.err(w, r, service.NewValidationError("image", "multipart form with an image file is required"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		h.rs.err(w, r, service.NewValidationError("image", "is required"))
		return
	}
	defer file.Close()
	if header.Size > h.maxBytes {
		h.rs.fail(w, http.StatusRequestEntityTooLarge, "Image is too large")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}

	// クライアント申告の Content-Type は信用しない
	p, err := h.projectService.AddImage(r.Context(), r.PathValue("id"), service.ImageUpload{
		ContentType: http.DetectContentType(data),
		Data:        data,
	})
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusCreated, "Image uploaded successfully", p)
}
