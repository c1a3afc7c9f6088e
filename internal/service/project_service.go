package service

import (
	"context"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
)

// プロジェクト一覧のページング既定値
const (
	DefaultProjectLimit  = 12
	MaxProjectLimit      = 50
	DefaultFeaturedLimit = 6
)

// ProjectListParams.Published に指定できる値
const (
	PublishedOnly   = "true"
	UnpublishedOnly = "false"
	PublishedAll    = "all"
)

// ProjectListParams は一覧取得のクエリ条件
type ProjectListParams struct {
	Page     int
	Limit    int
	Category string
	Status   string
	Featured *bool
	Year     *int
	Search   string
	// Published は "", "true", "false", "all" のいずれか。
	// 公開済み以外を見られるのは admin のみ
	Published string
	Sort      string
	Admin     bool
}

// ProjectInput はプロジェクト作成・更新の入力。nil のフィールドは更新しない。
type ProjectInput struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	FullDescription *string   `json:"fullDescription"`
	Category        *string   `json:"category"`
	Status          *string   `json:"status"`
	Images          *[]string `json:"images"`
	ThumbnailImage  *string   `json:"thumbnailImage"`
	Location        *string   `json:"location"`
	Year            *int      `json:"year"`
	Client          *string   `json:"client"`
	Area            *float64  `json:"area"`
	Budget          *float64  `json:"budget"`
	Tags            *[]string `json:"tags"`
	Featured        *bool     `json:"featured"`
	Published       *bool     `json:"published"`
}

// ImageUpload はアップロードされたプロジェクト画像
type ImageUpload struct {
	ContentType string
	Data        []byte
}

// ImageStore は画像とサムネイルを prefix 配下に保存し、
// 公開 URL を返す
type ImageStore interface {
	Put(ctx context.Context, prefix, contentType string, data []byte) (url, thumbURL string, err error)
}

// ProjectService はプロジェクトに関するビジネスロジックのインターフェース
type ProjectService interface {
	List(ctx context.Context, params ProjectListParams) (*model.Page[*model.Project], error)
	// Get は ID、次に slug で検索する。非公開プロジェクトは includeUnpublished の場合のみ返す。
	Get(ctx context.Context, idOrSlug string, includeUnpublished bool) (*model.Project, error)
	Featured(ctx context.Context, limit int) ([]*model.Project, error)
	Categories(ctx context.Context) ([]model.CategoryCount, error)
	ListByCategory(ctx context.Context, category string, page, limit int) (*model.Page[*model.Project], error)
	Create(ctx context.Context, in ProjectInput) (*model.Project, error)
	Update(ctx context.Context, id string, in ProjectInput) (*model.Project, error)
	Delete(ctx context.Context, id string) error
	ToggleFeatured(ctx context.Context, id string) (*model.Project, error)
	TogglePublished(ctx context.Context, id string) (*model.Project, error)
	AddImage(ctx context.Context, id string, img ImageUpload) (*model.Project, error)
}
