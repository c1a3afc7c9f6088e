package repository

import (
	"context"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
)

// ProjectRepository はプロジェクト永続化のインターフェース
type ProjectRepository interface {
	List(ctx context.Context, filter model.ProjectFilter, sort model.ProjectSort, limit, offset int) ([]*model.Project, error)
	Count(ctx context.Context, filter model.ProjectFilter) (int, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	GetBySlug(ctx context.Context, slug string) (*model.Project, error)
	// ListCategories は公開済みプロジェクトのカテゴリと件数を件数の多い順に返す
	ListCategories(ctx context.Context) ([]model.CategoryCount, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
	// ToggleFeatured / TogglePublished はフラグをストア側で反転し、更新後のプロジェクトを返す
	ToggleFeatured(ctx context.Context, id string) (*model.Project, error)
	TogglePublished(ctx context.Context, id string) (*model.Project, error)
}
