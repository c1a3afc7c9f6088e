package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"github.com/AnnaNajafiH/SabaStudio/internal/storage"
	"github.com/AnnaNajafiH/SabaStudio/pkg/slug"
	"golang.org/x/sync/errgroup"
)

// 画像アップロードで受け付ける Content-Type
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ProjectServiceImpl は ProjectService の実装
type ProjectServiceImpl struct {
	projectRepo  repository.ProjectRepository
	images       ImageStore
	storeTimeout time.Duration
}

// NewProjectService は ProjectServiceImpl を生成する（DI: ProjectRepository と ImageStore を注入）。
// images が nil の場合 AddImage は使えない。
func NewProjectService(projectRepo repository.ProjectRepository, images ImageStore, storeTimeout time.Duration) ProjectService {
	return &ProjectServiceImpl{projectRepo: projectRepo, images: images, storeTimeout: storeTimeout}
}

// resolvePublished は呼び出し元の権限に応じて公開フィルタを決める
func resolvePublished(value string, admin bool) *bool {
	t, f := true, false
	if !admin {
		return &t
	}
	switch value {
	case UnpublishedOnly:
		return &f
	case PublishedAll:
		return nil
	default:
		return &t
	}
}

// List はフィルタ・並び順・ページングを適用したプロジェクト一覧を返す
func (s *ProjectServiceImpl) List(ctx context.Context, p ProjectListParams) (*model.Page[*model.Project], error) {
	page, err := pageNumber(p.Page)
	if err != nil {
		return nil, err
	}
	limit := clamp(p.Limit, DefaultProjectLimit, MaxProjectLimit)

	filter := model.ProjectFilter{
		Featured:  p.Featured,
		Year:      p.Year,
		Search:    strings.TrimSpace(p.Search),
		Published: resolvePublished(p.Published, p.Admin),
	}
	// 列挙外のカテゴリ・ステータスは無視する
	if model.IsValidCategory(p.Category) {
		filter.Category = p.Category
	}
	if model.IsValidProjectStatus(p.Status) {
		filter.Status = p.Status
	}
	return s.page(ctx, filter, model.ParseProjectSort(p.Sort), page, limit)
}

// page は一覧と件数を並行に取得してページにまとめる
func (s *ProjectServiceImpl) page(ctx context.Context, filter model.ProjectFilter, sort model.ProjectSort, page, limit int) (*model.Page[*model.Project], error) {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	var (
		items []*model.Project
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.projectRepo.List(gctx, filter, sort, limit, model.Offset(page, limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.projectRepo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr("list projects", err)
	}
	return model.NewPage(items, total, page, limit), nil
}

// Get は ID、次に slug でプロジェクトを取得する
func (s *ProjectServiceImpl) Get(ctx context.Context, idOrSlug string, includeUnpublished bool) (*model.Project, error) {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	p, err := s.projectRepo.GetByID(ctx, idOrSlug)
	if errors.Is(err, repository.ErrNotFound) {
		p, err = s.projectRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, storeErr("get project", err)
	}
	// 非公開プロジェクトの存在は公開側に漏らさない
	if !p.Published && !includeUnpublished {
		return nil, ErrNotFound
	}
	return p, nil
}

// Featured は公開済みの注目プロジェクトを年の降順で返す
func (s *ProjectServiceImpl) Featured(ctx context.Context, limit int) ([]*model.Project, error) {
	limit = clamp(limit, DefaultFeaturedLimit, MaxProjectLimit)
	t := true

	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	items, err := s.projectRepo.List(ctx, model.ProjectFilter{Featured: &t, Published: &t}, model.DefaultProjectSort, limit, 0)
	if err != nil {
		return nil, storeErr("list featured projects", err)
	}
	if items == nil {
		items = []*model.Project{}
	}
	return items, nil
}

// Categories は公開済みプロジェクトのカテゴリと件数を返す
func (s *ProjectServiceImpl) Categories(ctx context.Context) ([]model.CategoryCount, error) {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	cats, err := s.projectRepo.ListCategories(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	if cats == nil {
		cats = []model.CategoryCount{}
	}
	return cats, nil
}

// ListByCategory は指定カテゴリの公開済みプロジェクトを返す
func (s *ProjectServiceImpl) ListByCategory(ctx context.Context, category string, page, limit int) (*model.Page[*model.Project], error) {
	if !model.IsValidCategory(category) {
		return nil, NewValidationError("category", "must be one of: "+strings.Join(model.ProjectCategories, ", "))
	}
	return s.List(ctx, ProjectListParams{Page: page, Limit: limit, Category: category})
}

// Create はプロジェクトを作成する。slug はタイトルから生成する。
func (s *ProjectServiceImpl) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	p := &model.Project{
		Status:    model.ProjectStatusPlanning,
		Published: true,
	}
	applyProjectInput(p, in)
	if err := normalizeProject(p); err != nil {
		return nil, err
	}
	p.Slug = slug.Make(p.Title)

	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, s.writeErr("create project", err)
	}
	slog.Info("project created", "project_id", p.ID, "slug", p.Slug)
	return p, nil
}

// Update は入力のあるフィールドだけを既存プロジェクトにマージする。
// slug はタイトルが変わった場合のみ再生成する。
func (s *ProjectServiceImpl) Update(ctx context.Context, id string, in ProjectInput) (*model.Project, error) {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get project", err)
	}
	oldTitle := p.Title
	applyProjectInput(p, in)
	if err := normalizeProject(p); err != nil {
		return nil, err
	}
	if p.Title != oldTitle {
		p.Slug = slug.Make(p.Title)
	}
	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, s.writeErr("update project", err)
	}
	return p, nil
}

func (s *ProjectServiceImpl) writeErr(op string, err error) error {
	err = storeErr(op, err)
	if errors.Is(err, ErrConflict) {
		return fmt.Errorf("%w: a project with a similar title already exists", ErrConflict)
	}
	return err
}

// Delete はプロジェクトを物理削除する
func (s *ProjectServiceImpl) Delete(ctx context.Context, id string) error {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return storeErr("delete project", err)
	}
	slog.Info("project deleted", "project_id", id)
	return nil
}

// ToggleFeatured は featured フラグを反転する
func (s *ProjectServiceImpl) ToggleFeatured(ctx context.Context, id string) (*model.Project, error) {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	p, err := s.projectRepo.ToggleFeatured(ctx, id)
	return p, storeErr("toggle featured", err)
}

// TogglePublished は published フラグを反転する
func (s *ProjectServiceImpl) TogglePublished(ctx context.Context, id string) (*model.Project, error) {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	p, err := s.projectRepo.TogglePublished(ctx, id)
	return p, storeErr("toggle published", err)
}

// AddImage は画像とサムネイルを保存し、プロジェクトの画像一覧に追加する
func (s *ProjectServiceImpl) AddImage(ctx context.Context, id string, img ImageUpload) (*model.Project, error) {
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}
	if !allowedImageTypes[img.ContentType] {
		return nil, NewValidationError("image", "must be a JPEG, PNG or WebP image")
	}
	if len(img.Data) == 0 {
		return nil, NewValidationError("image", "is required")
	}

	p, err := s.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	url, thumb, err := s.images.Put(ctx, "projects/"+p.ID, img.ContentType, img.Data)
	if errors.Is(err, storage.ErrInvalidImage) {
		return nil, NewValidationError("image", "could not be decoded")
	}
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	p.Images = append(p.Images, url)
	if p.ThumbnailImage == "" {
		p.ThumbnailImage = thumb
	}

	sctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	if err := s.projectRepo.Update(sctx, p); err != nil {
		return nil, storeErr("update project images", err)
	}
	slog.Info("project image added", "project_id", p.ID, "url", url)
	return p, nil
}

func applyProjectInput(p *model.Project, in ProjectInput) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.FullDescription != nil {
		p.FullDescription = *in.FullDescription
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Images != nil {
		p.Images = append([]string{}, (*in.Images)...)
	}
	if in.ThumbnailImage != nil {
		p.ThumbnailImage = *in.ThumbnailImage
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	if in.Year != nil {
		p.Year = *in.Year
	}
	if in.Client != nil {
		p.Client = *in.Client
	}
	if in.Area != nil {
		v := *in.Area
		p.Area = &v
	}
	if in.Budget != nil {
		v := *in.Budget
		p.Budget = &v
	}
	if in.Tags != nil {
		p.Tags = append([]string{}, (*in.Tags)...)
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
}

// projectRules は書き込み時の検証ルール
type projectRules struct {
	Title           string   `json:"title" validate:"required,min=3,max=200"`
	Description     string   `json:"description" validate:"required,min=10,max=500"`
	FullDescription string   `json:"fullDescription" validate:"max=5000"`
	Category        string   `json:"category" validate:"required,project_category"`
	Status          string   `json:"status" validate:"required,project_status"`
	Images          []string `json:"images" validate:"dive,image_url"`
	ThumbnailImage  string   `json:"thumbnailImage" validate:"omitempty,image_url"`
	Location        string   `json:"location" validate:"required,max=200"`
	Year            int      `json:"year" validate:"year_range"`
	Client          string   `json:"client" validate:"max=200"`
	Area            *float64 `json:"area" validate:"omitempty,gte=0"`
	Budget          *float64 `json:"budget" validate:"omitempty,gte=0"`
	Tags            []string `json:"tags" validate:"dive,max=50"`
}

// normalizeProject は入力を整形して検証する
func normalizeProject(p *model.Project) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.FullDescription = strings.TrimSpace(p.FullDescription)
	p.Location = strings.TrimSpace(p.Location)
	p.Client = strings.TrimSpace(p.Client)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))
	p.ThumbnailImage = strings.TrimSpace(p.ThumbnailImage)

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	p.Images = images
	if p.ThumbnailImage == "" && len(images) > 0 {
		p.ThumbnailImage = images[0]
	}

	seen := make(map[string]bool, len(p.Tags))
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	p.Tags = tags

	if err := checkStruct(projectRules{
		Title:           p.Title,
		Description:     p.Description,
		FullDescription: p.FullDescription,
		Category:        p.Category,
		Status:          p.Status,
		Images:          p.Images,
		ThumbnailImage:  p.ThumbnailImage,
		Location:        p.Location,
		Year:            p.Year,
		Client:          p.Client,
		Area:            p.Area,
		Budget:          p.Budget,
		Tags:            p.Tags,
	}); err != nil {
		return err
	}
	if slug.Make(p.Title) == "" {
		return NewValidationError("title", "must contain at least one letter or digit")
	}
	return nil
}
