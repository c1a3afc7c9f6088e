package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository/memory"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// mockProjectRepository は ProjectRepository のモック（ストア障害の再現用）
type mockProjectRepository struct {
	repository.ProjectRepository
	listFunc  func(ctx context.Context, filter model.ProjectFilter, sort model.ProjectSort, limit, offset int) ([]*model.Project, error)
	countFunc func(ctx context.Context, filter model.ProjectFilter) (int, error)
}

func (m *mockProjectRepository) List(ctx context.Context, filter model.ProjectFilter, sort model.ProjectSort, limit, offset int) ([]*model.Project, error) {
	return m.listFunc(ctx, filter, sort, limit, offset)
}

func (m *mockProjectRepository) Count(ctx context.Context, filter model.ProjectFilter) (int, error) {
	return m.countFunc(ctx, filter)
}

type mockImageStore struct {
	putFunc func(ctx context.Context, prefix, contentType string, data []byte) (string, string, error)
}

func (m *mockImageStore) Put(ctx context.Context, prefix, contentType string, data []byte) (string, string, error) {
	return m.putFunc(ctx, prefix, contentType, data)
}

func seedProject(t *testing.T, repo repository.ProjectRepository, slug, category string, year int, published bool) *model.Project {
	t.Helper()
	p := &model.Project{
		Slug:      slug,
		Title:     slug,
		Category:  category,
		Status:    model.ProjectStatusCompleted,
		Year:      year,
		Published: published,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed %s: %v", slug, err)
	}
	return p
}

func validProjectInput() ProjectInput {
	return ProjectInput{
		Title:       strPtr("Villa Lumière"),
		Description: strPtr("A quiet house by the lake."),
		Category:    strPtr(model.CategoryResidential),
		Location:    strPtr("Lake Zurich"),
		Year:        intPtr(2023),
		Images:      &[]string{"https://cdn.example.com/villa-1.jpg", "/uploads/villa-2.jpg"},
		Tags:        &[]string{" Modern ", "modern", "Timber"},
	}
}

func TestProjectService_List_PaginationExample(t *testing.T) {
	repo := memory.NewProjectRepository()
	for i, year := range []int{2020, 2021, 2022, 2023, 2024} {
		seedProject(t, repo, fmt.Sprintf("house-%d", i), model.CategoryResidential, year, true)
	}
	seedProject(t, repo, "shop", model.CategoryCommercial, 2025, true)
	svc := NewProjectService(repo, nil, time.Second)

	page, err := svc.List(context.Background(), ProjectListParams{Category: model.CategoryResidential, Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Errorf("expected total=5 totalPages=3, got total=%d totalPages=%d", page.Total, page.TotalPages)
	}
	if !page.HasNextPage || !page.HasPrevPage {
		t.Errorf("expected both page flags true, got next=%v prev=%v", page.HasNextPage, page.HasPrevPage)
	}
	if len(page.Data) != 2 || page.Data[0].Year != 2022 || page.Data[1].Year != 2021 {
		t.Errorf("expected years [2022 2021], got %v", years(page.Data))
	}
}

func years(ps []*model.Project) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Year)
	}
	return out
}

func TestProjectService_List_HidesUnpublishedFromPublic(t *testing.T) {
	repo := memory.NewProjectRepository()
	seedProject(t, repo, "public", model.CategoryInterior, 2020, true)
	seedProject(t, repo, "draft", model.CategoryInterior, 2021, false)
	svc := NewProjectService(repo, nil, time.Second)
	ctx := context.Background()

	for _, published := range []string{"", PublishedAll, UnpublishedOnly} {
		page, err := svc.List(ctx, ProjectListParams{Published: published})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Total != 1 || page.Data[0].Slug != "public" {
			t.Errorf("published=%q: public caller saw %d projects", published, page.Total)
		}
	}

	page, _ := svc.List(ctx, ProjectListParams{Published: PublishedAll, Admin: true})
	if page.Total != 2 {
		t.Errorf("expected admin all view to return 2, got %d", page.Total)
	}
	page, _ = svc.List(ctx, ProjectListParams{Published: UnpublishedOnly, Admin: true})
	if page.Total != 1 || page.Data[0].Slug != "draft" {
		t.Errorf("expected admin unpublished view to return the draft, got %d", page.Total)
	}
}

func TestProjectService_List_ClampsLimitAndIgnoresUnknownCategory(t *testing.T) {
	var gotLimit int
	var gotFilter model.ProjectFilter
	svc := NewProjectService(&mockProjectRepository{
		listFunc: func(_ context.Context, f model.ProjectFilter, _ model.ProjectSort, limit, _ int) ([]*model.Project, error) {
			gotFilter, gotLimit = f, limit
			return nil, nil
		},
		countFunc: func(context.Context, model.ProjectFilter) (int, error) { return 0, nil },
	}, nil, time.Second)

	page, err := svc.List(context.Background(), ProjectListParams{Limit: 500, Category: "castle"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != MaxProjectLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxProjectLimit, gotLimit)
	}
	if gotFilter.Category != "" {
		t.Errorf("expected unknown category to be ignored, got %q", gotFilter.Category)
	}
	if page.Data == nil || page.Total != 0 || page.TotalPages != 0 {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestProjectService_List_PageBeyondMaxIsValidation(t *testing.T) {
	repo := memory.NewProjectRepository()
	seedProject(t, repo, "house", model.CategoryResidential, 2020, true)
	svc := NewProjectService(repo, nil, time.Second)
	ctx := context.Background()

	for _, page := range []int{MaxPage + 1, math.MaxInt/12 + 2, math.MaxInt} {
		_, err := svc.List(ctx, ProjectListParams{Page: page, Limit: 12})
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Fields[0].Field != "page" {
			t.Errorf("page=%d: expected ValidationError on page, got %v", page, err)
		}
	}
	if _, err := svc.ListByCategory(ctx, model.CategoryResidential, math.MaxInt, 0); err == nil {
		t.Error("expected ListByCategory to reject a huge page")
	}

	// 上限ちょうどは空ページ
	page, err := svc.List(ctx, ProjectListParams{Page: MaxPage, Limit: MaxProjectLimit})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 || len(page.Data) != 0 || page.HasNextPage {
		t.Errorf("unexpected last page: %+v", page)
	}
}

func TestProjectService_List_StoreFailureIsPersistenceError(t *testing.T) {
	svc := NewProjectService(&mockProjectRepository{
		listFunc: func(context.Context, model.ProjectFilter, model.ProjectSort, int, int) ([]*model.Project, error) {
			return nil, errors.New("connection refused")
		},
		countFunc: func(context.Context, model.ProjectFilter) (int, error) { return 0, nil },
	}, nil, time.Second)

	_, err := svc.List(context.Background(), ProjectListParams{})
	if !errors.Is(err, ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
}

func TestProjectService_Get_ByIDThenSlug(t *testing.T) {
	repo := memory.NewProjectRepository()
	p := seedProject(t, repo, "glass-pavilion", model.CategoryLandscape, 2019, true)
	draft := seedProject(t, repo, "secret", model.CategoryLandscape, 2019, false)
	svc := NewProjectService(repo, nil, time.Second)
	ctx := context.Background()

	if got, err := svc.Get(ctx, p.ID, false); err != nil || got.ID != p.ID {
		t.Errorf("get by id: got %v, %v", got, err)
	}
	if got, err := svc.Get(ctx, "glass-pavilion", false); err != nil || got.ID != p.ID {
		t.Errorf("get by slug: got %v, %v", got, err)
	}
	if _, err := svc.Get(ctx, draft.ID, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected unpublished project to be not found, got %v", err)
	}
	if _, err := svc.Get(ctx, "secret", true); err != nil {
		t.Errorf("expected admin to see unpublished project, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectService_Featured(t *testing.T) {
	repo := memory.NewProjectRepository()
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		p := seedProject(t, repo, fmt.Sprintf("f-%d", i), model.CategoryCommercial, 2010+i, i != 7)
		if _, err := repo.ToggleFeatured(ctx, p.ID); err != nil {
			t.Fatal(err)
		}
	}
	seedProject(t, repo, "plain", model.CategoryCommercial, 2030, true)
	svc := NewProjectService(repo, nil, time.Second)

	got, err := svc.Featured(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != DefaultFeaturedLimit {
		t.Fatalf("expected %d featured, got %d", DefaultFeaturedLimit, len(got))
	}
	if got[0].Year != 2016 {
		t.Errorf("expected newest published featured first (2016), got %d", got[0].Year)
	}
}

func TestProjectService_ListByCategory_UnknownCategory(t *testing.T) {
	svc := NewProjectService(memory.NewProjectRepository(), nil, time.Second)
	var verr *ValidationError
	if _, err := svc.ListByCategory(context.Background(), "castle", 1, 10); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestProjectService_Create_NormalizesAndDefaults(t *testing.T) {
	svc := NewProjectService(memory.NewProjectRepository(), nil, time.Second)

	p, err := svc.Create(context.Background(), validProjectInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Slug != "villa-lumiere" {
		t.Errorf("expected slug villa-lumiere, got %q", p.Slug)
	}
	if p.Status != model.ProjectStatusPlanning || !p.Published || p.Featured {
		t.Errorf("unexpected defaults: status=%q published=%v featured=%v", p.Status, p.Published, p.Featured)
	}
	if p.ThumbnailImage != "https://cdn.example.com/villa-1.jpg" {
		t.Errorf("expected first image as thumbnail, got %q", p.ThumbnailImage)
	}
	if fmt.Sprint(p.Tags) != "[modern timber]" {
		t.Errorf("expected tags [modern timber], got %v", p.Tags)
	}
}

func TestProjectService_Create_SlugCollisionIsConflict(t *testing.T) {
	svc := NewProjectService(memory.NewProjectRepository(), nil, time.Second)
	ctx := context.Background()
	if _, err := svc.Create(ctx, validProjectInput()); err != nil {
		t.Fatal(err)
	}

	in := validProjectInput()
	in.Title = strPtr("VILLA lumiere!")
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestProjectService_Create_Validation(t *testing.T) {
	svc := NewProjectService(memory.NewProjectRepository(), nil, time.Second)
	tests := []struct {
		name  string
		edit  func(in *ProjectInput)
		field string
	}{
		{"short title", func(in *ProjectInput) { in.Title = strPtr("ab") }, "title"},
		{"bad category", func(in *ProjectInput) { in.Category = strPtr("castle") }, "category"},
		{"bad status", func(in *ProjectInput) { in.Status = strPtr("done") }, "status"},
		{"year too early", func(in *ProjectInput) { in.Year = intPtr(1899) }, "year"},
		{"year too late", func(in *ProjectInput) { in.Year = intPtr(time.Now().Year() + 6) }, "year"},
		{"negative area", func(in *ProjectInput) { v := -1.0; in.Area = &v }, "area"},
		{"bad image", func(in *ProjectInput) { in.Images = &[]string{"javascript:alert(1)"} }, "images[0]"},
		{"missing location", func(in *ProjectInput) { in.Location = nil }, "location"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validProjectInput()
			tt.edit(&in)
			_, err := svc.Create(context.Background(), in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Fields[0].Field != tt.field {
				t.Errorf("expected field %q, got %+v", tt.field, verr.Fields)
			}
		})
	}
}

func TestProjectService_Update_RecomputesSlugOnlyOnTitleChange(t *testing.T) {
	svc := NewProjectService(memory.NewProjectRepository(), nil, time.Second)
	ctx := context.Background()
	p, err := svc.Create(ctx, validProjectInput())
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Update(ctx, p.ID, ProjectInput{Location: strPtr("Geneva")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Slug != "villa-lumiere" || got.Location != "Geneva" || got.Description != "A quiet house by the lake." {
		t.Errorf("unexpected partial update result: %+v", got)
	}

	got, err = svc.Update(ctx, p.ID, ProjectInput{Title: strPtr("Lake House")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Slug != "lake-house" {
		t.Errorf("expected slug lake-house, got %q", got.Slug)
	}

	if _, err := svc.Update(ctx, "missing", ProjectInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectService_TogglesAndDelete(t *testing.T) {
	svc := NewProjectService(memory.NewProjectRepository(), nil, time.Second)
	ctx := context.Background()
	p, _ := svc.Create(ctx, validProjectInput())

	got, err := svc.ToggleFeatured(ctx, p.ID)
	if err != nil || !got.Featured {
		t.Errorf("expected featured=true, got %v, %v", got, err)
	}
	got, err = svc.TogglePublished(ctx, p.ID)
	if err != nil || got.Published {
		t.Errorf("expected published=false, got %v, %v", got, err)
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestProjectService_AddImage(t *testing.T) {
	repo := memory.NewProjectRepository()
	p := seedProject(t, repo, "atrium", model.CategoryInterior, 2022, false)
	var gotPrefix string
	svc := NewProjectService(repo, &mockImageStore{
		putFunc: func(_ context.Context, prefix, _ string, _ []byte) (string, string, error) {
			gotPrefix = prefix
			return "/uploads/a.jpg", "/uploads/a_thumb.jpg", nil
		},
	}, time.Second)

	got, err := svc.AddImage(context.Background(), p.ID, ImageUpload{ContentType: "image/jpeg", Data: []byte{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPrefix != "projects/"+p.ID {
		t.Errorf("unexpected key prefix %q", gotPrefix)
	}
	if len(got.Images) != 1 || got.ThumbnailImage != "/uploads/a_thumb.jpg" {
		t.Errorf("unexpected images: %v thumb=%q", got.Images, got.ThumbnailImage)
	}

	_, err = svc.AddImage(context.Background(), p.ID, ImageUpload{ContentType: "image/gif", Data: []byte{1}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for gif, got %v", err)
	}
}
