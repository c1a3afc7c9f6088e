// Package memory provides process-local implementations of the repository
// interfaces. They back STORE_DRIVER=memory and serve as fakes in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"github.com/google/uuid"
)

// ProjectRepository is an in-memory repository.ProjectRepository.
type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*model.Project
	seq      map[string]int // insertion order, used as the final tie-breaker
	next     int
	now      func() time.Time
}

// NewProjectRepository returns an empty ProjectRepository.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		projects: make(map[string]*model.Project),
		seq:      make(map[string]int),
		now:      time.Now,
	}
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

// Ping always succeeds.
func (r *ProjectRepository) Ping(context.Context) error { return nil }

func cloneProject(p *model.Project) *model.Project {
	c := *p
	c.Images = append([]string{}, p.Images...)
	c.Tags = append([]string{}, p.Tags...)
	if p.Area != nil {
		v := *p.Area
		c.Area = &v
	}
	if p.Budget != nil {
		v := *p.Budget
		c.Budget = &v
	}
	return &c
}

func matchProject(p *model.Project, f model.ProjectFilter) bool {
	if f.Published != nil && p.Published != *f.Published {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Year != nil && p.Year != *f.Year {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		hit := strings.Contains(strings.ToLower(p.Title), s) ||
			strings.Contains(strings.ToLower(p.Description), s) ||
			strings.Contains(strings.ToLower(p.Location), s)
		for _, tag := range p.Tags {
			if hit {
				break
			}
			hit = strings.Contains(strings.ToLower(tag), s)
		}
		if !hit {
			return false
		}
	}
	return true
}

func (r *ProjectRepository) filtered(f model.ProjectFilter, s model.ProjectSort) []*model.Project {
	var out []*model.Project
	for _, p := range r.projects {
		if matchProject(p, f) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch s.Field {
		case "title":
			if a.Title != b.Title {
				return (a.Title < b.Title) != s.Desc
			}
		case "createdAt":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt) != s.Desc
			}
		default:
			if a.Year != b.Year {
				return (a.Year < b.Year) != s.Desc
			}
		}
		// Ties: newest createdAt, then latest registration.
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.seq[a.ID] > r.seq[b.ID]
	})
	return out
}

// List returns a filtered, sorted window of projects.
func (r *ProjectRepository) List(_ context.Context, f model.ProjectFilter, s model.ProjectSort, limit, offset int) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.filtered(f, s)
	out := []*model.Project{}
	for i := max(offset, 0); i < len(all) && len(out) < limit; i++ {
		out = append(out, cloneProject(all[i]))
	}
	return out, nil
}

// Count returns the number of projects matching f.
func (r *ProjectRepository) Count(_ context.Context, f model.ProjectFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.projects {
		if matchProject(p, f) {
			n++
		}
	}
	return n, nil
}

// GetByID returns the project with the given id.
func (r *ProjectRepository) GetByID(_ context.Context, id string) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProject(p), nil
}

// GetBySlug returns the project with the given slug.
func (r *ProjectRepository) GetBySlug(_ context.Context, slug string) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.projects {
		if p.Slug == slug {
			return cloneProject(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListCategories counts published projects per category.
func (r *ProjectRepository) ListCategories(context.Context) ([]model.CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[string]int{}
	for _, p := range r.projects {
		if p.Published {
			counts[p.Category]++
		}
	}
	out := make([]model.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, model.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (r *ProjectRepository) slugTaken(slug, exceptID string) bool {
	for id, p := range r.projects {
		if id != exceptID && p.Slug == slug {
			return true
		}
	}
	return false
}

// Create stores p, assigning its id and timestamps.
func (r *ProjectRepository) Create(_ context.Context, p *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(p.Slug, "") {
		return repository.ErrDuplicate
	}
	now := r.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.next++
	r.seq[p.ID] = r.next
	r.projects[p.ID] = cloneProject(p)
	return nil
}

// Update replaces the stored project with p.
func (r *ProjectRepository) Update(_ context.Context, p *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.projects[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.slugTaken(p.Slug, p.ID) {
		return repository.ErrDuplicate
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.now().UTC()
	r.projects[p.ID] = cloneProject(p)
	return nil
}

// Delete removes the project with the given id.
func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.projects, id)
	delete(r.seq, id)
	return nil
}

// ToggleFeatured flips the featured flag.
func (r *ProjectRepository) ToggleFeatured(_ context.Context, id string) (*model.Project, error) {
	return r.toggle(id, func(p *model.Project) { p.Featured = !p.Featured })
}

// TogglePublished flips the published flag.
func (r *ProjectRepository) TogglePublished(_ context.Context, id string) (*model.Project, error) {
	return r.toggle(id, func(p *model.Project) { p.Published = !p.Published })
}

func (r *ProjectRepository) toggle(id string, flip func(*model.Project)) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	flip(p)
	p.UpdatedAt = r.now().UTC()
	return cloneProject(p), nil
}
