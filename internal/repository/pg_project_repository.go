package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const projectColumns = `id, slug, title, description, full_description, category, status, images,
	thumbnail_image, location, year, client, area, budget, tags, featured, published, created_at, updated_at`

// PgProjectRepository は ProjectRepository の PostgreSQL 実装
type PgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository は PgProjectRepository を生成する
func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

var _ ProjectRepository = (*PgProjectRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.FullDescription, &p.Category, &p.Status,
		&p.Images, &p.ThumbnailImage, &p.Location, &p.Year, &p.Client, &p.Area, &p.Budget, &p.Tags,
		&p.Featured, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// buildProjectWhere は ProjectFilter を WHERE 句と引数に変換する。
// 条件はすべて AND で結合し、search のみ複数カラムへの OR に展開する。
func buildProjectWhere(f model.ProjectFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(format string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}

	if f.Published != nil {
		add("published = $%d", *f.Published)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Featured != nil {
		add("featured = $%d", *f.Featured)
	}
	if f.Year != nil {
		add("year = $%d", *f.Year)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%[1]d OR description ILIKE $%[1]d OR location ILIKE $%[1]d"+
				" OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $%[1]d))", n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike は LIKE のメタ文字をエスケープする（検索語はリテラルとして扱う）
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func projectOrderBy(s model.ProjectSort) string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	switch s.Field {
	case "createdAt":
		return " ORDER BY created_at " + dir + ", id DESC"
	case "title":
		return " ORDER BY title " + dir + ", created_at DESC, id DESC"
	default:
		return " ORDER BY year " + dir + ", created_at DESC, id DESC"
	}
}

// List はフィルタ・並び順・ページングを適用したプロジェクト一覧を取得する
func (r *PgProjectRepository) List(ctx context.Context, filter model.ProjectFilter, sort model.ProjectSort, limit, offset int) ([]*model.Project, error) {
	where, args := buildProjectWhere(filter)
	n := len(args)
	args = append(args, limit, offset)
	query := `SELECT ` + projectColumns + ` FROM projects` + where + projectOrderBy(sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Count はフィルタに一致するプロジェクト数を返す（ページング前）
func (r *PgProjectRepository) Count(ctx context.Context, filter model.ProjectFilter) (int, error) {
	where, args := buildProjectWhere(filter)
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&n)
	return n, err
}

// GetByID は ID でプロジェクトを取得する
func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

// GetBySlug は slug でプロジェクトを取得する
func (r *PgProjectRepository) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug))
}

// ListCategories は公開済みプロジェクトのカテゴリ別件数を返す
func (r *PgProjectRepository) ListCategories(ctx context.Context) ([]model.CategoryCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM projects WHERE published = TRUE
		 GROUP BY category ORDER BY COUNT(*) DESC, category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.CategoryCount{}
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create はプロジェクトを作成する。slug が重複する場合は ErrDuplicate を返す。
func (r *PgProjectRepository) Create(ctx context.Context, p *model.Project) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO projects (slug, title, description, full_description, category, status, images,
		   thumbnail_image, location, year, client, area, budget, tags, featured, published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at, updated_at`,
		p.Slug, p.Title, p.Description, p.FullDescription, p.Category, p.Status, p.Images,
		p.ThumbnailImage, p.Location, p.Year, p.Client, p.Area, p.Budget, p.Tags, p.Featured, p.Published,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Update はプロジェクトの全フィールドを上書きする
func (r *PgProjectRepository) Update(ctx context.Context, p *model.Project) error {
	if !validID(p.ID) {
		return ErrNotFound
	}
	err := r.pool.QueryRow(ctx,
		`UPDATE projects SET slug = $1, title = $2, description = $3, full_description = $4, category = $5,
		   status = $6, images = $7, thumbnail_image = $8, location = $9, year = $10, client = $11,
		   area = $12, budget = $13, tags = $14, featured = $15, published = $16, updated_at = NOW()
		 WHERE id = $17
		 RETURNING updated_at`,
		p.Slug, p.Title, p.Description, p.FullDescription, p.Category, p.Status, p.Images,
		p.ThumbnailImage, p.Location, p.Year, p.Client, p.Area, p.Budget, p.Tags, p.Featured, p.Published,
		p.ID,
	).Scan(&p.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

// Delete はプロジェクトを物理削除する。対象が存在しない場合は ErrNotFound を返す。
func (r *PgProjectRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleFeatured は featured を反転する
func (r *PgProjectRepository) ToggleFeatured(ctx context.Context, id string) (*model.Project, error) {
	return r.toggle(ctx, id, "featured")
}

// TogglePublished は published を反転する
func (r *PgProjectRepository) TogglePublished(ctx context.Context, id string) (*model.Project, error) {
	return r.toggle(ctx, id, "published")
}

// column は呼び出し元の固定値のみ
func (r *PgProjectRepository) toggle(ctx context.Context, id, column string) (*model.Project, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return scanProject(r.pool.QueryRow(ctx,
		`UPDATE projects SET `+column+` = NOT `+column+`, updated_at = NOW()
		 WHERE id = $1 RETURNING `+projectColumns, id))
}
