package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contactColumns = `id, name, email, phone, company, project_type, budget, timeline, location,
	subject, message, status, ip_address, user_agent, created_at, updated_at`

// PgContactRepository は ContactRepository の PostgreSQL 実装
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository は pool を使う PgContactRepository を生成する
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// コンパイル時に ContactRepository を満たすことを確認する
var _ ContactRepository = (*PgContactRepository)(nil)

func scanContact(row rowScanner) (*model.ContactMessage, error) {
	var m model.ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Company, &m.ProjectType, &m.Budget,
		&m.Timeline, &m.Location, &m.Subject, &m.Message, &m.Status, &m.IPAddress, &m.UserAgent,
		&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Save は contact_messages に行を追加し、RETURNING で得た ID と
// タイムスタンプを msg に設定する
func (r *PgContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, phone, company, project_type, budget, timeline,
		   location, subject, message, status, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		msg.Name, msg.Email, msg.Phone, msg.Company, msg.ProjectType, msg.Budget, msg.Timeline,
		msg.Location, msg.Subject, msg.Message, msg.Status, msg.IPAddress, msg.UserAgent,
	).Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
}

func contactWhere(status string) (string, []any) {
	if status == "" {
		return "", nil
	}
	return " WHERE status = $1", []any{status}
}

// List は status で絞り込んだメッセージを新しい順に limit/offset で返す。
// status が空ならすべて
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	where, args := contactWhere(opts.Status)
	n := len(args)
	args = append(args, opts.Limit, opts.Offset)

	query := `SELECT ` + contactColumns + ` FROM contact_messages` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", n+1, n+2)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*model.ContactMessage{}
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Count は status のメッセージ数を返す（空ならすべて）
func (r *PgContactRepository) Count(ctx context.Context, status string) (int, error) {
	where, args := contactWhere(status)
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`+where, args...).Scan(&n)
	return n, err
}

// GetByID はメッセージを 1 件返す。なければ ErrNotFound
func (r *PgContactRepository) GetByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return scanContact(r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id))
}

// MarkRead は status を new から read に変える。status の条件があるので
// 同時に呼ばれても行が更新されるのは 1 回だけ
func (r *PgContactRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE contact_messages SET status = 'read', updated_at = NOW()
		 WHERE id = $1 AND status = 'new'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateStatus は status を無条件に書き込み、更新後のメッセージを返す
func (r *PgContactRepository) UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return scanContact(r.pool.QueryRow(ctx,
		`UPDATE contact_messages SET status = $1, updated_at = NOW()
		 WHERE id = $2 RETURNING `+contactColumns, status, id))
}

// Delete はメッセージを完全に削除する
func (r *PgContactRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
