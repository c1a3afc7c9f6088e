package repository

import (
	"context"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// UserRepository はユーザー永続化のインターフェース
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// List は作成日時の新しい順にユーザーを返す
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

// ContactRepository はお問い合わせメッセージの永続化インターフェース。
// service との循環 import を避けるため repository に置く
type ContactRepository interface {
	Save(ctx context.Context, msg *model.ContactMessage) error
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	Count(ctx context.Context, status string) (int, error)
	GetByID(ctx context.Context, id string) (*model.ContactMessage, error)
	// MarkRead は "new" から "read" への条件付き更新を 1 回で行い、
	// この呼び出しで遷移したかどうかを返す
	MarkRead(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error)
	Delete(ctx context.Context, id string) error
}
