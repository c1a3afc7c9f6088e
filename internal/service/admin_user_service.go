package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
)

// ユーザー一覧のページング既定値
const (
	DefaultUserLimit = 20
	MaxUserLimit     = 100
)

// UserUpdate は管理者によるユーザー更新。nil のフィールドは変更しない。
type UserUpdate struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// AdminUserService は管理者専用のユーザー管理操作
type AdminUserService interface {
	ListUsers(ctx context.Context, page, limit int) (*model.Page[*model.User], error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	// UpdateUser は名前・ロール・有効フラグを変更する。actorID は操作する管理者で、
	// 自分自身の降格や無効化はできない
	UpdateUser(ctx context.Context, actorID, id string, in UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, actorID, id string) error
}

type adminUserService struct {
	userRepo     repository.UserRepository
	storeTimeout time.Duration
}

// NewAdminUserService は AdminUserService を生成する
func NewAdminUserService(userRepo repository.UserRepository, storeTimeout time.Duration) AdminUserService {
	return &adminUserService{userRepo: userRepo, storeTimeout: storeTimeout}
}

func (s *adminUserService) ListUsers(ctx context.Context, page, limit int) (*model.Page[*model.User], error) {
	page, err := pageNumber(page)
	if err != nil {
		return nil, err
	}
	limit = clamp(limit, DefaultUserLimit, MaxUserLimit)

	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	users, err := s.userRepo.List(ctx, limit, model.Offset(page, limit))
	if err != nil {
		return nil, storeErr("list users", err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, storeErr("count users", err)
	}
	return model.NewPage(users, total, page, limit), nil
}

func (s *adminUserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return u, nil
}

func (s *adminUserService) UpdateUser(ctx context.Context, actorID, id string, in UserUpdate) (*model.User, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
			return nil, NewValidationError("name", "must be between 2 and 100 characters")
		}
		in.Name = &name
	}
	if in.Role != nil && !model.IsValidRole(*in.Role) {
		return nil, NewValidationError("role", "must be one of: admin, editor, viewer")
	}
	// 自分自身の権限を外すと管理者がいなくなる可能性がある
	if actorID == id {
		if in.Role != nil && *in.Role != model.RoleAdmin {
			return nil, NewValidationError("role", "you cannot remove your own admin role")
		}
		if in.IsActive != nil && !*in.IsActive {
			return nil, NewValidationError("isActive", "you cannot deactivate your own account")
		}
	}

	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, storeErr("update user", err)
	}
	slog.Info("user updated", "user_id", id, "by", actorID, "role", u.Role, "active", u.IsActive)
	return u, nil
}

func (s *adminUserService) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return NewValidationError("id", "you cannot delete your own account")
	}

	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return storeErr("delete user", err)
	}
	slog.Info("user deleted", "user_id", id, "by", actorID)
	return nil
}
