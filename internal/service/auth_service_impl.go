package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"github.com/AnnaNajafiH/SabaStudio/pkg/auth"
)

// dummyHash は未登録メールのときに比較する。どちらの失敗でも
// bcrypt の比較が 1 回かかるようにする
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("not-a-real-password")
	return h
})

// AuthServiceImpl は AuthService の実装
type AuthServiceImpl struct {
	userRepo     repository.UserRepository
	tokens       TokenIssuer
	storeTimeout time.Duration
	now          func() time.Time
}

// NewAuthService は AuthServiceImpl を生成する（DI: UserRepository と TokenIssuer を注入）
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, storeTimeout time.Duration) AuthService {
	return &AuthServiceImpl{userRepo: userRepo, tokens: tokens, storeTimeout: storeTimeout, now: time.Now}
}

// Signup は新規ユーザーを viewer として登録し、トークンを発行する。
// 既存のメールアドレスは ErrConflict。
func (s *AuthServiceImpl) Signup(ctx context.Context, in SignupInput) (*LoginResult, error) {
	name := stripTags(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return nil, NewValidationError("name", "must be between 2 and 100 characters")
	}
	if err := validatorInstance().Var(email, "required,max=254,email"); err != nil {
		return nil, NewValidationError("email", "must be a valid email address")
	}
	if err := ValidatePassword("password", in.Password); err != nil {
		return nil, err
	}
	if in.ConfirmPassword != in.Password {
		return nil, NewValidationError("confirmPassword", "does not match password")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleViewer,
		IsActive:     true,
	}

	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	// 一意制約でも弾かれるが、先に調べて分かりやすいエラーにする
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("find user", err)
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errEmailTaken
		}
		return nil, storeErr("create user", err)
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	slog.Info("user signed up", "user_id", u.ID, "role", u.Role)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

var errEmailTaken = fmt.Errorf("%w: email address is already registered", ErrConflict)

// Login はメールアドレスとパスワードを検証してトークンを発行する。
// 失敗理由は区別せず ErrUnauthorized を返す。
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, NewValidationError("email", "email and password are required")
	}

	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("find user", err)
	}
	if u == nil {
		auth.CheckPassword(dummyHash(), password)
		slog.Warn("login failed", "reason", "unknown_email")
		return nil, ErrUnauthorized
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		slog.Warn("login failed", "reason", "bad_password", "user_id", u.ID)
		return nil, ErrUnauthorized
	}
	if !u.IsActive {
		slog.Warn("login failed", "reason", "inactive", "user_id", u.ID)
		return nil, ErrUnauthorized
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		slog.Warn("update last login failed", "user_id", u.ID, "error", err)
	} else {
		u.LastLogin = &now
	}
	slog.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// Me はトークンの userID からユーザーを返す
func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*model.User, error) {
	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()

	u, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if !u.IsActive {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// ChangePassword は現在のパスワードを確認してから新しいパスワードに置き換える
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := ValidatePassword("newPassword", next); err != nil {
		return err
	}
	if current == next {
		return NewValidationError("newPassword", "must differ from the current password")
	}

	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return NewValidationError("currentPassword", "is incorrect")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	ctx, cancel := storeCtx(ctx, s.storeTimeout)
	defer cancel()
	if err := s.userRepo.Update(ctx, u); err != nil {
		return storeErr("update password", err)
	}
	slog.Info("password changed", "user_id", u.ID)
	return nil
}
