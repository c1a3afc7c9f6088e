package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
)

// LoginResult はサインイン成功時の結果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// TokenIssuer はセッショントークンに署名する
type TokenIssuer interface {
	Issue(userID, role string) (string, time.Time, error)
}

// SignupInput はユーザー登録の入力
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthService は認証に関するビジネスロジックのインターフェース
type AuthService interface {
	// Signup は viewer ロールのユーザーを作成し、そのままサインインさせる
	Signup(ctx context.Context, in SignupInput) (*LoginResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Me は検証済みトークンの有効なユーザーを返す
	Me(ctx context.Context, userID string) (*model.User, error)
	// ChangePassword は現在のパスワードを確認してから置き換える
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// パスワード長の制約。bcrypt は 72 バイトを超える部分を無視する。
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// ValidatePassword は新しいパスワードの長さを検証する
func ValidatePassword(field, password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError(field, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return NewValidationError(field, fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}
