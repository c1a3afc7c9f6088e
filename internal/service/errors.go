package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
)

var (
	// ErrNotFound は存在しない、または呼び出し元から見えないレコード
	ErrNotFound = errors.New("not found")
	// ErrConflict は一意キーと衝突した書き込み
	ErrConflict = errors.New("conflict")
	// ErrDuplicateSubmission は重複ウィンドウ内に同じメールアドレスから
	// 再送されたお問い合わせ
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	// ErrPersistence はストア障害を包む。詳細はログ専用
	ErrPersistence = errors.New("persistence failure")
)

// FieldError は不正な入力フィールド 1 件
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError は形式や範囲が不正な入力
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError は 1 フィールド分の ValidationError を返す
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// RateLimitError は呼び出し元がウィンドウの上限に達したときのエラー
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

// storeErr はリポジトリのエラーをサービス層のエラーに変換する
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}
}
