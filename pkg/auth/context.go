package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity はリクエストのコンテキストに載せる認証済みの呼び出し元
type Identity struct {
	UserID string
	Role   string
}

// WithIdentity は context に認証済みユーザーをセットする
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext は context から認証済みユーザーを取得する
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(identityKey).(Identity)
	return v, ok
}

// UserIDFromContext は context から userID を取得する
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID == "" {
		return "", false
	}
	return id.UserID, true
}

// IsAdminFromContext は呼び出し元が admin ロールかどうかを返す。
// Identity がなければ false
func IsAdminFromContext(ctx context.Context) bool {
	id, ok := IdentityFromContext(ctx)
	return ok && id.Role == RoleAdmin
}
