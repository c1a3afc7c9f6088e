package auth

import (
	"encoding/json"
	"net/http"
)

func writeFail(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "fail", "message": message})
}

// RequireAuth は認証必須ミドルウェア。トークンを検証し、ユーザーを context にセットする
func RequireAuth(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := TokenFromRequest(r)
			if raw == "" {
				writeFail(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				writeFail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			ctx := WithIdentity(r.Context(), Identity{UserID: claims.Subject, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin は admin ロールを要求する。RequireAuth または DevAuth の内側で使う
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeFail(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !IsAdminFromContext(r.Context()) {
			writeFail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalAuth は有効なトークンがあればユーザーを context にセットし、なければそのまま通す
func OptionalAuth(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := TokenFromRequest(r); raw != "" {
				if claims, err := tokens.Parse(raw); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), Identity{UserID: claims.Subject, Role: claims.Role}))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DevUserID は開発用のダミー userID（AUTH_REQUIRED=false 時に使用）
const DevUserID = "dev-user-id"

// DevAuth は開発用ミドルウェア。ダミーの admin を context にセットする
func DevAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithIdentity(r.Context(), Identity{UserID: DevUserID, Role: RoleAdmin})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
