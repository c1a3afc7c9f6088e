package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/service"
	"github.com/AnnaNajafiH/SabaStudio/pkg/auth"
)

// AuthHandler は管理者ログインのハンドラ
type AuthHandler struct {
	authService  service.AuthService
	secureCookie bool
	rs           Responder
}

// NewAuthHandler は AuthHandler を生成する。secureCookie は HTTPS 配信時に true
func NewAuthHandler(authService service.AuthService, secureCookie bool, rs Responder) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie, rs: rs}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, expires time.Time, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// Signup は POST /api/v1/auth/signup を処理する。成功時は Login と同じく Cookie を設定する
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.err(w, r, err)
		return
	}
	res, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.setCookie(w, res.Token, res.ExpiresAt, int(time.Until(res.ExpiresAt).Seconds()))
	h.rs.success(w, http.StatusCreated, "Account created successfully", res)
}

// Login は POST /api/v1/auth/login を処理する
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.err(w, r, err)
		return
	}
	res, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrUnauthorized) {
		h.rs.fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.setCookie(w, res.Token, res.ExpiresAt, int(time.Until(res.ExpiresAt).Seconds()))
	h.rs.success(w, http.StatusOK, "Login successful", res)
}

// Logout は POST /api/v1/auth/logout を処理する。Cookie を削除する
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, "", time.Unix(0, 0), -1)
	h.rs.success(w, http.StatusOK, "Logged out successfully", nil)
}

// Me は GET /api/v1/auth/me を処理する（RequireAuth の内側）
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.rs.fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "", user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword は PUT /api/v1/auth/password を処理する（RequireAuth の内側）
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.rs.fail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.err(w, r, err)
		return
	}
	if err := h.authService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.rs.err(w, r, err)
		return
	}
	h.rs.success(w, http.StatusOK, "Password updated successfully", nil)
}
