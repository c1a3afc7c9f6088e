package handler

import (
	"net/http"
	"strings"

	"github.com/AnnaNajafiH/SabaStudio/internal/ratelimit"
	"github.com/AnnaNajafiH/SabaStudio/pkg/auth"
)

// RouterConfig は NewRouter が組み立てる部品一式
type RouterConfig struct {
	Health   *Handler
	Projects *ProjectHandler
	Images   *ImageHandler
	Contact  *ContactHandler
	Auth     *AuthHandler
	// Users は任意。nil ならユーザー管理のルートは登録しない
	Users *AdminUserHandler

	Tokens *auth.Tokens
	// AllowSignup が true なら POST /api/v1/auth/signup を登録する
	AllowSignup bool
	// AuthRequired=false ならトークン検証の代わりに DevAuth を使う（開発用）
	AuthRequired bool

	// nil の場合その制限は無効
	AdminLimiter      ratelimit.Limiter
	LoginLimiter      ratelimit.Limiter
	TrustedProxyCount int

	// UploadDir が設定されていれば UploadURLPrefix 配下で配信する（ローカル画像保存）
	UploadDir       string
	UploadURLPrefix string

	CORSOrigins []string
	Responder   Responder
}

// NewRouter は全ルートを登録した http.Handler を返す
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	optional := auth.OptionalAuth(cfg.Tokens)
	authn := auth.RequireAuth(cfg.Tokens)
	if !cfg.AuthRequired {
		authn = auth.DevAuth
	}
	admin := func(h http.HandlerFunc) http.Handler {
		mw := []func(http.Handler) http.Handler{authn, auth.RequireAdmin}
		if cfg.AdminLimiter != nil {
			mw = append(mw, RateLimit(cfg.AdminLimiter, "admin", cfg.TrustedProxyCount))
		}
		return Chain(h, mw...)
	}
	public := func(h http.HandlerFunc) http.Handler { return optional(h) }

	mux.HandleFunc("GET /api/health", cfg.Health.Health)
	mux.HandleFunc("GET /api/v1", cfg.Health.Index)

	// プロジェクト API（一覧・詳細は認証不要。admin トークンがあれば非公開も見える）
	p := cfg.Projects
	mux.Handle("GET /api/v1/projects", public(p.List))
	mux.Handle("GET /api/v1/projects/featured", public(p.Featured))
	mux.Handle("GET /api/v1/projects/categories", public(p.Categories))
	mux.Handle("GET /api/v1/projects/category/{category}", public(p.ByCategory))
	mux.Handle("GET /api/v1/projects/{idOrSlug}", public(p.Get))
	mux.Handle("POST /api/v1/projects", admin(p.Create))
	mux.Handle("PUT /api/v1/projects/{id}", admin(p.Update))
	mux.Handle("DELETE /api/v1/projects/{id}", admin(p.Delete))
	mux.Handle("PATCH /api/v1/projects/{id}/featured", admin(p.ToggleFeatured))
	mux.Handle("PATCH /api/v1/projects/{id}/published", admin(p.TogglePublished))
	if cfg.Images != nil {
		mux.Handle("POST /api/v1/projects/{id}/images", admin(cfg.Images.Upload))
	}

	// お問い合わせ API（送信は公開、IP 制限はサービス側）
	c := cfg.Contact
	mux.HandleFunc("POST /api/v1/contact", c.Submit)
	mux.Handle("GET /api/v1/contact", admin(c.List))
	mux.Handle("POST /api/v1/contact/test-email", admin(c.TestEmail))
	mux.Handle("GET /api/v1/contact/{id}", admin(c.Get))
	mux.Handle("PUT /api/v1/contact/{id}/status", admin(c.SetStatus))
	mux.Handle("DELETE /api/v1/contact/{id}", admin(c.Delete))

	// 認証 API
	login := http.Handler(http.HandlerFunc(cfg.Auth.Login))
	if cfg.LoginLimiter != nil {
		login = RateLimit(cfg.LoginLimiter, "login", cfg.TrustedProxyCount)(login)
	}
	mux.Handle("POST /api/v1/auth/login", login)
	if cfg.AllowSignup {
		signup := http.Handler(http.HandlerFunc(cfg.Auth.Signup))
		if cfg.LoginLimiter != nil {
			signup = RateLimit(cfg.LoginLimiter, "signup", cfg.TrustedProxyCount)(signup)
		}
		mux.Handle("POST /api/v1/auth/signup", signup)
	}
	mux.HandleFunc("POST /api/v1/auth/logout", cfg.Auth.Logout)
	mux.Handle("GET /api/v1/auth/me", authn(http.HandlerFunc(cfg.Auth.Me)))
	mux.Handle("PUT /api/v1/auth/password", authn(http.HandlerFunc(cfg.Auth.ChangePassword)))

	// ユーザー管理 API（admin のみ）
	if u := cfg.Users; u != nil {
		mux.Handle("GET /api/v1/users", admin(u.List))
		mux.Handle("GET /api/v1/users/{id}", admin(u.Get))
		mux.Handle("PATCH /api/v1/users/{id}", admin(u.Update))
		mux.Handle("DELETE /api/v1/users/{id}", admin(u.Delete))
	}

	if cfg.UploadDir != "" {
		prefix := strings.TrimRight(cfg.UploadURLPrefix, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(cfg.UploadDir)))))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		cfg.Responder.fail(w, http.StatusNotFound, "Route "+r.URL.Path+" not found")
	})

	return Chain(mux,
		RequestID,
		RequestLogger,
		Recovery(cfg.Responder),
		SecurityHeaders,
		CORS(cfg.CORSOrigins),
	)
}

// noDirListing は http.FileServer のディレクトリ一覧を隠す
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
