package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/config"
	"github.com/AnnaNajafiH/SabaStudio/internal/handler"
	"github.com/AnnaNajafiH/SabaStudio/internal/logging"
	"github.com/AnnaNajafiH/SabaStudio/internal/notify"
	"github.com/AnnaNajafiH/SabaStudio/internal/ratelimit"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository/backend"
	"github.com/AnnaNajafiH/SabaStudio/internal/service"
	"github.com/AnnaNajafiH/SabaStudio/internal/storage"
	"github.com/AnnaNajafiH/SabaStudio/pkg/auth"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	store, err := backend.Open(ctx, cfg.Store)
	if err != nil {
		logging.Fatal("failed to open store", "driver", cfg.Store.Driver, "error", err)
	}
	defer store.Close()

	limiters := newLimiters(ctx, cfg.RateLimit)
	defer limiters.close()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Email.Enabled {
		m, err := notify.NewMailer(notify.SMTPConfig{
			Host:       cfg.Email.SMTPHost,
			Port:       cfg.Email.SMTPPort,
			Username:   cfg.Email.SMTPUser,
			Password:   cfg.Email.SMTPPass,
			From:       cfg.Email.From,
			AdminEmail: cfg.Email.AdminEmail,
			StudioName: cfg.Email.StudioName,
		})
		if err != nil {
			logging.Fatal("failed to configure mailer", "error", err)
		}
		notifier = m
	} else {
		slog.Warn("email notifications disabled (EMAIL_ENABLED=false)")
	}
	dispatcher := notify.NewDispatcher(notifier, 30*time.Second)

	images, uploadDir := newImageStore(ctx, cfg.Upload)

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	projectService := service.NewProjectService(store.Projects, images, cfg.Store.Timeout)
	contactService := service.NewContactService(service.ContactDeps{
		Repo:             store.Contacts,
		IPLimiter:        limiters.contact,
		DuplicateLimiter: limiters.duplicate,
		Dispatcher:       dispatcher,
		Notifier:         notifier,
		StoreTimeout:     cfg.Store.Timeout,
	})
	authService := service.NewAuthService(store.Users, tokens, cfg.Store.Timeout)
	adminUserService := service.NewAdminUserService(store.Users, cfg.Store.Timeout)

	rs := handler.Responder{Dev: cfg.IsDevelopment()}
	if !cfg.Auth.Required {
		slog.Warn("AUTH_REQUIRED=false: every admin route accepts anonymous requests")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Health:            handler.New(store.DB, version, rs),
		Projects:          handler.NewProjectHandler(projectService, rs),
		Images:            handler.NewImageHandler(projectService, cfg.Upload.MaxBytes, rs),
		Contact:           handler.NewContactHandler(contactService, cfg.TrustedProxyCount, rs),
		Auth:              handler.NewAuthHandler(authService, cfg.Auth.CookieSecure, rs),
		Users:             handler.NewAdminUserHandler(adminUserService, rs),
		Tokens:            tokens,
		AllowSignup:       cfg.Auth.AllowSignup,
		AuthRequired:      cfg.Auth.Required,
		AdminLimiter:      limiters.admin,
		LoginLimiter:      limiters.login,
		TrustedProxyCount: cfg.TrustedProxyCount,
		UploadDir:         uploadDir,
		UploadURLPrefix:   cfg.Upload.URLPrefix,
		CORSOrigins:       cfg.CORSOrigins,
		Responder:         rs,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "env", cfg.AppEnv, "store", store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	// 送信中の通知メールを待つ
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		slog.Warn("notifications still pending at shutdown", "error", err)
	}
}

// limiterSet はプロセスで使うレートリミッタ一式。REDIS_URL があれば
// インスタンス間で共有し、なければメモリ上に持つ。
type limiterSet struct {
	contact   ratelimit.Limiter
	duplicate ratelimit.Limiter
	admin     ratelimit.Limiter
	login     ratelimit.Limiter
	closers   []func()
}

func (l *limiterSet) close() {
	for _, c := range l.closers {
		c()
	}
}

func newLimiters(ctx context.Context, cfg config.RateConfig) *limiterSet {
	l := &limiterSet{}

	var client *redis.Client
	if cfg.RedisURL != "" {
		c, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logging.Fatal("failed to connect to redis", "error", err)
		}
		client = c
		l.closers = append(l.closers, func() { _ = c.Close() })
		slog.Info("rate limits shared via redis")
	}

	build := func(max int, window time.Duration) ratelimit.Limiter {
		if client != nil {
			return ratelimit.NewRedis(client, "ratelimit:", max, window)
		}
		m := ratelimit.NewMemory(max, window)
		l.closers = append(l.closers, m.Stop)
		return m
	}

	l.contact = build(cfg.ContactMax, cfg.ContactWindow)
	if cfg.DuplicateWindow > 0 {
		l.duplicate = build(1, cfg.DuplicateWindow)
	}
	if cfg.AdminMax > 0 && cfg.AdminWindow > 0 {
		l.admin = build(cfg.AdminMax, cfg.AdminWindow)
	}
	if cfg.LoginMax > 0 && cfg.LoginWindow > 0 {
		l.login = build(cfg.LoginMax, cfg.LoginWindow)
	}
	return l
}

// newImageStore はアップロード先を返す。ローカル保存の場合は
// 配信するディレクトリも返す。
func newImageStore(ctx context.Context, cfg config.UploadConfig) (*storage.Images, string) {
	switch cfg.Driver {
	case config.UploadMinio:
		s, err := storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			logging.Fatal("failed to configure minio", "error", err)
		}
		if err := s.EnsureBucket(ctx); err != nil {
			logging.Fatal("failed to prepare minio bucket", "error", err)
		}
		return storage.NewImages(s), ""
	default:
		return storage.NewImages(storage.NewLocalStorage(cfg.Dir, cfg.URLPrefix)), cfg.Dir
	}
}
