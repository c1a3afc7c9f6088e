// create-admin は管理者アカウントを作成する。既存ユーザーの場合はパスワードを更新し admin に昇格する。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/config"
	"github.com/AnnaNajafiH/SabaStudio/internal/logging"
	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository/backend"
	"github.com/AnnaNajafiH/SabaStudio/internal/service"
	"github.com/AnnaNajafiH/SabaStudio/pkg/auth"
)

func main() {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	email := fs.String("email", os.Getenv("ADMIN_EMAIL"), "admin email (ADMIN_EMAIL)")
	name := fs.String("name", envOr("ADMIN_NAME", "Administrator"), "display name (ADMIN_NAME)")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "password, 8 to 72 bytes (ADMIN_PASSWORD)")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.Store.Driver == config.DriverMemory {
		logging.Fatal("create-admin needs a persistent store", "driver", cfg.Store.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := backend.Open(ctx, cfg.Store)
	if err != nil {
		logging.Fatal("failed to open store", "driver", cfg.Store.Driver, "error", err)
	}
	defer store.Close()

	user, created, err := ensureAdmin(ctx, store.Users, *email, *name, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create-admin:", err)
		fs.PrintDefaults()
		os.Exit(1)
	}
	if created {
		fmt.Printf("Admin user %q created (id %s).\n", user.Email, user.ID)
	} else {
		fmt.Printf("User %q updated and granted the admin role.\n", user.Email)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ensureAdmin は email のユーザーを admin として用意する。作成した場合 created=true を返す。
func ensureAdmin(ctx context.Context, users repository.UserRepository, email, name, password string) (*model.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, false, errors.New("a valid -email is required")
	}
	if err := service.ValidatePassword("password", password); err != nil {
		return nil, false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.PasswordHash = hash
		existing.Role = model.RoleAdmin
		existing.IsActive = true
		if name != "" {
			existing.Name = name
		}
		if err := users.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("update user: %w", err)
		}
		return existing, false, nil
	case errors.Is(err, repository.ErrNotFound):
		if name == "" {
			name = "Administrator"
		}
		u := &model.User{
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			IsActive:     true,
		}
		if err := users.Create(ctx, u); err != nil {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
		return u, true, nil
	default:
		return nil, false, fmt.Errorf("find user: %w", err)
	}
}
