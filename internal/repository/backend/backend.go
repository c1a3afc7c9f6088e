// Package backend opens the repository set selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/config"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository/memory"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository/mongostore"
)

// Backend groups the repositories of one store driver.
type Backend struct {
	Driver   string
	Projects repository.ProjectRepository
	Contacts repository.ContactRepository
	Users    repository.UserRepository
	DB       repository.DB
	close    func()
}

// Close releases the underlying connections.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to the store named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Backend{
			Driver:   cfg.Driver,
			Projects: repository.NewPgProjectRepository(pool),
			Contacts: repository.NewPgContactRepository(pool),
			Users:    repository.NewPgUserRepository(pool),
			DB:       pool,
			close:    pool.Close,
		}, nil

	case config.DriverMongo:
		st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return &Backend{
			Driver:   cfg.Driver,
			Projects: st.Projects(),
			Contacts: st.Contacts(),
			Users:    st.Users(),
			DB:       st,
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := st.Close(ctx); err != nil {
					slog.Warn("mongo disconnect failed", "error", err)
				}
			},
		}, nil

	case config.DriverMemory:
		projects := memory.NewProjectRepository()
		return &Backend{
			Driver:   cfg.Driver,
			Projects: projects,
			Contacts: memory.NewContactRepository(),
			Users:    memory.NewUserRepository(),
			DB:       projects,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
