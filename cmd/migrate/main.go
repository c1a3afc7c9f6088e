// migrate は migrations/ 配下の SQL を PostgreSQL に適用する。
// 各マイグレーションは 1 トランザクションで実行し、schema_migrations に記録する。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/config"
	"github.com/AnnaNajafiH/SabaStudio/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const dropAllFile = "000_drop_all.sql"

const usageText = `Usage: migrate [-dir migrations] [command]

Commands:
  up          未適用のマイグレーションを順番に適用（既定）
  down        最後に適用したマイグレーションを 1 つ戻す
  status      適用済み・未適用の一覧を表示
  fresh       全テーブルを DROP してから全マイグレーションを適用`

// migration は 1 組の up/down SQL ファイル
type migration struct {
	name string
	up   string
	down string // 空なら戻せない
}

func main() {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dir := fs.String("dir", "", "migrations directory (default: ./migrations or ../migrations)")
	fs.Usage = func() { fmt.Fprintln(os.Stderr, usageText) }
	_ = fs.Parse(os.Args[1:])

	_ = godotenv.Load()
	_ = godotenv.Load("../.env")
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = config.Default().Store.DatabaseURL
	}
	if *dir == "" {
		*dir = findMigrationDir()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	m := &migrator{pool: pool, dir: *dir}
	if err := m.ensureTable(ctx); err != nil {
		logging.Fatal("prepare schema_migrations failed", "error", err)
	}

	switch cmd := fs.Arg(0); cmd {
	case "", "up":
		err = m.up(ctx)
	case "down":
		err = m.down(ctx)
	case "status":
		err = m.status(ctx, os.Stdout)
	case "fresh":
		if err = m.dropAll(ctx); err == nil {
			err = m.up(ctx)
		}
	default:
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		logging.Fatal("migrate failed", "error", err)
	}
}

func findMigrationDir() string {
	for _, dir := range []string{"migrations", "../migrations"} {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return dir
		}
	}
	return "migrations"
}

// loadMigrations は dir 内の *.up.sql を名前順に返し、対応する .down.sql を紐付ける
func loadMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	downs := make(map[string]string)
	var list []migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch name := e.Name(); {
		case strings.HasSuffix(name, ".up.sql"):
			list = append(list, migration{
				name: strings.TrimSuffix(name, ".up.sql"),
				up:   filepath.Join(dir, name),
			})
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = filepath.Join(dir, name)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].name < list[j].name })
	for i := range list {
		list[i].down = downs[list[i].name]
	}
	return list, nil
}

type migrator struct {
	pool *pgxpool.Pool
	dir  string
}

func (m *migrator) ensureTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

// applied は適用済みマイグレーション名と適用日時を返す
func (m *migrator) applied(ctx context.Context) (map[string]time.Time, error) {
	rows, err := m.pool.Query(ctx, `SELECT name, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]time.Time)
	for rows.Next() {
		var (
			name string
			at   time.Time
		)
		if err := rows.Scan(&name, &at); err != nil {
			return nil, err
		}
		done[name] = at
	}
	return done, rows.Err()
}

// exec は SQL ファイルと schema_migrations の更新を 1 トランザクションで行う
func (m *migrator) exec(ctx context.Context, file, record string, args ...any) error {
	sql, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, record, args...)
		return err
	})
}

func (m *migrator) up(ctx context.Context) error {
	list, err := loadMigrations(m.dir)
	if err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, mg := range list {
		if _, ok := done[mg.name]; ok {
			continue
		}
		if err := m.exec(ctx, mg.up, `INSERT INTO schema_migrations (name) VALUES ($1)`, mg.name); err != nil {
			return fmt.Errorf("apply %s: %w", mg.name, err)
		}
		count++
		slog.Info("migration applied", "migration", mg.name)
	}
	if count == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", count)
	}
	return nil
}

func (m *migrator) down(ctx context.Context) error {
	list, err := loadMigrations(m.dir)
	if err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	// 名前順で最後の適用済みマイグレーションを戻す
	for i := len(list) - 1; i >= 0; i-- {
		mg := list[i]
		if _, ok := done[mg.name]; !ok {
			continue
		}
		if mg.down == "" {
			return fmt.Errorf("%s has no .down.sql", mg.name)
		}
		if err := m.exec(ctx, mg.down, `DELETE FROM schema_migrations WHERE name = $1`, mg.name); err != nil {
			return fmt.Errorf("revert %s: %w", mg.name, err)
		}
		slog.Info("migration reverted", "migration", mg.name)
		return nil
	}
	return errors.New("nothing to revert")
}

func (m *migrator) status(ctx context.Context, w io.Writer) error {
	list, err := loadMigrations(m.dir)
	if err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tMIGRATION\tAPPLIED AT")
	for _, mg := range list {
		if at, ok := done[mg.name]; ok {
			fmt.Fprintf(tw, "applied\t%s\t%s\n", mg.name, at.Format(time.RFC3339))
		} else {
			fmt.Fprintf(tw, "pending\t%s\t-\n", mg.name)
		}
	}
	return tw.Flush()
}

func (m *migrator) dropAll(ctx context.Context) error {
	sql, err := os.ReadFile(filepath.Join(m.dir, dropAllFile))
	if err != nil {
		return err
	}
	slog.Warn("dropping all tables")
	if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}
	// 000_drop_all.sql は schema_migrations も消すので作り直す
	return m.ensureTable(ctx)
}
