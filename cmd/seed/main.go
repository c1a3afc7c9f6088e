// seed はサンプルプロジェクトを YAML から読み込み ProjectService 経由で登録する。
// 同じ slug のプロジェクトが既にある場合はスキップするので何度実行してもよい。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/config"
	"github.com/AnnaNajafiH/SabaStudio/internal/logging"
	"github.com/AnnaNajafiH/SabaStudio/internal/repository/backend"
	"github.com/AnnaNajafiH/SabaStudio/internal/service"
	"github.com/AnnaNajafiH/SabaStudio/pkg/slug"
	"gopkg.in/yaml.v3"
)

// seedProject は YAML 上の 1 プロジェクト
type seedProject struct {
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	FullDescription string   `yaml:"fullDescription"`
	Category        string   `yaml:"category"`
	Status          string   `yaml:"status"`
	Images          []string `yaml:"images"`
	ThumbnailImage  string   `yaml:"thumbnailImage"`
	Location        string   `yaml:"location"`
	Year            int      `yaml:"year"`
	Client          string   `yaml:"client"`
	Area            *float64 `yaml:"area"`
	Budget          *float64 `yaml:"budget"`
	Tags            []string `yaml:"tags"`
	Featured        bool     `yaml:"featured"`
	Published       *bool    `yaml:"published"`
}

type seedFile struct {
	Projects []seedProject `yaml:"projects"`
}

func (p seedProject) input() service.ProjectInput {
	in := service.ProjectInput{
		Title:           &p.Title,
		Description:     &p.Description,
		FullDescription: &p.FullDescription,
		Category:        &p.Category,
		Images:          &p.Images,
		ThumbnailImage:  &p.ThumbnailImage,
		Location:        &p.Location,
		Year:            &p.Year,
		Client:          &p.Client,
		Area:            p.Area,
		Budget:          p.Budget,
		Tags:            &p.Tags,
		Featured:        &p.Featured,
		Published:       p.Published,
	}
	if p.Status != "" {
		in.Status = &p.Status
	}
	return in
}

func main() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "seed/projects.yaml", "YAML file with a top-level projects list")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.Store.Driver == config.DriverMemory {
		logging.Fatal("seed needs a persistent store", "driver", cfg.Store.Driver)
	}

	f, err := os.Open(*file)
	if err != nil {
		logging.Fatal("failed to open seed file", "file", *file, "error", err)
	}
	projects, err := loadSeed(f)
	_ = f.Close()
	if err != nil {
		logging.Fatal("failed to parse seed file", "file", *file, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := backend.Open(ctx, cfg.Store)
	if err != nil {
		logging.Fatal("failed to open store", "driver", cfg.Store.Driver, "error", err)
	}
	defer store.Close()

	svc := service.NewProjectService(store.Projects, nil, cfg.Store.Timeout)
	created, skipped, err := seed(ctx, svc, projects)
	if err != nil {
		logging.Fatal("seed failed", "created", created, "error", err)
	}
	slog.Info("seed completed", "created", created, "skipped", skipped)
}

func loadSeed(r io.Reader) ([]seedProject, error) {
	var sf seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, err
	}
	if len(sf.Projects) == 0 {
		return nil, errors.New("no projects in seed file")
	}
	return sf.Projects, nil
}

// seed は未登録のプロジェクトだけを作成する
func seed(ctx context.Context, svc service.ProjectService, projects []seedProject) (created, skipped int, err error) {
	for i, p := range projects {
		s := slug.Make(p.Title)
		if _, err := svc.Get(ctx, s, true); err == nil {
			skipped++
			slog.Debug("project already present", "slug", s)
			continue
		} else if !errors.Is(err, service.ErrNotFound) {
			return created, skipped, fmt.Errorf("look up %q: %w", s, err)
		}
		if _, err := svc.Create(ctx, p.input()); err != nil {
			return created, skipped, fmt.Errorf("project %d (%q): %w", i+1, p.Title, err)
		}
		created++
	}
	return created, skipped, nil
}
