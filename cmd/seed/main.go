package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/learninghub-api/internal/application/catalog"
	"github.com/learninghub-api/internal/application/resource"
	"github.com/learninghub-api/internal/application/seed"
	"github.com/learninghub-api/internal/config"
	s3infra "github.com/learninghub-api/internal/infrastructure/s3"
	"github.com/learninghub-api/internal/infrastructure/storage"
	"github.com/learninghub-api/internal/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	source := flag.String("source", "", "fixture location: a file path or s3://bucket/key (default SEED_SOURCE, then the embedded fixture)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	raw := *source
	if raw == "" {
		raw = cfg.Seed.Source
	}
	src, err := seed.ParseSource(raw)
	requireResource(context.Background(), logg, "seed source", err)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"driver": cfg.Store.Driver,
		"source": raw,
	})

	fx, err := loadFixture(ctx, cfg, src)
	requireResource(ctx, logg, "fixture", err)

	policies := resource.NewPolicies(cfg.Collections)
	handle, err := storage.Open(ctx, cfg, storage.Options{Indexes: policies.Indexes(), Logger: logg})
	requireResource(ctx, logg, "document store", err)
	defer func() {
		if err := handle.Close(context.Background()); err != nil {
			logg.Error(ctx, "error closing document store", err)
		}
	}()

	c := catalog.New(handle.Store, policies, catalog.Options{Logger: logg})
	written, err := seed.Run(ctx, map[string]resource.Service{
		seed.KeyUsers:         c.Users,
		seed.KeyCourses:       c.Courses,
		seed.KeyLessons:       c.Lessons,
		seed.KeyQuizzes:       c.Quizzes,
		seed.KeyQuizQuestions: c.QuizQuestions,
		seed.KeyNotifications: c.Notifications,
		seed.KeyQuizResults:   c.QuizResults,
		seed.KeyUserProgress:  c.UserProgress,
	}, fx, logg)
	for key, n := range written {
		fmt.Printf("%-16s %d\n", key, n)
	}
	if err != nil {
		logg.Error(ctx, "seeding finished with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "seeding complete")
}

func loadFixture(ctx context.Context, cfg *config.Config, src seed.Source) (seed.Fixture, error) {
	var r io.ReadCloser
	switch {
	case src.IsS3():
		client, err := s3infra.NewClient(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		r, err = s3infra.NewStore(client, src.Bucket).Download(ctx, src.Key)
		if err != nil {
			return nil, err
		}
	case src.Path != "":
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("open fixture: %w", err)
		}
		r = f
	default:
		return seed.Embedded()
	}
	defer r.Close()
	return seed.Decode(r)
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("failed to initialise %s", name), err)
	os.Exit(1)
}
