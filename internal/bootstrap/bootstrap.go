package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/lab-grader/internal/config"
	"github.com/kirillkom/lab-grader/internal/core/ports"
	"github.com/kirillkom/lab-grader/internal/core/usecase"
	"github.com/kirillkom/lab-grader/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/lab-grader/internal/infrastructure/extractor/passthrough"
	"github.com/kirillkom/lab-grader/internal/infrastructure/llm/anthropic"
	"github.com/kirillkom/lab-grader/internal/infrastructure/queue/nats"
	"github.com/kirillkom/lab-grader/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/lab-grader/internal/infrastructure/resilience"
	"github.com/kirillkom/lab-grader/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.BatchRepository
	CreateUC *usecase.CreateBatchUseCase
	GradeUC  *usecase.GradeBatchUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewBatchRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	mirror, err := localfs.NewMirror(cfg.MirrorPath)
	if err != nil {
		return nil, fmt.Errorf("init result mirror: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	rubric, err := config.LoadRubric(cfg.RubricPath)
	if err != nil {
		return nil, fmt.Errorf("load rubric: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		Backoff:          resilience.LinearBackoff(cfg.RetryBaseDelay),
	})
	grader := anthropic.New(cfg.AnthropicAPIKey, cfg.GraderModel, cfg.GraderMaxTokens, rubric, executor)

	createUC := usecase.NewCreateBatchUseCase(repo, storage, queue)
	gradeUC := usecase.NewGradeBatchUseCase(
		repo, storage,
		docx.New(), passthrough.New(),
		grader, mirror,
		cfg.InterRequestDelay, logger,
	)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Repo:     repo,
		CreateUC: createUC,
		GradeUC:  gradeUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
