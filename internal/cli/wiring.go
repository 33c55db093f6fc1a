package cli

import (
	"context"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/config"
	"adaptive-quiz-service/internal/extract"
	"adaptive-quiz-service/internal/grading"
	"adaptive-quiz-service/internal/infra/memory"
	"adaptive-quiz-service/internal/infra/postgres"
	redisinfra "adaptive-quiz-service/internal/infra/redis"
	"adaptive-quiz-service/internal/infra/scholar"
	"adaptive-quiz-service/internal/infra/sendgrid"
	"adaptive-quiz-service/internal/infra/sqlite"
	"adaptive-quiz-service/internal/llm"
	"adaptive-quiz-service/internal/logger"
	"adaptive-quiz-service/internal/quizgen"
	"adaptive-quiz-service/internal/report"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// stores holds the persistence collaborators. They are built once at
// process start and closed on shutdown.
type stores struct {
	attempts    app.AttemptStore
	quizzes     app.QuizRepository
	leaderboard app.LeaderboardCache
	closers     []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildStores(ctx context.Context, cfg config.Config, log *logger.Logger) (*stores, error) {
	s := &stores{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { _ = redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
	}

	switch {
	case pool != nil:
		s.attempts = postgres.NewAttemptStore(pool)
		log.Info("attempt store selected", "backend", "postgres")
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = store.Close() })
		s.attempts = store
		log.Info("attempt store selected", "backend", "sqlite", "path", cfg.SQLite.Path)
	default:
		s.attempts = memory.NewAttemptStore()
		log.Warn("attempt store selected", "backend", "memory")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 30*time.Minute)
	leaderboardTTL := config.TTLDuration(cfg.Leaderboard.TTL, time.Minute)
	if redisClient != nil {
		var backend redisinfra.QuizBackend
		if pool != nil {
			backend = postgres.NewQuizStore(pool)
		}
		s.quizzes = redisinfra.NewQuizRepository(redisClient, backend, quizTTL)
		s.leaderboard = redisinfra.NewLeaderboardCache(redisClient, leaderboardTTL)
	} else {
		s.quizzes = memory.NewQuizRepository(quizTTL)
		s.leaderboard = memory.NewLeaderboardCache(leaderboardTTL)
	}
	return s, nil
}

func buildProvider(ctx context.Context, cfg config.LLM) (llm.Provider, error) {
	return llm.NewProvider(ctx, llm.Config{
		Provider: cfg.Provider,
		ProviderConfig: llm.ProviderConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: config.TTLDuration(cfg.Timeout, 60*time.Second),
		},
		Retry: llm.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			InitialWait: config.TTLDuration(cfg.Retry.InitialWait, time.Second),
			MaxWait:     config.TTLDuration(cfg.Retry.MaxWait, 30*time.Second),
			Multiplier:  cfg.Retry.Multiplier,
		},
	})
}

func buildDeliverer(cfg config.Delivery, log *logger.Logger) (app.Deliverer, error) {
	switch cfg.Provider {
	case "sendgrid":
		return sendgrid.New(log, sendgrid.Config{
			APIKey:           cfg.APIKey,
			BaseURL:          cfg.BaseURL,
			DefaultFromEmail: cfg.FromEmail,
			DefaultFromName:  cfg.FromName,
			Subject:          cfg.Subject,
		})
	case "log":
		return sendgrid.NewLogDeliverer(log), nil
	default:
		return nil, fmt.Errorf("unknown delivery provider: %q", cfg.Provider)
	}
}

// buildService wires the quiz pipeline on top of s.
func buildService(ctx context.Context, cfg config.Config, s *stores, log *logger.Logger) (*app.QuizService, error) {
	provider, err := buildProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	log.Info("text generation provider selected", "provider", cfg.LLM.Provider, "model", provider.ModelID())
	gen := quizgen.NewGenerator(provider, cfg.LLM.MaxTokens, cfg.LLM.Temperature)

	var searcher app.MaterialSearcher
	if cfg.Search.APIKey != "" {
		client, err := scholar.New(log, scholar.Config{
			APIKey:  cfg.Search.APIKey,
			BaseURL: cfg.Search.BaseURL,
			Engine:  cfg.Search.Engine,
			Timeout: config.TTLDuration(cfg.Search.Timeout, 20*time.Second),
		})
		if err != nil {
			return nil, err
		}
		searcher = client
	} else {
		log.Warn("study material search disabled, no SerpAPI key configured")
	}

	deliverer, err := buildDeliverer(cfg.Delivery, log)
	if err != nil {
		return nil, err
	}

	records := app.NewRecordManager(s.attempts, s.leaderboard, log)
	return app.NewQuizService(app.Deps{
		Quizzes:      s.quizzes,
		Records:      records,
		Selector:     app.NewStrategySelector(records, gen, log),
		Extractor:    extract.New(extract.GrammarV1{}, log),
		Grader:       grading.NewEngine(gen, log),
		Searcher:     searcher,
		Deliverer:    deliverer,
		Reports:      report.NewFileStore(cfg.Reports.Dir),
		Feed:         app.NewLeaderboardFeed(),
		Log:          log,
		MaxQuestions: cfg.Quiz.MaxQuestions,
	}), nil
}
