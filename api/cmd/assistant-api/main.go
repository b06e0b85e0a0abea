package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // sqlite driver (локальная разработка)

	"til-bot/api/internal/assistant"
	"til-bot/api/internal/assistant/kb"
	"til-bot/api/internal/config"
	"til-bot/api/internal/httpserver"
	"til-bot/api/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("TILBOT_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DatabaseURL == "" {
		logger.Fatal("database DSN is empty: set TILBOT_DATABASE_URL, DATABASE_URL or POSTGRES_* env vars")
	}

	db, err := sql.Open(cfg.Driver(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("sql.Open", zap.Error(err))
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("db.Ping", zap.Error(err))
		}
		logger.Info("db connected", zap.String("dsn", config.SafeDSNSummary(cfg.DatabaseURL)))
	}

	rules := kb.Default()
	if cfg.RulesPath != "" {
		rules, err = kb.Load(cfg.RulesPath)
		if err != nil {
			logger.Fatal("rules", zap.Error(err))
		}
	}

	lessons := store.NewLessonRepo(db)
	vocab := store.NewVocabRepo(db)
	engine := assistant.New(lessons, vocab, rules, logger)

	srv := httpserver.New(engine, vocab, db, logger)
	if err := srv.Start("0.0.0.0:" + cfg.Port); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lv, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lv
	}
	return cfg.Build()
}
