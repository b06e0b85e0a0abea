package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // sqlite driver (локальная разработка)

	"til-bot/api/internal/assistant"
	"til-bot/api/internal/assistant/kb"
	"til-bot/api/internal/config"
	"til-bot/api/internal/store"
	"til-bot/api/internal/telegram"
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
	// connection pool tune (нагрузка до ~20 rps)
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

	rules, err := loadRules(cfg.RulesPath)
	if err != nil {
		logger.Fatal("rules", zap.Error(err))
	}

	lessons := store.NewLessonRepo(db)
	vocab := store.NewVocabRepo(db)
	engine := assistant.New(lessons, vocab, rules, logger)

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("telegram auth", zap.Error(err))
	}
	bot.Debug = false
	logger.Info("bot authorized", zap.String("username", bot.Self.UserName))

	r := &telegram.Router{Bot: bot, Engine: engine, Log: logger}

	// --- HTTP mux (DefaultServeMux) ---
	// ListenForWebhook регистрирует обработчик на default mux, поэтому
	// healthz вешаем туда же.
	http.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := "0.0.0.0:" + cfg.Port

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(addr, bot, r, webhookURL, logger)
	} else {
		startPollingMode(addr, bot, r, logger)
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

func loadRules(path string) (*kb.Ruleset, error) {
	if path == "" {
		return kb.Default(), nil
	}
	return kb.Load(path)
}

// ---------------- Modes -----------------

func startWebhookMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, logger *zap.Logger) {
	// секретный путь вебхука
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		logger.Fatal("webhook url", zap.Error(err))
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		logger.Fatal("set webhook", zap.Error(err))
	}

	updates := bot.ListenForWebhook(path)

	go func() {
		for upd := range updates {
			r.HandleUpdate(upd)
		}
		logger.Info("webhook updates channel closed")
	}()

	logger.Info("webhook listening", zap.String("addr", addr), zap.String("path", path))
	if err := http.ListenAndServe(addr, nil); err != nil { // DefaultServeMux
		logger.Fatal("http server", zap.Error(err))
	}
}

func startPollingMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, logger *zap.Logger) {
	// healthz нужен и в polling-режиме: по нему живёт контейнер
	go func() {
		logger.Info("health server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil { // DefaultServeMux
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	// Устойчивый поллинг с backoff без log.Fatal/os.Exit
	runPolling(context.Background(), bot, logger, r.HandleUpdate)
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 от Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return 2 * time.Second
		}
	}
	return 1 * time.Second
}

func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, logger *zap.Logger, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := retryDelayFromError(err)
			if d < baseDelay {
				d = baseDelay
			}
			if d > maxDelay {
				d = maxDelay
			}
			logger.Warn("polling error", zap.Error(err), zap.Duration("retry_in", d))
			time.Sleep(d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			time.Sleep(200 * time.Millisecond)
		}
	}
}

// ---------------- Helpers -----------------

func shortHash(s string) string {
	// лёгкий хэш для пути вебхука (не крипто, но стабильно для токена)
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	// 16-символный hex
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
