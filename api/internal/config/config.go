// Package config — конфигурация сервиса: YAML-файл плюс переопределения
// из окружения с префиксом TILBOT_. DSN базы собирается так же, как в
// остальной инфраструктуре: DATABASE_URL либо POSTGRES_*/PG* по частям.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Port string `koanf:"port"`

	// postgres://... или sqlite-файл (file:... / *.db); драйвер выводится
	// из схемы DSN.
	DatabaseURL string `koanf:"database_url"`

	TelegramBotToken string `koanf:"telegram_bot_token"`
	WebhookURL       string `koanf:"webhook_url"`

	// Необязательный внешний набор правил; пусто = встроенный.
	RulesPath string `koanf:"rules_path"`

	LogLevel string `koanf:"log_level"`
}

// Load читает конфиг из YAML-файла (если он есть) и окружения.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := &Config{
		Port:     "8000",
		LogLevel: "info",
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("TILBOT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TILBOT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	// Платформенный PORT имеет приоритет (PaaS-окружения).
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = resolveDSN()
	}
	return cfg, nil
}

// Driver возвращает имя database/sql-драйвера для DSN: pgx для
// postgres://, иначе sqlite.
func (c *Config) Driver() string {
	dsn := strings.ToLower(c.DatabaseURL)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	return "sqlite"
}

// resolveDSN собирает Postgres DSN из DATABASE_URL или POSTGRES_*/PG*.
func resolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	if pass == "" {
		return ""
	}
	user := getenvDefault("POSTGRES_USER", "tilbot")
	host := getenvDefault("PGHOST", "db")
	port := getenvDefault("PGPORT", "5432")
	db := getenvDefault("POSTGRES_DB", "tilbot")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getenvDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// SafeDSNSummary — краткое описание DSN без пароля для логов.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
