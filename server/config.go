package main

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Addr        string
	DatabaseURL string
	DemoUserID  string
	LogLevel    slog.Level
	Seed        bool
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func configFromEnv() Config {
	cfg := Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: getenv("DATABASE_URL", "postgres://postgres:postgres@db:5432/kanby?sslmode=disable"),
		DemoUserID:  getenv("DEMO_USER_ID", "demo-user"),
		LogLevel:    slog.LevelInfo,
	}
	switch strings.ToLower(getenv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	}
	if v := getenv("SEED", "false"); v == "true" || v == "1" {
		cfg.Seed = true
	}
	return cfg
}
