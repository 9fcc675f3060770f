package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	cfg := configFromEnv()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Error("db open", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Error("db ping", "err", err)
		os.Exit(1)
	}

	store := NewStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		log.Error("migrate", "err", err)
		os.Exit(1)
	}
	if cfg.Seed {
		if err := seedDemo(context.Background(), store, cfg.DemoUserID); err != nil {
			log.Error("seed", "err", err)
			os.Exit(1)
		}
		log.Info("seeded demo data", "user", cfg.DemoUserID)
	}

	api := newAPI(store, log, cfg.DemoUserID)

	// WriteTimeout stays zero so SSE streams are not cut off.
	srv := &http.Server{Addr: cfg.Addr, Handler: api.router(),
		ReadTimeout: 15 * time.Second, ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second}

	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			log.Error("listen", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	log.Info("shutting down")
	ctxSh, cancelSh := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSh()
	if err := srv.Shutdown(ctxSh); err != nil {
		log.Error("shutdown", "err", err)
	}
}
