package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexidraft/api/internal/app"
	"lexidraft/api/internal/config"
	"lexidraft/api/internal/email"
	"lexidraft/api/internal/export"
	"lexidraft/api/internal/genai"
	"lexidraft/api/internal/gitrepo"
	"lexidraft/api/internal/search"
	"lexidraft/api/internal/session"
	"lexidraft/api/internal/store"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	pg := store.NewPostgresStore(db)

	if err := os.MkdirAll(cfg.MirrorsDir, 0o755); err != nil {
		log.Fatalf("create mirrors dir: %v", err)
	}

	deps := app.Dependencies{
		Store:    pg,
		Sessions: pg,
		Git:      gitrepo.New(cfg.MirrorsDir),
		Export:   export.NewService(),
	}

	// Refresh sessions live in Redis when it is reachable; otherwise they
	// fall back to the refresh_sessions table.
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Printf("redis unavailable, using postgres for refresh sessions: %v", err)
		} else {
			deps.Sessions = redisStore
			defer redisStore.Close()
		}
	}

	pgfts := search.NewPgFTS(db)
	var meili *search.Meili
	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
	}
	searchSvc := search.NewService(meili, pgfts, pg)
	deps.Search = searchSvc
	if meili != nil {
		go searchSvc.ReindexAllFromPG(ctx)
	}

	if cfg.SMTPHost != "" {
		deps.Email = email.NewService(email.Config{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			From:      cfg.SMTPFrom,
			FromName:  cfg.SMTPFromName,
			EnableTLS: true,
		})
	}

	if cfg.OpenAIAPIKey != "" {
		deps.GenAI = genai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	service := app.New(cfg, deps)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.NewHTTPServer(service, cfg.CORSOrigin).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("api listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
