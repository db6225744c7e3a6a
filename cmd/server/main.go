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

	"github.com/redis/go-redis/v9"

	"rollcall/registry/internal/config"
	"rollcall/registry/internal/db"
	internalhttp "rollcall/registry/internal/http"
	"rollcall/registry/internal/mailer"
	"rollcall/registry/internal/repository"
	"rollcall/registry/internal/repository/memory"
	"rollcall/registry/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	var store repository.Store
	if cfg.DatabaseURL == "" {
		log.Println("no DATABASE_URL, using in-memory store")
		store = memory.New()
	} else {
		if cfg.MigrateOnStart {
			if err := db.Migrate(cfg.DatabaseURL); err != nil {
				log.Fatalf("migrate: %v", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer pool.Close()
		store = repository.NewPostgres(pool)
	}

	sessions := session.NewStore(nil, cfg.LoginTokenTTL)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, sessions disabled: %v", err)
		} else {
			sessions = session.NewStore(redisClient, cfg.LoginTokenTTL)
		}
	}

	var mail mailer.Mailer
	if cfg.SendGridKey != "" {
		mail = mailer.NewSendGrid(cfg.SendGridKey, cfg.MailFromName, cfg.MailFromEmail)
	} else {
		log.Println("no SENDGRID_KEY, logging mail to console")
		mail = mailer.Console{}
	}

	srv := internalhttp.NewServer(cfg, store, mail, sessions)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
