// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/tcg2i/tcg-service/internal/auth"
	"github.com/tcg2i/tcg-service/internal/cache"
	"github.com/tcg2i/tcg-service/internal/config"
	"github.com/tcg2i/tcg-service/internal/database"
	"github.com/tcg2i/tcg-service/internal/entitlement"
	"github.com/tcg2i/tcg-service/internal/handlers"
	"github.com/tcg2i/tcg-service/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Env == "dev" {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()

	store, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("failed to ensure schema: %v", err)
	}

	authSvc, err := auth.New(cfg.SessionTTL)
	if err != nil {
		logger.Fatalf("failed to init auth: %v", err)
	}

	// Redis is optional; without it card queries hit Postgres directly and
	// pack-open auditing is disabled.
	var rdb *cache.Cache
	var audit handlers.AuditPublisher
	if cfg.RedisAddr != "" {
		rdb, err = cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.PackAuditQueue, cfg.CardCacheTTL, logger)
		if err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		audit = rdb
	}
	cards := &cache.CardCache{Inner: store, Cache: rdb}

	entitlements := entitlement.NewService(store)

	srv := handlers.New(logger, authSvc, store, cards, entitlements, audit, cfg.Client)

	// No write timeout: /user/ws connections are long-lived.
	server := &http.Server{
		Handler:           middleware.LogMiddleware(logger)(srv.Routes()),
		ReadHeaderTimeout: time.Second * 10,
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
}
