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

	"github.com/enat-pos/api/internal/config"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/printing"
	"github.com/enat-pos/api/internal/router"
	"github.com/enat-pos/api/internal/seed"
	"github.com/enat-pos/api/internal/service"
	"github.com/enat-pos/api/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "dev-secret-change-in-production" {
		log.Println("WARNING: running with the default JWT secret")
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	queries := database.New(pool)
	if err := seed.IfEmpty(ctx, queries, cfg.SeedPassword); err != nil {
		log.Fatalf("seed: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	orderSvc := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	categorySvc := service.NewCategoryService(pool, func(db database.DBTX) service.CategoryStore {
		return database.New(db)
	})

	handler := router.New(router.Deps{
		Config:          cfg,
		Store:           queries,
		OrderService:    orderSvc,
		CategoryService: categorySvc,
		Hub:             hub,
		Printer:         printing.NewAgent(cfg.PrintAgentURL),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}
