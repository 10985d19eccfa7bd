package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/superchezzz/daa-ayospila/internal/analytics"
	"github.com/superchezzz/daa-ayospila/internal/config"
	"github.com/superchezzz/daa-ayospila/internal/httpapi"
	"github.com/superchezzz/daa-ayospila/internal/queue"
	"github.com/superchezzz/daa-ayospila/internal/store"
	"github.com/superchezzz/daa-ayospila/internal/store/memory"
	"github.com/superchezzz/daa-ayospila/internal/store/postgres"
	"github.com/superchezzz/daa-ayospila/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()

	shutdownTelemetry := telemetry.Setup("queue-service")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	var customerStore store.CustomerStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer pool.Close()

		pgStore := postgres.NewStore(pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("db schema: %v", err)
		}
		cancel()
		customerStore = pgStore
	} else {
		log.Printf("DB_DSN not set, using in-memory store")
		customerStore = memory.NewStore()
	}

	scheduler := queue.NewScheduler(customerStore, cfg.Weights)
	monitor := queue.NewMonitor(customerStore, cfg.Weights, cfg.StarvationAlertMinutes)
	aggregator := analytics.NewAggregator(customerStore, cfg.Weights, cfg.DayBoundaryHour)
	handler := httpapi.NewHandler(customerStore, scheduler, monitor, aggregator, cfg.Weights)
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(handler.Routes())), "queue-service")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("queue-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
