package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	matching "github.com/archfirst/bullsfirst-exchange"
	"github.com/archfirst/bullsfirst-exchange/api"
	"github.com/archfirst/bullsfirst-exchange/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	matching.SetLogger(logger)

	cfg := LoadConfig()

	orders, prices, cleanup, err := buildStores(cfg, logger)
	if err != nil {
		logger.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	feed := api.NewFeed(logger)
	metrics := api.NewMetrics(prometheus.DefaultRegisterer)

	engine := matching.NewMatchingEngine(
		orders,
		prices,
		matching.NewFanoutOrderEventSink(feed, metrics),
		matching.NewFanoutMarketDataSink(feed, metrics),
	)
	trading := matching.NewTradingService(engine, orders)

	router := api.SetupRoutes(&api.Dependencies{
		Trading: trading,
		Engine:  engine,
		Orders:  orders,
		Prices:  prices,
		Feed:    feed,
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "version", matching.EngineVersion)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildStores wires PostgreSQL-backed stores when a database URL is
// configured and in-memory stores otherwise.
func buildStores(cfg *Config, logger *slog.Logger) (matching.OrderStore, matching.ReferencePriceStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory stores")
		return matching.NewMemoryOrderStore(), matching.NewMemoryReferencePriceStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	if cfg.InitSchema {
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	}

	logger.Info("using postgres stores")
	return postgres.NewOrderStore(db), postgres.NewReferencePriceStore(db), func() { db.Close() }, nil
}
