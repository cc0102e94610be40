package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"marketlens/internal/alert"
	"marketlens/internal/candles"
	"marketlens/internal/foreclog"
	"marketlens/internal/interfaces"
	"marketlens/internal/llm/llmobs"
	"marketlens/internal/llm/noop"
	"marketlens/internal/llm/openai"
	"marketlens/internal/logger"
	"marketlens/internal/predictor"
	"marketlens/internal/server"
	"marketlens/internal/store"
	"marketlens/internal/stream"
	"marketlens/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	must(logger.Init())
	must(trace.Init())

	cfg, err := store.LoadConfig("config.yaml")
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if v := os.Getenv("FORECAST_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		_ = foreclog.CompressOlder(n)
	}

	source := buildCandleSource(cfg)
	model := llmobs.Wrap(buildForecaster(cfg))

	registry := predictor.NewRegistry()
	pred := predictor.New(cfg, source, model, registry)

	feed := stream.New(cfg.Binance.StreamURL, cfg.Binance.Symbols,
		stream.WithReconnectDelay(cfg.ReconnectDelay()))
	feed.Start(ctx)

	alerts := alert.New(feed, registry, cfg.Alert.ThresholdPct)

	router := server.New(source, pred, feed, alerts).Router(cfg.Server.AllowedOrigins)
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "HTTP server shutdown failed", err)
	}
	<-feed.Done()
	_ = trace.Shutdown(shutdownCtx)
}

func buildCandleSource(cfg *store.Config) interfaces.CandleSource {
	var source interfaces.CandleSource = candles.NewBinance(candles.Config{
		BaseURL: cfg.Binance.BaseURL,
		Symbols: cfg.Binance.Symbols,
	}, &http.Client{Timeout: cfg.HTTPTimeout()})

	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		source = candles.NewCached(source, rdb, cfg.CacheTTL())
	}
	return source
}

func buildForecaster(cfg *store.Config) interfaces.Forecaster {
	if cfg.LLM.Provider == "OPENAI" {
		return openai.NewClient(cfg)
	}
	return noop.NewForecaster()
}
