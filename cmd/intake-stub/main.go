package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-docsubmit/internal/intakestub"
	"github.com/goliatone/go-docsubmit/internal/platform/config"
	"github.com/goliatone/go-docsubmit/internal/platform/logger"
	"github.com/goliatone/go-docsubmit/internal/platform/metrics"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (DOCSUBMIT_* env vars override it)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	status := flag.Int("status", 0, "answer every submission with this HTTP status")
	token := flag.String("token", "", "require this bearer token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("intake-stub: %v", err)
	}
	if *addr != "" {
		cfg.Stub.Addr = *addr
	}
	if *status != 0 {
		cfg.Stub.ForcedStatus = *status
	}
	logs := logger.New(cfg.Log)

	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)

	stub := intakestub.New(
		intakestub.WithLogger(logs),
		intakestub.WithObserver(rec),
		intakestub.WithForcedStatus(cfg.Stub.ForcedStatus),
		intakestub.WithBearerToken(*token),
		intakestub.WithPath(cfg.Intake.Endpoint),
	)

	router := chi.NewRouter()
	router.Handle("/metrics", metrics.Handler(reg))
	router.Mount("/", stub.Handler())

	srv := &http.Server{
		Addr:              cfg.Stub.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logs.Error("shutdown", "error", err)
		}
	}()

	logs.Info("intake stub listening", "addr", cfg.Stub.Addr, "path", cfg.Intake.Endpoint)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("intake-stub: %v", err)
	}
}
