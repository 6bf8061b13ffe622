package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-docsubmit"
	"github.com/goliatone/go-docsubmit/internal/platform/config"
	"github.com/goliatone/go-docsubmit/internal/platform/logger"
	"github.com/goliatone/go-docsubmit/internal/platform/metrics"
	platformotel "github.com/goliatone/go-docsubmit/internal/platform/otel"
	"github.com/goliatone/go-docsubmit/pkg/contract"
	"github.com/goliatone/go-docsubmit/pkg/fieldconfig"
	"github.com/goliatone/go-docsubmit/pkg/form"
	"github.com/goliatone/go-docsubmit/pkg/intake"
	"github.com/goliatone/go-docsubmit/pkg/orchestrator"
	"github.com/goliatone/go-docsubmit/pkg/prompt"
	"github.com/goliatone/go-docsubmit/pkg/validation"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (DOCSUBMIT_* env vars override it)")
	baseURL := flag.String("base-url", "", "intake base URL (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *baseURL); err != nil {
		if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
			fmt.Println("Submission cancelled.")
			return
		}
		log.Fatalf("docsubmit: %v", err)
	}
}

func run(ctx context.Context, configPath, baseURL string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.Intake.BaseURL = baseURL
	}
	logs := logger.New(cfg.Log)

	shutdown, err := platformotel.Setup(ctx, cfg.Tracing.Service, cfg.Tracing.Endpoint)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logs.Warn("tracing shutdown", "error", err)
		}
	}()

	rec := serveMetrics(cfg.Metrics.Addr, logs)

	catalogue, err := loadCatalogue(cfg.Form.ConfigPath)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, cfg, logs)
	if err != nil {
		return err
	}

	store := docsubmit.NewStore(form.WithLogger(logs))
	orchestratorOpts := []orchestrator.Option{
		orchestrator.WithSchema(newSchema(cfg.Form)),
		orchestrator.WithLogger(logs),
	}
	if rec != nil {
		orchestratorOpts = append(orchestratorOpts, orchestrator.WithMetrics(rec))
	}
	submitter, err := orchestrator.New(store, client, orchestratorOpts...)
	if err != nil {
		return err
	}

	driver := prompt.NewSurveyDriver(os.Stdout)
	runner, err := prompt.NewRunner(driver, store, prompt.WithCatalogue(catalogue))
	if err != nil {
		return err
	}

	for {
		if err := runner.Run(ctx); err != nil {
			return err
		}

		outcome, err := submitter.Submit(ctx)
		switch outcome.Status {
		case orchestrator.StatusSubmitted:
			if err != nil {
				logs.Warn("form reset failed", "error", err)
			}
			return driver.Info(ctx, fmt.Sprintf("Form submitted successfully (submission %s).", outcome.Response.SubmissionID))
		case orchestrator.StatusRejected:
			if err := runner.ShowErrors(ctx, outcome.Errors); err != nil {
				return err
			}
		default:
			if err == nil {
				err = outcome.Err
			}
			if infoErr := driver.Info(ctx, describeFailure(err)); infoErr != nil {
				return infoErr
			}
		}

		again, err := driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Review your answers and try again?", Default: true})
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

func loadCatalogue(path string) (*fieldconfig.Catalogue, error) {
	if path == "" {
		return fieldconfig.Default()
	}
	return fieldconfig.LoadFile(path)
}

func newSchema(cfg config.Form) *validation.Schema {
	opts := []validation.Option{
		validation.WithMinimumAge(cfg.MinimumAge),
		validation.WithMinimumDocuments(cfg.MinimumDocuments),
	}
	if cfg.StrictPermanentAddress {
		opts = append(opts, validation.WithPermanentAddressRequired())
	}
	return validation.New(opts...)
}

func newClient(ctx context.Context, cfg config.Config, logs *slog.Logger) (*intake.HTTPClient, error) {
	var (
		ct  *contract.Contract
		err error
	)
	if cfg.Intake.Contract != "" {
		data, readErr := os.ReadFile(cfg.Intake.Contract)
		if readErr != nil {
			return nil, fmt.Errorf("read contract: %w", readErr)
		}
		ct, err = contract.Load(ctx, data)
	} else {
		ct, err = contract.Default(ctx)
	}
	if err != nil {
		return nil, err
	}

	return intake.NewHTTPClient(cfg.Intake.BaseURL,
		intake.WithContract(ct, contract.DefaultOperationID),
		intake.WithEndpoint(cfg.Intake.Endpoint),
		intake.WithTimeout(cfg.Intake.Timeout),
		intake.WithBearerToken(cfg.Intake.Token),
		intake.WithLogger(logs),
	)
}

func serveMetrics(addr string, logs *slog.Logger) *metrics.Metrics {
	if addr == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logs.Error("metrics listener stopped", "error", err)
		}
	}()
	return rec
}

func describeFailure(err error) string {
	var te *intake.TransportError
	switch {
	case errors.As(err, &te) && te.Kind == intake.KindRejected:
		return fmt.Sprintf("The intake service rejected the submission (HTTP %d). Your answers were kept.", te.StatusCode)
	case intake.IsNetwork(err):
		return "Could not reach the intake service. Your answers were kept."
	case errors.Is(err, intake.ErrContractViolation):
		return fmt.Sprintf("The submission is incomplete: %v", err)
	default:
		return fmt.Sprintf("Submission failed: %v", err)
	}
}
