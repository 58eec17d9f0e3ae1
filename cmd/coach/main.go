package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riverline-agency/coach/internal/api"
	"github.com/riverline-agency/coach/internal/backfill"
	"github.com/riverline-agency/coach/internal/bus"
	"github.com/riverline-agency/coach/internal/config"
	"github.com/riverline-agency/coach/internal/gemini"
	"github.com/riverline-agency/coach/internal/judge"
	"github.com/riverline-agency/coach/internal/orchestrator"
	"github.com/riverline-agency/coach/internal/sink"
	"github.com/riverline-agency/coach/internal/store"
	"github.com/riverline-agency/coach/internal/template"
)

func main() {
	runBackfill := flag.Bool("backfill", false, "re-analyze stored calls missing analysis, then exit")
	backfillDryRun := flag.Bool("backfill-dry-run", false, "backfill without writing to the database")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("coach starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Backfill mode: deterministic re-analysis only, no judge, no NATS.
	if *runBackfill {
		runner := backfill.NewRunner(backfill.Config{DryRun: *backfillDryRun}, db, slog.Default())
		if err := runner.Run(ctx); err != nil {
			slog.Error("backfill failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Gemini client
	if cfg.GeminiAPIKey == "" {
		slog.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	llm := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	slog.Info("gemini client ready", "model", cfg.GeminiModel)

	// Judge
	evaluator := judge.New(llm, slog.Default())

	// NATS
	busClient, err := bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Redis template sink — where the running agent reads its instructions.
	templateSink, err := sink.New(cfg.RedisURL, slog.Default())
	if err != nil {
		slog.Error("failed to configure redis sink", "error", err)
		os.Exit(1)
	}
	defer templateSink.Close()
	if err := templateSink.Ping(ctx); err != nil {
		slog.Error("failed to reach redis", "error", err)
		os.Exit(1)
	}
	slog.Info("redis sink connected")

	// Seed the ledger with the baseline template on first boot.
	if err := seedLedger(ctx, db, templateSink); err != nil {
		slog.Error("failed to seed iteration ledger", "error", err)
		os.Exit(1)
	}

	// Orchestrator — the main pipeline.
	orch := orchestrator.New(db, evaluator, templateSink, busClient, cfg.ImprovementThreshold, slog.Default())

	// Subscribe to call completion events.
	if err := busClient.Subscribe(bus.SubjectCallCompleted, orch.HandleCallCompleted); err != nil {
		slog.Error("failed to subscribe to call events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, orch)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := busClient.Publish("voice.coach.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("coach ready", "port", cfg.Port, "threshold", cfg.ImprovementThreshold)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("coach stopped")
}

// seedLedger writes the baseline template as iteration 1 when the ledger is
// empty, and makes sure the sink serves the current template either way.
func seedLedger(ctx context.Context, db *store.Store, templateSink *sink.Sink) error {
	current, err := db.CurrentIteration(ctx)
	if errors.Is(err, store.ErrNoCurrentIteration) {
		current, err = db.CreateIteration(ctx, template.Seed, template.Hash(template.Seed), 0)
		if err != nil {
			return err
		}
		slog.Info("ledger seeded with baseline template", "iteration", current.IterationNumber)
	} else if err != nil {
		return err
	}

	return templateSink.Publish(ctx, current.TemplateText, current.TemplateHash, current.IterationNumber)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
