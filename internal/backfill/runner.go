package backfill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverline-agency/coach/internal/analysis"
	"github.com/riverline-agency/coach/internal/store"
)

// Store is the persistence surface the backfill runner needs.
type Store interface {
	CallsMissingAnalysis(ctx context.Context, afterRoomID string, limit int) ([]store.CallRecord, error)
	UpsertCall(ctx context.Context, rec store.CallRecord) (uuid.UUID, error)
}

// Config holds the backfill command configuration.
type Config struct {
	BatchSize int
	DryRun    bool
	StatePath string
}

// Runner re-runs the deterministic analyzer over stored calls that are
// missing analysis. It never triggers improvement cycles; the judge and the
// ledger are left alone.
type Runner struct {
	cfg    Config
	store  Store
	logger *slog.Logger
}

func NewRunner(cfg Config, s Store, logger *slog.Logger) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Runner{cfg: cfg, store: s, logger: logger}
}

// Run scans calls in room-id order from the saved cursor and fills in the
// missing analysis. State is saved after every batch so an interrupted run
// resumes where it left off.
func (r *Runner) Run(ctx context.Context) error {
	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("backfill interrupted, saving state", "cursor", state.Cursor)
			_ = state.Save()
			return ctx.Err()
		default:
		}

		batch, err := r.store.CallsMissingAnalysis(ctx, state.Cursor, r.cfg.BatchSize)
		if err != nil {
			_ = state.Save()
			return fmt.Errorf("scan calls: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			state.Cursor = rec.RoomID

			risk := analysis.AnalyzeRisk(rec.Segments)
			perf := analysis.AnalyzePerformance(rec.Segments)
			rec.Risk = &risk
			rec.Performance = &perf
			rec.Suggestions = analysis.Suggestions(risk, perf)
			rec.ProcessingStatus = "backfilled"

			if r.cfg.DryRun {
				r.logger.Info("would analyze call",
					"room_id", rec.RoomID,
					"risk_level", risk.RiskLevel,
				)
				continue
			}

			if _, err := r.store.UpsertCall(ctx, rec); err != nil {
				r.logger.Error("persist failed", "room_id", rec.RoomID, "error", err)
				state.AddError(fmt.Sprintf("persist %s: %v", rec.RoomID, err))
				continue
			}

			state.CallsAnalyzed++
			r.logger.Info("call backfilled",
				"room_id", rec.RoomID,
				"risk_level", risk.RiskLevel,
				"risk_score", risk.RiskScore,
			)
		}

		if err := state.Save(); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	if err := state.Save(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	r.logger.Info("backfill complete",
		"calls_analyzed", state.CallsAnalyzed,
		"errors", len(state.Errors),
		"dry_run", r.cfg.DryRun,
	)
	return nil
}
