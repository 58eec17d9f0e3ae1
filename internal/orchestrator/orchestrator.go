package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/riverline-agency/coach/internal/analysis"
	"github.com/riverline-agency/coach/internal/bus"
	"github.com/riverline-agency/coach/internal/judge"
	"github.com/riverline-agency/coach/internal/ledger"
	"github.com/riverline-agency/coach/internal/persona"
	"github.com/riverline-agency/coach/internal/store"
	"github.com/riverline-agency/coach/internal/template"
	"github.com/riverline-agency/coach/internal/transcript"
)

// Cycle outcome statuses. Every cycle ends in exactly one of these.
const (
	StatusNoImprovementNeeded = "no_improvement_needed"
	StatusNoChangeGenerated   = "no_change_generated"
	StatusValidationFailed    = "validation_failed"
	StatusNoChangeDetected    = "no_change_detected"
	StatusSuccess             = "success"
	StatusError               = "error"
)

// DefaultThreshold is the average judge score below which a template
// improvement is attempted.
const DefaultThreshold = 0.7

// Store is the persistence surface the orchestrator needs.
type Store interface {
	UpsertCall(ctx context.Context, rec store.CallRecord) (uuid.UUID, error)
	GetTranscript(ctx context.Context, roomID string) ([]transcript.Segment, error)
	CurrentIteration(ctx context.Context) (ledger.Iteration, error)
	CreateIteration(ctx context.Context, templateText, templateHash string, averageScore float64) (ledger.Iteration, error)
	AnnotateIterationMetrics(ctx context.Context, id uuid.UUID, metrics map[string]any) error
}

// Judge evaluates transcripts and rewrites templates.
type Judge interface {
	Evaluate(ctx context.Context, segments []transcript.Segment, p persona.Persona) judge.EvaluationResult
	GenerateImprovedTemplate(ctx context.Context, results []judge.EvaluationResult, current string) string
}

// Sink receives the live template after a successful commit.
type Sink interface {
	Publish(ctx context.Context, templateText, templateHash string, iterationNumber int) error
}

// Publisher emits pipeline events.
type Publisher interface {
	Publish(subject string, data any) error
}

// CycleResult is the structured outcome of one improvement cycle.
type CycleResult struct {
	RoomID       string                    `json:"room_id"`
	Status       string                    `json:"status"`
	AverageScore float64                   `json:"average_score"`
	Risk         *analysis.RiskAnalysis    `json:"risk,omitempty"`
	Performance  *analysis.BotPerformance  `json:"performance,omitempty"`
	Suggestions  []string                  `json:"suggestions,omitempty"`
	Evaluations  []judge.PersonaEvaluation `json:"evaluations,omitempty"`
	Validation   *template.Result          `json:"validation,omitempty"`
	Iteration    *ledger.Iteration         `json:"iteration,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// Orchestrator runs the full post-call pipeline: deterministic analysis,
// judge evaluation, and the guarded template improvement cycle.
type Orchestrator struct {
	store     Store
	judge     Judge
	sink      Sink
	bus       Publisher
	personas  *persona.Catalog
	threshold float64

	// transcript retry policy, shortened in tests
	retryInterval time.Duration
	maxWait       time.Duration

	logger *slog.Logger
}

func New(s Store, j Judge, sink Sink, pub Publisher, threshold float64, logger *slog.Logger) *Orchestrator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Orchestrator{
		store:     s,
		judge:     j,
		sink:      sink,
		bus:       pub,
		personas:      persona.DefaultCatalog(),
		threshold:     threshold,
		retryInterval: 2 * time.Second,
		maxWait:       2 * time.Minute,
		logger:        logger,
	}
}

// HandleCallCompleted is the NATS handler for voice.call.completed.
func (o *Orchestrator) HandleCallCompleted(subject string, data []byte) {
	ctx := context.Background()

	var evt bus.CallCompletedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		o.logger.Error("failed to parse call completed event", "error", err)
		return
	}
	if evt.RoomID == "" {
		o.logger.Error("call completed event missing room_id")
		return
	}

	result := o.RunCycle(ctx, evt.RoomID)
	if result.Status == StatusError {
		o.logger.Error("cycle failed", "room_id", evt.RoomID, "error", result.Error)
		return
	}
	o.logger.Info("cycle finished",
		"room_id", evt.RoomID,
		"status", result.Status,
		"average_score", result.AverageScore,
	)
}

// RunCycle runs one analysis and improvement cycle for a finished call.
// It always returns a structured result; StatusError covers persistence and
// transcript failures, everything else is a normal terminal state.
func (o *Orchestrator) RunCycle(ctx context.Context, roomID string) CycleResult {
	started := time.Now()

	segments, err := o.waitForTranscript(ctx, roomID)
	if err != nil {
		return o.fail(roomID, fmt.Errorf("fetch transcript: %w", err))
	}

	// Deterministic analysis first; pure functions, cannot fail.
	risk := analysis.AnalyzeRisk(segments)
	perf := analysis.AnalyzePerformance(segments)
	suggestions := analysis.Suggestions(risk, perf)

	o.logger.Info("call analyzed",
		"room_id", roomID,
		"risk_level", risk.RiskLevel,
		"risk_score", risk.RiskScore,
		"negotiation_attempts", perf.NegotiationAttempts,
	)

	current, err := o.store.CurrentIteration(ctx)
	if err != nil {
		return o.fail(roomID, fmt.Errorf("load current iteration: %w", err))
	}

	// Judge the call against the personas matching its risk profile. A call
	// with no matching personas is judged against the whole catalog.
	evaluations := o.evaluate(ctx, segments, risk.RiskLevel)
	results := make([]judge.EvaluationResult, len(evaluations))
	for i, ev := range evaluations {
		results[i] = ev.Result
	}
	avg := judge.MeanScore(results)

	rec := store.CallRecord{
		RoomID:           roomID,
		Segments:         segments,
		Risk:             &risk,
		Performance:      &perf,
		Suggestions:      suggestions,
		JudgeScore:       &avg,
		ProcessingStatus: "analyzed",
	}
	if _, err := o.store.UpsertCall(ctx, rec); err != nil {
		return o.fail(roomID, fmt.Errorf("persist call: %w", err))
	}

	result := CycleResult{
		RoomID:       roomID,
		AverageScore: avg,
		Risk:         &risk,
		Performance:  &perf,
		Suggestions:  suggestions,
		Evaluations:  evaluations,
	}

	defer func() {
		o.publishAnalyzed(roomID, risk, avg, suggestions, result.Status, current.IterationNumber)
		o.logger.Info("cycle complete",
			"room_id", roomID,
			"status", result.Status,
			"duration", time.Since(started),
		)
	}()

	if avg >= o.threshold {
		result.Status = StatusNoImprovementNeeded
		return result
	}

	// GENERATING. The generator degrades to returning the current template
	// on failure, which the hash check below turns into no_change_generated.
	candidate := o.judge.GenerateImprovedTemplate(ctx, results, current.TemplateText)
	if candidate == current.TemplateText {
		result.Status = StatusNoChangeGenerated
		return result
	}

	// VALIDATING. A rejected candidate never reaches the ledger or sink.
	validation := template.Validate(candidate, current.TemplateText)
	result.Validation = &validation
	if !validation.IsValid {
		o.logger.Warn("candidate template rejected",
			"room_id", roomID,
			"errors", strings.Join(validation.Errors, "; "),
		)
		result.Status = StatusValidationFailed
		return result
	}
	candidateHash := template.Hash(candidate)
	if candidateHash == current.TemplateHash {
		result.Status = StatusNoChangeDetected
		return result
	}

	// COMMITTING. Persistence failures are fatal to the cycle.
	iteration, err := o.store.CreateIteration(ctx, candidate, candidateHash, avg)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Errorf("commit iteration: %w", err).Error()
		return result
	}
	result.Iteration = &iteration

	metrics := map[string]any{
		"source_room_id": roomID,
		"average_score":  avg,
		"pass_rate":      judge.BuildReport(results, o.threshold).PassRate,
		"evaluations":    len(results),
	}
	if err := o.store.AnnotateIterationMetrics(ctx, iteration.ID, metrics); err != nil {
		o.logger.Error("failed to annotate iteration metrics",
			"iteration", iteration.IterationNumber, "error", err)
	}

	// PUBLISHED. The live template is only overwritten after the ledger
	// commit succeeded.
	if o.sink != nil {
		if err := o.sink.Publish(ctx, candidate, candidateHash, iteration.IterationNumber); err != nil {
			result.Status = StatusError
			result.Error = fmt.Errorf("publish template: %w", err).Error()
			return result
		}
	}
	if o.bus != nil {
		if err := o.bus.Publish(bus.SubjectTemplatePublished, bus.TemplatePublishedEvent{
			IterationNumber: iteration.IterationNumber,
			TemplateHash:    iteration.TemplateHash,
			AverageScore:    iteration.AverageScore,
			Improvement:     iteration.ImprovementFromPrevious,
		}); err != nil {
			o.logger.Error("failed to publish template event", "error", err)
		}
	}

	o.logger.Info("new iteration published",
		"room_id", roomID,
		"iteration", iteration.IterationNumber,
		"improvement", iteration.ImprovementFromPrevious,
	)
	result.Status = StatusSuccess
	return result
}

// evaluate runs the judge over personas matching the call's risk level,
// falling back to the full catalog when no persona matches.
func (o *Orchestrator) evaluate(ctx context.Context, segments []transcript.Segment, level analysis.RiskLevel) []judge.PersonaEvaluation {
	personas := o.personas.ByRiskLevel(strings.ToLower(string(level)))
	if len(personas) == 0 {
		personas = o.personas.All()
	}

	out := make([]judge.PersonaEvaluation, 0, len(personas))
	for _, p := range personas {
		out = append(out, judge.PersonaEvaluation{
			Persona: p.Name,
			Result:  o.judge.Evaluate(ctx, segments, p),
		})
	}
	return out
}

// waitForTranscript retries transcript fetches with exponential backoff.
// Calls are analyzed asynchronously and the transcript may land after the
// completion event.
func (o *Orchestrator) waitForTranscript(ctx context.Context, roomID string) ([]transcript.Segment, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = o.retryInterval
	policy.MaxElapsedTime = o.maxWait

	var segments []transcript.Segment
	operation := func() error {
		var err error
		segments, err = o.store.GetTranscript(ctx, roomID)
		if err != nil {
			return err
		}
		if len(segments) == 0 {
			return errors.New("transcript not yet available")
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return segments, nil
}

func (o *Orchestrator) publishAnalyzed(roomID string, risk analysis.RiskAnalysis, avg float64, suggestions []string, status string, iteration int) {
	if o.bus == nil {
		return
	}
	err := o.bus.Publish(bus.SubjectCallAnalyzed, bus.CallAnalyzedEvent{
		RoomID:        roomID,
		RiskLevel:     string(risk.RiskLevel),
		RiskScore:     risk.RiskScore,
		JudgeScore:    &avg,
		Suggestions:   suggestions,
		CycleStatus:   status,
		IterationUsed: iteration,
	})
	if err != nil {
		o.logger.Error("failed to publish analyzed event", "room_id", roomID, "error", err)
	}
}

func (o *Orchestrator) fail(roomID string, err error) CycleResult {
	o.logger.Error("cycle error", "room_id", roomID, "error", err)
	return CycleResult{RoomID: roomID, Status: StatusError, Error: err.Error()}
}
