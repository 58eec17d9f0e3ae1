package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverline-agency/coach/internal/bus"
	"github.com/riverline-agency/coach/internal/judge"
	"github.com/riverline-agency/coach/internal/ledger"
	"github.com/riverline-agency/coach/internal/persona"
	"github.com/riverline-agency/coach/internal/store"
	"github.com/riverline-agency/coach/internal/template"
	"github.com/riverline-agency/coach/internal/transcript"
)

type fakeStore struct {
	segments      []transcript.Segment
	emptyFetches  int // number of fetches that return an empty transcript first
	fetchCount    int
	current       ledger.Iteration
	currentErr    error
	upserted      []store.CallRecord
	created       []ledger.Iteration
	createErr     error
	annotated     map[uuid.UUID]map[string]any
}

func (f *fakeStore) UpsertCall(_ context.Context, rec store.CallRecord) (uuid.UUID, error) {
	f.upserted = append(f.upserted, rec)
	return uuid.New(), nil
}

func (f *fakeStore) GetTranscript(_ context.Context, _ string) ([]transcript.Segment, error) {
	f.fetchCount++
	if f.fetchCount <= f.emptyFetches {
		return nil, nil
	}
	return f.segments, nil
}

func (f *fakeStore) CurrentIteration(_ context.Context) (ledger.Iteration, error) {
	if f.currentErr != nil {
		return ledger.Iteration{}, f.currentErr
	}
	return f.current, nil
}

func (f *fakeStore) CreateIteration(_ context.Context, text, hash string, avg float64) (ledger.Iteration, error) {
	if f.createErr != nil {
		return ledger.Iteration{}, f.createErr
	}
	it := ledger.Iteration{
		ID:              uuid.New(),
		IterationNumber: f.current.IterationNumber + 1,
		TemplateText:    text,
		TemplateHash:    hash,
		AverageScore:    avg,
		IsCurrent:       true,
	}
	f.created = append(f.created, it)
	return it, nil
}

func (f *fakeStore) AnnotateIterationMetrics(_ context.Context, id uuid.UUID, m map[string]any) error {
	if f.annotated == nil {
		f.annotated = make(map[uuid.UUID]map[string]any)
	}
	f.annotated[id] = m
	return nil
}

type fakeJudge struct {
	score     float64
	candidate string
	evaluated []string // persona names, in order
}

func (f *fakeJudge) Evaluate(_ context.Context, _ []transcript.Segment, p persona.Persona) judge.EvaluationResult {
	f.evaluated = append(f.evaluated, p.Name)
	return judge.EvaluationResult{
		OverallScore: f.score,
		Passed:       f.score >= 0.7,
		DetailedScores: map[string]float64{
			"professionalism": f.score,
		},
	}
}

func (f *fakeJudge) GenerateImprovedTemplate(_ context.Context, _ []judge.EvaluationResult, current string) string {
	if f.candidate == "" {
		return current
	}
	return f.candidate
}

type fakeSink struct {
	published []int // iteration numbers in publish order
	err       error
}

func (f *fakeSink) Publish(_ context.Context, _, _ string, iterationNumber int) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, iterationNumber)
	return nil
}

type fakeBus struct {
	subjects []string
}

func (f *fakeBus) Publish(subject string, _ any) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func lowRiskSegments() []transcript.Segment {
	return []transcript.Segment{
		{Speaker: transcript.SpeakerAgent, Text: "Hello, this is Tira from Riverline Bank about your account."},
		{Speaker: transcript.SpeakerCustomer, Text: "I can pay the $500 next week."},
		{Speaker: transcript.SpeakerAgent, Text: "Thank you for your time. Have a great day."},
	}
}

func highRiskSegments() []transcript.Segment {
	return []transcript.Segment{
		{Speaker: transcript.SpeakerAgent, Text: "Hello, this is Tira from Riverline Bank about your account."},
		{Speaker: transcript.SpeakerCustomer, Text: "I'm not paying anything, I'm filing chapter 13."},
	}
}

func currentIteration() ledger.Iteration {
	return ledger.Iteration{
		ID:              uuid.New(),
		IterationNumber: 1,
		TemplateText:    template.Seed,
		TemplateHash:    template.Hash(template.Seed),
		AverageScore:    0.65,
		IsCurrent:       true,
	}
}

// validCandidate modifies the seed template without disturbing its required
// sections or placeholders.
func validCandidate() string {
	return template.Seed + "\n\nAlways restate the agreed amount and date before closing the call."
}

func newTestOrchestrator(s *fakeStore, j *fakeJudge, sink *fakeSink, b *fakeBus) *Orchestrator {
	o := New(s, j, sink, b, 0.7, slog.New(slog.NewTextHandler(io.Discard, nil)))
	o.retryInterval = time.Millisecond
	o.maxWait = 50 * time.Millisecond
	return o
}

func TestRunCycleNoImprovementNeeded(t *testing.T) {
	s := &fakeStore{segments: lowRiskSegments(), current: currentIteration()}
	j := &fakeJudge{score: 0.85, candidate: validCandidate()}
	sink := &fakeSink{}
	b := &fakeBus{}
	o := newTestOrchestrator(s, j, sink, b)

	result := o.RunCycle(context.Background(), "room-1")

	if result.Status != StatusNoImprovementNeeded {
		t.Fatalf("expected %s, got %s", StatusNoImprovementNeeded, result.Status)
	}
	if len(s.created) != 0 {
		t.Error("expected no iteration to be created")
	}
	if len(sink.published) != 0 {
		t.Error("expected sink to be untouched")
	}
	if len(s.upserted) != 1 {
		t.Fatalf("expected call to be persisted, got %d records", len(s.upserted))
	}
	rec := s.upserted[0]
	if rec.JudgeScore == nil || *rec.JudgeScore != 0.85 {
		t.Errorf("expected persisted judge score 0.85, got %v", rec.JudgeScore)
	}
	if rec.Risk == nil || !rec.Risk.PaymentAgreed {
		t.Error("expected payment_agreed flag on persisted risk analysis")
	}
}

func TestRunCycleSuccess(t *testing.T) {
	s := &fakeStore{segments: lowRiskSegments(), current: currentIteration()}
	j := &fakeJudge{score: 0.5, candidate: validCandidate()}
	sink := &fakeSink{}
	b := &fakeBus{}
	o := newTestOrchestrator(s, j, sink, b)

	result := o.RunCycle(context.Background(), "room-2")

	if result.Status != StatusSuccess {
		t.Fatalf("expected %s, got %s (error %q)", StatusSuccess, result.Status, result.Error)
	}
	if len(s.created) != 1 {
		t.Fatalf("expected 1 iteration created, got %d", len(s.created))
	}
	it := s.created[0]
	if it.IterationNumber != 2 {
		t.Errorf("expected iteration 2, got %d", it.IterationNumber)
	}
	if it.TemplateText != validCandidate() {
		t.Error("expected committed template to be the candidate")
	}
	if len(sink.published) != 1 || sink.published[0] != 2 {
		t.Errorf("expected sink publish for iteration 2, got %v", sink.published)
	}
	if len(s.annotated) != 1 {
		t.Errorf("expected metrics annotation on the new iteration")
	}

	var sawPublished, sawAnalyzed bool
	for _, subj := range b.subjects {
		if subj == bus.SubjectTemplatePublished {
			sawPublished = true
		}
		if subj == bus.SubjectCallAnalyzed {
			sawAnalyzed = true
		}
	}
	if !sawPublished {
		t.Error("expected template published event")
	}
	if !sawAnalyzed {
		t.Error("expected call analyzed event")
	}
}

func TestRunCycleNoChangeGenerated(t *testing.T) {
	// A degraded generator returns the current template unchanged.
	s := &fakeStore{segments: lowRiskSegments(), current: currentIteration()}
	j := &fakeJudge{score: 0.5, candidate: ""}
	sink := &fakeSink{}
	o := newTestOrchestrator(s, j, sink, &fakeBus{})

	result := o.RunCycle(context.Background(), "room-3")

	if result.Status != StatusNoChangeGenerated {
		t.Fatalf("expected %s, got %s", StatusNoChangeGenerated, result.Status)
	}
	if len(s.created) != 0 || len(sink.published) != 0 {
		t.Error("degraded candidate must not reach the ledger or sink")
	}
}

func TestRunCycleValidationFailed(t *testing.T) {
	// Candidate missing a required section must never be committed.
	broken := strings.Replace(validCandidate(), "CALL FLOW:", "FLOW:", 1)
	s := &fakeStore{segments: lowRiskSegments(), current: currentIteration()}
	j := &fakeJudge{score: 0.5, candidate: broken}
	sink := &fakeSink{}
	o := newTestOrchestrator(s, j, sink, &fakeBus{})

	result := o.RunCycle(context.Background(), "room-4")

	if result.Status != StatusValidationFailed {
		t.Fatalf("expected %s, got %s", StatusValidationFailed, result.Status)
	}
	if result.Validation == nil || result.Validation.IsValid {
		t.Error("expected validation details on the result")
	}
	if len(s.created) != 0 || len(sink.published) != 0 {
		t.Error("rejected candidate must never reach the ledger or sink")
	}
}

func TestRunCycleCommitFailureIsFatal(t *testing.T) {
	s := &fakeStore{
		segments:  lowRiskSegments(),
		current:   currentIteration(),
		createErr: errors.New("connection reset"),
	}
	j := &fakeJudge{score: 0.5, candidate: validCandidate()}
	sink := &fakeSink{}
	o := newTestOrchestrator(s, j, sink, &fakeBus{})

	result := o.RunCycle(context.Background(), "room-5")

	if result.Status != StatusError {
		t.Fatalf("expected %s, got %s", StatusError, result.Status)
	}
	if result.Error == "" {
		t.Error("expected error detail on the result")
	}
	if len(sink.published) != 0 {
		t.Error("sink must not be written when the commit fails")
	}
}

func TestRunCyclePersonaSelectionByRiskLevel(t *testing.T) {
	s := &fakeStore{segments: highRiskSegments(), current: currentIteration()}
	j := &fakeJudge{score: 0.9}
	o := newTestOrchestrator(s, j, &fakeSink{}, &fakeBus{})

	result := o.RunCycle(context.Background(), "room-6")

	if result.Status != StatusNoImprovementNeeded {
		t.Fatalf("expected %s, got %s", StatusNoImprovementNeeded, result.Status)
	}
	if len(j.evaluated) == 0 {
		t.Fatal("expected judge evaluations")
	}
	catalog := persona.DefaultCatalog()
	for _, name := range j.evaluated {
		p, ok := catalog.ByName(name)
		if !ok {
			t.Fatalf("judge evaluated unknown persona %q", name)
		}
		if p.RiskLevel != "high" {
			t.Errorf("high-risk call evaluated against %s persona %q", p.RiskLevel, name)
		}
	}
}

func TestRunCycleWaitsForTranscript(t *testing.T) {
	s := &fakeStore{
		segments:     lowRiskSegments(),
		emptyFetches: 2,
		current:      currentIteration(),
	}
	j := &fakeJudge{score: 0.9}
	o := newTestOrchestrator(s, j, &fakeSink{}, &fakeBus{})

	result := o.RunCycle(context.Background(), "room-7")

	if result.Status != StatusNoImprovementNeeded {
		t.Fatalf("expected cycle to succeed after retries, got %s", result.Status)
	}
	if s.fetchCount < 3 {
		t.Errorf("expected at least 3 transcript fetches, got %d", s.fetchCount)
	}
}

func TestRunCycleTranscriptNeverAvailable(t *testing.T) {
	s := &fakeStore{emptyFetches: 1000, current: currentIteration()}
	o := newTestOrchestrator(s, &fakeJudge{score: 0.9}, &fakeSink{}, &fakeBus{})

	result := o.RunCycle(context.Background(), "room-8")

	if result.Status != StatusError {
		t.Fatalf("expected %s, got %s", StatusError, result.Status)
	}
	if len(s.upserted) != 0 {
		t.Error("expected no call record without a transcript")
	}
}

func TestHandleCallCompletedBadPayload(t *testing.T) {
	s := &fakeStore{segments: lowRiskSegments(), current: currentIteration()}
	o := newTestOrchestrator(s, &fakeJudge{score: 0.9}, &fakeSink{}, &fakeBus{})

	o.HandleCallCompleted(bus.SubjectCallCompleted, []byte("not json"))
	o.HandleCallCompleted(bus.SubjectCallCompleted, []byte(`{"agent_name":"tira"}`))

	if len(s.upserted) != 0 {
		t.Error("expected no processing for malformed events")
	}
}
