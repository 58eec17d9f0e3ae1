package judge

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/riverline-agency/coach/internal/persona"
	"github.com/riverline-agency/coach/internal/transcript"
)

// fakeService returns a canned response or error and records the last prompt.
type fakeService struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (f *fakeService) Generate(_ context.Context, system, prompt string, _ float64, _ int) (string, error) {
	f.lastSystem = system
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testSegments() []transcript.Segment {
	return []transcript.Segment{
		{Speaker: transcript.SpeakerCustomer, Text: "Hello?"},
		{Speaker: transcript.SpeakerAgent, Text: "Hi, this is Tira calling from Riverline Bank."},
	}
}

func testPersona() persona.Persona {
	p, _ := persona.DefaultCatalog().ByName("Cooperative Customer")
	return p
}

const verdictJSON = `{
	"overall_score": 0.85,
	"passed": true,
	"feedback": "Solid call.",
	"improvement_suggestions": ["Offer payment options earlier"],
	"failure_reasons": [],
	"detailed_scores": {"professionalism": 0.9, "empathy": 0.8}
}`

func TestEvaluateParsesVerdict(t *testing.T) {
	svc := &fakeService{response: verdictJSON}
	e := New(svc, slog.Default())

	result := e.Evaluate(context.Background(), testSegments(), testPersona())

	if result.OverallScore != 0.85 {
		t.Errorf("expected score 0.85, got %v", result.OverallScore)
	}
	if !result.Passed {
		t.Error("expected passed=true")
	}
	if result.DetailedScores["professionalism"] != 0.9 {
		t.Errorf("expected professionalism 0.9, got %v", result.DetailedScores["professionalism"])
	}

	// Prompt must carry the persona and the rendered transcript.
	if !strings.Contains(svc.lastPrompt, "willing to work with the agent") {
		t.Error("prompt missing persona description")
	}
	if !strings.Contains(svc.lastPrompt, "customer: Hello?") {
		t.Error("prompt missing rendered transcript")
	}
}

func TestEvaluateStripsCodeFences(t *testing.T) {
	svc := &fakeService{response: "```json\n" + verdictJSON + "\n```"}
	e := New(svc, slog.Default())

	result := e.Evaluate(context.Background(), testSegments(), testPersona())
	if result.OverallScore != 0.85 {
		t.Errorf("expected fenced JSON to parse, got score %v", result.OverallScore)
	}
}

func TestEvaluateDegradesOnParseFailure(t *testing.T) {
	svc := &fakeService{response: "I think the agent did fine overall."}
	e := New(svc, slog.Default())

	result := e.Evaluate(context.Background(), testSegments(), testPersona())

	if result.OverallScore != 0 || result.Passed {
		t.Errorf("expected zero-score failed result, got %+v", result)
	}
	if len(result.FailureReasons) != 1 || !strings.HasPrefix(result.FailureReasons[0], "parse error") {
		t.Errorf("expected parse error in failure reasons, got %v", result.FailureReasons)
	}
}

func TestEvaluateDegradesOnServiceError(t *testing.T) {
	svc := &fakeService{err: errors.New("quota exceeded")}
	e := New(svc, slog.Default())

	result := e.Evaluate(context.Background(), testSegments(), testPersona())

	if result.OverallScore != 0 || result.Passed {
		t.Errorf("expected zero-score failed result, got %+v", result)
	}
	if len(result.FailureReasons) != 1 || result.FailureReasons[0] != "quota exceeded" {
		t.Errorf("expected service error in failure reasons, got %v", result.FailureReasons)
	}
}

func TestGenerateImprovedTemplate(t *testing.T) {
	svc := &fakeService{response: "You are Tira, improved."}
	e := New(svc, slog.Default())

	results := []EvaluationResult{
		{OverallScore: 0.5, FailureReasons: []string{"no empathy"}, ImprovementSuggestions: []string{"slow down"}},
		{OverallScore: 0.6, FailureReasons: []string{"no empathy"}, ImprovementSuggestions: []string{"offer plans"}},
	}

	candidate := e.GenerateImprovedTemplate(context.Background(), results, "You are Tira, current.")
	if candidate != "You are Tira, improved." {
		t.Errorf("unexpected candidate: %q", candidate)
	}

	// Issue list is deduplicated in the prompt.
	if strings.Count(svc.lastPrompt, "Common Issues: no empathy") != 1 {
		t.Error("expected deduplicated common issues in prompt")
	}
	if !strings.Contains(svc.lastPrompt, "Average Score: 0.55") {
		t.Error("expected mean score in prompt")
	}
}

func TestGenerateImprovedTemplateFailureReturnsCurrent(t *testing.T) {
	current := "You are Tira, current."

	for _, svc := range []*fakeService{
		{err: errors.New("timeout")},
		{response: "   "},
	} {
		e := New(svc, slog.Default())
		got := e.GenerateImprovedTemplate(context.Background(), []EvaluationResult{{OverallScore: 0.4}}, current)
		if got != current {
			t.Errorf("expected unchanged template on failure, got %q", got)
		}
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMeanScore(t *testing.T) {
	if got := MeanScore(nil); got != 0 {
		t.Errorf("expected 0 for empty results, got %v", got)
	}
	results := []EvaluationResult{{OverallScore: 0.4}, {OverallScore: 0.8}}
	if got := MeanScore(results); !approx(got, 0.6) {
		t.Errorf("expected 0.6, got %v", got)
	}
}

func TestBuildReport(t *testing.T) {
	results := []EvaluationResult{
		{
			OverallScore:           0.5,
			Passed:                 false,
			ImprovementSuggestions: []string{"show empathy", "offer plans"},
			FailureReasons:         []string{"robotic tone"},
			DetailedScores:         map[string]float64{"empathy": 0.3},
		},
		{
			OverallScore:           0.7,
			Passed:                 true,
			ImprovementSuggestions: []string{"show empathy"},
			FailureReasons:         []string{},
			DetailedScores:         map[string]float64{"empathy": 0.7},
		},
	}

	report := BuildReport(results, 0.7)

	if !approx(report.OverallScore, 0.6) {
		t.Errorf("expected overall 0.6, got %v", report.OverallScore)
	}
	if report.PassedPersonas != 1 || report.TotalPersonas != 2 || report.PassRate != 0.5 {
		t.Errorf("unexpected pass stats: %+v", report)
	}
	if !report.NeedsImprovement {
		t.Error("expected needs_improvement below threshold")
	}
	if len(report.ImprovementSuggestions) == 0 || report.ImprovementSuggestions[0] != "show empathy" {
		t.Errorf("expected most frequent suggestion first, got %v", report.ImprovementSuggestions)
	}

	empathy, ok := report.DetailedScores["empathy"]
	if !ok {
		t.Fatal("expected empathy metric summary")
	}
	if empathy.Min != 0.3 || empathy.Max != 0.7 || !approx(empathy.Average, 0.5) {
		t.Errorf("unexpected empathy summary: %+v", empathy)
	}
}
