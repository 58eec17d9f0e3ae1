package judge

import "context"

// Service is the language-model judging backend. The production
// implementation is the Gemini client; tests substitute a fake.
type Service interface {
	Generate(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, error)
}

// EvaluationResult is the judge's verdict for one (call, persona) pair.
// Passed is judge-determined and is never recomputed from the score.
type EvaluationResult struct {
	OverallScore           float64            `json:"overall_score"`
	Passed                 bool               `json:"passed"`
	Feedback               string             `json:"feedback"`
	ImprovementSuggestions []string           `json:"improvement_suggestions"`
	FailureReasons         []string           `json:"failure_reasons"`
	DetailedScores         map[string]float64 `json:"detailed_scores"`
}

// PersonaEvaluation pairs a result with the persona it was judged against.
type PersonaEvaluation struct {
	Persona string           `json:"persona"`
	Result  EvaluationResult `json:"result"`
}
