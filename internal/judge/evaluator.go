// Package judge scores call transcripts against persona expectations using a
// language-model judging service, and asks the same service for instruction
// template rewrites. Every external call is treated as untrusted: failures
// and malformed output degrade into well-formed results, never errors.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/riverline-agency/coach/internal/persona"
	"github.com/riverline-agency/coach/internal/transcript"
)

const (
	evaluationTemperature = 0.3
	evaluationMaxTokens   = 1000
)

type Evaluator struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Evaluator {
	return &Evaluator{svc: svc, logger: logger}
}

// Evaluate judges the transcript against one persona. It never returns an
// error: judge-service failures and malformed verdicts degrade to a
// zero-score result carrying the error text in failure_reasons, so
// downstream aggregation always has a well-formed input.
func (e *Evaluator) Evaluate(ctx context.Context, segments []transcript.Segment, p persona.Persona) EvaluationResult {
	prompt := buildEvaluationPrompt(segments, p)

	raw, err := e.svc.Generate(ctx, evaluationSystemPrompt, prompt, evaluationTemperature, evaluationMaxTokens)
	if err != nil {
		e.logger.Error("judge call failed", "persona", p.Name, "error", err)
		return degradedResult(err.Error())
	}

	result, err := parseEvaluation(raw)
	if err != nil {
		e.logger.Error("failed to parse judge verdict", "persona", p.Name, "error", err, "raw", raw)
		return degradedResult(fmt.Sprintf("parse error: %v", err))
	}

	e.logger.Info("evaluation complete",
		"persona", p.Name,
		"score", result.OverallScore,
		"passed", result.Passed,
	)
	return result
}

func buildEvaluationPrompt(segments []transcript.Segment, p persona.Persona) string {
	behavior, _ := json.MarshalIndent(p.ExpectedBehavior, "", "  ")
	criteria, _ := json.MarshalIndent(p.SuccessCriteria, "", "  ")

	return fmt.Sprintf(evaluationPromptTemplate,
		p.Description,
		string(behavior),
		string(criteria),
		transcript.Render(segments),
	)
}

// parseEvaluation extracts the structured verdict, tolerating markdown code
// fences around the JSON body.
func parseEvaluation(raw string) (EvaluationResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result EvaluationResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return EvaluationResult{}, err
	}
	return result, nil
}

func degradedResult(reason string) EvaluationResult {
	return EvaluationResult{
		OverallScore:           0.0,
		Passed:                 false,
		Feedback:               "Evaluation failed: " + reason,
		ImprovementSuggestions: []string{},
		FailureReasons:         []string{reason},
		DetailedScores:         map[string]float64{},
	}
}
