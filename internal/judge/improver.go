package judge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	improvementTemperature = 0.3
	improvementMaxTokens   = 4000

	// The current template is truncated in the analysis prompt to stay well
	// inside the judge's context budget.
	templateExcerptLimit = 3000
)

// GenerateImprovedTemplate asks the judge service to rewrite the current
// instruction template based on the evaluation results. On any failure it
// returns the current template unchanged; callers detect "no improvement"
// by identity with the input, never by a sentinel value.
func (e *Evaluator) GenerateImprovedTemplate(ctx context.Context, results []EvaluationResult, current string) string {
	if len(results) == 0 {
		return current
	}

	prompt := buildImprovementPrompt(results, current)

	candidate, err := e.svc.Generate(ctx, improvementSystemPrompt, prompt, improvementTemperature, improvementMaxTokens)
	if err != nil {
		e.logger.Error("improvement generation failed", "error", err)
		return current
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		e.logger.Error("improvement generation returned empty output")
		return current
	}
	return candidate
}

func buildImprovementPrompt(results []EvaluationResult, current string) string {
	avg := MeanScore(results)
	issues := dedupe(collect(results, func(r EvaluationResult) []string { return r.FailureReasons }))
	areas := dedupe(collect(results, func(r EvaluationResult) []string { return r.ImprovementSuggestions }))

	excerpt := current
	if len(excerpt) > templateExcerptLimit {
		excerpt = excerpt[:templateExcerptLimit] + "... [truncated for analysis]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, improvementPromptHeader, excerpt, avg, orNone(issues), orNone(areas))

	for i, r := range results {
		fmt.Fprintf(&b, `
Evaluation %d:
- Score: %.2f
- Passed: %t
- Feedback: %s
- Issues: %s
- Suggestions: %s
`, i+1, r.OverallScore, r.Passed, r.Feedback, orNone(r.FailureReasons), orNone(r.ImprovementSuggestions))
	}

	b.WriteString(improvementPromptFooter)
	return b.String()
}

// MeanScore is the arithmetic mean of overall scores; 0 for an empty slice.
func MeanScore(results []EvaluationResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.OverallScore
	}
	return sum / float64(len(results))
}

// Report aggregates a batch of evaluation results for operators.
type Report struct {
	OverallScore           float64                   `json:"overall_score"`
	PassedPersonas         int                       `json:"passed_personas"`
	TotalPersonas          int                       `json:"total_personas"`
	PassRate               float64                   `json:"pass_rate"`
	ImprovementSuggestions []string                  `json:"improvement_suggestions"`
	CommonIssues           []string                  `json:"common_issues"`
	DetailedScores         map[string]MetricSummary  `json:"detailed_scores"`
	NeedsImprovement       bool                      `json:"needs_improvement"`
	GeneratedAt            time.Time                 `json:"generated_at"`
}

// MetricSummary summarizes one rubric dimension across evaluations.
type MetricSummary struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// BuildReport computes pass rate, the top suggestions and issues by
// frequency, and per-metric summaries across the results.
func BuildReport(results []EvaluationResult, threshold float64) Report {
	avg := MeanScore(results)

	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	passRate := 0.0
	if len(results) > 0 {
		passRate = float64(passed) / float64(len(results))
	}

	return Report{
		OverallScore:           avg,
		PassedPersonas:         passed,
		TotalPersonas:          len(results),
		PassRate:               passRate,
		ImprovementSuggestions: topByFrequency(collect(results, func(r EvaluationResult) []string { return r.ImprovementSuggestions }), 5),
		CommonIssues:           topByFrequency(collect(results, func(r EvaluationResult) []string { return r.FailureReasons }), 3),
		DetailedScores:         metricSummaries(results),
		NeedsImprovement:       avg < threshold,
		GeneratedAt:            time.Now().UTC(),
	}
}

func metricSummaries(results []EvaluationResult) map[string]MetricSummary {
	values := make(map[string][]float64)
	for _, r := range results {
		for metric, score := range r.DetailedScores {
			values[metric] = append(values[metric], score)
		}
	}

	out := make(map[string]MetricSummary, len(values))
	for metric, scores := range values {
		sum, min, max := 0.0, scores[0], scores[0]
		for _, s := range scores {
			sum += s
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
		out[metric] = MetricSummary{
			Average: sum / float64(len(scores)),
			Min:     min,
			Max:     max,
		}
	}
	return out
}

func collect(results []EvaluationResult, pick func(EvaluationResult) []string) []string {
	var out []string
	for _, r := range results {
		out = append(out, pick(r)...)
	}
	return out
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// topByFrequency returns up to n distinct items ordered by descending
// occurrence count, ties broken by first appearance.
func topByFrequency(items []string, n int) []string {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item]++
	}

	unique := dedupe(items)
	sort.SliceStable(unique, func(i, j int) bool {
		return counts[unique[i]] > counts[unique[j]]
	})

	if len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "None identified"
	}
	return strings.Join(items, ", ")
}
