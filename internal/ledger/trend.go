package ledger

import "math"

// Trend direction labels.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// TrendReport summarizes score movement across the iteration history.
type TrendReport struct {
	Trend              string    `json:"trend"`
	TotalIterations    int       `json:"total_iterations"`
	CurrentScore       float64   `json:"current_score"`
	BestScore          float64   `json:"best_score"`
	WorstScore         float64   `json:"worst_score"`
	AverageImprovement float64   `json:"average_improvement"`
	Volatility         float64   `json:"volatility"`
	Scores             []float64 `json:"scores"`
	Improvements       []float64 `json:"improvements"`
}

// AnalyzeTrend classifies the score sequence by comparing the last two
// entries of the most recent 3-entry window. History must be ordered by
// iteration number ascending. Fewer than two entries is insufficient data.
func AnalyzeTrend(history []Iteration) TrendReport {
	if len(history) < 2 {
		return TrendReport{Trend: TrendInsufficientData, TotalIterations: len(history)}
	}

	scores := make([]float64, len(history))
	improvements := make([]float64, len(history))
	for i, it := range history {
		scores[i] = it.AverageScore
		improvements[i] = it.ImprovementFromPrevious
	}

	recent := scores
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	var trend string
	last, prev := recent[len(recent)-1], recent[len(recent)-2]
	switch {
	case last > prev:
		trend = TrendImproving
	case last < prev:
		trend = TrendDeclining
	default:
		trend = TrendStable
	}

	best, worst := scores[0], scores[0]
	sumImprovement := 0.0
	for i, s := range scores {
		if s > best {
			best = s
		}
		if s < worst {
			worst = s
		}
		sumImprovement += improvements[i]
	}

	return TrendReport{
		Trend:              trend,
		TotalIterations:    len(history),
		CurrentScore:       scores[len(scores)-1],
		BestScore:          best,
		WorstScore:         worst,
		AverageImprovement: sumImprovement / float64(len(improvements)),
		Volatility:         stddev(scores),
		Scores:             scores,
		Improvements:       improvements,
	}
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// Comparison is the outcome of weighing two iterations against each other.
type Comparison struct {
	ScoreDifference       float64 `json:"score_difference"`
	ImprovementDifference float64 `json:"improvement_difference"`
	BetterIteration       int     `json:"better_iteration"` // iteration number of the winner; 0 on tie
}

// Compare reports how b stacks up against a.
func Compare(a, b Iteration) Comparison {
	c := Comparison{
		ScoreDifference:       b.AverageScore - a.AverageScore,
		ImprovementDifference: b.ImprovementFromPrevious - a.ImprovementFromPrevious,
	}
	switch {
	case c.ScoreDifference > 0:
		c.BetterIteration = b.IterationNumber
	case c.ScoreDifference < 0:
		c.BetterIteration = a.IterationNumber
	}
	return c
}
