package analysis

import (
	"strings"

	"github.com/riverline-agency/coach/internal/transcript"
)

// BotPerformance holds the deterministic performance metrics for the agent
// side of a call. Immutable once computed.
type BotPerformance struct {
	RepetitionScore             float64 `json:"repetition_score"` // lower is better
	NegotiationAttempts         int     `json:"negotiation_attempts"`
	RelevanceScore              float64 `json:"relevance_score"`
	ConversationFlowScore       float64 `json:"conversation_flow_score"`
	EmpathyShown                bool    `json:"empathy_shown"`
	ProfessionalMaintained      bool    `json:"professional_maintained"`
	CallTerminatedAppropriately bool    `json:"call_terminated_appropriately"`
}

// AnalyzePerformance computes performance metrics from the agent's
// utterances and the segment ordering. Pure function.
func AnalyzePerformance(segments []transcript.Segment) BotPerformance {
	agentText := transcript.SpeakerText(segments, transcript.SpeakerAgent)
	customerText := transcript.SpeakerText(segments, transcript.SpeakerCustomer)

	return BotPerformance{
		RepetitionScore:             repetitionScore(agentText),
		NegotiationAttempts:         negotiationAttempts(agentText),
		RelevanceScore:              relevanceScore(agentText, customerText),
		ConversationFlowScore:       flowScore(segments),
		EmpathyShown:                matchesAny(agentText, empathyPatterns),
		ProfessionalMaintained:      !matchesAny(agentText, unprofessionalPatterns),
		CallTerminatedAppropriately: terminatedAppropriately(segments),
	}
}

// repetitionScore is the fraction of words that occur more than once in the
// agent text. Undefined below 10 words; returns 0 there instead of dividing
// by a tiny denominator.
func repetitionScore(agentText string) float64 {
	words := strings.Fields(agentText)
	if len(words) < 10 {
		return 0
	}

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	repeated := 0
	for _, c := range counts {
		if c > 1 {
			repeated += c
		}
	}

	score := float64(repeated) / float64(len(words))
	if score > 1 {
		return 1
	}
	return score
}

// negotiationAttempts counts negotiation-vocabulary matches in the agent
// text. Raw match count, not deduplicated.
func negotiationAttempts(agentText string) int {
	count := 0
	for _, p := range negotiationPatterns {
		count += len(p.FindAllString(agentText, -1))
	}
	return count
}

// relevanceScore averages the debt-keyword density of agent and customer
// text, scaled by 10 and clamped to 1. A keyword counts once per side
// regardless of how often it appears.
func relevanceScore(agentText, customerText string) float64 {
	agentWords := len(strings.Fields(agentText))
	customerWords := len(strings.Fields(customerText))
	if agentWords == 0 || customerWords == 0 {
		return 0
	}

	agentHits, customerHits := 0, 0
	for _, kw := range debtKeywords {
		if strings.Contains(agentText, kw) {
			agentHits++
		}
		if strings.Contains(customerText, kw) {
			customerHits++
		}
	}

	agentScore := float64(agentHits) / float64(agentWords)
	customerScore := float64(customerHits) / float64(customerWords)

	score := (agentScore + customerScore) / 2 * 10
	if score > 1 {
		return 1
	}
	return score
}

// flowScore rewards turn-taking proportional to conversation length:
// speaker transitions divided by half the segment count, clamped to 1.
func flowScore(segments []transcript.Segment) float64 {
	if len(segments) < 2 {
		return 0
	}

	turns := 0
	for i := 1; i < len(segments); i++ {
		if segments[i].Speaker != segments[i-1].Speaker {
			turns++
		}
	}

	expected := len(segments) / 2
	if expected == 0 {
		return 0
	}

	ratio := float64(turns) / float64(expected)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// terminatedAppropriately looks for closing vocabulary in the agent text of
// the last three segments only.
func terminatedAppropriately(segments []transcript.Segment) bool {
	if len(segments) == 0 {
		return false
	}

	tail := segments
	if len(segments) > 3 {
		tail = segments[len(segments)-3:]
	}

	agentText := transcript.SpeakerText(tail, transcript.SpeakerAgent)
	for _, phrase := range closingPhrases {
		if strings.Contains(agentText, phrase) {
			return true
		}
	}
	return false
}
