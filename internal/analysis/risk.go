package analysis

import "github.com/riverline-agency/coach/internal/transcript"

// RiskLevel buckets a risk score into operational bands.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskAnalysis holds the boolean risk flags and the aggregate score for a
// single call. Immutable once computed.
type RiskAnalysis struct {
	PaymentAgreed              bool      `json:"payment_agreed"`
	PaymentRefused             bool      `json:"payment_refused"`
	FinancialHardshipMentioned bool      `json:"financial_hardship_mentioned"`
	DisputeRaised              bool      `json:"dispute_raised"`
	BankruptcyMentioned        bool      `json:"bankruptcy_mentioned"`
	AbusiveLanguage            bool      `json:"abusive_language"`
	WrongNumber                bool      `json:"wrong_number"`
	CallbackRequested          bool      `json:"callback_requested"`
	PaymentPlanRequested       bool      `json:"payment_plan_requested"`
	RiskScore                  float64   `json:"risk_score"`
	RiskLevel                  RiskLevel `json:"risk_level"`
}

// flagSet reports whether the given category's flag is set.
func (r *RiskAnalysis) flagSet(cat RiskCategory) bool {
	switch cat {
	case CategoryPaymentAgreed:
		return r.PaymentAgreed
	case CategoryPaymentRefused:
		return r.PaymentRefused
	case CategoryFinancialHardship:
		return r.FinancialHardshipMentioned
	case CategoryDisputeRaised:
		return r.DisputeRaised
	case CategoryBankruptcyMentioned:
		return r.BankruptcyMentioned
	case CategoryAbusiveLanguage:
		return r.AbusiveLanguage
	case CategoryWrongNumber:
		return r.WrongNumber
	case CategoryCallbackRequested:
		return r.CallbackRequested
	case CategoryPaymentPlanRequested:
		return r.PaymentPlanRequested
	}
	return false
}

func (r *RiskAnalysis) setFlag(cat RiskCategory) {
	switch cat {
	case CategoryPaymentAgreed:
		r.PaymentAgreed = true
	case CategoryPaymentRefused:
		r.PaymentRefused = true
	case CategoryFinancialHardship:
		r.FinancialHardshipMentioned = true
	case CategoryDisputeRaised:
		r.DisputeRaised = true
	case CategoryBankruptcyMentioned:
		r.BankruptcyMentioned = true
	case CategoryAbusiveLanguage:
		r.AbusiveLanguage = true
	case CategoryWrongNumber:
		r.WrongNumber = true
	case CategoryCallbackRequested:
		r.CallbackRequested = true
	case CategoryPaymentPlanRequested:
		r.PaymentPlanRequested = true
	}
}

// AnalyzeRisk scans the customer side of the transcript against the risk
// taxonomy and computes the weighted risk score. Pure function: same
// transcript in, same analysis out.
func AnalyzeRisk(segments []transcript.Segment) RiskAnalysis {
	customerText := transcript.SpeakerText(segments, transcript.SpeakerCustomer)

	var result RiskAnalysis
	for _, spec := range riskTaxonomy {
		if matchesAny(customerText, spec.patterns) {
			result.setFlag(spec.category)
		}
	}

	result.RiskScore = riskScore(&result)
	result.RiskLevel = riskLevel(result.RiskScore)
	return result
}

// riskScore sums the weights of the set flags and clamps to [0,1].
// Payment agreement carries a negative weight, so evidence of cooperation
// offsets risk rather than being mutually exclusive with it.
func riskScore(r *RiskAnalysis) float64 {
	score := 0.0
	for _, spec := range riskTaxonomy {
		if r.flagSet(spec.category) {
			score += spec.weight
		}
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func riskLevel(score float64) RiskLevel {
	switch {
	case score >= 0.7:
		return RiskHigh
	case score >= 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}
