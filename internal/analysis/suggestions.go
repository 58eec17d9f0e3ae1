package analysis

// Suggestions derives rule-based coaching suggestions from a call's risk and
// performance analysis. These sit alongside the LLM judge's suggestions and
// work without any external service.
func Suggestions(risk RiskAnalysis, perf BotPerformance) []string {
	var out []string

	if risk.RiskScore > 0.7 {
		out = append(out, "High risk call - consider escalation to human agent")
	}
	if risk.DisputeRaised {
		out = append(out, "Customer disputes debt - provide validation documentation")
	}
	if risk.FinancialHardshipMentioned {
		out = append(out, "Customer in financial hardship - offer payment plan options")
	}
	if risk.AbusiveLanguage {
		out = append(out, "Abusive language detected - maintain professionalism and consider termination")
	}

	if perf.RepetitionScore > 0.3 {
		out = append(out, "High repetition detected - vary language and responses")
	}
	if perf.NegotiationAttempts < 2 {
		out = append(out, "Limited negotiation attempts - try more payment options")
	}
	if perf.RelevanceScore < 0.5 {
		out = append(out, "Low relevance score - focus responses on debt collection topics")
	}
	if !perf.EmpathyShown {
		out = append(out, "No empathy shown - add empathetic responses for difficult situations")
	}
	if !perf.ProfessionalMaintained {
		out = append(out, "Unprofessional behavior detected - review and improve response guidelines")
	}
	if !perf.CallTerminatedAppropriately {
		out = append(out, "Inappropriate call termination - improve closing procedures")
	}

	return out
}
