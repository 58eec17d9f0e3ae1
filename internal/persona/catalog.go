package persona

// DefaultCatalog returns the production persona set for debt-collection calls.
func DefaultCatalog() *Catalog {
	return newCatalog([]Persona{
		{
			Name:              "Cooperative Customer",
			Description:       "A customer who is willing to work with the agent to resolve their debt. They understand their obligation and want to find a solution.",
			PersonalityTraits: []string{"cooperative", "understanding", "solution-oriented", "respectful"},
			ExpectedBehavior: map[string]any{
				"response_style":      "polite and cooperative",
				"payment_willingness": "high",
				"information_sharing": "open and honest",
				"negotiation_style":   "collaborative",
			},
			SuccessCriteria: map[string]any{
				"payment_agreement":     true,
				"customer_satisfaction": "high",
				"call_duration":         "reasonable",
				"escalation_avoided":    true,
			},
			RiskLevel:       "low",
			DifficultyScore: 0.2,
		},
		{
			Name:              "Financial Hardship Customer",
			Description:       "A customer experiencing financial difficulties who needs understanding and flexible payment options.",
			PersonalityTraits: []string{"stressed", "worried", "honest", "seeking_help"},
			ExpectedBehavior: map[string]any{
				"response_style":      "concerned but honest",
				"payment_willingness": "limited but willing",
				"information_sharing": "open about difficulties",
				"negotiation_style":   "seeking understanding",
			},
			SuccessCriteria: map[string]any{
				"payment_plan_established":        true,
				"customer_empathy_shown":          true,
				"financial_hardship_acknowledged": true,
				"realistic_payment_arrangement":   true,
			},
			RiskLevel:       "medium",
			DifficultyScore: 0.6,
		},
		{
			Name:              "Disputing Customer",
			Description:       "A customer who disputes the debt or has questions about the charges. They may be defensive or argumentative.",
			PersonalityTraits: []string{"defensive", "questioning", "argumentative", "skeptical"},
			ExpectedBehavior: map[string]any{
				"response_style":      "defensive and questioning",
				"payment_willingness": "low until resolved",
				"information_sharing": "reluctant",
				"negotiation_style":   "confrontational",
			},
			SuccessCriteria: map[string]any{
				"dispute_resolved":             true,
				"customer_concerns_addressed":  true,
				"professionalism_maintained":   true,
				"escalation_handled_properly":  true,
			},
			RiskLevel:       "medium",
			DifficultyScore: 0.7,
		},
		{
			Name:              "Abusive Customer",
			Description:       "A customer who becomes verbally abusive, uses profanity, or threatens the agent. This tests the agent's ability to handle difficult situations professionally.",
			PersonalityTraits: []string{"aggressive", "abusive", "threatening", "uncooperative"},
			ExpectedBehavior: map[string]any{
				"response_style":      "hostile and abusive",
				"payment_willingness": "none",
				"information_sharing": "refuses",
				"negotiation_style":   "confrontational",
			},
			SuccessCriteria: map[string]any{
				"professionalism_maintained":    true,
				"abuse_handled_appropriately":   true,
				"call_terminated_properly":      true,
				"compliance_protocols_followed": true,
			},
			RiskLevel:       "high",
			DifficultyScore: 0.9,
		},
		{
			Name:              "Elderly Customer",
			Description:       "An elderly customer who may be confused, hard of hearing, or need extra patience and clear communication.",
			PersonalityTraits: []string{"confused", "patient", "respectful", "needs_clarity"},
			ExpectedBehavior: map[string]any{
				"response_style":      "confused but respectful",
				"payment_willingness": "moderate",
				"information_sharing": "slow but honest",
				"negotiation_style":   "needs_guidance",
			},
			SuccessCriteria: map[string]any{
				"patience_shown":         true,
				"clear_communication":    true,
				"appropriate_pace":       true,
				"respectful_interaction": true,
			},
			RiskLevel:       "low",
			DifficultyScore: 0.4,
		},
		{
			Name:              "Unemployed Customer",
			Description:       "A customer who has lost their job and is struggling financially. They need empathy and realistic payment options.",
			PersonalityTraits: []string{"stressed", "embarrassed", "hopeful", "seeking_help"},
			ExpectedBehavior: map[string]any{
				"response_style":      "stressed but honest",
				"payment_willingness": "very_limited",
				"information_sharing": "open about situation",
				"negotiation_style":   "seeking_understanding",
			},
			SuccessCriteria: map[string]any{
				"empathy_shown":               true,
				"realistic_expectations":      true,
				"payment_plan_offered":        true,
				"customer_dignity_maintained": true,
			},
			RiskLevel:       "medium",
			DifficultyScore: 0.6,
		},
		{
			Name:              "Evasive Customer",
			Description:       "A customer who tries to avoid the conversation, makes excuses, or tries to end the call quickly.",
			PersonalityTraits: []string{"evasive", "avoidant", "deflective", "uncooperative"},
			ExpectedBehavior: map[string]any{
				"response_style":      "evasive and avoidant",
				"payment_willingness": "none",
				"information_sharing": "minimal",
				"negotiation_style":   "avoidant",
			},
			SuccessCriteria: map[string]any{
				"conversation_maintained":        true,
				"evasion_handled_professionally": true,
				"purpose_kept_clear":             true,
				"customer_engaged":               true,
			},
			RiskLevel:       "medium",
			DifficultyScore: 0.7,
		},
		{
			Name:              "Payment Plan Customer",
			Description:       "A customer who wants to set up a payment plan but needs guidance on the process and options available.",
			PersonalityTraits: []string{"cooperative", "organized", "planning-oriented", "responsible"},
			ExpectedBehavior: map[string]any{
				"response_style":      "cooperative and organized",
				"payment_willingness": "high with structure",
				"information_sharing": "open and detailed",
				"negotiation_style":   "collaborative",
			},
			SuccessCriteria: map[string]any{
				"payment_plan_established":   true,
				"customer_understands_terms": true,
				"realistic_timeline":         true,
				"follow_up_scheduled":        true,
			},
			RiskLevel:       "low",
			DifficultyScore: 0.3,
		},
	})
}
