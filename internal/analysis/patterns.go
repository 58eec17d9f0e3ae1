package analysis

import "regexp"

// RiskCategory names one of the boolean risk signals extracted from the
// customer side of a call.
type RiskCategory string

const (
	CategoryPaymentAgreed        RiskCategory = "payment_agreed"
	CategoryPaymentRefused       RiskCategory = "payment_refused"
	CategoryFinancialHardship    RiskCategory = "financial_hardship_mentioned"
	CategoryDisputeRaised        RiskCategory = "dispute_raised"
	CategoryBankruptcyMentioned  RiskCategory = "bankruptcy_mentioned"
	CategoryAbusiveLanguage      RiskCategory = "abusive_language"
	CategoryWrongNumber          RiskCategory = "wrong_number"
	CategoryCallbackRequested    RiskCategory = "callback_requested"
	CategoryPaymentPlanRequested RiskCategory = "payment_plan_requested"
)

// categorySpec binds a risk category to its lexical patterns and its
// contribution to the risk score. Weights are hand-tuned constants carried
// over from production; they are a tuning surface, not a fitted model.
type categorySpec struct {
	category RiskCategory
	weight   float64
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return out
}

// riskTaxonomy is the ordered table of risk categories. Matching is
// first-match-wins within a category: one hit sets the flag, multiplicity
// is irrelevant. Categories are independent evidence signals; a transcript
// can set several flags at once.
var riskTaxonomy = []categorySpec{
	{
		category: CategoryPaymentAgreed,
		weight:   -0.20,
		patterns: compileAll(
			`\b(yes|yeah|sure|okay|ok|alright|fine|absolutely|definitely|of course)\b`,
			`\b(i can pay|i'll pay|i will pay|i'm willing|i agree|i accept)\b`,
			`\b(that works|that sounds good|that's fine|that's okay|perfect|great)\b`,
			`\b(payment|pay|paid|paying)\b.*\b(agreed|agree|yes|okay|fine|good|acceptable)\b`,
			`\b(when|how|where|what time).*\b(pay|payment|make payment|send payment)\b`,
			`\b(amount|total|balance|due|full amount|partial payment)\b.*\b(okay|fine|yes|good|acceptable)\b`,
			`\b(i'll take care of it|i'll handle it|i'll send it|i'll make it)\b`,
			`\b(you can count on me|i promise|i guarantee|i commit)\b`,
			`\b(consider it done|it's a deal|we have a deal|deal)\b`,
			`\b(credit card|debit card|bank transfer|check|online|website)\b.*\b(works|fine|okay|good)\b`,
			`\b(i can do that|i'll do that|sounds good|that works for me)\b`,
		),
	},
	{
		category: CategoryPaymentRefused,
		weight:   0.30,
		patterns: compileAll(
			`\b(no|nope|never|absolutely not|definitely not|not happening)\b`,
			`\b(not paying|won't pay|can't pay|refuse|refusing|decline|declining)\b`,
			`\b(not going to pay|not gonna pay|refuse to pay)\b`,
			`\b(i won't pay|i can't pay|i refuse|i decline|i'm not paying)\b`,
			`\b(dispute|disputing|challenging|not my debt|not my responsibility)\b`,
			`\b(this is wrong|this is incorrect|this is not right|this is false)\b`,
			`\b(i don't owe|i don't owe this|this isn't mine|not my account)\b`,
			`\b(harassment|harassing|stop calling|cease and desist|legal action)\b`,
			`\b(lawyer|attorney|sue|suing|court|lawsuit|legal)\b`,
			`\b(you can't make me|you can't force me|i'm not obligated)\b`,
			`\b(get lost|go away|leave me alone|stop bothering me)\b`,
			`\b(i don't care|i don't give a damn)\b`,
			`\b(you're wasting your time|this is pointless|forget it)\b`,
		),
	},
	{
		category: CategoryFinancialHardship,
		weight:   0.20,
		patterns: compileAll(
			`\b(lost my job|unemployed|laid off|fired|jobless|out of work|no job|between jobs)\b`,
			`\b(reduced hours|cut hours|part time|temporary|contract work)\b`,
			`\b(can't afford|can't pay|no money|broke|poor|penniless|destitute)\b`,
			`\b(don't have.*money|no funds|no cash|no income|no salary|no paycheck)\b`,
			`\b(money.*tight|financially.*struggling|struggling.*financially)\b`,
			`\b(can't make.*payment|unable.*pay|not able.*pay|can't cover)\b`,
			`\b(rough patch|tough time|difficult time|hard time|bad situation)\b`,
			`\b(going through.*rough|having.*difficult|in.*trouble|in.*bad.*spot)\b`,
			`\b(struggling|having.*hard|going through.*hard|facing.*difficult)\b`,
			`\b(medical|hospital|sick|illness|emergency|accident|surgery)\b.*\b(expense|cost|bill|debt|treatment)\b`,
			`\b(health.*problem|medical.*issue|hospital.*bill|doctor.*bill)\b`,
			`\b(divorce|separated|single parent|widowed|death.*family|funeral)\b`,
			`\b(family.*emergency|personal.*crisis|life.*change)\b`,
			`\b(bankrupt|bankruptcy|chapter 7|chapter 13|debt.*relief)\b`,
			`\b(filing.*bankruptcy|declared.*bankruptcy|considering.*bankruptcy)\b`,
			`\b(financial hardship|financial difficulty|money.*problem|financial.*crisis)\b`,
			`\b(can't make ends meet|barely getting by|barely surviving|living paycheck to paycheck)\b`,
			`\b(behind.*bills|overdue.*bills|collection.*calls|debt.*collector)\b`,
			`\b(credit.*problem|bad.*credit|loan.*denied)\b`,
			`\b(desperate|hopeless|overwhelmed|stressed.*money|worried.*money)\b`,
			`\b(drowning.*debt|buried.*debt|sinking.*financially|financial.*ruin)\b`,
		),
	},
	{
		category: CategoryDisputeRaised,
		weight:   0.30,
		patterns: compileAll(
			`\b(dispute|disputing|challenging|not my debt|not my responsibility)\b`,
			`\b(this is wrong|this is incorrect|this is not right|this is false)\b`,
			`\b(i don't owe|i don't owe this|this isn't mine|not my account)\b`,
			`\b(i never agreed|i never signed|i never authorized|unauthorized)\b`,
			`\b(never signed|didn't sign|fraud|identity theft|stolen identity)\b`,
			`\b(someone else|not me|wrong person|mistaken identity)\b`,
			`\b(fraudulent|fake|forged|stolen)\b`,
			`\b(proof|evidence|documentation|validation|verification)\b`,
			`\b(show me|prove it|send me|paperwork)\b`,
			`\b(i need proof|i want proof|where's the proof|show documentation)\b`,
			`\b(attorney|lawyer|legal|court|lawsuit|sue|suing)\b`,
			`\b(legal action|legal advice|my lawyer|contact my attorney)\b`,
			`\b(fair debt collection|fdcpa|consumer rights|my rights)\b`,
			`\b(verify|confirm|confirmation|validate)\b`,
			`\b(prove this is me|verify my identity|confirm my account)\b`,
		),
	},
	{
		category: CategoryBankruptcyMentioned,
		weight:   0.40,
		patterns: compileAll(
			`\b(bankruptcy|bankrupt|chapter 7|chapter 13|chapter 11)\b`,
			`\b(filing for bankruptcy|declared bankruptcy|filed bankruptcy)\b`,
			`\b(going bankrupt|becoming bankrupt|considering bankruptcy)\b`,
			`\b(automatic stay|discharge|trustee|creditor meeting)\b`,
			`\b(means test|exemptions|liquidation|reorganization)\b`,
			`\b(341 meeting|bankruptcy court)\b`,
			`\b(insolvent|insolvency|unable to pay debts|can't pay creditors)\b`,
			`\b(total debt|overwhelming debt|debt relief|debt settlement)\b`,
			`\b(credit counseling|debt management|debt consolidation)\b`,
		),
	},
	{
		category: CategoryAbusiveLanguage,
		weight:   0.20,
		patterns: compileAll(
			`\b(fuck|shit|damn|bitch|asshole|idiot|stupid|bastard|moron)\b`,
			`\b(hell|dammit|goddamn|bloody|crap|bullshit)\b`,
			`\b(piss|pissed|pissed off|screw|screwed|screwing)\b`,
			`\b(go to hell|fuck off|piss off|screw you|damn you)\b`,
			`\b(get lost|go away|shut up|shut the hell up|shut your mouth)\b`,
			`\b(you suck|you're stupid|you're an idiot|you're a moron)\b`,
			`\b(harassment|harassing|stop calling|stop bothering me)\b`,
			`\b(you're harassing me|this is harassment|stop harassing)\b`,
			`\b(leave me alone|get off my back|back off|buzz off)\b`,
			`\b(i'll sue|i'm suing|lawsuit|legal action|my lawyer)\b`,
			`\b(you'll be sorry|you'll pay|i'll get you|watch out)\b`,
			`\b(cease and desist|restraining order|police|cops)\b`,
			`\b(you people|you guys|you all|you bunch|you idiots)\b`,
			`\b(this is ridiculous|this is stupid|this is bullshit)\b`,
			`\b(what the hell|what the fuck|are you kidding me)\b`,
		),
	},
	{
		category: CategoryWrongNumber,
		weight:   0.10,
		patterns: compileAll(
			`\b(wrong number|not me|don't know|never heard|never heard of)\b`,
			`\b(not the right person|wrong person|wrong guy|wrong lady)\b`,
			`\b(you have the wrong number|this is the wrong number)\b`,
			`\b(i don't know who that is|i don't know that person)\b`,
			`\b(who is this|what is this|what are you talking about)\b`,
			`\b(i don't have|i don't own|i don't have an account)\b`,
			`\b(never had|never opened|never applied|never signed up)\b`,
			`\b(that's not my name|my name is not|i'm not|that's not me)\b`,
			`\b(you're looking for someone else|different person)\b`,
			`\b(no one by that name|nobody here by that name)\b`,
			`\b(this is a new number|just got this number|recently changed)\b`,
			`\b(previous owner|old number|someone else had this)\b`,
		),
	},
	{
		category: CategoryCallbackRequested,
		weight:   0.05,
		patterns: compileAll(
			`\b(call back|callback|call me back|call me later)\b`,
			`\b(ring me back|phone me back|get back to me)\b`,
			`\b(can you call me|please call me|call me again)\b`,
			`\b(later|tomorrow|next week|different time|another time)\b`,
			`\b(this afternoon|this evening|tonight|in the morning)\b`,
			`\b(weekend|monday|tuesday|wednesday|thursday|friday)\b`,
			`\b(not now|not right now|can't talk now|busy right now)\b`,
			`\b(better time|more convenient|when i'm free|when i have time)\b`,
			`\b(i'm busy|i'm at work|i'm driving|i'm in a meeting)\b`,
			`\b(can't talk|can't speak|not a good time|bad timing)\b`,
			`\b(call me at|try me at|reach me at|contact me at)\b`,
			`\b(after|before|around|about|sometime)\b.*\b(o'clock|am|pm)\b`,
		),
	},
	{
		category: CategoryPaymentPlanRequested,
		weight:   0.10,
		patterns: compileAll(
			`\b(payment plan|installment|monthly payment|smaller payments)\b`,
			`\b(work out|arrangement|settlement|payment arrangement)\b`,
			`\b(afford|manage|budget|budget for|manage to pay)\b`,
			`\b(smaller amount|less money|lower payment|reduced payment)\b`,
			`\b(monthly|weekly|bi-weekly|every month|every week)\b`,
			`\b(extend|extension|more time|longer period|spread out)\b`,
			`\b(work with me|help me|accommodate|flexible|flexibility)\b`,
			`\b(manageable|reasonable|affordable|within my budget)\b`,
			`\b(what can we do|what are my options|what's possible)\b`,
			`\b(partial payment|down payment|initial payment|first payment)\b`,
			`\b(restructure|renegotiate|modify|adjust|change)\b`,
			`\b(hardship|hardship program|assistance|help|support)\b`,
			`\b(give me time|extra time|additional time)\b`,
			`\b(until|when|after|once|as soon as)\b.*\b(i can|i get|i have)\b`,
		),
	},
}

// Agent-side performance vocabulary.
var (
	negotiationPatterns = compileAll(
		`\b(work with you|help you|accommodate)\b`,
		`\b(payment plan|installment|arrangement)\b`,
		`\b(settlement|discount|reduction)\b`,
	)

	empathyPatterns = compileAll(
		`\b(understand|sorry|apologize|empathize)\b`,
		`\b(difficult|challenging|tough situation)\b`,
		`\b(help|assist|support)\b`,
	)

	unprofessionalPatterns = compileAll(
		`\b(fuck|shit|damn|bitch|asshole|idiot|stupid)\b`,
		`\b(go to hell|fuck off|piss off)\b`,
		`\b(threaten|threat|sue|legal action)\b`,
	)
)

// debtKeywords score topical relevance for both sides of the conversation.
var debtKeywords = []string{
	"payment", "balance", "due", "account", "debt", "collection",
	"amount", "settlement", "arrangement", "plan",
}

// closingPhrases are searched in the agent text of the final segments to
// decide whether the call ended with a proper wrap-up.
var closingPhrases = []string{
	"thank you", "goodbye", "have a good day", "take care",
	"call back", "follow up", "next steps",
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
