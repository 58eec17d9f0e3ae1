// Package template guards the live agent instruction template. Candidates
// come from a generative model and are untrusted: the validator is the gate
// that keeps a malformed or truncated rewrite from ever reaching production.
package template

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// requiredSections are the structural markers every valid template carries,
// in document order.
var requiredSections = []string{
	"You are Tira, a polite and professional AI voice agent",
	"CUSTOMER CONTEXT:",
	"CALL FLOW:",
	"CONVERSATION RULES:",
	"COMMON SCENARIOS & RESPONSES:",
	"Payment Agreement:",
	"Financial Hardship:",
	"Payment Dispute:",
	"Requesting Payment Plan:",
	"Already Paid:",
}

// requiredPlaceholders are the variable tokens the live agent substitutes
// at call time; losing one breaks every future call.
var requiredPlaceholders = []string{
	"{customer_name}",
	"{account_last4}",
	"{balance_amount}",
	"{days_past_due}",
	"{customer_address}",
	"{phone_number}",
	"{original_creditor}",
	"{last_payment_amount}",
	"{last_payment_date}",
}

const (
	minTemplateLength = 1000
	maxTemplateLength = 10000

	// closingMarker is the organization sign-off expected near the end of a
	// complete template.
	closingMarker = "Riverline Bank"
)

// SectionChange records one paragraph that differs between the current and
// candidate templates. Audit only; never affects the verdict.
type SectionChange struct {
	Section int    `json:"section"`
	Current string `json:"current"`
	New     string `json:"new"`
}

// Result is the validator's verdict. Warnings never block acceptance.
type Result struct {
	IsValid  bool            `json:"is_valid"`
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
	Changes  []SectionChange `json:"changes"`
}

// Validate checks that the candidate preserves the template's structure and
// does not appear truncated. All error-level checks must pass for IsValid.
func Validate(candidate, current string) Result {
	result := Result{IsValid: true}

	for _, section := range requiredSections {
		if !strings.Contains(candidate, section) {
			result.Errors = append(result.Errors, fmt.Sprintf("missing required section: %s", section))
			result.IsValid = false
		}
	}

	for _, placeholder := range requiredPlaceholders {
		if !strings.Contains(candidate, placeholder) {
			result.Errors = append(result.Errors, fmt.Sprintf("missing required placeholder: %s", placeholder))
			result.IsValid = false
		}
	}

	if truncated(candidate) {
		result.Errors = append(result.Errors, "template appears to be truncated - missing proper ending")
		result.IsValid = false
	}

	if len(candidate) < minTemplateLength {
		result.Warnings = append(result.Warnings, "template seems too short - may be incomplete")
	} else if len(candidate) > maxTemplateLength {
		result.Warnings = append(result.Warnings, "template seems too long - may have issues")
	}

	if candidate != current {
		result.Changes = diffSections(current, candidate)
	}

	return result
}

// truncated is a heuristic completeness check, not a parse: a complete
// template ends on a terminal sentence or carries the organization's
// closing phrase within its final stretch.
func truncated(candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return true
	}
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, `"""`) {
		return false
	}

	tail := trimmed
	if len(tail) > 100 {
		tail = tail[len(tail)-100:]
	}
	return !strings.Contains(tail, closingMarker)
}

// diffSections compares the two templates paragraph by paragraph, truncating
// each side to 100 characters for the audit log.
func diffSections(current, candidate string) []SectionChange {
	currentSections := strings.Split(current, "\n\n")
	candidateSections := strings.Split(candidate, "\n\n")

	n := len(currentSections)
	if len(candidateSections) < n {
		n = len(candidateSections)
	}

	var changes []SectionChange
	for i := 0; i < n; i++ {
		if strings.TrimSpace(currentSections[i]) != strings.TrimSpace(candidateSections[i]) {
			changes = append(changes, SectionChange{
				Section: i,
				Current: clip(currentSections[i], 100),
				New:     clip(candidateSections[i], 100),
			})
		}
	}
	return changes
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// Hash returns the hex-encoded SHA-256 digest of the template text, used
// for change detection between candidate and current.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
