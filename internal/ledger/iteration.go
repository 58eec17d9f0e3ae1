// Package ledger defines the versioned history of instruction templates and
// the pure trend math over it. Persistence lives in the store package.
package ledger

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Iteration is one committed template version. Records are immutable after
// creation except for the is_current flag flip and the optional metrics
// annotation. Exactly one iteration is current at any committed state.
type Iteration struct {
	ID                      uuid.UUID       `json:"id"`
	IterationNumber         int             `json:"iteration_number"`
	TemplateText            string          `json:"template_text"`
	TemplateHash            string          `json:"template_hash"`
	AverageScore            float64         `json:"average_score"`
	ImprovementFromPrevious float64         `json:"improvement_from_previous"`
	IsCurrent               bool            `json:"is_current"`
	Metrics                 json.RawMessage `json:"metrics,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
}
