package bus

// NATS subjects for the analysis and improvement loop.
const (
	// SubjectCallCompleted is published by the voice stack when a call ends.
	SubjectCallCompleted = "voice.call.completed"
	// SubjectCallAnalyzed carries the post-call analysis result.
	SubjectCallAnalyzed = "voice.call.analyzed"
	// SubjectTemplatePublished announces a newly committed bot iteration.
	SubjectTemplatePublished = "voice.template.published"
)

// CallCompletedEvent triggers analysis of a finished call. The transcript is
// fetched by room id rather than carried on the wire.
type CallCompletedEvent struct {
	RoomID     string `json:"room_id"`
	AgentName  string `json:"agent_name,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	EndedAt    string `json:"ended_at,omitempty"`
}

// CallAnalyzedEvent summarises one analyzed call for downstream consumers.
type CallAnalyzedEvent struct {
	RoomID        string   `json:"room_id"`
	RiskLevel     string   `json:"risk_level"`
	RiskScore     float64  `json:"risk_score"`
	JudgeScore    *float64 `json:"judge_score,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
	CycleStatus   string   `json:"cycle_status"`
	IterationUsed int      `json:"iteration_used"`
}

// TemplatePublishedEvent announces that a new template iteration became
// current and was written to the live sink.
type TemplatePublishedEvent struct {
	IterationNumber int     `json:"iteration_number"`
	TemplateHash    string  `json:"template_hash"`
	AverageScore    float64 `json:"average_score"`
	Improvement     float64 `json:"improvement_from_previous"`
}
