package transcript

import (
	"context"
	"strings"
)

// Speaker identifies who produced a transcript segment.
type Speaker string

const (
	SpeakerAgent    Speaker = "agent"
	SpeakerCustomer Speaker = "customer"
	SpeakerUnknown  Speaker = "unknown"
)

// Segment is a single speaker-tagged utterance. Segments are ordered
// chronologically; ordering is load-bearing for flow scoring.
type Segment struct {
	Speaker    Speaker  `json:"speaker"`
	Text       string   `json:"text"`
	StartTime  float64  `json:"start_time"`
	EndTime    float64  `json:"end_time"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Source provides transcripts for completed calls. Implementations may
// return an empty slice when the transcript is not yet available.
type Source interface {
	GetTranscript(ctx context.Context, roomID string) ([]Segment, error)
}

// SpeakerText concatenates the lower-cased text of all segments spoken by
// the given speaker, joined by single spaces.
func SpeakerText(segments []Segment, speaker Speaker) string {
	var parts []string
	for _, seg := range segments {
		if seg.Speaker == speaker {
			parts = append(parts, strings.ToLower(seg.Text))
		}
	}
	return strings.Join(parts, " ")
}

// Render formats the transcript as "speaker: text" lines for judge prompts.
func Render(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(string(seg.Speaker))
		b.WriteString(": ")
		b.WriteString(seg.Text)
		b.WriteString("\n")
	}
	return b.String()
}
