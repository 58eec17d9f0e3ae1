package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverline-agency/coach/internal/analysis"
	"github.com/riverline-agency/coach/internal/transcript"
)

// ErrCallNotFound is returned when no call record exists for a room id.
var ErrCallNotFound = errors.New("call not found")

var _ transcript.Source = (*Store)(nil)

// CallRecord is the stored analysis output for one completed call.
type CallRecord struct {
	ID               uuid.UUID                `json:"id"`
	RoomID           string                   `json:"room_id"`
	Segments         []transcript.Segment     `json:"segments"`
	Risk             *analysis.RiskAnalysis   `json:"risk,omitempty"`
	Performance      *analysis.BotPerformance `json:"performance,omitempty"`
	Suggestions      []string                 `json:"suggestions"`
	JudgeScore       *float64                 `json:"judge_score,omitempty"`
	ProcessingStatus string                   `json:"processing_status"`
	CreatedAt        time.Time                `json:"created_at"`
}

// UpsertCall writes a call record keyed by room id. Re-running analysis for
// the same room overwrites the previous row, keeping retries idempotent.
func (s *Store) UpsertCall(ctx context.Context, rec CallRecord) (uuid.UUID, error) {
	segments, err := json.Marshal(rec.Segments)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal segments: %w", err)
	}
	risk, err := marshalNullable(rec.Risk)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal risk: %w", err)
	}
	perf, err := marshalNullable(rec.Performance)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal performance: %w", err)
	}
	suggestions, err := json.Marshal(rec.Suggestions)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal suggestions: %w", err)
	}

	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO calls (id, room_id, segments, risk, performance, suggestions, judge_score, processing_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (room_id) DO UPDATE SET
			segments = EXCLUDED.segments,
			risk = EXCLUDED.risk,
			performance = EXCLUDED.performance,
			suggestions = EXCLUDED.suggestions,
			judge_score = EXCLUDED.judge_score,
			processing_status = EXCLUDED.processing_status
		RETURNING id`,
		id, rec.RoomID, segments, risk, perf, suggestions, rec.JudgeScore, rec.ProcessingStatus,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert call: %w", err)
	}
	return id, nil
}

// GetCall reads one call record by room id.
func (s *Store) GetCall(ctx context.Context, roomID string) (CallRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, room_id, segments, risk, performance, suggestions, judge_score, processing_status, created_at
		FROM calls WHERE room_id = $1`, roomID)

	rec, err := scanCall(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallRecord{}, ErrCallNotFound
	}
	if err != nil {
		return CallRecord{}, fmt.Errorf("read call %s: %w", roomID, err)
	}
	return rec, nil
}

// GetTranscript returns the stored transcript for a room, or an empty slice
// when the call exists but has no transcript yet. Implements transcript.Source.
func (s *Store) GetTranscript(ctx context.Context, roomID string) ([]transcript.Segment, error) {
	rec, err := s.GetCall(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return rec.Segments, nil
}

// CallsMissingAnalysis returns up to limit calls with a room id greater than
// afterRoomID that have a transcript but no stored risk analysis, ordered by
// room id. Used by the backfill runner as a resumable cursor scan.
func (s *Store) CallsMissingAnalysis(ctx context.Context, afterRoomID string, limit int) ([]CallRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id, segments, risk, performance, suggestions, judge_score, processing_status, created_at
		FROM calls
		WHERE room_id > $1 AND risk IS NULL AND jsonb_array_length(segments) > 0
		ORDER BY room_id ASC
		LIMIT $2`, afterRoomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query calls missing analysis: %w", err)
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call rows: %w", err)
	}
	return out, nil
}

func scanCall(row pgx.Row) (CallRecord, error) {
	var rec CallRecord
	var segments, suggestions []byte
	var risk, perf []byte

	err := row.Scan(&rec.ID, &rec.RoomID, &segments, &risk, &perf, &suggestions,
		&rec.JudgeScore, &rec.ProcessingStatus, &rec.CreatedAt)
	if err != nil {
		return CallRecord{}, err
	}

	if err := json.Unmarshal(segments, &rec.Segments); err != nil {
		return CallRecord{}, fmt.Errorf("unmarshal segments: %w", err)
	}
	if len(suggestions) > 0 {
		if err := json.Unmarshal(suggestions, &rec.Suggestions); err != nil {
			return CallRecord{}, fmt.Errorf("unmarshal suggestions: %w", err)
		}
	}
	if len(risk) > 0 {
		rec.Risk = &analysis.RiskAnalysis{}
		if err := json.Unmarshal(risk, rec.Risk); err != nil {
			return CallRecord{}, fmt.Errorf("unmarshal risk: %w", err)
		}
	}
	if len(perf) > 0 {
		rec.Performance = &analysis.BotPerformance{}
		if err := json.Unmarshal(perf, rec.Performance); err != nil {
			return CallRecord{}, fmt.Errorf("unmarshal performance: %w", err)
		}
	}
	return rec, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch t := v.(type) {
	case *analysis.RiskAnalysis:
		if t == nil {
			return nil, nil
		}
	case *analysis.BotPerformance:
		if t == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
