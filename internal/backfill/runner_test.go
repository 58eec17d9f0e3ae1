package backfill

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/riverline-agency/coach/internal/store"
	"github.com/riverline-agency/coach/internal/transcript"
)

type fakeStore struct {
	pending  map[string]store.CallRecord // room_id → record missing analysis
	upserted []store.CallRecord
}

func (f *fakeStore) CallsMissingAnalysis(_ context.Context, afterRoomID string, limit int) ([]store.CallRecord, error) {
	var ids []string
	for id := range f.pending {
		if id > afterRoomID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	var out []store.CallRecord
	for _, id := range ids {
		out = append(out, f.pending[id])
	}
	return out, nil
}

func (f *fakeStore) UpsertCall(_ context.Context, rec store.CallRecord) (uuid.UUID, error) {
	f.upserted = append(f.upserted, rec)
	delete(f.pending, rec.RoomID)
	return uuid.New(), nil
}

func pendingCall(roomID, customerText string) store.CallRecord {
	return store.CallRecord{
		RoomID: roomID,
		Segments: []transcript.Segment{
			{Speaker: transcript.SpeakerAgent, Text: "Hello, this is Tira from Riverline Bank."},
			{Speaker: transcript.SpeakerCustomer, Text: customerText},
		},
		ProcessingStatus: "pending",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunAnalyzesPendingCalls(t *testing.T) {
	fs := &fakeStore{pending: map[string]store.CallRecord{
		"room-a": pendingCall("room-a", "I can pay the full amount today."),
		"room-b": pendingCall("room-b", "This debt is not mine, I dispute it."),
		"room-c": pendingCall("room-c", "I lost my job and can't afford anything."),
	}}

	statePath := filepath.Join(t.TempDir(), "state.json")
	r := NewRunner(Config{BatchSize: 2, StatePath: statePath}, fs, testLogger())

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fs.upserted) != 3 {
		t.Fatalf("expected 3 calls analyzed, got %d", len(fs.upserted))
	}
	for _, rec := range fs.upserted {
		if rec.Risk == nil {
			t.Errorf("call %s missing risk analysis", rec.RoomID)
		}
		if rec.Performance == nil {
			t.Errorf("call %s missing performance analysis", rec.RoomID)
		}
		if rec.ProcessingStatus != "backfilled" {
			t.Errorf("call %s status %q, want backfilled", rec.RoomID, rec.ProcessingStatus)
		}
	}

	state, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if state.CallsAnalyzed != 3 {
		t.Errorf("expected 3 calls recorded in state, got %d", state.CallsAnalyzed)
	}
	if state.Cursor != "room-c" {
		t.Errorf("expected cursor at room-c, got %q", state.Cursor)
	}
}

func TestRunResumesFromCursor(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")

	state, err := LoadState(statePath)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	state.Cursor = "room-b"
	if err := state.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fs := &fakeStore{pending: map[string]store.CallRecord{
		"room-a": pendingCall("room-a", "wrong number, there's no one by that name here"),
		"room-c": pendingCall("room-c", "can you call me back tomorrow?"),
	}}
	r := NewRunner(Config{BatchSize: 10, StatePath: statePath}, fs, testLogger())

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fs.upserted) != 1 {
		t.Fatalf("expected 1 call analyzed after cursor, got %d", len(fs.upserted))
	}
	if fs.upserted[0].RoomID != "room-c" {
		t.Errorf("expected room-c to be analyzed, got %s", fs.upserted[0].RoomID)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	fs := &fakeStore{pending: map[string]store.CallRecord{
		"room-a": pendingCall("room-a", "I refuse to pay."),
	}}
	statePath := filepath.Join(t.TempDir(), "state.json")
	r := NewRunner(Config{BatchSize: 10, DryRun: true, StatePath: statePath}, fs, testLogger())

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(fs.upserted) != 0 {
		t.Errorf("expected no writes in dry run, got %d", len(fs.upserted))
	}
}

func TestRunCanceledContext(t *testing.T) {
	fs := &fakeStore{pending: map[string]store.CallRecord{
		"room-a": pendingCall("room-a", "I refuse to pay."),
	}}
	statePath := filepath.Join(t.TempDir(), "state.json")
	r := NewRunner(Config{BatchSize: 10, StatePath: statePath}, fs, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Run(ctx); err == nil {
		t.Error("expected error from canceled context")
	}
	if len(fs.upserted) != 0 {
		t.Errorf("expected no writes after cancellation, got %d", len(fs.upserted))
	}
}
