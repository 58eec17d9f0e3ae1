package sink

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestSink(t *testing.T) *Sink {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewWithClient(rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishAndCurrent(t *testing.T) {
	s := setupTestSink(t)
	ctx := context.Background()

	err := s.Publish(ctx, "You are Tira...", "abc123", 3)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	text, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if text != "You are Tira..." {
		t.Errorf("expected published template, got %q", text)
	}

	n, err := s.CurrentIteration(ctx)
	if err != nil {
		t.Fatalf("CurrentIteration failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected iteration 3, got %d", n)
	}
}

func TestPublishOverwrites(t *testing.T) {
	s := setupTestSink(t)
	ctx := context.Background()

	if err := s.Publish(ctx, "first", "h1", 1); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := s.Publish(ctx, "second", "h2", 2); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	text, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if text != "second" {
		t.Errorf("expected latest template, got %q", text)
	}
	n, _ := s.CurrentIteration(ctx)
	if n != 2 {
		t.Errorf("expected iteration 2, got %d", n)
	}
}

func TestCurrentEmptySink(t *testing.T) {
	s := setupTestSink(t)
	ctx := context.Background()

	_, err := s.Current(ctx)
	if !errors.Is(err, ErrNoTemplate) {
		t.Errorf("expected ErrNoTemplate, got %v", err)
	}

	_, err = s.CurrentIteration(ctx)
	if !errors.Is(err, ErrNoTemplate) {
		t.Errorf("expected ErrNoTemplate, got %v", err)
	}
}

func TestPing(t *testing.T) {
	s := setupTestSink(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
