package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys for the live template served to the voice agent.
const (
	keyTemplate  = "coach:template:current"
	keyHash      = "coach:template:hash"
	keyIteration = "coach:template:iteration"
)

// ErrNoTemplate is returned when no template has been published yet.
var ErrNoTemplate = errors.New("no published template")

// Sink mirrors the current bot iteration into Redis, where the voice agent
// reads its instruction template at call start.
type Sink struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func New(redisURL string, logger *slog.Logger) (*Sink, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Sink{rdb: redis.NewClient(opts), logger: logger}, nil
}

// NewWithClient wires an existing Redis client, used by tests.
func NewWithClient(rdb *redis.Client, logger *slog.Logger) *Sink {
	return &Sink{rdb: rdb, logger: logger}
}

// Publish writes the template, its hash and iteration number in one
// transaction so the agent never observes a half-updated set of keys.
func (s *Sink) Publish(ctx context.Context, templateText, templateHash string, iterationNumber int) error {
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, keyTemplate, templateText, 0)
	pipe.Set(ctx, keyHash, templateHash, 0)
	pipe.Set(ctx, keyIteration, iterationNumber, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish template: %w", err)
	}

	s.logger.Info("template published to sink",
		"iteration", iterationNumber,
		"hash", templateHash)
	return nil
}

// Current returns the live template text, or ErrNoTemplate when the sink
// has never been written.
func (s *Sink) Current(ctx context.Context) (string, error) {
	text, err := s.rdb.Get(ctx, keyTemplate).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoTemplate
	}
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}
	return text, nil
}

// CurrentIteration returns the iteration number of the live template.
func (s *Sink) CurrentIteration(ctx context.Context) (int, error) {
	n, err := s.rdb.Get(ctx, keyIteration).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoTemplate
	}
	if err != nil {
		return 0, fmt.Errorf("read iteration: %w", err)
	}
	return n, nil
}

// Ping verifies connectivity at startup.
func (s *Sink) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return s.rdb.Close()
}
