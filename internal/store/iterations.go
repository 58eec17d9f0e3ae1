package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverline-agency/coach/internal/ledger"
)

// ErrNoCurrentIteration is returned when the ledger is empty.
var (
	ErrNoCurrentIteration = errors.New("no current iteration")
	ErrIterationNotFound  = errors.New("iteration not found")
)

// CreateIteration appends a new template version and makes it current.
// The unset of the previous current flag and the insert of the new record
// happen in one transaction, so committed reads never observe zero or two
// current iterations.
func (s *Store) CreateIteration(ctx context.Context, templateText, templateHash string, averageScore float64) (ledger.Iteration, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Iteration{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var prevNumber int
	var prevScore float64
	err = tx.QueryRow(ctx, `
		SELECT iteration_number, average_score FROM bot_iterations
		WHERE is_current ORDER BY iteration_number DESC LIMIT 1`,
	).Scan(&prevNumber, &prevScore)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return ledger.Iteration{}, fmt.Errorf("read current iteration: %w", err)
	}

	it := ledger.Iteration{
		ID:              uuid.New(),
		IterationNumber: prevNumber + 1,
		TemplateText:    templateText,
		TemplateHash:    templateHash,
		AverageScore:    averageScore,
		IsCurrent:       true,
	}
	if prevNumber > 0 {
		it.ImprovementFromPrevious = averageScore - prevScore
	}

	if _, err := tx.Exec(ctx, `
		UPDATE bot_iterations SET is_current = false WHERE is_current`,
	); err != nil {
		return ledger.Iteration{}, fmt.Errorf("unset current iteration: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bot_iterations
			(id, iteration_number, template_text, template_hash, average_score, improvement_from_previous, is_current, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, now())
		RETURNING created_at`,
		it.ID, it.IterationNumber, it.TemplateText, it.TemplateHash, it.AverageScore, it.ImprovementFromPrevious,
	).Scan(&it.CreatedAt)
	if err != nil {
		return ledger.Iteration{}, fmt.Errorf("insert iteration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ledger.Iteration{}, fmt.Errorf("commit: %w", err)
	}
	return it, nil
}

// CurrentIteration returns the single current template version.
func (s *Store) CurrentIteration(ctx context.Context) (ledger.Iteration, error) {
	row := s.pool.QueryRow(ctx, iterationSelect+` WHERE is_current`)
	it, err := scanIteration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Iteration{}, ErrNoCurrentIteration
	}
	if err != nil {
		return ledger.Iteration{}, fmt.Errorf("read current iteration: %w", err)
	}
	return it, nil
}

// IterationByNumber returns one iteration by its number.
func (s *Store) IterationByNumber(ctx context.Context, number int) (ledger.Iteration, error) {
	row := s.pool.QueryRow(ctx, iterationSelect+` WHERE iteration_number = $1`, number)
	it, err := scanIteration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Iteration{}, ErrIterationNotFound
	}
	if err != nil {
		return ledger.Iteration{}, fmt.Errorf("read iteration %d: %w", number, err)
	}
	return it, nil
}

// IterationHistory returns all iterations ordered by iteration number ascending.
func (s *Store) IterationHistory(ctx context.Context) ([]ledger.Iteration, error) {
	rows, err := s.pool.Query(ctx, iterationSelect+` ORDER BY iteration_number ASC`)
	if err != nil {
		return nil, fmt.Errorf("query iteration history: %w", err)
	}
	defer rows.Close()

	var out []ledger.Iteration
	for rows.Next() {
		it, err := scanIteration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan iteration: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return out, nil
}

// AnnotateIterationMetrics attaches a metrics blob to an existing iteration.
// No other field is touched.
func (s *Store) AnnotateIterationMetrics(ctx context.Context, id uuid.UUID, metrics map[string]any) error {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE bot_iterations SET metrics = $1 WHERE id = $2`,
		payload, id,
	)
	if err != nil {
		return fmt.Errorf("annotate iteration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("iteration %s not found", id)
	}
	return nil
}

const iterationSelect = `
	SELECT id, iteration_number, template_text, template_hash, average_score,
	       improvement_from_previous, is_current, metrics, created_at
	FROM bot_iterations`

func scanIteration(row pgx.Row) (ledger.Iteration, error) {
	var it ledger.Iteration
	err := row.Scan(
		&it.ID, &it.IterationNumber, &it.TemplateText, &it.TemplateHash,
		&it.AverageScore, &it.ImprovementFromPrevious, &it.IsCurrent,
		&it.Metrics, &it.CreatedAt,
	)
	return it, err
}
