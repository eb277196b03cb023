package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zonewatch/zonewatch/internal/domain"
)

// Postgres is a Tracker backed by an append-only transition log in
// PostgreSQL. Every UpdateState inserts one row; GetState reads the latest
// row for the analysis. The schema is created by the embedded goose
// migrations (see internal/migrate.go).
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres tracker over an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// UpdateState inserts a transition row for the analysis.
func (p *Postgres) UpdateState(ctx context.Context, id uuid.UUID, state domain.AnalysisState, detail string) error {
	const q = `
INSERT INTO analysis_transitions (analysis_id, state, detail, recorded_at)
VALUES ($1, $2, $3, $4);`

	if _, err := p.db.ExecContext(ctx, q, id, state.String(), detail, time.Now()); err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// GetState returns the most recently recorded state for the analysis.
func (p *Postgres) GetState(ctx context.Context, id uuid.UUID) (domain.AnalysisState, error) {
	const q = `
SELECT state
FROM analysis_transitions
WHERE analysis_id = $1
ORDER BY id DESC
LIMIT 1;`

	var state string
	if err := p.db.QueryRowContext(ctx, q, id).Scan(&state); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select state: %w", err)
	}
	return domain.AnalysisState(state), nil
}

// History returns all recorded transitions for the analysis in recording
// order. Returns ErrNotFound if the analysis is unknown.
func (p *Postgres) History(ctx context.Context, id uuid.UUID) ([]Transition, error) {
	const q = `
SELECT analysis_id, state, detail, recorded_at
FROM analysis_transitions
WHERE analysis_id = $1
ORDER BY id ASC;`

	rows, err := p.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		var state string
		if err := rows.Scan(&t.AnalysisID, &state, &t.Detail, &t.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.State = domain.AnalysisState(state)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
