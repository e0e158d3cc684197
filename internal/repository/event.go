package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/domain"
)

type EventRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewEventRepository(sqlDB *sql.DB, logger zerolog.Logger) *EventRepository {
	return &EventRepository{db: sqlDB, logger: logger}
}

func (r *EventRepository) WithTx(tx *sql.Tx) *EventRepository {
	return &EventRepository{db: tx, logger: r.logger}
}

func (r *EventRepository) Insert(ctx context.Context, event *domain.ScoringEvent) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO history (player_name, action, points, category, timestamp, new_total, teacher_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.PlayerName, event.Action, event.Points, string(event.Category),
		event.Timestamp, event.NewTotal, event.Teacher)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read event id: %w", err)
	}
	event.ID = id
	return nil
}

// Last returns the most recently inserted event for a player. Insertion
// order, not timestamp, is authoritative.
func (r *EventRepository) Last(ctx context.Context, playerName string) (*domain.ScoringEvent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, player_name, action, points, category, timestamp, new_total, teacher_name
		 FROM history WHERE player_name = ? ORDER BY id DESC LIMIT 1`, playerName)

	event, err := scanEventRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoHistory, playerName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// ListByPlayer returns a player's history, newest first.
func (r *EventRepository) ListByPlayer(ctx context.Context, playerName string) ([]domain.ScoringEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_name, action, points, category, timestamp, new_total, teacher_name
		 FROM history WHERE player_name = ? ORDER BY id DESC`, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var events []domain.ScoringEvent
	for rows.Next() {
		var e domain.ScoringEvent
		var category string
		if err := rows.Scan(&e.ID, &e.PlayerName, &e.Action, &e.Points, &category, &e.Timestamp, &e.NewTotal, &e.Teacher); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Category = domain.Category(category)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountActionSince counts a player's events whose action contains the given
// label fragment, with timestamps in [since, until].
func (r *EventRepository) CountActionSince(ctx context.Context, playerName, fragment string, since, until time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history
		 WHERE player_name = ? AND instr(action, ?) > 0 AND timestamp >= ? AND timestamp <= ?`,
		playerName, fragment, since, until).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return count, nil
}

// HasPositiveSince reports whether the player earned positive points in
// [since, until].
func (r *EventRepository) HasPositiveSince(ctx context.Context, playerName string, since, until time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history
		 WHERE player_name = ? AND points > 0 AND timestamp >= ? AND timestamp <= ?`,
		playerName, since, until).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query positive events: %w", err)
	}
	return count > 0, nil
}

func scanEventRow(row *sql.Row) (*domain.ScoringEvent, error) {
	var e domain.ScoringEvent
	var category string
	if err := row.Scan(&e.ID, &e.PlayerName, &e.Action, &e.Points, &category, &e.Timestamp, &e.NewTotal, &e.Teacher); err != nil {
		return nil, err
	}
	e.Category = domain.Category(category)
	return &e, nil
}
