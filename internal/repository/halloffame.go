package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"classroom-tracker/internal/domain"
)

const (
	HallOfFameMilestone = "milestone"
	HallOfFameHighScore = "high_score"
)

type HallOfFameRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewHallOfFameRepository(sqlDB *sql.DB, logger zerolog.Logger) *HallOfFameRepository {
	return &HallOfFameRepository{db: sqlDB, logger: logger}
}

func (r *HallOfFameRepository) WithTx(tx *sql.Tx) *HallOfFameRepository {
	return &HallOfFameRepository{db: tx, logger: r.logger}
}

// ClaimMilestone records the first player to reach a threshold. Returns true
// when the claim landed, false when the milestone was already taken.
func (r *HallOfFameRepository) ClaimMilestone(ctx context.Context, playerName string, threshold int, at time.Time) (bool, error) {
	id, err := gonanoid.New()
	if err != nil {
		return false, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO hall_of_fame (id, kind, player_name, value, current, recorded_at)
		 VALUES (?, ?, ?, ?, 1, ?)
		 ON CONFLICT (kind, value) WHERE kind = 'milestone' DO NOTHING`,
		id, HallOfFameMilestone, playerName, threshold, at)
	if err != nil {
		return false, fmt.Errorf("failed to claim milestone: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// CurrentHighScore returns the standing all-time record, or nil when none has
// been set yet.
func (r *HallOfFameRepository) CurrentHighScore(ctx context.Context) (*domain.HallOfFameRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, player_name, value, current, recorded_at FROM hall_of_fame
		 WHERE kind = ? AND current = 1 ORDER BY recorded_at DESC LIMIT 1`, HallOfFameHighScore)

	var rec domain.HallOfFameRecord
	err := row.Scan(&rec.ID, &rec.Kind, &rec.PlayerName, &rec.Value, &rec.Current, &rec.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get high score record: %w", err)
	}
	return &rec, nil
}

// SetHighScore supersedes the standing record and inserts a new current row.
// Superseded rows are kept with the current flag cleared.
func (r *HallOfFameRepository) SetHighScore(ctx context.Context, playerName string, score int, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE hall_of_fame SET current = 0 WHERE kind = ? AND current = 1`, HallOfFameHighScore); err != nil {
		return fmt.Errorf("failed to supersede high score: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO hall_of_fame (id, kind, player_name, value, current, recorded_at)
		 VALUES (?, ?, ?, ?, 1, ?)`,
		id, HallOfFameHighScore, playerName, score, at); err != nil {
		return fmt.Errorf("failed to insert high score: %w", err)
	}
	return nil
}

// List returns the full hall of fame, newest first.
func (r *HallOfFameRepository) List(ctx context.Context) ([]domain.HallOfFameRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, player_name, value, current, recorded_at FROM hall_of_fame
		 ORDER BY recorded_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hall of fame: %w", err)
	}
	defer rows.Close()

	var records []domain.HallOfFameRecord
	for rows.Next() {
		var rec domain.HallOfFameRecord
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.PlayerName, &rec.Value, &rec.Current, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
