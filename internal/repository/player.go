package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"classroom-tracker/internal/domain"
)

type PlayerRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

func (r *PlayerRepository) WithTx(tx *sql.Tx) *PlayerRepository {
	return &PlayerRepository{db: tx, logger: r.logger}
}

func (r *PlayerRepository) Create(ctx context.Context, name, franchise string) (*domain.Player, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (name, franchise, score, drafted, created_at, updated_at)
		 VALUES (?, ?, 0, 0, ?, ?)`,
		name, franchise, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicatePlayer, name)
		}
		return nil, fmt.Errorf("failed to insert player: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read player id: %w", err)
	}

	return &domain.Player{
		ID:        id,
		Name:      name,
		Franchise: franchise,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *PlayerRepository) GetByName(ctx context.Context, name string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, franchise, score, drafted, created_at, updated_at
		 FROM players WHERE name = ?`, name)

	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// List returns all players ordered by score, highest first.
func (r *PlayerRepository) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, franchise, score, drafted, created_at, updated_at
		 FROM players ORDER BY score DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	return collectPlayers(rows)
}

func (r *PlayerRepository) ListByFranchise(ctx context.Context, franchise string) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, franchise, score, drafted, created_at, updated_at
		 FROM players WHERE franchise = ? ORDER BY score DESC, name ASC`, franchise)
	if err != nil {
		return nil, fmt.Errorf("failed to list franchise players: %w", err)
	}
	defer rows.Close()

	return collectPlayers(rows)
}

// AddScore applies a signed delta to a player's score and returns the new
// value.
func (r *PlayerRepository) AddScore(ctx context.Context, name string, delta int) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE players SET score = score + ?, updated_at = ? WHERE name = ?`,
		delta, time.Now(), name)
	if err != nil {
		return 0, fmt.Errorf("failed to update score: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, name)
	}

	var score int
	if err := r.db.QueryRowContext(ctx, `SELECT score FROM players WHERE name = ?`, name).Scan(&score); err != nil {
		return 0, fmt.Errorf("failed to read new score: %w", err)
	}
	return score, nil
}

func (r *PlayerRepository) SetFranchise(ctx context.Context, name, franchise string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE players SET franchise = ?, updated_at = ? WHERE name = ?`,
		franchise, time.Now(), name)
	if err != nil {
		return fmt.Errorf("failed to change franchise: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, name)
	}
	return nil
}

// Delete removes a player. History, stats, period stats and badges go with
// it through foreign-key cascades.
func (r *PlayerRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, name)
	}
	return nil
}

// Franchises returns the distinct franchise names ordered by total score,
// highest first.
func (r *PlayerRepository) Franchises(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT franchise FROM players GROUP BY franchise ORDER BY SUM(score) DESC, franchise ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to rank franchises: %w", err)
	}
	defer rows.Close()

	var franchises []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan franchise: %w", err)
		}
		franchises = append(franchises, f)
	}
	return franchises, rows.Err()
}

func scanPlayer(row *sql.Row) (*domain.Player, error) {
	var p domain.Player
	if err := row.Scan(&p.ID, &p.Name, &p.Franchise, &p.Score, &p.Drafted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPlayers(rows *sql.Rows) ([]domain.Player, error) {
	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Franchise, &p.Score, &p.Drafted, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
