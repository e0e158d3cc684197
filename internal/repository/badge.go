package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"classroom-tracker/internal/domain"
)

type BadgeRepository struct {
	db     DBTX
	logger zerolog.Logger
}

func NewBadgeRepository(sqlDB *sql.DB, logger zerolog.Logger) *BadgeRepository {
	return &BadgeRepository{db: sqlDB, logger: logger}
}

func (r *BadgeRepository) WithTx(tx *sql.Tx) *BadgeRepository {
	return &BadgeRepository{db: tx, logger: r.logger}
}

// AwardPlayer inserts the (player, badge) row if absent. Returns true when
// the row was created, false when the badge was already held.
func (r *BadgeRepository) AwardPlayer(ctx context.Context, playerName, badgeID string, at time.Time) (bool, error) {
	return r.award(ctx, "player_badges", "player_name", playerName, badgeID, at)
}

// AwardFranchise inserts the (franchise, badge) row if absent.
func (r *BadgeRepository) AwardFranchise(ctx context.Context, franchise, badgeID string, at time.Time) (bool, error) {
	return r.award(ctx, "franchise_badges", "franchise", franchise, badgeID, at)
}

func (r *BadgeRepository) award(ctx context.Context, table, subjectCol, subject, badgeID string, at time.Time) (bool, error) {
	id, err := gonanoid.New()
	if err != nil {
		return false, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (id, %s, badge_id, awarded_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (%s, badge_id) DO NOTHING`, table, subjectCol, subjectCol)
	res, err := r.db.ExecContext(ctx, query, id, subject, badgeID, at)
	if err != nil {
		return false, fmt.Errorf("failed to award badge: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *BadgeRepository) ListPlayer(ctx context.Context, playerName string) ([]domain.AwardedBadge, error) {
	return r.list(ctx,
		`SELECT id, player_name, badge_id, awarded_at FROM player_badges
		 WHERE player_name = ? ORDER BY awarded_at ASC, badge_id ASC`, playerName)
}

func (r *BadgeRepository) ListFranchise(ctx context.Context, franchise string) ([]domain.AwardedBadge, error) {
	return r.list(ctx,
		`SELECT id, franchise, badge_id, awarded_at FROM franchise_badges
		 WHERE franchise = ? ORDER BY awarded_at ASC, badge_id ASC`, franchise)
}

func (r *BadgeRepository) list(ctx context.Context, query, subject string) ([]domain.AwardedBadge, error) {
	rows, err := r.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []domain.AwardedBadge
	for rows.Next() {
		var b domain.AwardedBadge
		if err := rows.Scan(&b.ID, &b.Subject, &b.BadgeID, &b.AwardedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// DeletePlayerBadges removes the listed badge ids for one player. Used by the
// undo recompute pass, which only touches predicate badges.
func (r *BadgeRepository) DeletePlayerBadges(ctx context.Context, playerName string, badgeIDs []string) error {
	if len(badgeIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(badgeIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(badgeIDs)+1)
	args = append(args, playerName)
	for _, id := range badgeIDs {
		args = append(args, id)
	}

	query := fmt.Sprintf(
		`DELETE FROM player_badges WHERE player_name = ? AND badge_id IN (%s)`, placeholders)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete badges: %w", err)
	}
	return nil
}
