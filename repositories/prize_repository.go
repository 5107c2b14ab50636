package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/cup-engine/models"
	"github.com/google/uuid"
)

func (r *postgresCupRepository) CreatePrizeAward(ctx context.Context, a *models.PrizeAward) (bool, error) {
	query := `
		INSERT INTO prize_awards (id, edition_id, participant_id, club_id, amount, total_after, credited)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at`
	err := r.exec.QueryRowContext(ctx, query,
		a.ID, a.EditionID, a.ParticipantID, a.ClubID, a.Amount, a.TotalAfter, a.Credited,
	).Scan(&a.CreatedAt)
	if err != nil {
		if err = notFound(err, nil); err == nil {
			// ON CONFLICT DO NOTHING returns no row
			return false, nil
		}
		return false, mapPQError(err, nil)
	}
	return true, nil
}

func (r *postgresCupRepository) MarkPrizeAwardCredited(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.exec.ExecContext(ctx,
		`UPDATE prize_awards SET credited = TRUE, credited_at = $1 WHERE id = $2 AND credited = FALSE`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark prize award %s credited: %w", id, err)
	}
	return checkAffectedRows(result, ErrPrizeAwardNotFound)
}

func (r *postgresCupRepository) ListPrizeAwardsByEdition(ctx context.Context, editionID int, onlyPending bool) ([]models.PrizeAward, error) {
	query := `
		SELECT id, edition_id, participant_id, club_id, amount, total_after, credited, created_at, credited_at
		FROM prize_awards
		WHERE edition_id = $1 AND (NOT $2 OR credited = FALSE)
		ORDER BY created_at, id`
	rows, err := r.exec.QueryContext(ctx, query, editionID, onlyPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list prize awards for edition %d: %w", editionID, err)
	}
	defer rows.Close()

	var awards []models.PrizeAward
	for rows.Next() {
		var a models.PrizeAward
		if err := rows.Scan(&a.ID, &a.EditionID, &a.ParticipantID, &a.ClubID, &a.Amount, &a.TotalAfter,
			&a.Credited, &a.CreatedAt, &a.CreditedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prize award: %w", err)
		}
		awards = append(awards, a)
	}
	return awards, rows.Err()
}
