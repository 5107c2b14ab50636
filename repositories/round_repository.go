package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/cup-engine/models"
	"github.com/lib/pq"
)

const roundColumns = `id, edition_id, round_order, round_type, name, kind, is_two_legged, is_group_stage, matchday,
	state, is_completed, scheduled_date, bye_club_ids, created_at, completed_at`

func (r *postgresCupRepository) CreateRound(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds
			(edition_id, round_order, round_type, name, kind, is_two_legged, is_group_stage, matchday,
			 state, is_completed, scheduled_date, bye_club_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`
	err := r.exec.QueryRowContext(ctx, query,
		round.EditionID, round.RoundOrder, round.RoundType, round.Name, round.Kind, round.IsTwoLegged,
		round.IsGroupStage, round.Matchday, round.State, round.IsCompleted, round.ScheduledDate,
		toInt64s(round.ByeClubIDs),
	).Scan(&round.ID, &round.CreatedAt)
	return mapPQError(err, fmt.Errorf("round order %d already exists in edition %d", round.RoundOrder, round.EditionID))
}

func (r *postgresCupRepository) GetRoundByID(ctx context.Context, id int) (*models.Round, error) {
	round, err := scanRound(r.exec.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, ErrRoundNotFound)
	}
	return round, nil
}

// UpdateRound writes the mutable progression fields; the round's structure is fixed at creation.
func (r *postgresCupRepository) UpdateRound(ctx context.Context, round *models.Round) error {
	query := `
		UPDATE rounds
		SET state = $1, is_completed = $2, scheduled_date = $3, bye_club_ids = $4, completed_at = $5
		WHERE id = $6`
	result, err := r.exec.ExecContext(ctx, query,
		round.State, round.IsCompleted, round.ScheduledDate, toInt64s(round.ByeClubIDs), round.CompletedAt, round.ID)
	if err != nil {
		return fmt.Errorf("failed to update round %d: %w", round.ID, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresCupRepository) ListRoundsByEdition(ctx context.Context, editionID int) ([]models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE edition_id = $1 ORDER BY round_order`
	rows, err := r.exec.QueryContext(ctx, query, editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for edition %d: %w", editionID, err)
	}
	defer rows.Close()

	var rounds []models.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, *round)
	}
	return rounds, rows.Err()
}

func scanRound(row rowScanner) (*models.Round, error) {
	var round models.Round
	var byes pq.Int64Array
	err := row.Scan(
		&round.ID, &round.EditionID, &round.RoundOrder, &round.RoundType, &round.Name, &round.Kind,
		&round.IsTwoLegged, &round.IsGroupStage, &round.Matchday, &round.State, &round.IsCompleted,
		&round.ScheduledDate, &byes, &round.CreatedAt, &round.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	round.ByeClubIDs = fromInt64s(byes)
	return &round, nil
}
