package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/cup-engine/models"
)

const tieColumns = `id, edition_id, round_id, home_club_id, away_club_id, is_two_legged, group_name,
	home_aggregate, away_aggregate, home_away_goals, away_away_goals, winner_club_id,
	decided_by_away_goals, decided_by_tiebreak, home_penalties, away_penalties, resolved_at`

func (r *postgresCupRepository) CreateTie(ctx context.Context, t *models.Tie) error {
	query := `
		INSERT INTO ties (edition_id, round_id, home_club_id, away_club_id, is_two_legged, group_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.exec.QueryRowContext(ctx, query,
		t.EditionID, t.RoundID, t.HomeClubID, t.AwayClubID, t.IsTwoLegged, t.GroupName,
	).Scan(&t.ID)
	return mapPQError(err, nil)
}

func (r *postgresCupRepository) UpdateTie(ctx context.Context, t *models.Tie) error {
	query := `
		UPDATE ties
		SET home_aggregate = $1, away_aggregate = $2, home_away_goals = $3, away_away_goals = $4,
			winner_club_id = $5, decided_by_away_goals = $6, decided_by_tiebreak = $7,
			home_penalties = $8, away_penalties = $9, resolved_at = $10
		WHERE id = $11`
	result, err := r.exec.ExecContext(ctx, query,
		t.HomeAggregate, t.AwayAggregate, t.HomeAwayGoals, t.AwayAwayGoals,
		t.WinnerClubID, t.DecidedByAwayGoals, t.DecidedByTiebreak,
		t.HomePenalties, t.AwayPenalties, t.ResolvedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tie %d: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrTieNotFound)
}

func (r *postgresCupRepository) ListTiesByRound(ctx context.Context, roundID int) ([]models.Tie, error) {
	return r.listTies(ctx, `SELECT `+tieColumns+` FROM ties WHERE round_id = $1 ORDER BY id`, roundID)
}

func (r *postgresCupRepository) ListTiesByEdition(ctx context.Context, editionID int) ([]models.Tie, error) {
	return r.listTies(ctx, `SELECT `+tieColumns+` FROM ties WHERE edition_id = $1 ORDER BY id`, editionID)
}

func (r *postgresCupRepository) listTies(ctx context.Context, query string, arg int) ([]models.Tie, error) {
	rows, err := r.exec.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list ties: %w", err)
	}
	defer rows.Close()

	var ties []models.Tie
	for rows.Next() {
		var t models.Tie
		err := rows.Scan(
			&t.ID, &t.EditionID, &t.RoundID, &t.HomeClubID, &t.AwayClubID, &t.IsTwoLegged, &t.GroupName,
			&t.HomeAggregate, &t.AwayAggregate, &t.HomeAwayGoals, &t.AwayAwayGoals, &t.WinnerClubID,
			&t.DecidedByAwayGoals, &t.DecidedByTiebreak, &t.HomePenalties, &t.AwayPenalties, &t.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tie: %w", err)
		}
		ties = append(ties, t)
	}
	return ties, rows.Err()
}
