package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/cup-engine/models"
)

const participantColumns = `id, edition_id, club_id, club_name, country, league_tier, reputation, qualification_method,
	status, entry_round_id, group_name, group_seed, group_position, group_played, group_won, group_drawn, group_lost,
	group_goals_for, group_goals_against, group_points, eliminated_in_round_id, final_position, prize_money_earned, created_at`

func (r *postgresCupRepository) CreateParticipant(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants
			(edition_id, club_id, club_name, country, league_tier, reputation, qualification_method, status, entry_round_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`
	err := r.exec.QueryRowContext(ctx, query,
		p.EditionID, p.ClubID, p.ClubName, p.Country, p.LeagueTier, p.Reputation, p.QualificationMethod,
		p.Status, p.EntryRoundID,
	).Scan(&p.ID, &p.CreatedAt)
	return mapPQError(err, ErrParticipantConflict)
}

func (r *postgresCupRepository) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	query := `
		UPDATE participants
		SET status = $1, group_name = $2, group_seed = $3, group_position = $4,
			group_played = $5, group_won = $6, group_drawn = $7, group_lost = $8,
			group_goals_for = $9, group_goals_against = $10, group_points = $11,
			eliminated_in_round_id = $12, final_position = $13, prize_money_earned = $14
		WHERE id = $15`
	result, err := r.exec.ExecContext(ctx, query,
		p.Status, p.GroupName, p.GroupSeed, p.GroupPosition,
		p.GroupPlayed, p.GroupWon, p.GroupDrawn, p.GroupLost,
		p.GroupGoalsFor, p.GroupGoalsAgainst, p.GroupPoints,
		p.EliminatedInRoundID, p.FinalPosition, p.PrizeMoneyEarned, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant %d: %w", p.ID, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresCupRepository) GetParticipantByClub(ctx context.Context, editionID, clubID int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE edition_id = $1 AND club_id = $2`
	p, err := scanParticipant(r.exec.QueryRowContext(ctx, query, editionID, clubID))
	if err != nil {
		return nil, notFound(err, ErrParticipantNotFound)
	}
	return p, nil
}

func (r *postgresCupRepository) ListParticipantsByEdition(ctx context.Context, editionID int) ([]models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE edition_id = $1 ORDER BY id`
	rows, err := r.exec.QueryContext(ctx, query, editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for edition %d: %w", editionID, err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	err := row.Scan(
		&p.ID, &p.EditionID, &p.ClubID, &p.ClubName, &p.Country, &p.LeagueTier, &p.Reputation, &p.QualificationMethod,
		&p.Status, &p.EntryRoundID, &p.GroupName, &p.GroupSeed, &p.GroupPosition, &p.GroupPlayed, &p.GroupWon,
		&p.GroupDrawn, &p.GroupLost, &p.GroupGoalsFor, &p.GroupGoalsAgainst, &p.GroupPoints,
		&p.EliminatedInRoundID, &p.FinalPosition, &p.PrizeMoneyEarned, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
