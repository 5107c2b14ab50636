package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/cup-engine/models"
)

const competitionColumns = `id, name, short_name, cup_type, format, country, tier_entry_rounds, draw_policy,
	typical_participants, lower_tier_hosts_draw, two_legged_semi_finals, num_groups, group_size, created_at`

func (r *postgresCupRepository) CreateCompetition(ctx context.Context, c *models.CompetitionDefinition) error {
	tiers, err := json.Marshal(c.TierEntryRounds)
	if err != nil {
		return fmt.Errorf("failed to encode tier entry rounds: %w", err)
	}
	query := `
		INSERT INTO competitions
			(name, short_name, cup_type, format, country, tier_entry_rounds, draw_policy,
			 typical_participants, lower_tier_hosts_draw, two_legged_semi_finals, num_groups, group_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`
	err = r.exec.QueryRowContext(ctx, query,
		c.Name, c.ShortName, c.CupType, c.Format, c.Country, tiers, c.DrawPolicy,
		c.TypicalParticipants, c.LowerTierHostsDraw, c.TwoLeggedSemiFinals, c.NumGroups, c.GroupSize,
	).Scan(&c.ID, &c.CreatedAt)
	return mapPQError(err, ErrCompetitionConflict)
}

func (r *postgresCupRepository) GetCompetitionByID(ctx context.Context, id int) (*models.CompetitionDefinition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1`
	c, err := scanCompetition(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, ErrCompetitionNotFound)
	}
	return c, nil
}

func (r *postgresCupRepository) ListCompetitions(ctx context.Context) ([]models.CompetitionDefinition, error) {
	rows, err := r.exec.QueryContext(ctx, `SELECT `+competitionColumns+` FROM competitions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer rows.Close()

	var competitions []models.CompetitionDefinition
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competition: %w", err)
		}
		competitions = append(competitions, *c)
	}
	return competitions, rows.Err()
}

func scanCompetition(row rowScanner) (*models.CompetitionDefinition, error) {
	var c models.CompetitionDefinition
	var tiers []byte
	err := row.Scan(
		&c.ID, &c.Name, &c.ShortName, &c.CupType, &c.Format, &c.Country, &tiers, &c.DrawPolicy,
		&c.TypicalParticipants, &c.LowerTierHostsDraw, &c.TwoLeggedSemiFinals, &c.NumGroups, &c.GroupSize, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &c.TierEntryRounds); err != nil {
			return nil, fmt.Errorf("failed to decode tier entry rounds for competition %d: %w", c.ID, err)
		}
	}
	return &c, nil
}
