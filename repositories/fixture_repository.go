package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/cup-engine/models"
)

const fixtureColumns = `id, edition_id, round_id, tie_id, leg, home_club_id, away_club_id, home_score, away_score,
	status, group_name, scheduled_at, events`

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (r *postgresCupRepository) CreateFixture(ctx context.Context, f *models.Fixture) error {
	query := `
		INSERT INTO fixtures
			(edition_id, round_id, tie_id, leg, home_club_id, away_club_id, home_score, away_score,
			 status, group_name, scheduled_at, events)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.exec.QueryRowContext(ctx, query,
		f.EditionID, f.RoundID, f.TieID, f.Leg, f.HomeClubID, f.AwayClubID, f.HomeScore, f.AwayScore,
		f.Status, f.GroupName, f.ScheduledAt, nullableJSON(f.Events),
	).Scan(&f.ID)
	return mapPQError(err, nil)
}

func (r *postgresCupRepository) UpdateFixture(ctx context.Context, f *models.Fixture) error {
	query := `
		UPDATE fixtures
		SET home_score = $1, away_score = $2, status = $3, scheduled_at = $4, events = $5
		WHERE id = $6`
	result, err := r.exec.ExecContext(ctx, query,
		f.HomeScore, f.AwayScore, f.Status, f.ScheduledAt, nullableJSON(f.Events), f.ID)
	if err != nil {
		return fmt.Errorf("failed to update fixture %d: %w", f.ID, err)
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresCupRepository) ListFixturesByRound(ctx context.Context, roundID int) ([]models.Fixture, error) {
	return r.listFixtures(ctx, `SELECT `+fixtureColumns+` FROM fixtures WHERE round_id = $1 ORDER BY tie_id, leg`, roundID)
}

func (r *postgresCupRepository) ListFixturesByEdition(ctx context.Context, editionID int) ([]models.Fixture, error) {
	return r.listFixtures(ctx, `SELECT `+fixtureColumns+` FROM fixtures WHERE edition_id = $1 ORDER BY tie_id, leg`, editionID)
}

func (r *postgresCupRepository) listFixtures(ctx context.Context, query string, arg int) ([]models.Fixture, error) {
	rows, err := r.exec.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []models.Fixture
	for rows.Next() {
		var f models.Fixture
		var events []byte
		err := rows.Scan(
			&f.ID, &f.EditionID, &f.RoundID, &f.TieID, &f.Leg, &f.HomeClubID, &f.AwayClubID,
			&f.HomeScore, &f.AwayScore, &f.Status, &f.GroupName, &f.ScheduledAt, &events,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		if len(events) > 0 {
			f.Events = json.RawMessage(events)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}
