package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/cup-engine/models"
	"github.com/lib/pq"
)

const editionColumns = `id, competition_id, start_year, end_year, status, seed, start_date, winner_club_id, created_at, completed_at`

func (r *postgresCupRepository) CreateEdition(ctx context.Context, e *models.Edition) error {
	query := `
		INSERT INTO editions (competition_id, start_year, end_year, status, seed, start_date, winner_club_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.exec.QueryRowContext(ctx, query,
		e.CompetitionID, e.StartYear, e.EndYear, e.Status, e.Seed, e.StartDate, e.WinnerClubID,
	).Scan(&e.ID, &e.CreatedAt)
	return mapPQError(err, ErrEditionConflict)
}

func (r *postgresCupRepository) GetEditionByID(ctx context.Context, id int) (*models.Edition, error) {
	e, err := scanEdition(r.exec.QueryRowContext(ctx, `SELECT `+editionColumns+` FROM editions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, ErrEditionNotFound)
	}
	return e, nil
}

func (r *postgresCupRepository) UpdateEdition(ctx context.Context, e *models.Edition) error {
	query := `
		UPDATE editions
		SET status = $1, winner_club_id = $2, start_date = $3, completed_at = $4
		WHERE id = $5`
	result, err := r.exec.ExecContext(ctx, query, e.Status, e.WinnerClubID, e.StartDate, e.CompletedAt, e.ID)
	if err != nil {
		return mapPQError(err, nil)
	}
	return checkAffectedRows(result, ErrEditionNotFound)
}

func (r *postgresCupRepository) ListEditions(ctx context.Context, filter EditionFilter) ([]models.Edition, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.CompetitionID != nil {
		args = append(args, *filter.CompetitionID)
		conditions = append(conditions, fmt.Sprintf("competition_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := `SELECT ` + editionColumns + ` FROM editions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list editions: %w", err)
	}
	defer rows.Close()

	var editions []models.Edition
	for rows.Next() {
		e, err := scanEdition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edition: %w", err)
		}
		editions = append(editions, *e)
	}
	return editions, rows.Err()
}

func scanEdition(row rowScanner) (*models.Edition, error) {
	var e models.Edition
	err := row.Scan(&e.ID, &e.CompetitionID, &e.StartYear, &e.EndYear, &e.Status, &e.Seed, &e.StartDate,
		&e.WinnerClubID, &e.CreatedAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
