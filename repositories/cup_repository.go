package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/cup-engine/models"
	"github.com/google/uuid"
)

var (
	ErrCompetitionNotFound    = errors.New("competition not found")
	ErrCompetitionConflict    = errors.New("competition name already exists")
	ErrEditionNotFound        = errors.New("edition not found")
	ErrEditionConflict        = errors.New("edition already exists for this season")
	ErrRoundNotFound          = errors.New("round not found")
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrParticipantConflict    = errors.New("club is already registered for this edition")
	ErrTieNotFound            = errors.New("tie not found")
	ErrFixtureNotFound        = errors.New("fixture not found")
	ErrPrizeAwardNotFound     = errors.New("prize award not found")
	ErrInvalidEntityReference = errors.New("referenced entity does not exist")
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type EditionFilter struct {
	CompetitionID *int
	Statuses      []models.EditionStatus
}

// CupRepository is the persistence surface of the competition engine.
// List methods return rows in a stable order: rounds by round_order, everything else by id.
type CupRepository interface {
	CreateCompetition(ctx context.Context, c *models.CompetitionDefinition) error
	GetCompetitionByID(ctx context.Context, id int) (*models.CompetitionDefinition, error)
	ListCompetitions(ctx context.Context) ([]models.CompetitionDefinition, error)

	CreateEdition(ctx context.Context, e *models.Edition) error
	GetEditionByID(ctx context.Context, id int) (*models.Edition, error)
	UpdateEdition(ctx context.Context, e *models.Edition) error
	ListEditions(ctx context.Context, filter EditionFilter) ([]models.Edition, error)

	CreateRound(ctx context.Context, r *models.Round) error
	GetRoundByID(ctx context.Context, id int) (*models.Round, error)
	UpdateRound(ctx context.Context, r *models.Round) error
	ListRoundsByEdition(ctx context.Context, editionID int) ([]models.Round, error)

	CreateParticipant(ctx context.Context, p *models.Participant) error
	UpdateParticipant(ctx context.Context, p *models.Participant) error
	GetParticipantByClub(ctx context.Context, editionID, clubID int) (*models.Participant, error)
	ListParticipantsByEdition(ctx context.Context, editionID int) ([]models.Participant, error)

	CreateTie(ctx context.Context, t *models.Tie) error
	UpdateTie(ctx context.Context, t *models.Tie) error
	ListTiesByRound(ctx context.Context, roundID int) ([]models.Tie, error)
	ListTiesByEdition(ctx context.Context, editionID int) ([]models.Tie, error)

	CreateFixture(ctx context.Context, f *models.Fixture) error
	UpdateFixture(ctx context.Context, f *models.Fixture) error
	ListFixturesByRound(ctx context.Context, roundID int) ([]models.Fixture, error)
	ListFixturesByEdition(ctx context.Context, editionID int) ([]models.Fixture, error)

	// CreatePrizeAward reports false when an award with the same ID already exists.
	CreatePrizeAward(ctx context.Context, a *models.PrizeAward) (bool, error)
	MarkPrizeAwardCredited(ctx context.Context, id uuid.UUID, at time.Time) error
	ListPrizeAwardsByEdition(ctx context.Context, editionID int, onlyPending bool) ([]models.PrizeAward, error)
}

// Store adds transactions. Inside WithinTx the callback must use the repo it is
// given; its writes are visible to its own reads and are committed only if fn
// returns nil.
type Store interface {
	CupRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo CupRepository) error) error
}
