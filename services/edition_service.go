package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// EditionService is the read side: editions with their rounds, clubs, ties
// and group tables.
type EditionService struct {
	store repositories.Store
}

func NewEditionService(store repositories.Store) *EditionService {
	return &EditionService{store: store}
}

func (s *EditionService) ListCompetitions(ctx context.Context) ([]models.CompetitionDefinition, error) {
	return s.store.ListCompetitions(ctx)
}

func (s *EditionService) GetCompetition(ctx context.Context, id int) (*models.CompetitionDefinition, error) {
	return s.store.GetCompetitionByID(ctx, id)
}

func (s *EditionService) ListEditions(ctx context.Context, filter repositories.EditionFilter) ([]models.Edition, error) {
	return s.store.ListEditions(ctx, filter)
}

// Summary loads an edition and everything under it. The loads run in
// parallel; ties carry their fixtures.
func (s *EditionService) Summary(ctx context.Context, editionID int) (*models.EditionSummary, error) {
	edition, err := s.store.GetEditionByID(ctx, editionID)
	if err != nil {
		return nil, err
	}

	summary := &models.EditionSummary{Edition: *edition}
	var fixtures []models.Fixture

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		competition, err := s.store.GetCompetitionByID(gCtx, edition.CompetitionID)
		if err != nil {
			return fmt.Errorf("failed to fetch competition %d: %w", edition.CompetitionID, err)
		}
		summary.Competition = *competition
		return nil
	})
	g.Go(func() error {
		rounds, err := s.store.ListRoundsByEdition(gCtx, editionID)
		if err != nil {
			return fmt.Errorf("failed to fetch rounds of edition %d: %w", editionID, err)
		}
		summary.Rounds = nonNil(rounds)
		return nil
	})
	g.Go(func() error {
		participants, err := s.store.ListParticipantsByEdition(gCtx, editionID)
		if err != nil {
			return fmt.Errorf("failed to fetch participants of edition %d: %w", editionID, err)
		}
		summary.Participants = nonNil(participants)
		return nil
	})
	g.Go(func() error {
		ties, err := s.store.ListTiesByEdition(gCtx, editionID)
		if err != nil {
			return fmt.Errorf("failed to fetch ties of edition %d: %w", editionID, err)
		}
		summary.Ties = nonNil(ties)
		return nil
	})
	g.Go(func() error {
		var err error
		fixtures, err = s.store.ListFixturesByEdition(gCtx, editionID)
		if err != nil {
			return fmt.Errorf("failed to fetch fixtures of edition %d: %w", editionID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	attachFixtures(summary.Ties, fixtures)
	summary.Edition.Competition = &summary.Competition
	summary.Edition.Rounds = summary.Rounds
	return summary, nil
}

// Standings returns the table of every group in the edition.
func (s *EditionService) Standings(ctx context.Context, editionID int) (map[string][]models.GroupStanding, error) {
	if _, err := s.store.GetEditionByID(ctx, editionID); err != nil {
		return nil, err
	}

	var participants []models.Participant
	var fixtures []models.Fixture

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.store.ListParticipantsByEdition(gCtx, editionID)
		return err
	})
	g.Go(func() error {
		var err error
		fixtures, err = s.store.ListFixturesByEdition(gCtx, editionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load group data of edition %d: %w", editionID, err)
	}

	tables := make(map[string][]models.GroupStanding)
	for _, name := range groupNames(participants) {
		tables[name] = ComputeStandings(name, participants, fixtures)
	}
	return tables, nil
}

func (s *EditionService) RoundTies(ctx context.Context, roundID int) ([]models.Tie, error) {
	if _, err := s.store.GetRoundByID(ctx, roundID); err != nil {
		return nil, err
	}
	ties, err := s.store.ListTiesByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ties of round %d: %w", roundID, err)
	}
	fixtures, err := s.store.ListFixturesByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures of round %d: %w", roundID, err)
	}
	ties = nonNil(ties)
	attachFixtures(ties, fixtures)
	return ties, nil
}

func attachFixtures(ties []models.Tie, fixtures []models.Fixture) {
	byTie := make(map[int][]models.Fixture, len(ties))
	for _, f := range fixtures {
		byTie[f.TieID] = append(byTie[f.TieID], f)
	}
	for i := range ties {
		ties[i].Fixtures = byTie[ties[i].ID]
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
