package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// EditionArchiver stores the summary of a completed edition and returns
// where it went.
type EditionArchiver interface {
	Archive(ctx context.Context, summary *models.EditionSummary) (string, error)
}

// SeasonService is the entry point for callers: it picks the orchestrator of
// an edition's format and runs independent editions side by side.
type SeasonService struct {
	store         repositories.Store
	orchestrators map[models.CupFormat]Orchestrator
	editions      *EditionService
	archiver      EditionArchiver
	logger        *slog.Logger
}

// NewSeasonService registers the given orchestrators by format. archiver may
// be nil.
func NewSeasonService(store repositories.Store, editions *EditionService, archiver EditionArchiver, logger *slog.Logger, orchestrators ...Orchestrator) *SeasonService {
	byFormat := make(map[models.CupFormat]Orchestrator, len(orchestrators))
	for _, o := range orchestrators {
		byFormat[o.Format()] = o
	}
	return &SeasonService{store: store, orchestrators: byFormat, editions: editions, archiver: archiver, logger: logger}
}

func (s *SeasonService) orchestrator(format models.CupFormat) (Orchestrator, error) {
	o, ok := s.orchestrators[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return o, nil
}

func (s *SeasonService) orchestratorForEdition(ctx context.Context, editionID int) (Orchestrator, error) {
	edition, err := s.store.GetEditionByID(ctx, editionID)
	if err != nil {
		return nil, err
	}
	competition, err := s.store.GetCompetitionByID(ctx, edition.CompetitionID)
	if err != nil {
		return nil, err
	}
	return s.orchestrator(competition.Format)
}

func (s *SeasonService) CreateCompetition(ctx context.Context, def *models.CompetitionDefinition) error {
	o, err := s.orchestrator(def.Format)
	if err != nil {
		return err
	}
	return o.CreateCompetition(ctx, def)
}

func (s *SeasonService) CreateEdition(ctx context.Context, req EditionRequest) (*models.Edition, error) {
	competition, err := s.store.GetCompetitionByID(ctx, req.CompetitionID)
	if err != nil {
		return nil, err
	}
	o, err := s.orchestrator(competition.Format)
	if err != nil {
		return nil, err
	}
	return o.CreateEdition(ctx, req)
}

func (s *SeasonService) PlayNextRound(ctx context.Context, editionID int) (*models.Round, error) {
	o, err := s.orchestratorForEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}
	round, err := o.PlayNextRound(ctx, editionID)
	if err != nil {
		return nil, err
	}
	s.archiveIfCompleted(ctx, editionID)
	return round, nil
}

func (s *SeasonService) RunEdition(ctx context.Context, editionID int) (*models.Edition, error) {
	o, err := s.orchestratorForEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}
	edition, err := o.RunEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}
	s.archiveIfCompleted(ctx, editionID)
	return edition, nil
}

// RunEditions runs independent editions concurrently. They share only the
// club ledger, whose credits are atomic.
func (s *SeasonService) RunEditions(ctx context.Context, editionIDs []int) ([]*models.Edition, error) {
	results := make([]*models.Edition, len(editionIDs))
	g, gCtx := errgroup.WithContext(ctx)
	for i, id := range editionIDs {
		g.Go(func() error {
			edition, err := s.RunEdition(gCtx, id)
			if err != nil {
				return fmt.Errorf("edition %d: %w", id, err)
			}
			results[i] = edition
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AdvanceDue plays, for every open edition, the next round whose planned date
// is not after now. It returns how many rounds were played.
func (s *SeasonService) AdvanceDue(ctx context.Context, now time.Time) (int, error) {
	editions, err := s.store.ListEditions(ctx, repositories.EditionFilter{
		Statuses: []models.EditionStatus{models.EditionUpcoming, models.EditionInProgress},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list open editions: %w", err)
	}

	var mu sync.Mutex
	played := 0
	g, gCtx := errgroup.WithContext(ctx)
	for _, edition := range editions {
		g.Go(func() error {
			rounds, err := s.store.ListRoundsByEdition(gCtx, edition.ID)
			if err != nil {
				return fmt.Errorf("failed to list rounds of edition %d: %w", edition.ID, err)
			}
			next := firstUnresolved(rounds)
			if next == nil || next.ScheduledDate == nil || next.ScheduledDate.After(now) {
				return nil
			}
			if _, err := s.PlayNextRound(gCtx, edition.ID); err != nil {
				if errors.Is(err, ErrEditionCompleted) || errors.Is(err, ErrNoPendingRounds) {
					return nil
				}
				return fmt.Errorf("edition %d: %w", edition.ID, err)
			}
			mu.Lock()
			played++
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	return played, err
}

func firstUnresolved(rounds []models.Round) *models.Round {
	for i := range rounds {
		if rounds[i].State != models.RoundResolved {
			return &rounds[i]
		}
	}
	return nil
}

// archiveIfCompleted is best effort: a failed upload is logged and the
// edition stays completed.
func (s *SeasonService) archiveIfCompleted(ctx context.Context, editionID int) {
	if s.archiver == nil {
		return
	}
	edition, err := s.store.GetEditionByID(ctx, editionID)
	if err != nil || edition.Status != models.EditionCompleted {
		return
	}
	summary, err := s.editions.Summary(ctx, editionID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to build edition summary", slog.Int("edition_id", editionID), slog.Any("error", err))
		return
	}
	location, err := s.archiver.Archive(ctx, summary)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive edition", slog.Int("edition_id", editionID), slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "edition archived", slog.Int("edition_id", editionID), slog.String("location", location))
}
