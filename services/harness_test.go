package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/cup-engine/ledger"
	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
	"github.com/Dosada05/cup-engine/simulation"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordedEvent struct {
	editionID int
	eventType string
}

type recordingPublisher struct {
	events []recordedEvent
}

func (p *recordingPublisher) Publish(editionID int, eventType string, _ any) {
	p.events = append(p.events, recordedEvent{editionID: editionID, eventType: eventType})
}

type engine struct {
	store      *repositories.MemoryStore
	ledger     *ledger.MemoryLedger
	controller *RoundController
	prizes     *PrizeService
	domestic   *DomesticCupOrchestrator
	continent  *ContinentalCupOrchestrator
	season     *SeasonService
	editions   *EditionService
	events     *recordingPublisher
}

func newEngine(t *testing.T, sim simulation.MatchSimulator) *engine {
	t.Helper()
	logger := discardLogger()
	store := repositories.NewMemoryStore(repositories.NewSequenceIDGenerator())
	clubLedger := ledger.NewMemoryLedger()
	events := &recordingPublisher{}
	controller := NewRoundController(store, sim, simulation.SyntheticLineups{}, NewKnockoutResolver(CoinToss{}, true), events, 0, logger)
	prizes := NewPrizeService(store, clubLedger, NewPrizeCalculator(), logger)
	domestic := NewDomesticCupOrchestrator(store, controller, prizes, Calendar{}, logger)
	continental := NewContinentalCupOrchestrator(store, controller, prizes, Calendar{}, logger)
	editions := NewEditionService(store)
	return &engine{
		store:      store,
		ledger:     clubLedger,
		controller: controller,
		prizes:     prizes,
		domestic:   domestic,
		continent:  continental,
		season:     NewSeasonService(store, editions, nil, logger, domestic, continental),
		editions:   editions,
		events:     events,
	}
}

func clubs(n, tier int, firstID int) []ClubEntry {
	out := make([]ClubEntry, n)
	for i := range out {
		out[i] = ClubEntry{
			ClubID:     firstID + i,
			Name:       "Club",
			Country:    "ENG",
			LeagueTier: tier,
			Reputation: 90 - i,
		}
	}
	return out
}

func (e *engine) knockoutCompetition(t *testing.T, def models.CompetitionDefinition) *models.CompetitionDefinition {
	t.Helper()
	require.NoError(t, e.season.CreateCompetition(context.Background(), &def))
	return &def
}

func (e *engine) participants(t *testing.T, editionID int) map[int]models.Participant {
	t.Helper()
	list, err := e.store.ListParticipantsByEdition(context.Background(), editionID)
	require.NoError(t, err)
	out := make(map[int]models.Participant, len(list))
	for _, p := range list {
		out[p.ClubID] = p
	}
	return out
}

func (e *engine) rounds(t *testing.T, editionID int) []models.Round {
	t.Helper()
	rounds, err := e.store.ListRoundsByEdition(context.Background(), editionID)
	require.NoError(t, err)
	return rounds
}
