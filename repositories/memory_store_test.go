package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/cup-engine/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEdition(t *testing.T, store *MemoryStore) (*models.CompetitionDefinition, *models.Edition) {
	t.Helper()
	ctx := context.Background()
	comp := &models.CompetitionDefinition{Name: "FA Cup", CupType: models.CupTypeDomestic, Format: models.FormatKnockout, TierEntryRounds: map[int]int{1: 3}}
	require.NoError(t, store.CreateCompetition(ctx, comp))
	ed := &models.Edition{CompetitionID: comp.ID, StartYear: 2024, EndYear: 2025, Status: models.EditionUpcoming}
	require.NoError(t, store.CreateEdition(ctx, ed))
	return comp, ed
}

func TestMemoryStoreCompetitions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	comp, _ := seedEdition(t, store)

	got, err := store.GetCompetitionByID(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, "FA Cup", got.Name)

	got.TierEntryRounds[1] = 99
	again, err := store.GetCompetitionByID(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.TierEntryRounds[1], "returned values must not alias stored state")

	err = store.CreateCompetition(ctx, &models.CompetitionDefinition{Name: "FA Cup"})
	assert.ErrorIs(t, err, ErrCompetitionConflict)

	_, err = store.GetCompetitionByID(ctx, 404)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
}

func TestMemoryStoreEditionConstraints(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	comp, ed := seedEdition(t, store)

	err := store.CreateEdition(ctx, &models.Edition{CompetitionID: comp.ID, StartYear: 2024})
	assert.ErrorIs(t, err, ErrEditionConflict)

	err = store.CreateEdition(ctx, &models.Edition{CompetitionID: 77, StartYear: 2024})
	assert.ErrorIs(t, err, ErrInvalidEntityReference)

	require.NoError(t, store.CreateParticipant(ctx, &models.Participant{EditionID: ed.ID, ClubID: 10, Status: models.ParticipantActive}))
	err = store.CreateParticipant(ctx, &models.Participant{EditionID: ed.ID, ClubID: 10})
	assert.ErrorIs(t, err, ErrParticipantConflict)

	inProgress, err := store.ListEditions(ctx, EditionFilter{Statuses: []models.EditionStatus{models.EditionInProgress}})
	require.NoError(t, err)
	assert.Empty(t, inProgress)

	upcoming, err := store.ListEditions(ctx, EditionFilter{CompetitionID: &comp.ID})
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
}

func TestMemoryStoreWithinTx(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	_, ed := seedEdition(t, store)

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithinTx(ctx, func(ctx context.Context, repo CupRepository) error {
			if err := repo.CreateParticipant(ctx, &models.Participant{EditionID: ed.ID, ClubID: 1}); err != nil {
				return err
			}
			// read-your-writes inside the transaction
			if _, err := repo.GetParticipantByClub(ctx, ed.ID, 1); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = store.GetParticipantByClub(ctx, ed.ID, 1)
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := store.WithinTx(ctx, func(ctx context.Context, repo CupRepository) error {
			round := &models.Round{EditionID: ed.ID, RoundOrder: 1, State: models.RoundPending}
			if err := repo.CreateRound(ctx, round); err != nil {
				return err
			}
			round.State = models.RoundDrawn
			round.ByeClubIDs = []int{4}
			return repo.UpdateRound(ctx, round)
		})
		require.NoError(t, err)

		rounds, err := store.ListRoundsByEdition(ctx, ed.ID)
		require.NoError(t, err)
		require.Len(t, rounds, 1)
		assert.Equal(t, models.RoundDrawn, rounds[0].State)
		assert.Equal(t, []int{4}, rounds[0].ByeClubIDs)
	})
}

func TestMemoryStoreTiesAndFixtures(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	_, ed := seedEdition(t, store)

	round := &models.Round{EditionID: ed.ID, RoundOrder: 1}
	require.NoError(t, store.CreateRound(ctx, round))
	tie := &models.Tie{EditionID: ed.ID, RoundID: round.ID, HomeClubID: 1, AwayClubID: 2, IsTwoLegged: true}
	require.NoError(t, store.CreateTie(ctx, tie))

	leg2 := &models.Fixture{EditionID: ed.ID, RoundID: round.ID, TieID: tie.ID, Leg: 2, HomeClubID: 2, AwayClubID: 1}
	leg1 := &models.Fixture{EditionID: ed.ID, RoundID: round.ID, TieID: tie.ID, Leg: 1, HomeClubID: 1, AwayClubID: 2}
	require.NoError(t, store.CreateFixture(ctx, leg2))
	require.NoError(t, store.CreateFixture(ctx, leg1))

	fixtures, err := store.ListFixturesByRound(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	assert.Equal(t, 1, fixtures[0].Leg)
	assert.Equal(t, 2, fixtures[1].Leg)

	err = store.CreateFixture(ctx, &models.Fixture{TieID: 999})
	assert.ErrorIs(t, err, ErrInvalidEntityReference)
	assert.ErrorIs(t, store.UpdateTie(ctx, &models.Tie{ID: 999}), ErrTieNotFound)
}

func TestMemoryStorePrizeAwards(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(nil)
	_, ed := seedEdition(t, store)

	award := &models.PrizeAward{ID: uuid.New(), EditionID: ed.ID, ClubID: 3, Amount: 500}
	created, err := store.CreatePrizeAward(ctx, award)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.CreatePrizeAward(ctx, &models.PrizeAward{ID: award.ID, EditionID: ed.ID, Amount: 500})
	require.NoError(t, err)
	assert.False(t, created, "same key must not create a second award")

	pending, err := store.ListPrizeAwardsByEdition(ctx, ed.ID, true)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, store.MarkPrizeAwardCredited(ctx, award.ID, time.Now()))
	assert.ErrorIs(t, store.MarkPrizeAwardCredited(ctx, award.ID, time.Now()), ErrPrizeAwardNotFound)

	pending, err = store.ListPrizeAwardsByEdition(ctx, ed.ID, true)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSequenceIDGenerator(t *testing.T) {
	ids := NewSequenceIDGenerator()
	assert.Equal(t, 1, ids.NextID("round"))
	assert.Equal(t, 2, ids.NextID("round"))
	assert.Equal(t, 1, ids.NextID("tie"))
}
