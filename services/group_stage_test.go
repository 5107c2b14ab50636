package services

import (
	"context"
	"testing"

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupParticipants(group string, clubIDs ...int) []models.Participant {
	out := make([]models.Participant, len(clubIDs))
	for i, id := range clubIDs {
		name, seed := group, i+1
		out[i] = models.Participant{ClubID: id, GroupName: &name, GroupSeed: &seed, Status: models.ParticipantActive}
	}
	return out
}

func groupFixture(group string, home, away, homeScore, awayScore int) models.Fixture {
	f := played(0, home, away, homeScore, awayScore)
	f.GroupName = &group
	return f
}

func TestComputeStandings(t *testing.T) {
	t.Run("club winning every match tops the group", func(t *testing.T) {
		participants := groupParticipants("A", 1, 2, 3, 4)
		var fixtures []models.Fixture
		for _, md := range brackets.GroupSchedule(4) {
			for _, pair := range md {
				home, away := pair.Home+1, pair.Away+1
				switch {
				case home == 4:
					fixtures = append(fixtures, groupFixture("A", home, away, 1, 0))
				case away == 4:
					fixtures = append(fixtures, groupFixture("A", home, away, 0, 1))
				default:
					// big wins elsewhere must not matter
					fixtures = append(fixtures, groupFixture("A", home, away, 5, 0))
				}
			}
		}

		standings := ComputeStandings("A", participants, fixtures)
		require.Len(t, standings, 4)
		assert.Equal(t, 4, standings[0].ClubID)
		assert.Equal(t, 18, standings[0].Points)
		assert.Equal(t, 6, standings[0].Played)
		for i, row := range standings {
			assert.Equal(t, i+1, row.Position)
		}
	})

	t.Run("level clubs are ordered by club id", func(t *testing.T) {
		participants := groupParticipants("B", 9, 5, 7)
		fixtures := []models.Fixture{
			groupFixture("B", 9, 5, 1, 1),
			groupFixture("B", 5, 7, 1, 1),
			groupFixture("B", 7, 9, 1, 1),
		}
		standings := ComputeStandings("B", participants, fixtures)
		assert.Equal(t, []int{5, 7, 9}, []int{standings[0].ClubID, standings[1].ClubID, standings[2].ClubID})
	})

	t.Run("goal difference before goals for", func(t *testing.T) {
		participants := groupParticipants("C", 1, 2, 3)
		fixtures := []models.Fixture{
			groupFixture("C", 1, 3, 1, 0),
			groupFixture("C", 2, 3, 4, 3),
			groupFixture("C", 1, 2, 0, 0),
		}
		standings := ComputeStandings("C", participants, fixtures)
		// both on 4 points and +1; club 2 scored more
		assert.Equal(t, 2, standings[0].ClubID)
		assert.Equal(t, 1, standings[1].ClubID)
	})

	t.Run("ignores other groups and unplayed fixtures", func(t *testing.T) {
		participants := groupParticipants("D", 1, 2)
		fixtures := []models.Fixture{
			groupFixture("E", 1, 2, 3, 0),
			{HomeClubID: 1, AwayClubID: 2, GroupName: strPtr("D")},
		}
		standings := ComputeStandings("D", participants, fixtures)
		assert.Zero(t, standings[0].Played)
		assert.Zero(t, standings[1].Played)
	})
}

func TestGroupStageManager(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore(nil)
	comp := &models.CompetitionDefinition{Name: "Cup", CupType: models.CupTypeChampionsLeague, Format: models.FormatGroupThenKnockout}
	require.NoError(t, store.CreateCompetition(ctx, comp))
	edition := &models.Edition{CompetitionID: comp.ID, StartYear: 2024}
	require.NoError(t, store.CreateEdition(ctx, edition))
	for _, p := range groupParticipants("A", 11, 12, 13, 14) {
		p.EditionID = edition.ID
		require.NoError(t, store.CreateParticipant(ctx, &p))
	}

	manager := NewGroupStageManager(store, edition.ID)

	schedule, err := manager.Schedule(ctx, "A")
	require.NoError(t, err)
	require.Len(t, schedule, 6)
	assert.Equal(t, []GroupFixture{{1, 11, 12}, {1, 13, 14}}, schedule[0])

	t.Run("records cumulative results", func(t *testing.T) {
		err := manager.RecordMatchday(ctx, "A", 1, []MatchResult{
			{HomeClubID: 11, AwayClubID: 12, HomeScore: 2, AwayScore: 0},
			{HomeClubID: 13, AwayClubID: 14, HomeScore: 1, AwayScore: 1},
		})
		require.NoError(t, err)

		p, err := store.GetParticipantByClub(ctx, edition.ID, 11)
		require.NoError(t, err)
		assert.Equal(t, 3, p.GroupPoints)
		assert.Equal(t, 2, p.GroupGoalsFor)
		assert.Equal(t, 1, p.GroupWon)

		p, err = store.GetParticipantByClub(ctx, edition.ID, 14)
		require.NoError(t, err)
		assert.Equal(t, 1, p.GroupPoints)
		assert.Equal(t, 1, p.GroupDrawn)
	})

	t.Run("rejects a fixture from another matchday", func(t *testing.T) {
		err := manager.RecordMatchday(ctx, "A", 1, []MatchResult{{HomeClubID: 12, AwayClubID: 14}})
		assert.ErrorIs(t, err, ErrResultNotInSchedule)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := manager.Schedule(ctx, "Z")
		assert.ErrorIs(t, err, ErrGroupTooSmall)
	})

	t.Run("qualifiers come from the fixtures", func(t *testing.T) {
		round := &models.Round{EditionID: edition.ID, RoundOrder: 1}
		require.NoError(t, store.CreateRound(ctx, round))
		for _, f := range []models.Fixture{
			groupFixture("A", 11, 12, 2, 0),
			groupFixture("A", 13, 14, 1, 1),
		} {
			tie := &models.Tie{EditionID: edition.ID, RoundID: round.ID, HomeClubID: f.HomeClubID, AwayClubID: f.AwayClubID}
			require.NoError(t, store.CreateTie(ctx, tie))
			f.EditionID, f.RoundID, f.TieID, f.Leg = edition.ID, round.ID, tie.ID, 1
			require.NoError(t, store.CreateFixture(ctx, &f))
		}

		winner, runnerUp, err := manager.Qualifiers(ctx, "A")
		require.NoError(t, err)
		assert.Equal(t, 11, winner.ClubID)
		assert.Equal(t, 13, runnerUp.ClubID)
	})
}
