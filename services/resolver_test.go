package services

import (
	"testing"

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/Dosada05/cup-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func played(id, home, away, homeScore, awayScore int) models.Fixture {
	return models.Fixture{
		ID: id, HomeClubID: home, AwayClubID: away,
		HomeScore: &homeScore, AwayScore: &awayScore, Status: models.FixtureFullTime,
	}
}

// fixedRNG always returns the same value.
type fixedRNG struct{ n int }

func (r fixedRNG) Intn(int) int                { return r.n }
func (r fixedRNG) Shuffle(int, func(i, j int)) {}

func TestResolveTwoLegTie(t *testing.T) {
	resolver := NewKnockoutResolver(CoinToss{}, true)
	rng := brackets.NewSeededRNG(1)

	t.Run("aggregate uses first-leg identities", func(t *testing.T) {
		out, err := resolver.ResolveTwoLegTie(played(1, 10, 20, 2, 1), played(2, 20, 10, 0, 0), rng)
		require.NoError(t, err)
		assert.Equal(t, 2, out.HomeAggregate)
		assert.Equal(t, 1, out.AwayAggregate)
		assert.Equal(t, 10, out.WinnerClubID)
		assert.Equal(t, 20, out.LoserClubID())
		assert.False(t, out.DecidedByAwayGoals)
		assert.False(t, out.DecidedByTiebreak)
	})

	t.Run("away goals", func(t *testing.T) {
		// A(10) 1-0 B(20), then B 2-1 A: 2-2 on aggregate, A scored one away goal
		out, err := resolver.ResolveTwoLegTie(played(1, 10, 20, 1, 0), played(2, 20, 10, 2, 1), rng)
		require.NoError(t, err)
		assert.Equal(t, 2, out.HomeAggregate)
		assert.Equal(t, 2, out.AwayAggregate)
		assert.Equal(t, 1, *out.HomeAwayGoals)
		assert.Equal(t, 0, *out.AwayAwayGoals)
		assert.Equal(t, 10, out.WinnerClubID)
		assert.True(t, out.DecidedByAwayGoals)
	})

	t.Run("away goals disabled goes to tiebreak", func(t *testing.T) {
		noAwayGoals := NewKnockoutResolver(CoinToss{}, false)
		out, err := noAwayGoals.ResolveTwoLegTie(played(1, 10, 20, 1, 0), played(2, 20, 10, 2, 1), fixedRNG{n: 1})
		require.NoError(t, err)
		assert.True(t, out.DecidedByTiebreak)
		assert.False(t, out.DecidedByAwayGoals)
		assert.Equal(t, 20, out.WinnerClubID)
	})

	t.Run("level on everything goes to tiebreak", func(t *testing.T) {
		out, err := resolver.ResolveTwoLegTie(played(1, 10, 20, 1, 1), played(2, 20, 10, 1, 1), fixedRNG{n: 0})
		require.NoError(t, err)
		assert.True(t, out.DecidedByTiebreak)
		assert.Equal(t, 10, out.WinnerClubID)
	})

	t.Run("legs must be swapped", func(t *testing.T) {
		_, err := resolver.ResolveTwoLegTie(played(1, 10, 20, 1, 0), played(2, 10, 20, 1, 0), rng)
		assert.ErrorIs(t, err, ErrLegsMismatch)
	})

	t.Run("unplayed leg", func(t *testing.T) {
		_, err := resolver.ResolveTwoLegTie(played(1, 10, 20, 1, 0), models.Fixture{ID: 2, HomeClubID: 20, AwayClubID: 10}, rng)
		assert.ErrorIs(t, err, ErrFixtureNotPlayed)
	})
}

func TestResolveSingleMatch(t *testing.T) {
	resolver := NewKnockoutResolver(nil, true)

	out, err := resolver.ResolveSingleMatch(played(1, 3, 4, 0, 2), fixedRNG{})
	require.NoError(t, err)
	assert.Equal(t, 4, out.WinnerClubID)
	assert.False(t, out.DecidedByTiebreak)

	t.Run("draw is reproducible for a seed", func(t *testing.T) {
		first, err := resolver.ResolveSingleMatch(played(1, 3, 4, 1, 1), brackets.NewSeededRNG(99))
		require.NoError(t, err)
		second, err := resolver.ResolveSingleMatch(played(1, 3, 4, 1, 1), brackets.NewSeededRNG(99))
		require.NoError(t, err)
		assert.True(t, first.DecidedByTiebreak)
		assert.Equal(t, first.WinnerClubID, second.WinnerClubID)
		assert.Contains(t, []int{3, 4}, first.WinnerClubID)
	})
}

func TestPenaltyShootout(t *testing.T) {
	resolver := NewKnockoutResolver(DefaultPenaltyShootout(), true)
	for seed := int64(1); seed <= 20; seed++ {
		out, err := resolver.ResolveSingleMatch(played(1, 3, 4, 2, 2), brackets.NewSeededRNG(seed))
		require.NoError(t, err)
		require.NotNil(t, out.HomePenalties)
		require.NotNil(t, out.AwayPenalties)
		assert.NotEqual(t, *out.HomePenalties, *out.AwayPenalties)
		if *out.HomePenalties > *out.AwayPenalties {
			assert.Equal(t, 3, out.WinnerClubID)
		} else {
			assert.Equal(t, 4, out.WinnerClubID)
		}
	}

	t.Run("stuck rng still ends", func(t *testing.T) {
		res := DefaultPenaltyShootout().Decide(3, 4, fixedRNG{n: 0})
		assert.Equal(t, 3, res.WinnerClubID)
		assert.Equal(t, *res.AwayPenalties+1, *res.HomePenalties)
	})
}

func TestTiebreakStrategyByName(t *testing.T) {
	s, err := TiebreakStrategyByName("")
	require.NoError(t, err)
	assert.IsType(t, CoinToss{}, s)

	s, err = TiebreakStrategyByName("penalties")
	require.NoError(t, err)
	assert.IsType(t, PenaltyShootout{}, s)

	_, err = TiebreakStrategyByName("replay")
	assert.ErrorIs(t, err, ErrUnknownTiebreak)
}
