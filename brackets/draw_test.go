package brackets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEntrants(n int) []Entrant {
	entrants := make([]Entrant, n)
	for i := range entrants {
		entrants[i] = Entrant{ClubID: i + 1, Reputation: 100 - i, Country: "ENG"}
	}
	return entrants
}

func clubIDs(entrants []Entrant) []int {
	ids := make([]int, len(entrants))
	for i, e := range entrants {
		ids[i] = e.ClubID
	}
	sort.Ints(ids)
	return ids
}

func assertPartition(t *testing.T, input []Entrant, result DrawResult) {
	t.Helper()
	seen := make(map[int]int)
	for _, p := range result.Pairings {
		seen[p.Home.ClubID]++
		seen[p.Away.ClubID]++
		assert.NotEqual(t, p.Home.ClubID, p.Away.ClubID, "club paired with itself")
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "club %d appears in more than one pairing", id)
	}
	assert.Equal(t, clubIDs(input), clubIDs(result.Entrants()))
}

func TestRandomDraw(t *testing.T) {
	t.Run("even count pairs everyone", func(t *testing.T) {
		entrants := makeEntrants(16)
		result := NewGenerator(NewSeededRNG(1)).RandomDraw(entrants, true)

		assert.Len(t, result.Pairings, 8)
		assert.Empty(t, result.Byes)
		assert.Empty(t, result.Unpaired)
		assertPartition(t, entrants, result)
	})

	t.Run("odd count with byes", func(t *testing.T) {
		entrants := makeEntrants(7)
		result := NewGenerator(NewSeededRNG(2)).RandomDraw(entrants, true)

		assert.Len(t, result.Pairings, 3)
		assert.Len(t, result.Byes, 1)
		assert.Empty(t, result.Unpaired)
		assertPartition(t, entrants, result)
	})

	t.Run("odd count without byes leaves remainder unpaired", func(t *testing.T) {
		entrants := makeEntrants(5)
		result := NewGenerator(NewSeededRNG(3)).RandomDraw(entrants, false)

		assert.Len(t, result.Pairings, 2)
		assert.Empty(t, result.Byes)
		assert.Len(t, result.Unpaired, 1)
		assertPartition(t, entrants, result)
	})

	t.Run("empty and single input become byes", func(t *testing.T) {
		g := NewGenerator(NewSeededRNG(4))

		empty := g.RandomDraw(nil, true)
		assert.NotNil(t, empty.Pairings)
		assert.Empty(t, empty.Pairings)
		assert.Empty(t, empty.Byes)

		single := g.RandomDraw(makeEntrants(1), false)
		assert.Empty(t, single.Pairings)
		require.Len(t, single.Byes, 1)
		assert.Equal(t, 1, single.Byes[0].ClubID)
	})

	t.Run("same seed same draw regardless of input order", func(t *testing.T) {
		entrants := makeEntrants(12)
		reversed := make([]Entrant, len(entrants))
		for i, e := range entrants {
			reversed[len(entrants)-1-i] = e
		}

		a := NewGenerator(NewSeededRNG(42)).RandomDraw(entrants, true)
		b := NewGenerator(NewSeededRNG(42)).RandomDraw(reversed, true)
		assert.Equal(t, a, b)
	})
}

func TestSeededDraw(t *testing.T) {
	t.Run("top pot meets bottom pot", func(t *testing.T) {
		entrants := makeEntrants(8)
		result := NewGenerator(NewSeededRNG(7)).SeededDraw(entrants, 2)

		require.Len(t, result.Pairings, 4)
		for _, p := range result.Pairings {
			assert.LessOrEqual(t, p.Home.ClubID, 4, "home side should come from the top pot")
			assert.Greater(t, p.Away.ClubID, 4, "away side should come from the bottom pot")
		}
		assertPartition(t, entrants, result)
	})

	t.Run("four pots pair outer and inner pots", func(t *testing.T) {
		entrants := makeEntrants(8)
		result := NewGenerator(NewSeededRNG(8)).SeededDraw(entrants, 4)

		require.Len(t, result.Pairings, 4)
		potOf := func(id int) int { return (id - 1) / 2 }
		for _, p := range result.Pairings {
			assert.Equal(t, 3, potOf(p.Home.ClubID)+potOf(p.Away.ClubID))
		}
		assertPartition(t, entrants, result)
	})

	t.Run("leftover lowest ranked clubs get byes", func(t *testing.T) {
		entrants := makeEntrants(9)
		result := NewGenerator(NewSeededRNG(9)).SeededDraw(entrants, 2)

		assert.Len(t, result.Pairings, 4)
		require.Len(t, result.Byes, 1)
		assert.Equal(t, 9, result.Byes[0].ClubID)
		assertPartition(t, entrants, result)
	})

	t.Run("single entrant", func(t *testing.T) {
		result := NewGenerator(NewSeededRNG(9)).SeededDraw(makeEntrants(1), 2)
		assert.Empty(t, result.Pairings)
		assert.Len(t, result.Byes, 1)
	})
}

func TestTieredDraw(t *testing.T) {
	byTier := map[int][]Entrant{
		1: {{ClubID: 1, LeagueTier: 1}, {ClubID: 2, LeagueTier: 1}},
		2: {{ClubID: 3, LeagueTier: 2}, {ClubID: 4, LeagueTier: 2}},
		5: {{ClubID: 5, LeagueTier: 5}, {ClubID: 6, LeagueTier: 5}},
	}
	entry := map[int]int{1: 3, 2: 2}

	g := NewGenerator(NewSeededRNG(5))

	first := g.TieredDraw(byTier, entry, 1)
	assert.Equal(t, []int{5, 6}, clubIDs(first.Entrants()))

	second := g.TieredDraw(byTier, entry, 2)
	assert.Equal(t, []int{3, 4, 5, 6}, clubIDs(second.Entrants()))

	third := g.TieredDraw(byTier, entry, 3)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, clubIDs(third.Entrants()))
	assert.Len(t, third.Pairings, 3)
}

func TestGroupStageDraw(t *testing.T) {
	entrants := makeEntrants(32)
	draw := NewGenerator(NewSeededRNG(11)).GroupStageDraw(entrants, 8, 4)

	require.Len(t, draw.Groups, 8)
	assert.Empty(t, draw.Unassigned)
	assert.Equal(t, "A", draw.Groups[0].Name)
	assert.Equal(t, "H", draw.Groups[7].Name)

	seen := make(map[int]bool)
	for _, group := range draw.Groups {
		require.Len(t, group.Members, 4)
		for pot, member := range group.Members {
			// club IDs 1..8 form pot 0, 9..16 pot 1 and so on
			assert.Equal(t, pot, (member.ClubID-1)/8, "group %s slot %d", group.Name, pot)
			assert.Equal(t, group.Name, member.Group)
			assert.False(t, seen[member.ClubID])
			seen[member.ClubID] = true
		}
	}
	assert.Len(t, seen, 32)
}

func TestGroupStageDrawOverflow(t *testing.T) {
	draw := NewGenerator(NewSeededRNG(12)).GroupStageDraw(makeEntrants(10), 2, 4)

	assert.Len(t, draw.Groups, 2)
	assert.Equal(t, []int{9, 10}, clubIDs(draw.Unassigned))
}

func TestKnockoutSeedDraw(t *testing.T) {
	countries := []string{"ENG", "ESP", "GER", "ITA", "FRA", "POR", "NED", "BEL"}
	var winners, runners []Entrant
	for i := 0; i < 8; i++ {
		group := GroupName(i)
		winners = append(winners, Entrant{ClubID: 100 + i, Group: group, Country: countries[i]})
		runners = append(runners, Entrant{ClubID: 200 + i, Group: group, Country: countries[(i+1)%8]})
	}

	for seed := int64(0); seed < 20; seed++ {
		result := NewGenerator(NewSeededRNG(seed)).KnockoutSeedDraw(winners, runners)

		require.Len(t, result.Pairings, 8)
		assert.Empty(t, result.Byes)
		for _, p := range result.Pairings {
			assert.GreaterOrEqual(t, p.Home.ClubID, 200, "runner-up hosts the first leg")
			assert.Less(t, p.Away.ClubID, 200)
			assert.NotEqual(t, p.Home.Group, p.Away.Group)
			assert.NotEqual(t, p.Home.Country, p.Away.Country)
			assert.Equal(t, RelaxNone, p.Relaxation)
		}
	}
}

func TestKnockoutSeedDrawRelaxesCountryFirst(t *testing.T) {
	winners := []Entrant{
		{ClubID: 1, Group: "A", Country: "ENG"},
		{ClubID: 2, Group: "B", Country: "ENG"},
	}
	runners := []Entrant{
		{ClubID: 3, Group: "A", Country: "ESP"},
		{ClubID: 4, Group: "B", Country: "ENG"},
	}

	for seed := int64(0); seed < 10; seed++ {
		result := NewGenerator(NewSeededRNG(seed)).KnockoutSeedDraw(winners, runners)
		require.Len(t, result.Pairings, 2)

		opponents := make(map[int]int)
		for _, p := range result.Pairings {
			opponents[p.Away.ClubID] = p.Home.ClubID
			assert.NotEqual(t, p.Home.Group, p.Away.Group, "group constraint must survive")
		}
		assert.Equal(t, 4, opponents[1])
		assert.Equal(t, 3, opponents[2])
	}
}

func TestKnockoutSeedDrawFallsBackToAnyOpponent(t *testing.T) {
	winners := []Entrant{{ClubID: 1, Group: "A", Country: "ENG"}}
	runners := []Entrant{{ClubID: 2, Group: "A", Country: "ENG"}}

	result := NewGenerator(NewSeededRNG(1)).KnockoutSeedDraw(winners, runners)
	require.Len(t, result.Pairings, 1)
	assert.Equal(t, RelaxAll, result.Pairings[0].Relaxation)
}

func TestKnockoutSeedDrawDeterministic(t *testing.T) {
	var winners, runners []Entrant
	for i := 0; i < 8; i++ {
		winners = append(winners, Entrant{ClubID: 10 + i, Group: GroupName(i), Country: "ENG"})
		runners = append(runners, Entrant{ClubID: 20 + i, Group: GroupName(i), Country: "ESP"})
	}
	a := NewGenerator(NewSeededRNG(99)).KnockoutSeedDraw(winners, runners)
	b := NewGenerator(NewSeededRNG(99)).KnockoutSeedDraw(winners, runners)
	assert.Equal(t, a, b)
}

func TestDeriveSeed(t *testing.T) {
	assert.Equal(t, DeriveSeed(7, "draw", 1), DeriveSeed(7, "draw", 1))
	assert.NotEqual(t, DeriveSeed(7, "draw", 1), DeriveSeed(7, "draw", 2))
	assert.NotEqual(t, DeriveSeed(7, "draw", 1), DeriveSeed(8, "draw", 1))
	assert.GreaterOrEqual(t, DeriveSeed(-5, "tiebreak", 3), int64(0))
}
