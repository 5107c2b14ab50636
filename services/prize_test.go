package services

import (
	"testing"

	"github.com/Dosada05/cup-engine/models"
	"github.com/stretchr/testify/assert"
)

func domesticRounds() []models.Round {
	types := []models.RoundType{models.RoundOf16, models.RoundQuarterFinal, models.RoundSemiFinal, models.RoundFinal}
	rounds := make([]models.Round, len(types))
	for i, rt := range types {
		rounds[i] = models.Round{ID: 100 + i, RoundOrder: i + 1, RoundType: rt, IsCompleted: true}
	}
	return rounds
}

func eliminatedIn(roundID int) models.Participant {
	return models.Participant{Status: models.ParticipantEliminated, EliminatedInRoundID: &roundID}
}

func TestPrizeCalculatorLookups(t *testing.T) {
	calc := NewPrizeCalculator()

	assert.Equal(t, int64(15_600_000), calc.ParticipationBonus(models.CupTypeChampionsLeague, models.RoundGroupStage))
	assert.Zero(t, calc.ParticipationBonus(models.CupTypeDomestic, models.RoundOf16))
	assert.Equal(t, int64(450_000), calc.ProgressionBonus(models.CupTypeDomestic, models.RoundQuarterFinal))
	assert.Zero(t, calc.ProgressionBonus(models.CupType("unknown"), models.RoundFinal))

	assert.Equal(t, int64(2*2_800_000+930_000), calc.MatchBonus(models.CupTypeChampionsLeague, 2, 1))
	assert.Zero(t, calc.MatchBonus(models.CupTypeDomestic, 3, 0))
}

func TestTotalPrizeForParticipant(t *testing.T) {
	calc := NewPrizeCalculator()
	rounds := domesticRounds()

	t.Run("grows with round depth", func(t *testing.T) {
		var previous int64 = -1
		for _, r := range rounds {
			total := calc.TotalPrizeForParticipant(models.CupTypeDomestic, rounds, eliminatedIn(r.ID))
			assert.Greater(t, total, previous, "eliminated in %s", r.RoundType)
			previous = total
		}
		champion := models.Participant{Status: models.ParticipantChampion}
		assert.Greater(t, calc.TotalPrizeForParticipant(models.CupTypeDomestic, rounds, champion), previous)
	})

	t.Run("exact amounts", func(t *testing.T) {
		assert.Zero(t, calc.TotalPrizeForParticipant(models.CupTypeDomestic, rounds, eliminatedIn(100)))
		assert.Equal(t, int64(90_000+450_000+1_000_000),
			calc.TotalPrizeForParticipant(models.CupTypeDomestic, rounds, eliminatedIn(103)))
		assert.Equal(t, int64(90_000+450_000+1_000_000+2_000_000+1_000_000),
			calc.TotalPrizeForParticipant(models.CupTypeDomestic, rounds, models.Participant{Status: models.ParticipantChampion}))
	})

	t.Run("late entrants are paid from their entry round", func(t *testing.T) {
		p := eliminatedIn(103)
		entry := 102
		p.EntryRoundID = &entry
		assert.Equal(t, int64(1_000_000), calc.TotalPrizeForParticipant(models.CupTypeDomestic, rounds, p))
	})

	t.Run("active clubs are paid for completed rounds only", func(t *testing.T) {
		inProgress := domesticRounds()
		inProgress[2].IsCompleted = false
		inProgress[3].IsCompleted = false
		p := models.Participant{Status: models.ParticipantActive}
		assert.Equal(t, int64(90_000+450_000), calc.TotalPrizeForParticipant(models.CupTypeDomestic, inProgress, p))
	})

	t.Run("continental group stage exit", func(t *testing.T) {
		var continental []models.Round
		for md := 1; md <= 6; md++ {
			continental = append(continental, models.Round{ID: md, RoundOrder: md, RoundType: models.RoundGroupStage, IsCompleted: true})
		}
		continental = append(continental,
			models.Round{ID: 7, RoundOrder: 7, RoundType: models.RoundSemiFinal},
			models.Round{ID: 8, RoundOrder: 8, RoundType: models.RoundFinal},
		)
		p := eliminatedIn(6)
		p.GroupWon, p.GroupDrawn = 2, 1
		assert.Equal(t, int64(15_600_000+2*2_800_000+930_000),
			calc.TotalPrizeForParticipant(models.CupTypeChampionsLeague, continental, p))
	})

	t.Run("each preliminary round pays on its own", func(t *testing.T) {
		early := []models.Round{
			{ID: 1, RoundOrder: 1, RoundType: models.RoundPreliminary, IsCompleted: true},
			{ID: 2, RoundOrder: 2, RoundType: models.RoundPreliminary, IsCompleted: true},
			{ID: 3, RoundOrder: 3, RoundType: models.RoundFirstQualifying, IsCompleted: true},
		}
		assert.Zero(t, calc.TotalPrizeForParticipant(models.CupTypeDomestic, early, eliminatedIn(1)))
		assert.Equal(t, int64(1_500), calc.TotalPrizeForParticipant(models.CupTypeDomestic, early, eliminatedIn(2)))
		assert.Equal(t, int64(2*1_500), calc.TotalPrizeForParticipant(models.CupTypeDomestic, early, eliminatedIn(3)))

		secondOnly := eliminatedIn(3)
		entry := 2
		secondOnly.EntryRoundID = &entry
		assert.Equal(t, int64(1_500), calc.TotalPrizeForParticipant(models.CupTypeDomestic, early, secondOnly))
	})

	t.Run("group matchdays pay one progression bonus", func(t *testing.T) {
		var group []models.Round
		for md := 1; md <= 6; md++ {
			group = append(group, models.Round{ID: md, RoundOrder: md, RoundType: models.RoundGroupStage, IsGroupStage: true, IsCompleted: true})
		}
		group = append(group, models.Round{ID: 7, RoundOrder: 7, RoundType: models.RoundOf16})
		p := eliminatedIn(7)
		assert.Equal(t, int64(2_900_000+650_000),
			calc.TotalPrizeForParticipant(models.CupTypeConferenceLeague, group, p))
	})

	t.Run("no rounds", func(t *testing.T) {
		assert.Zero(t, calc.TotalPrizeForParticipant(models.CupTypeDomestic, nil, models.Participant{}))
	})
}

func TestPrizeAwardID(t *testing.T) {
	assert.Equal(t, PrizeAwardID(1, 2, 300), PrizeAwardID(1, 2, 300))
	assert.NotEqual(t, PrizeAwardID(1, 2, 300), PrizeAwardID(1, 2, 301))
	assert.NotEqual(t, PrizeAwardID(1, 2, 300), PrizeAwardID(2, 1, 300))
}
