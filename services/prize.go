package services

import (
	"github.com/Dosada05/cup-engine/models"
)

// PrizeTable holds the payouts of one cup type, in whole currency units.
type PrizeTable struct {
	// Participation is paid once for entering at a round of that type.
	Participation map[models.RoundType]int64
	// Progression is paid once for getting past a round of that type.
	Progression map[models.RoundType]int64
	GroupWin    int64
	GroupDraw   int64
	Winner      int64
}

var defaultPrizeTables = map[models.CupType]PrizeTable{
	models.CupTypeChampionsLeague: {
		Participation: map[models.RoundType]int64{models.RoundGroupStage: 15_600_000},
		Progression: map[models.RoundType]int64{
			models.RoundGroupStage:   9_600_000,
			models.RoundOf16:         10_600_000,
			models.RoundQuarterFinal: 12_500_000,
			models.RoundSemiFinal:    15_500_000,
		},
		GroupWin:  2_800_000,
		GroupDraw: 930_000,
		Winner:    4_500_000,
	},
	models.CupTypeEuropaLeague: {
		Participation: map[models.RoundType]int64{models.RoundGroupStage: 3_600_000},
		Progression: map[models.RoundType]int64{
			models.RoundGroupStage:   1_200_000,
			models.RoundOf16:         1_800_000,
			models.RoundQuarterFinal: 2_800_000,
			models.RoundSemiFinal:    4_600_000,
		},
		GroupWin:  630_000,
		GroupDraw: 210_000,
		Winner:    4_000_000,
	},
	models.CupTypeConferenceLeague: {
		Participation: map[models.RoundType]int64{models.RoundGroupStage: 2_900_000},
		Progression: map[models.RoundType]int64{
			models.RoundGroupStage:   650_000,
			models.RoundOf16:         800_000,
			models.RoundQuarterFinal: 1_300_000,
			models.RoundSemiFinal:    2_000_000,
		},
		GroupWin:  500_000,
		GroupDraw: 166_000,
		Winner:    2_000_000,
	},
	models.CupTypeDomestic: {
		Progression: map[models.RoundType]int64{
			models.RoundPreliminary:      1_500,
			models.RoundFirstQualifying:  2_000,
			models.RoundSecondQualifying: 3_000,
			models.RoundThirdQualifying:  5_000,
			models.RoundOf128:            25_000,
			models.RoundOf64:             40_000,
			models.RoundOf32:             60_000,
			models.RoundOf16:             90_000,
			models.RoundQuarterFinal:     450_000,
			models.RoundSemiFinal:        1_000_000,
			models.RoundFinal:            2_000_000,
		},
		Winner: 1_000_000,
	},
	models.CupTypeLeagueCup: {
		Progression: map[models.RoundType]int64{
			models.RoundOf64:         20_000,
			models.RoundOf32:         30_000,
			models.RoundOf16:         50_000,
			models.RoundQuarterFinal: 100_000,
			models.RoundSemiFinal:    250_000,
			models.RoundFinal:        500_000,
		},
		Winner: 100_000,
	},
}

// PrizeCalculator is a stateless lookup over prize tables.
type PrizeCalculator struct {
	tables map[models.CupType]PrizeTable
}

func NewPrizeCalculator() *PrizeCalculator {
	return &PrizeCalculator{tables: defaultPrizeTables}
}

func NewPrizeCalculatorWithTables(tables map[models.CupType]PrizeTable) *PrizeCalculator {
	return &PrizeCalculator{tables: tables}
}

func (c *PrizeCalculator) ParticipationBonus(cupType models.CupType, roundType models.RoundType) int64 {
	return c.tables[cupType].Participation[roundType]
}

func (c *PrizeCalculator) ProgressionBonus(cupType models.CupType, roundType models.RoundType) int64 {
	return c.tables[cupType].Progression[roundType]
}

// MatchBonus is paid per group-stage result. Only continental tables carry it.
func (c *PrizeCalculator) MatchBonus(cupType models.CupType, won, drawn int) int64 {
	t := c.tables[cupType]
	return int64(won)*t.GroupWin + int64(drawn)*t.GroupDraw
}

// prizeStage is a span of rounds paying one progression bonus once passed.
type prizeStage struct {
	roundType models.RoundType
	last      int
}

// TotalPrizeForParticipant sums every bonus the participant has earned so far.
// It only ever adds bonuses as the participant gets further, so the total
// never drops with round depth.
func (c *PrizeCalculator) TotalPrizeForParticipant(cupType models.CupType, rounds []models.Round, p models.Participant) int64 {
	if len(rounds) == 0 {
		return 0
	}

	orderByID := make(map[int]int, len(rounds))
	// matchdays of a group stage form one stage; every knockout round is its own
	groupStage := make(map[models.RoundType]int)
	stages := make([]prizeStage, 0, len(rounds))
	minOrder, maxOrder := rounds[0].RoundOrder, rounds[0].RoundOrder
	firstPending := 0
	for _, r := range rounds {
		orderByID[r.ID] = r.RoundOrder
		minOrder, maxOrder = min(minOrder, r.RoundOrder), max(maxOrder, r.RoundOrder)
		if !r.IsCompleted && (firstPending == 0 || r.RoundOrder < firstPending) {
			firstPending = r.RoundOrder
		}
		if r.IsGroupStage || r.RoundType == models.RoundGroupStage {
			if i, ok := groupStage[r.RoundType]; ok {
				stages[i].last = max(stages[i].last, r.RoundOrder)
				continue
			}
			groupStage[r.RoundType] = len(stages)
		}
		stages = append(stages, prizeStage{roundType: r.RoundType, last: r.RoundOrder})
	}

	entryOrder := minOrder
	if p.EntryRoundID != nil {
		if order, ok := orderByID[*p.EntryRoundID]; ok {
			entryOrder = order
		}
	}

	// reached is the first round the participant has not got past
	var reached int
	switch {
	case p.Status == models.ParticipantChampion:
		reached = maxOrder + 1
	case p.EliminatedInRoundID != nil:
		reached = orderByID[*p.EliminatedInRoundID]
	case firstPending == 0:
		reached = maxOrder + 1
	default:
		reached = firstPending
	}

	var total int64
	entryType := models.RoundType("")
	for _, r := range rounds {
		if r.RoundOrder == entryOrder {
			entryType = r.RoundType
			break
		}
	}
	total += c.ParticipationBonus(cupType, entryType)

	for _, st := range stages {
		if entryOrder <= st.last && reached > st.last {
			total += c.ProgressionBonus(cupType, st.roundType)
		}
	}

	total += c.MatchBonus(cupType, p.GroupWon, p.GroupDrawn)
	if p.Status == models.ParticipantChampion {
		total += c.tables[cupType].Winner
	}
	return total
}
