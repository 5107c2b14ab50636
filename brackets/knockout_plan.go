package brackets

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/cup-engine/models"
)

var (
	ErrTooFewEntrants     = errors.New("at least two entrants are required")
	ErrInvalidEntryRound  = errors.New("entry rounds must be positive")
	ErrQualifiersNotPower = errors.New("number of qualifiers must be a power of two")
)

// RoundPlan describes one knockout round before it is created.
type RoundPlan struct {
	Order    int
	Type     models.RoundType
	Name     string
	Entering int // clubs joining at this round
	Clubs    int // clubs expected in the draw, including entrants
}

// named from the final backwards
var namedRounds = []models.RoundType{
	models.RoundFinal,
	models.RoundSemiFinal,
	models.RoundQuarterFinal,
	models.RoundOf16,
	models.RoundOf32,
	models.RoundOf64,
	models.RoundOf128,
}

var qualifyingRounds = []models.RoundType{
	models.RoundThirdQualifying,
	models.RoundSecondQualifying,
	models.RoundFirstQualifying,
}

var roundNames = map[models.RoundType]string{
	models.RoundPreliminary:      "Preliminary round",
	models.RoundFirstQualifying:  "First qualifying round",
	models.RoundSecondQualifying: "Second qualifying round",
	models.RoundThirdQualifying:  "Third qualifying round",
	models.RoundOf128:            "Round of 128",
	models.RoundOf64:             "Round of 64",
	models.RoundOf32:             "Round of 32",
	models.RoundOf16:             "Round of 16",
	models.RoundQuarterFinal:     "Quarter-final",
	models.RoundSemiFinal:        "Semi-final",
	models.RoundFinal:            "Final",
	models.RoundGroupStage:       "Group stage",
}

func RoundName(t models.RoundType) string {
	if name, ok := roundNames[t]; ok {
		return name
	}
	return string(t)
}

// roundTypeFromEnd returns the type of the round k rounds before the final.
func roundTypeFromEnd(k int) models.RoundType {
	if k < len(namedRounds) {
		return namedRounds[k]
	}
	k -= len(namedRounds)
	if k < len(qualifyingRounds) {
		return qualifyingRounds[k]
	}
	return models.RoundPreliminary
}

// PlanKnockoutRounds plans a single-elimination cup where entering[r] clubs join
// at round r. Odd draws give one bye, so each round halves the field rounding up.
// Rounds are named from the final backwards.
func PlanKnockoutRounds(entering map[int]int) ([]RoundPlan, error) {
	total, lastEntry := 0, 0
	for round, count := range entering {
		if round < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidEntryRound, round)
		}
		total += count
		if count > 0 && round > lastEntry {
			lastEntry = round
		}
	}
	if total < 2 {
		return nil, ErrTooFewEntrants
	}

	plans := make([]RoundPlan, 0, int(math.Ceil(math.Log2(float64(total))))+lastEntry)
	active := 0
	for order := 1; ; order++ {
		active += entering[order]
		plans = append(plans, RoundPlan{Order: order, Entering: entering[order], Clubs: active})
		active = active/2 + active%2
		if order >= lastEntry && active <= 1 {
			break
		}
	}

	n := len(plans)
	preliminaries := 0
	for i := range plans {
		plans[i].Type = roundTypeFromEnd(n - 1 - i)
		plans[i].Name = RoundName(plans[i].Type)
		if plans[i].Type == models.RoundPreliminary {
			preliminaries++
		}
	}
	// preliminary rounds share a type; number them so each is told apart
	if preliminaries > 1 {
		for i := 0; i < preliminaries; i++ {
			plans[i].Name = fmt.Sprintf("%s %d", RoundName(models.RoundPreliminary), i+1)
		}
	}
	return plans, nil
}

// PlanQualifierRounds plans the knockout rounds played by the clubs coming out
// of a group stage, starting at firstOrder.
func PlanQualifierRounds(qualifiers, firstOrder int) ([]RoundPlan, error) {
	if qualifiers < 2 {
		return nil, ErrTooFewEntrants
	}
	if qualifiers&(qualifiers-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrQualifiersNotPower, qualifiers)
	}

	numRounds := int(math.Log2(float64(qualifiers)))
	plans := make([]RoundPlan, 0, numRounds)
	clubs := qualifiers
	for i := 0; i < numRounds; i++ {
		t := roundTypeFromEnd(numRounds - 1 - i)
		plan := RoundPlan{Order: firstOrder + i, Type: t, Name: RoundName(t), Clubs: clubs}
		if i == 0 {
			plan.Entering = qualifiers
		}
		plans = append(plans, plan)
		clubs /= 2
	}
	return plans, nil
}

// NormalizeEntryRounds shifts entry rounds so the earliest used round becomes
// round 1, keeping the gaps between them.
func NormalizeEntryRounds(entryRounds []int) []int {
	if len(entryRounds) == 0 {
		return nil
	}
	sorted := append([]int(nil), entryRounds...)
	sort.Ints(sorted)
	shift := sorted[0] - 1
	out := make([]int, len(entryRounds))
	for i, r := range entryRounds {
		out[i] = r - shift
	}
	return out
}
