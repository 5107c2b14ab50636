package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/Dosada05/cup-engine/models"
)

const (
	TiebreakCoinToss  = "coin_toss"
	TiebreakPenalties = "penalties"
)

type TiebreakResult struct {
	WinnerClubID  int
	HomePenalties *int
	AwayPenalties *int
}

// TiebreakStrategy settles a tie that is level after every other rule.
// home and away are the first-leg home and away clubs.
type TiebreakStrategy interface {
	Decide(home, away int, rng brackets.RNG) TiebreakResult
}

// CoinToss picks either club with equal probability. It stands in for extra
// time and penalties.
type CoinToss struct{}

func (CoinToss) Decide(home, away int, rng brackets.RNG) TiebreakResult {
	if rng.Intn(2) == 0 {
		return TiebreakResult{WinnerClubID: home}
	}
	return TiebreakResult{WinnerClubID: away}
}

// PenaltyShootout plays best-of-five kicks then sudden death. Each kick
// scores with probability ConversionPercent/100.
type PenaltyShootout struct {
	Kicks             int
	ConversionPercent int
}

const maxSuddenDeath = 50

func DefaultPenaltyShootout() PenaltyShootout {
	return PenaltyShootout{Kicks: 5, ConversionPercent: 75}
}

func (p PenaltyShootout) Decide(home, away int, rng brackets.RNG) TiebreakResult {
	kick := func() int {
		if rng.Intn(100) < p.ConversionPercent {
			return 1
		}
		return 0
	}

	homeGoals, awayGoals := 0, 0
	for i := 0; i < p.Kicks; i++ {
		homeGoals += kick()
		awayGoals += kick()
	}
	for i := 0; homeGoals == awayGoals && i < maxSuddenDeath; i++ {
		homeGoals += kick()
		awayGoals += kick()
	}
	if homeGoals == awayGoals {
		// a stuck RNG cannot keep the shoot-out going forever
		if (CoinToss{}).Decide(home, away, rng).WinnerClubID == home {
			homeGoals++
		} else {
			awayGoals++
		}
	}

	result := TiebreakResult{HomePenalties: &homeGoals, AwayPenalties: &awayGoals, WinnerClubID: away}
	if homeGoals > awayGoals {
		result.WinnerClubID = home
	}
	return result
}

func TiebreakStrategyByName(name string) (TiebreakStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TiebreakCoinToss:
		return CoinToss{}, nil
	case TiebreakPenalties:
		return DefaultPenaltyShootout(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTiebreak, name)
	}
}

// TieOutcome is the decision on one knockout tie. Home and away refer to the
// first leg.
type TieOutcome struct {
	HomeClubID         int
	AwayClubID         int
	WinnerClubID       int
	HomeAggregate      int
	AwayAggregate      int
	HomeAwayGoals      *int
	AwayAwayGoals      *int
	DecidedByAwayGoals bool
	DecidedByTiebreak  bool
	HomePenalties      *int
	AwayPenalties      *int
}

func (o TieOutcome) LoserClubID() int {
	if o.WinnerClubID == o.HomeClubID {
		return o.AwayClubID
	}
	return o.HomeClubID
}

// Apply copies the decision onto the tie row.
func (o TieOutcome) Apply(t *models.Tie, at time.Time) {
	homeAgg, awayAgg, winner := o.HomeAggregate, o.AwayAggregate, o.WinnerClubID
	t.HomeAggregate = &homeAgg
	t.AwayAggregate = &awayAgg
	t.HomeAwayGoals = o.HomeAwayGoals
	t.AwayAwayGoals = o.AwayAwayGoals
	t.WinnerClubID = &winner
	t.DecidedByAwayGoals = o.DecidedByAwayGoals
	t.DecidedByTiebreak = o.DecidedByTiebreak
	t.HomePenalties = o.HomePenalties
	t.AwayPenalties = o.AwayPenalties
	t.ResolvedAt = &at
}

type KnockoutResolver struct {
	tiebreak  TiebreakStrategy
	awayGoals bool
}

// NewKnockoutResolver uses a coin toss when tiebreak is nil. awayGoals turns
// the away-goals rule on for two-legged ties.
func NewKnockoutResolver(tiebreak TiebreakStrategy, awayGoals bool) *KnockoutResolver {
	if tiebreak == nil {
		tiebreak = CoinToss{}
	}
	return &KnockoutResolver{tiebreak: tiebreak, awayGoals: awayGoals}
}

func (r *KnockoutResolver) ResolveSingleMatch(f models.Fixture, rng brackets.RNG) (TieOutcome, error) {
	if !f.IsPlayed() {
		return TieOutcome{}, fmt.Errorf("%w: fixture %d", ErrFixtureNotPlayed, f.ID)
	}
	out := TieOutcome{
		HomeClubID:    f.HomeClubID,
		AwayClubID:    f.AwayClubID,
		HomeAggregate: *f.HomeScore,
		AwayAggregate: *f.AwayScore,
	}
	switch {
	case out.HomeAggregate > out.AwayAggregate:
		out.WinnerClubID = f.HomeClubID
	case out.AwayAggregate > out.HomeAggregate:
		out.WinnerClubID = f.AwayClubID
	default:
		r.breakTie(&out, rng)
	}
	return out, nil
}

// ResolveTwoLegTie decides on aggregate, then away goals (when enabled), then
// the tiebreak strategy. Aggregates follow the first-leg identities.
func (r *KnockoutResolver) ResolveTwoLegTie(leg1, leg2 models.Fixture, rng brackets.RNG) (TieOutcome, error) {
	for _, f := range []models.Fixture{leg1, leg2} {
		if !f.IsPlayed() {
			return TieOutcome{}, fmt.Errorf("%w: fixture %d", ErrFixtureNotPlayed, f.ID)
		}
	}
	if leg2.HomeClubID != leg1.AwayClubID || leg2.AwayClubID != leg1.HomeClubID {
		return TieOutcome{}, fmt.Errorf("%w: legs %d and %d", ErrLegsMismatch, leg1.ID, leg2.ID)
	}

	homeAway, awayAway := *leg2.AwayScore, *leg1.AwayScore
	out := TieOutcome{
		HomeClubID:    leg1.HomeClubID,
		AwayClubID:    leg1.AwayClubID,
		HomeAggregate: *leg1.HomeScore + *leg2.AwayScore,
		AwayAggregate: *leg1.AwayScore + *leg2.HomeScore,
		HomeAwayGoals: &homeAway,
		AwayAwayGoals: &awayAway,
	}

	switch {
	case out.HomeAggregate > out.AwayAggregate:
		out.WinnerClubID = out.HomeClubID
	case out.AwayAggregate > out.HomeAggregate:
		out.WinnerClubID = out.AwayClubID
	case r.awayGoals && homeAway > awayAway:
		out.WinnerClubID = out.HomeClubID
		out.DecidedByAwayGoals = true
	case r.awayGoals && awayAway > homeAway:
		out.WinnerClubID = out.AwayClubID
		out.DecidedByAwayGoals = true
	default:
		r.breakTie(&out, rng)
	}
	return out, nil
}

func (r *KnockoutResolver) breakTie(out *TieOutcome, rng brackets.RNG) {
	res := r.tiebreak.Decide(out.HomeClubID, out.AwayClubID, rng)
	out.WinnerClubID = res.WinnerClubID
	out.HomePenalties = res.HomePenalties
	out.AwayPenalties = res.AwayPenalties
	out.DecidedByTiebreak = true
}
