package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/Dosada05/cup-engine/models"
)

type drawOutcome struct {
	ties []models.Tie
	byes []int
}

type resolveOutcome struct {
	losers []int
}

// roundHandler is the behaviour of one round kind. The controller owns the
// state machine; handlers only decide pairings and results.
type roundHandler interface {
	Draw(ctx context.Context, rc *roundContext) (drawOutcome, error)
	Resolve(ctx context.Context, rc *roundContext) (resolveOutcome, error)
}

func entrantOf(p models.Participant) brackets.Entrant {
	e := brackets.Entrant{ClubID: p.ClubID, Country: p.Country, Reputation: p.Reputation, LeagueTier: p.LeagueTier}
	if p.GroupName != nil {
		e.Group = *p.GroupName
	}
	return e
}

func clubIDsOf(entrants ...[]brackets.Entrant) []int {
	var ids []int
	for _, list := range entrants {
		for _, e := range list {
			ids = append(ids, e.ClubID)
		}
	}
	sort.Ints(ids)
	return ids
}

type knockoutHandler struct {
	resolver *KnockoutResolver
}

func (h knockoutHandler) Draw(_ context.Context, rc *roundContext) (drawOutcome, error) {
	eligible := rc.eligible()
	entrants := make([]brackets.Entrant, len(eligible))
	for i, p := range eligible {
		entrants[i] = entrantOf(p)
	}
	if len(entrants) < 2 {
		return drawOutcome{byes: clubIDsOf(entrants)}, nil
	}

	gen := brackets.NewGenerator(rc.rng("draw", rc.round.RoundOrder))
	var result brackets.DrawResult
	switch rc.competition.DrawPolicy {
	case models.DrawSeeded:
		result = gen.SeededDraw(entrants, 2)
	case models.DrawTiered:
		byTier := make(map[int][]brackets.Entrant)
		tierEntry := make(map[int]int)
		for _, p := range eligible {
			byTier[p.LeagueTier] = append(byTier[p.LeagueTier], entrantOf(p))
			order := rc.entryOrder(p)
			if current, ok := tierEntry[p.LeagueTier]; !ok || order < current {
				tierEntry[p.LeagueTier] = order
			}
		}
		result = gen.TieredDraw(byTier, tierEntry, rc.round.RoundOrder)
	default:
		result = gen.RandomDraw(entrants, true)
	}

	ties := make([]models.Tie, 0, len(result.Pairings))
	for _, pair := range result.Pairings {
		home, away := pair.Home, pair.Away
		// a lower-division club (higher tier number) hosts single-leg ties
		if rc.competition.LowerTierHostsDraw && !rc.round.IsTwoLegged && away.LeagueTier > home.LeagueTier {
			home, away = away, home
		}
		ties = append(ties, models.Tie{HomeClubID: home.ClubID, AwayClubID: away.ClubID, IsTwoLegged: rc.round.IsTwoLegged})
	}
	return drawOutcome{ties: ties, byes: clubIDsOf(result.Byes, result.Unpaired)}, nil
}

func (h knockoutHandler) Resolve(ctx context.Context, rc *roundContext) (resolveOutcome, error) {
	ties, err := rc.repo.ListTiesByRound(ctx, rc.round.ID)
	if err != nil {
		return resolveOutcome{}, fmt.Errorf("failed to list ties of round %d: %w", rc.round.ID, err)
	}
	fixtures, err := rc.repo.ListFixturesByRound(ctx, rc.round.ID)
	if err != nil {
		return resolveOutcome{}, fmt.Errorf("failed to list fixtures of round %d: %w", rc.round.ID, err)
	}
	legs := make(map[int][]models.Fixture, len(ties))
	for _, f := range fixtures {
		legs[f.TieID] = append(legs[f.TieID], f)
	}

	now := rc.now()
	losers := make([]int, 0, len(ties))
	for i := range ties {
		tie := &ties[i]
		tieLegs := legs[tie.ID]
		sort.Slice(tieLegs, func(a, b int) bool { return tieLegs[a].Leg < tieLegs[b].Leg })

		rng := rc.rng("tiebreak", tie.ID)
		var outcome TieOutcome
		switch {
		case tie.IsTwoLegged && len(tieLegs) == 2:
			outcome, err = h.resolver.ResolveTwoLegTie(tieLegs[0], tieLegs[1], rng)
		case !tie.IsTwoLegged && len(tieLegs) == 1:
			outcome, err = h.resolver.ResolveSingleMatch(tieLegs[0], rng)
		default:
			err = fmt.Errorf("%w: tie %d has %d legs", ErrFixtureNotPlayed, tie.ID, len(tieLegs))
		}
		if err != nil {
			return resolveOutcome{}, err
		}

		outcome.Apply(tie, now)
		if err := rc.repo.UpdateTie(ctx, tie); err != nil {
			return resolveOutcome{}, fmt.Errorf("failed to store decision of tie %d: %w", tie.ID, err)
		}
		losers = append(losers, outcome.LoserClubID())
	}
	return resolveOutcome{losers: losers}, nil
}

// groupWinnersHandler draws group winners against runners-up, then resolves
// like any knockout round.
type groupWinnersHandler struct {
	knockoutHandler
}

func (h groupWinnersHandler) Draw(ctx context.Context, rc *roundContext) (drawOutcome, error) {
	manager := NewGroupStageManager(rc.repo, rc.edition.ID)

	var winners, runnersUp []brackets.Entrant
	for _, name := range groupNames(rc.participants) {
		first, second, err := manager.Qualifiers(ctx, name)
		if err != nil {
			return drawOutcome{}, err
		}
		if p := rc.participant(first.ClubID); p != nil && p.IsActive() {
			winners = append(winners, entrantOf(*p))
		}
		if p := rc.participant(second.ClubID); p != nil && p.IsActive() {
			runnersUp = append(runnersUp, entrantOf(*p))
		}
	}
	if len(winners)+len(runnersUp) < 2 {
		return drawOutcome{byes: clubIDsOf(winners, runnersUp)}, nil
	}

	gen := brackets.NewGenerator(rc.rng("draw", rc.round.RoundOrder))
	result := gen.KnockoutSeedDraw(winners, runnersUp)
	ties := make([]models.Tie, 0, len(result.Pairings))
	for _, pair := range result.Pairings {
		ties = append(ties, models.Tie{HomeClubID: pair.Home.ClubID, AwayClubID: pair.Away.ClubID, IsTwoLegged: rc.round.IsTwoLegged})
	}
	return drawOutcome{ties: ties, byes: clubIDsOf(result.Byes, result.Unpaired)}, nil
}

// groupMatchdayHandler plays one matchday of every group. The first matchday
// also draws the groups; the last one settles the final tables.
type groupMatchdayHandler struct{}

func (h groupMatchdayHandler) Draw(ctx context.Context, rc *roundContext) (drawOutcome, error) {
	if rc.round.Matchday == nil {
		return drawOutcome{}, fmt.Errorf("%w: round %d", errNoMatchday, rc.round.ID)
	}
	matchday := *rc.round.Matchday

	if len(groupNames(rc.participants)) == 0 {
		if err := h.drawGroups(ctx, rc); err != nil {
			return drawOutcome{}, err
		}
	}

	manager := NewGroupStageManager(rc.repo, rc.edition.ID)
	var ties []models.Tie
	var byes []int
	for _, name := range groupNames(rc.participants) {
		schedule, err := manager.Schedule(ctx, name)
		if err != nil {
			return drawOutcome{}, err
		}
		if matchday > len(schedule) {
			return drawOutcome{}, fmt.Errorf("%w: group %s has no matchday %d", ErrResultNotInSchedule, name, matchday)
		}
		playing := make(map[int]bool)
		for _, gf := range schedule[matchday-1] {
			group := name
			ties = append(ties, models.Tie{HomeClubID: gf.HomeClubID, AwayClubID: gf.AwayClubID, GroupName: &group})
			playing[gf.HomeClubID], playing[gf.AwayClubID] = true, true
		}
		for _, p := range groupMembers(rc.participants, name) {
			if !playing[p.ClubID] {
				byes = append(byes, p.ClubID)
			}
		}
	}
	return drawOutcome{ties: ties, byes: byes}, nil
}

// drawGroups puts every eligible club in a group, one club per pot per group.
func (h groupMatchdayHandler) drawGroups(ctx context.Context, rc *roundContext) error {
	eligible := rc.eligible()
	entrants := make([]brackets.Entrant, len(eligible))
	for i, p := range eligible {
		entrants[i] = entrantOf(p)
	}

	gen := brackets.NewGenerator(rc.rng("groups", rc.edition.ID))
	draw := gen.GroupStageDraw(entrants, rc.competition.NumGroups, rc.competition.GroupSize)
	if len(draw.Unassigned) > 0 {
		return fmt.Errorf("%w: %d clubs left without a group", ErrInvalidEntrantCount, len(draw.Unassigned))
	}

	for _, group := range draw.Groups {
		for slot, member := range group.Members {
			p := rc.participant(member.ClubID)
			name, seed := group.Name, slot+1
			p.GroupName, p.GroupSeed = &name, &seed
			if err := rc.repo.UpdateParticipant(ctx, p); err != nil {
				return fmt.Errorf("failed to assign club %d to group %s: %w", p.ClubID, name, err)
			}
		}
	}
	return nil
}

func (h groupMatchdayHandler) Resolve(ctx context.Context, rc *roundContext) (resolveOutcome, error) {
	if rc.round.Matchday == nil {
		return resolveOutcome{}, fmt.Errorf("%w: round %d", errNoMatchday, rc.round.ID)
	}
	matchday := *rc.round.Matchday

	fixtures, err := rc.repo.ListFixturesByRound(ctx, rc.round.ID)
	if err != nil {
		return resolveOutcome{}, fmt.Errorf("failed to list fixtures of round %d: %w", rc.round.ID, err)
	}
	results := make(map[string][]MatchResult)
	scores := make(map[int]models.Fixture, len(fixtures))
	for _, f := range fixtures {
		if !f.IsPlayed() || f.GroupName == nil {
			return resolveOutcome{}, fmt.Errorf("%w: fixture %d", ErrFixtureNotPlayed, f.ID)
		}
		results[*f.GroupName] = append(results[*f.GroupName], MatchResult{
			HomeClubID: f.HomeClubID, AwayClubID: f.AwayClubID, HomeScore: *f.HomeScore, AwayScore: *f.AwayScore,
		})
		scores[f.TieID] = f
	}

	manager := NewGroupStageManager(rc.repo, rc.edition.ID)
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := manager.RecordMatchday(ctx, name, matchday, results[name]); err != nil {
			return resolveOutcome{}, err
		}
	}

	ties, err := rc.repo.ListTiesByRound(ctx, rc.round.ID)
	if err != nil {
		return resolveOutcome{}, fmt.Errorf("failed to list ties of round %d: %w", rc.round.ID, err)
	}
	now := rc.now()
	for i := range ties {
		tie := &ties[i]
		f := scores[tie.ID]
		home, away := *f.HomeScore, *f.AwayScore
		tie.HomeAggregate, tie.AwayAggregate = &home, &away
		switch {
		case home > away:
			tie.WinnerClubID = &tie.HomeClubID
		case away > home:
			tie.WinnerClubID = &tie.AwayClubID
		}
		tie.ResolvedAt = &now
		if err := rc.repo.UpdateTie(ctx, tie); err != nil {
			return resolveOutcome{}, fmt.Errorf("failed to store result of tie %d: %w", tie.ID, err)
		}
	}

	if matchday < lastMatchday(rc.rounds) {
		return resolveOutcome{}, nil
	}
	return h.closeGroups(ctx, rc, manager)
}

// closeGroups writes final group positions; clubs below second place are out.
func (h groupMatchdayHandler) closeGroups(ctx context.Context, rc *roundContext, manager *GroupStageManager) (resolveOutcome, error) {
	if err := rc.reloadParticipants(ctx); err != nil {
		return resolveOutcome{}, err
	}
	var losers []int
	for _, name := range groupNames(rc.participants) {
		standings, err := manager.ComputeStandings(ctx, name)
		if err != nil {
			return resolveOutcome{}, err
		}
		for _, row := range standings {
			p := rc.participant(row.ClubID)
			position := row.Position
			p.GroupPosition = &position
			if err := rc.repo.UpdateParticipant(ctx, p); err != nil {
				return resolveOutcome{}, fmt.Errorf("failed to store group position of club %d: %w", p.ClubID, err)
			}
			if position > 2 {
				losers = append(losers, row.ClubID)
			}
		}
	}
	return resolveOutcome{losers: losers}, nil
}

func lastMatchday(rounds []models.Round) int {
	last := 0
	for _, r := range rounds {
		if r.Kind == models.RoundKindGroupMatchday && r.Matchday != nil && *r.Matchday > last {
			last = *r.Matchday
		}
	}
	return last
}
