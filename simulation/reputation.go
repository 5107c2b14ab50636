package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
)

const (
	baseGoals      = 1.35
	homeAdvantage  = 1.1
	defaultRating  = 50
	maxGoalsPerTry = 10
)

// ReputationSimulator draws Poisson scores whose means follow the average
// player rating of each lineup. It stands in for a full match engine.
type ReputationSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewReputationSimulator(seed int64) *ReputationSimulator {
	return &ReputationSimulator{rng: rand.New(rand.NewSource(seed))}
}

func (s *ReputationSimulator) Simulate(ctx context.Context, home, away Lineup) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := home.Validate(); err != nil {
		return nil, err
	}
	if err := away.Validate(); err != nil {
		return nil, err
	}

	homeRating, awayRating := averageRating(home), averageRating(away)
	homeMean := baseGoals * homeAdvantage * homeRating / awayRating
	awayMean := baseGoals * awayRating / homeRating

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &Result{HomeScore: s.poisson(homeMean), AwayScore: s.poisson(awayMean)}
	result.Events = append(s.goalEvents(home, result.HomeScore), s.goalEvents(away, result.AwayScore)...)
	sort.SliceStable(result.Events, func(i, j int) bool { return result.Events[i].Minute < result.Events[j].Minute })
	return result, nil
}

// poisson uses Knuth's method, capped to keep scores realistic.
func (s *ReputationSimulator) poisson(mean float64) int {
	limit := math.Exp(-mean)
	k, p := 0, 1.0
	for {
		p *= s.rng.Float64()
		if p <= limit || k >= maxGoalsPerTry {
			return k
		}
		k++
	}
}

func (s *ReputationSimulator) goalEvents(l Lineup, goals int) []Event {
	events := make([]Event, 0, goals)
	for i := 0; i < goals; i++ {
		scorer := l.Players[s.rng.Intn(len(l.Players))]
		events = append(events, Event{Minute: 1 + s.rng.Intn(90), Type: "goal", ClubID: l.ClubID, PlayerID: scorer.ID})
	}
	return events
}

func averageRating(l Lineup) float64 {
	total := 0
	for _, p := range l.Players {
		total += p.Rating
	}
	if total <= 0 {
		return defaultRating
	}
	return float64(total) / float64(len(l.Players))
}

// SyntheticLineups builds eleven players rated after the club's reputation.
// It is used when no squad data source is wired in.
type SyntheticLineups struct{}

func (SyntheticLineups) StartingLineup(_ context.Context, club Club) (Lineup, error) {
	rating := club.Reputation
	if rating <= 0 {
		rating = defaultRating
	}
	players := make([]Player, LineupSize)
	for i := range players {
		players[i] = Player{
			ID:     club.ID*100 + i + 1,
			Name:   fmt.Sprintf("%s #%d", club.Name, i+1),
			Rating: rating,
		}
	}
	return Lineup{ClubID: club.ID, Players: players}, nil
}
