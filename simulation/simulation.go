package simulation

import (
	"context"
	"errors"
	"fmt"
)

const LineupSize = 11

var (
	ErrInvalidLineup = errors.New("lineup must have exactly 11 players")
	ErrInvalidResult = errors.New("simulator returned a malformed result")
)

type Player struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Rating   int    `json:"rating"`
}

type Lineup struct {
	ClubID  int      `json:"club_id"`
	Players []Player `json:"players"`
}

func (l Lineup) Validate() error {
	if len(l.Players) != LineupSize {
		return fmt.Errorf("%w: club %d has %d", ErrInvalidLineup, l.ClubID, len(l.Players))
	}
	return nil
}

// Event is passed through to display layers untouched.
type Event struct {
	Minute   int    `json:"minute"`
	Type     string `json:"type"`
	ClubID   int    `json:"club_id"`
	PlayerID int    `json:"player_id,omitempty"`
}

type Result struct {
	HomeScore int     `json:"home_score"`
	AwayScore int     `json:"away_score"`
	Events    []Event `json:"events,omitempty"`
}

func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil result", ErrInvalidResult)
	}
	if r.HomeScore < 0 || r.AwayScore < 0 {
		return fmt.Errorf("%w: negative score %d-%d", ErrInvalidResult, r.HomeScore, r.AwayScore)
	}
	return nil
}

// Club is what a lineup provider needs to know about a participant.
type Club struct {
	ID         int
	Name       string
	Reputation int
}

type MatchSimulator interface {
	Simulate(ctx context.Context, home, away Lineup) (*Result, error)
}

type LineupProvider interface {
	StartingLineup(ctx context.Context, club Club) (Lineup, error)
}
