package models

import (
	"encoding/json"
	"time"
)

type FixtureStatus string

const (
	FixtureScheduled FixtureStatus = "scheduled"
	FixtureFullTime  FixtureStatus = "full_time"
)

type Fixture struct {
	ID          int             `json:"id" db:"id"`
	EditionID   int             `json:"edition_id" db:"edition_id"`
	RoundID     int             `json:"round_id" db:"round_id"`
	TieID       int             `json:"tie_id" db:"tie_id"`
	Leg         int             `json:"leg" db:"leg"`
	HomeClubID  int             `json:"home_club_id" db:"home_club_id"`
	AwayClubID  int             `json:"away_club_id" db:"away_club_id"`
	HomeScore   *int            `json:"home_score,omitempty" db:"home_score"`
	AwayScore   *int            `json:"away_score,omitempty" db:"away_score"`
	Status      FixtureStatus   `json:"status" db:"status"`
	GroupName   *string         `json:"group_name,omitempty" db:"group_name"`
	ScheduledAt time.Time       `json:"scheduled_at" db:"scheduled_at"`
	Events      json.RawMessage `json:"events,omitempty" db:"events"` // opaque, from the match simulator
}

func (f *Fixture) IsPlayed() bool {
	return f.Status == FixtureFullTime && f.HomeScore != nil && f.AwayScore != nil
}

// Tie is a knockout pairing played over one or two legs, or a single group fixture.
// Home and away always refer to the first leg.
type Tie struct {
	ID                 int        `json:"id" db:"id"`
	EditionID          int        `json:"edition_id" db:"edition_id"`
	RoundID            int        `json:"round_id" db:"round_id"`
	HomeClubID         int        `json:"home_club_id" db:"home_club_id"`
	AwayClubID         int        `json:"away_club_id" db:"away_club_id"`
	IsTwoLegged        bool       `json:"is_two_legged" db:"is_two_legged"`
	GroupName          *string    `json:"group_name,omitempty" db:"group_name"`
	HomeAggregate      *int       `json:"home_aggregate,omitempty" db:"home_aggregate"`
	AwayAggregate      *int       `json:"away_aggregate,omitempty" db:"away_aggregate"`
	HomeAwayGoals      *int       `json:"home_away_goals,omitempty" db:"home_away_goals"`
	AwayAwayGoals      *int       `json:"away_away_goals,omitempty" db:"away_away_goals"`
	WinnerClubID       *int       `json:"winner_club_id,omitempty" db:"winner_club_id"`
	DecidedByAwayGoals bool       `json:"decided_by_away_goals" db:"decided_by_away_goals"`
	DecidedByTiebreak  bool       `json:"decided_by_tiebreak" db:"decided_by_tiebreak"`
	HomePenalties      *int       `json:"home_penalties,omitempty" db:"home_penalties"`
	AwayPenalties      *int       `json:"away_penalties,omitempty" db:"away_penalties"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`

	Fixtures []Fixture `json:"fixtures,omitempty" db:"-"`
}
