package models

import (
	"fmt"
	"time"
)

type EditionStatus string

const (
	EditionUpcoming   EditionStatus = "upcoming"
	EditionInProgress EditionStatus = "in_progress"
	EditionCompleted  EditionStatus = "completed"
)

// Edition is one season's running of a competition.
type Edition struct {
	ID            int           `json:"id" db:"id"`
	CompetitionID int           `json:"competition_id" db:"competition_id"`
	StartYear     int           `json:"start_year" db:"start_year"`
	EndYear       int           `json:"end_year" db:"end_year"`
	Status        EditionStatus `json:"status" db:"status"`
	Seed          int64         `json:"seed" db:"seed"`
	StartDate     time.Time     `json:"start_date" db:"start_date"`
	WinnerClubID  *int          `json:"winner_club_id,omitempty" db:"winner_club_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty" db:"completed_at"`

	Competition *CompetitionDefinition `json:"competition,omitempty" db:"-"`
	Rounds      []Round                `json:"rounds,omitempty" db:"-"`
}

// Season renders the edition's season, e.g. "2024/25".
func (e *Edition) Season() string {
	return fmt.Sprintf("%d/%02d", e.StartYear, e.EndYear%100)
}

// EditionSummary is the archived snapshot of a completed edition.
type EditionSummary struct {
	Edition      Edition               `json:"edition"`
	Competition  CompetitionDefinition `json:"competition"`
	Rounds       []Round               `json:"rounds"`
	Participants []Participant         `json:"participants"`
	Ties         []Tie                 `json:"ties"`
}
