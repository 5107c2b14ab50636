package models

import "time"

type ParticipantStatus string

const (
	ParticipantActive     ParticipantStatus = "active"
	ParticipantEliminated ParticipantStatus = "eliminated"
	ParticipantChampion   ParticipantStatus = "champion"
)

// Participant is a club's membership in one edition.
type Participant struct {
	ID                  int               `json:"id" db:"id"`
	EditionID           int               `json:"edition_id" db:"edition_id"`
	ClubID              int               `json:"club_id" db:"club_id"`
	ClubName            string            `json:"club_name" db:"club_name"`
	Country             string            `json:"country" db:"country"`
	LeagueTier          int               `json:"league_tier" db:"league_tier"`
	Reputation          int               `json:"reputation" db:"reputation"`
	QualificationMethod string            `json:"qualification_method,omitempty" db:"qualification_method"`
	Status              ParticipantStatus `json:"status" db:"status"`
	EntryRoundID        *int              `json:"entry_round_id,omitempty" db:"entry_round_id"`

	GroupName         *string `json:"group_name,omitempty" db:"group_name"`
	GroupSeed         *int    `json:"group_seed,omitempty" db:"group_seed"`
	GroupPosition     *int    `json:"group_position,omitempty" db:"group_position"`
	GroupPlayed       int     `json:"group_played" db:"group_played"`
	GroupWon          int     `json:"group_won" db:"group_won"`
	GroupDrawn        int     `json:"group_drawn" db:"group_drawn"`
	GroupLost         int     `json:"group_lost" db:"group_lost"`
	GroupGoalsFor     int     `json:"group_goals_for" db:"group_goals_for"`
	GroupGoalsAgainst int     `json:"group_goals_against" db:"group_goals_against"`
	GroupPoints       int     `json:"group_points" db:"group_points"`

	EliminatedInRoundID *int      `json:"eliminated_in_round_id,omitempty" db:"eliminated_in_round_id"`
	FinalPosition       *int      `json:"final_position,omitempty" db:"final_position"`
	PrizeMoneyEarned    int64     `json:"prize_money_earned" db:"prize_money_earned"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

func (p *Participant) IsActive() bool {
	return p.Status == ParticipantActive
}
