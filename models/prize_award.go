package models

import (
	"time"

	"github.com/google/uuid"
)

// PrizeAward records one prize credit. The ID is derived from the edition, club and
// cumulative total, so settling the same state twice yields the same award.
type PrizeAward struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	EditionID     int        `json:"edition_id" db:"edition_id"`
	ParticipantID int        `json:"participant_id" db:"participant_id"`
	ClubID        int        `json:"club_id" db:"club_id"`
	Amount        int64      `json:"amount" db:"amount"`
	TotalAfter    int64      `json:"total_after" db:"total_after"`
	Credited      bool       `json:"credited" db:"credited"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	CreditedAt    *time.Time `json:"credited_at,omitempty" db:"credited_at"`
}
