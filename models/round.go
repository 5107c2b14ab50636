package models

import "time"

type RoundType string

const (
	RoundPreliminary      RoundType = "preliminary"
	RoundFirstQualifying  RoundType = "first_qualifying"
	RoundSecondQualifying RoundType = "second_qualifying"
	RoundThirdQualifying  RoundType = "third_qualifying"
	RoundOf128            RoundType = "round_of_128"
	RoundOf64             RoundType = "round_of_64"
	RoundOf32             RoundType = "round_of_32"
	RoundOf16             RoundType = "round_of_16"
	RoundQuarterFinal     RoundType = "quarter_final"
	RoundSemiFinal        RoundType = "semi_final"
	RoundFinal            RoundType = "final"
	RoundGroupStage       RoundType = "group_stage"
)

// RoundKind selects the draw and resolution behaviour of a round.
type RoundKind string

const (
	RoundKindKnockout      RoundKind = "knockout"
	RoundKindGroupMatchday RoundKind = "group_matchday"
	// RoundKindGroupWinners is the first knockout round after a group stage:
	// group winners are drawn against runners-up.
	RoundKindGroupWinners RoundKind = "group_winners"
)

// RoundState is the per-round progression state.
// Pending -> Drawn -> Scheduled -> Simulated -> Resolved.
type RoundState string

const (
	RoundPending   RoundState = "pending"
	RoundDrawn     RoundState = "drawn"
	RoundScheduled RoundState = "scheduled"
	RoundSimulated RoundState = "simulated"
	RoundResolved  RoundState = "resolved"
)

type Round struct {
	ID            int        `json:"id" db:"id"`
	EditionID     int        `json:"edition_id" db:"edition_id"`
	RoundOrder    int        `json:"round_order" db:"round_order"`
	RoundType     RoundType  `json:"round_type" db:"round_type"`
	Name          string     `json:"name" db:"name"`
	Kind          RoundKind  `json:"kind" db:"kind"`
	IsTwoLegged   bool       `json:"is_two_legged" db:"is_two_legged"`
	IsGroupStage  bool       `json:"is_group_stage" db:"is_group_stage"`
	Matchday      *int       `json:"matchday,omitempty" db:"matchday"`
	State         RoundState `json:"state" db:"state"`
	IsCompleted   bool       `json:"is_completed" db:"is_completed"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty" db:"scheduled_date"`
	ByeClubIDs    []int      `json:"bye_club_ids,omitempty" db:"bye_club_ids"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
