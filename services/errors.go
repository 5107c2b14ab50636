package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/cup-engine/repositories"
)

var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// re-exported so callers only depend on services
	ErrCompetitionNotFound = repositories.ErrCompetitionNotFound
	ErrEditionNotFound     = repositories.ErrEditionNotFound
	ErrRoundNotFound       = repositories.ErrRoundNotFound
	ErrParticipantNotFound = repositories.ErrParticipantNotFound
	ErrCompetitionConflict = repositories.ErrCompetitionConflict
	ErrEditionConflict     = repositories.ErrEditionConflict

	ErrInvalidRoundTransition   = errors.New("invalid round state transition")
	ErrPreviousRoundNotResolved = errors.New("previous round is not resolved yet")
	ErrEditionCompleted         = errors.New("edition is already completed")
	ErrNoPendingRounds          = errors.New("edition has no rounds left to play")
	ErrUnsupportedFormat        = errors.New("unsupported competition format")
	ErrUnsupportedRoundKind     = errors.New("unsupported round kind")

	ErrNotEnoughEntrants    = errors.New("at least two clubs are required")
	ErrInvalidEntrantCount  = errors.New("number of clubs does not fit the competition format")
	ErrDuplicateClub        = errors.New("club entered more than once")
	ErrFixtureNotPlayed     = errors.New("fixture has no final score")
	ErrLegsMismatch         = errors.New("second leg must swap the clubs of the first leg")
	ErrResultNotInSchedule  = errors.New("result does not match the group schedule")
	ErrGroupTooSmall        = errors.New("group has fewer than two clubs")
	ErrSimulationFailed     = errors.New("match simulation failed")
	ErrUnknownTiebreak      = errors.New("unknown tiebreak strategy")
	ErrInvalidCompetition   = errors.New("invalid competition definition")
	ErrParticipantNotActive = errors.New("participant is no longer active")
)

// RoundError reports a failed round transition. The edition stays in progress
// and the round keeps its last committed state.
type RoundError struct {
	Competition string
	RoundOrder  int
	RoundName   string
	Stage       string
	Err         error
}

func (e *RoundError) Error() string {
	return fmt.Sprintf("round %d of competition %s could not be completed: %s: %v",
		e.RoundOrder, e.Competition, e.Stage, e.Err)
}

func (e *RoundError) Unwrap() error {
	return e.Err
}
