package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
	"github.com/Dosada05/cup-engine/simulation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	stageDraw     = "draw"
	stageSchedule = "schedule"
	stageSimulate = "simulate"
	stageResolve  = "resolve"

	DefaultSecondLegGap = 7 * 24 * time.Hour
)

// EventPublisher pushes round and edition events to live subscribers.
// *brackets.Hub implements it.
type EventPublisher interface {
	Publish(editionID int, eventType string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(int, string, any) {}

// RoundController runs the per-round state machine
// pending -> drawn -> scheduled -> simulated -> resolved.
// Each transition is one store transaction: a failure leaves the round in its
// last committed state.
type RoundController struct {
	store        repositories.Store
	simulator    simulation.MatchSimulator
	lineups      simulation.LineupProvider
	handlers     map[models.RoundKind]roundHandler
	publisher    EventPublisher
	secondLegGap time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

func NewRoundController(
	store repositories.Store,
	simulator simulation.MatchSimulator,
	lineups simulation.LineupProvider,
	resolver *KnockoutResolver,
	publisher EventPublisher,
	secondLegGap time.Duration,
	logger *slog.Logger,
) *RoundController {
	if resolver == nil {
		resolver = NewKnockoutResolver(nil, true)
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if secondLegGap <= 0 {
		secondLegGap = DefaultSecondLegGap
	}
	return &RoundController{
		store:     store,
		simulator: simulator,
		lineups:   lineups,
		handlers: map[models.RoundKind]roundHandler{
			models.RoundKindKnockout:      knockoutHandler{resolver: resolver},
			models.RoundKindGroupMatchday: groupMatchdayHandler{},
			models.RoundKindGroupWinners:  groupWinnersHandler{knockoutHandler{resolver: resolver}},
		},
		publisher:    publisher,
		secondLegGap: secondLegGap,
		logger:       logger,
		tracer:       otel.Tracer("github.com/Dosada05/cup-engine/services"),
		now:          time.Now,
	}
}

// transitionResult is what a committed transition reports to subscribers.
type transitionResult struct {
	round            *models.Round
	event            string
	editionCompleted *models.Edition
}

func (c *RoundController) transition(
	ctx context.Context,
	roundID int,
	stage string,
	fn func(ctx context.Context, rc *roundContext) (*transitionResult, error),
) (*models.Round, error) {
	ctx, span := c.tracer.Start(ctx, "round."+stage, trace.WithAttributes(attribute.Int("round.id", roundID)))
	defer span.End()

	var rc *roundContext
	var result *transitionResult
	err := c.store.WithinTx(ctx, func(ctx context.Context, repo repositories.CupRepository) error {
		var err error
		rc, err = loadRoundContext(ctx, repo, roundID, c.now)
		if err != nil {
			return err
		}
		result, err = fn(ctx, rc)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if rc == nil {
			return nil, err
		}
		c.logger.ErrorContext(ctx, "round transition failed",
			slog.Int("edition_id", rc.edition.ID),
			slog.Int("round_order", rc.round.RoundOrder),
			slog.String("stage", stage),
			slog.Any("error", err))
		return nil, &RoundError{
			Competition: rc.competition.Name,
			RoundOrder:  rc.round.RoundOrder,
			RoundName:   rc.round.Name,
			Stage:       stage,
			Err:         err,
		}
	}

	span.SetAttributes(
		attribute.Int("edition.id", rc.edition.ID),
		attribute.Int("round.order", rc.round.RoundOrder),
		attribute.String("round.state", string(result.round.State)),
	)
	if result.event != "" {
		c.publisher.Publish(rc.edition.ID, result.event, result.round)
		c.logger.InfoContext(ctx, "round transition committed",
			slog.Int("edition_id", rc.edition.ID),
			slog.Int("round_order", rc.round.RoundOrder),
			slog.String("round_type", string(rc.round.RoundType)),
			slog.String("state", string(result.round.State)))
	}
	if result.editionCompleted != nil {
		c.publisher.Publish(rc.edition.ID, brackets.EventEditionComplete, result.editionCompleted)
		c.logger.InfoContext(ctx, "edition completed",
			slog.Int("edition_id", rc.edition.ID),
			slog.Any("winner_club_id", result.editionCompleted.WinnerClubID))
	}
	return result.round, nil
}

func (c *RoundController) DrawRound(ctx context.Context, roundID int) (*models.Round, error) {
	return c.transition(ctx, roundID, stageDraw, c.draw)
}

func (c *RoundController) ScheduleRound(ctx context.Context, roundID int, date time.Time) (*models.Round, error) {
	return c.transition(ctx, roundID, stageSchedule, func(ctx context.Context, rc *roundContext) (*transitionResult, error) {
		return c.schedule(ctx, rc, date)
	})
}

func (c *RoundController) SimulateRound(ctx context.Context, roundID int) (*models.Round, error) {
	return c.transition(ctx, roundID, stageSimulate, c.simulate)
}

// ResolveRound is a no-op on a round that is already resolved.
func (c *RoundController) ResolveRound(ctx context.Context, roundID int) (*models.Round, error) {
	return c.transition(ctx, roundID, stageResolve, c.resolve)
}

// Advance performs the next transition of the round. date is used when the
// round gets scheduled; a zero date falls back to the round's planned date.
func (c *RoundController) Advance(ctx context.Context, roundID int, date time.Time) (*models.Round, error) {
	round, err := c.store.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round %d: %w", roundID, err)
	}
	switch round.State {
	case models.RoundPending:
		return c.DrawRound(ctx, roundID)
	case models.RoundDrawn:
		return c.ScheduleRound(ctx, roundID, date)
	case models.RoundScheduled:
		return c.SimulateRound(ctx, roundID)
	case models.RoundSimulated, models.RoundResolved:
		return c.ResolveRound(ctx, roundID)
	default:
		return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidRoundTransition, round.State)
	}
}

// PlayRound advances the round until it is resolved.
func (c *RoundController) PlayRound(ctx context.Context, roundID int, date time.Time) (*models.Round, error) {
	round, err := c.store.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round %d: %w", roundID, err)
	}
	for round.State != models.RoundResolved {
		if round, err = c.Advance(ctx, roundID, date); err != nil {
			return nil, err
		}
	}
	return round, nil
}

func expectState(round *models.Round, want models.RoundState) error {
	if round.State != want {
		return fmt.Errorf("%w: round %d is %s, expected %s", ErrInvalidRoundTransition, round.ID, round.State, want)
	}
	return nil
}

func (c *RoundController) draw(ctx context.Context, rc *roundContext) (*transitionResult, error) {
	if rc.edition.Status == models.EditionCompleted {
		return nil, ErrEditionCompleted
	}
	if err := expectState(rc.round, models.RoundPending); err != nil {
		return nil, err
	}
	for _, r := range rc.rounds {
		if r.RoundOrder < rc.round.RoundOrder && r.State != models.RoundResolved {
			return nil, fmt.Errorf("%w: round %d (%s)", ErrPreviousRoundNotResolved, r.RoundOrder, r.Name)
		}
	}
	handler, ok := c.handlers[rc.round.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRoundKind, rc.round.Kind)
	}

	if rc.edition.Status == models.EditionUpcoming {
		rc.edition.Status = models.EditionInProgress
		if err := rc.repo.UpdateEdition(ctx, rc.edition); err != nil {
			return nil, fmt.Errorf("failed to start edition %d: %w", rc.edition.ID, err)
		}
	}

	outcome, err := handler.Draw(ctx, rc)
	if err != nil {
		return nil, err
	}
	rc.round.ByeClubIDs = outcome.byes

	if len(outcome.ties) == 0 {
		// nothing to play: the round is over before it starts
		c.logger.InfoContext(ctx, "round has fewer than two entrants, resolving without matches",
			slog.Int("edition_id", rc.edition.ID), slog.Int("round_order", rc.round.RoundOrder))
		return c.finishRound(ctx, rc)
	}

	for i := range outcome.ties {
		tie := &outcome.ties[i]
		tie.EditionID, tie.RoundID = rc.edition.ID, rc.round.ID
		if err := rc.repo.CreateTie(ctx, tie); err != nil {
			return nil, fmt.Errorf("failed to create tie %d v %d: %w", tie.HomeClubID, tie.AwayClubID, err)
		}
	}
	rc.round.State = models.RoundDrawn
	if err := rc.repo.UpdateRound(ctx, rc.round); err != nil {
		return nil, fmt.Errorf("failed to update round %d: %w", rc.round.ID, err)
	}
	c.logger.DebugContext(ctx, "round drawn",
		slog.Int("edition_id", rc.edition.ID),
		slog.Int("round_order", rc.round.RoundOrder),
		slog.Int("pairings", len(outcome.ties)),
		slog.Int("byes", len(outcome.byes)))
	return &transitionResult{round: rc.round, event: brackets.EventRoundDrawn}, nil
}

func (c *RoundController) schedule(ctx context.Context, rc *roundContext, date time.Time) (*transitionResult, error) {
	if rc.edition.Status == models.EditionCompleted {
		return nil, ErrEditionCompleted
	}
	if err := expectState(rc.round, models.RoundDrawn); err != nil {
		return nil, err
	}
	if date.IsZero() {
		if rc.round.ScheduledDate != nil {
			date = *rc.round.ScheduledDate
		} else {
			date = c.now()
		}
	}

	ties, err := rc.repo.ListTiesByRound(ctx, rc.round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ties of round %d: %w", rc.round.ID, err)
	}
	for _, tie := range ties {
		legs := []models.Fixture{{
			Leg: 1, HomeClubID: tie.HomeClubID, AwayClubID: tie.AwayClubID, ScheduledAt: date,
		}}
		if tie.IsTwoLegged {
			legs = append(legs, models.Fixture{
				Leg: 2, HomeClubID: tie.AwayClubID, AwayClubID: tie.HomeClubID, ScheduledAt: date.Add(c.secondLegGap),
			})
		}
		for i := range legs {
			f := &legs[i]
			f.EditionID, f.RoundID, f.TieID = rc.edition.ID, rc.round.ID, tie.ID
			f.Status = models.FixtureScheduled
			f.GroupName = tie.GroupName
			if err := rc.repo.CreateFixture(ctx, f); err != nil {
				return nil, fmt.Errorf("failed to create leg %d of tie %d: %w", f.Leg, tie.ID, err)
			}
		}
	}

	rc.round.State = models.RoundScheduled
	rc.round.ScheduledDate = &date
	if err := rc.repo.UpdateRound(ctx, rc.round); err != nil {
		return nil, fmt.Errorf("failed to update round %d: %w", rc.round.ID, err)
	}
	return &transitionResult{round: rc.round, event: brackets.EventRoundScheduled}, nil
}

// simulate calls the simulator once per fixture. Failures are not retried:
// the whole transition rolls back and the round stays scheduled.
func (c *RoundController) simulate(ctx context.Context, rc *roundContext) (*transitionResult, error) {
	if rc.edition.Status == models.EditionCompleted {
		return nil, ErrEditionCompleted
	}
	if err := expectState(rc.round, models.RoundScheduled); err != nil {
		return nil, err
	}

	fixtures, err := rc.repo.ListFixturesByRound(ctx, rc.round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures of round %d: %w", rc.round.ID, err)
	}
	for i := range fixtures {
		f := &fixtures[i]
		if f.IsPlayed() {
			continue
		}
		result, err := c.play(ctx, rc, f)
		if err != nil {
			return nil, fmt.Errorf("%w: fixture %d (%d v %d): %w", ErrSimulationFailed, f.ID, f.HomeClubID, f.AwayClubID, err)
		}
		home, away := result.HomeScore, result.AwayScore
		f.HomeScore, f.AwayScore = &home, &away
		f.Status = models.FixtureFullTime
		if len(result.Events) > 0 {
			if f.Events, err = json.Marshal(result.Events); err != nil {
				return nil, fmt.Errorf("failed to encode events of fixture %d: %w", f.ID, err)
			}
		}
		if err := rc.repo.UpdateFixture(ctx, f); err != nil {
			return nil, fmt.Errorf("failed to store result of fixture %d: %w", f.ID, err)
		}
	}

	rc.round.State = models.RoundSimulated
	if err := rc.repo.UpdateRound(ctx, rc.round); err != nil {
		return nil, fmt.Errorf("failed to update round %d: %w", rc.round.ID, err)
	}
	return &transitionResult{round: rc.round, event: brackets.EventRoundSimulated}, nil
}

func (c *RoundController) play(ctx context.Context, rc *roundContext, f *models.Fixture) (*simulation.Result, error) {
	home, err := c.lineupFor(ctx, rc, f.HomeClubID)
	if err != nil {
		return nil, err
	}
	away, err := c.lineupFor(ctx, rc, f.AwayClubID)
	if err != nil {
		return nil, err
	}
	result, err := c.simulator.Simulate(ctx, home, away)
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *RoundController) lineupFor(ctx context.Context, rc *roundContext, clubID int) (simulation.Lineup, error) {
	p := rc.participant(clubID)
	if p == nil {
		return simulation.Lineup{}, fmt.Errorf("%w: club %d", ErrParticipantNotFound, clubID)
	}
	lineup, err := c.lineups.StartingLineup(ctx, simulation.Club{ID: p.ClubID, Name: p.ClubName, Reputation: p.Reputation})
	if err != nil {
		return simulation.Lineup{}, fmt.Errorf("lineup for club %d: %w", clubID, err)
	}
	if err := lineup.Validate(); err != nil {
		return simulation.Lineup{}, err
	}
	return lineup, nil
}

func (c *RoundController) resolve(ctx context.Context, rc *roundContext) (*transitionResult, error) {
	if rc.round.State == models.RoundResolved {
		return &transitionResult{round: rc.round}, nil
	}
	if rc.edition.Status == models.EditionCompleted {
		return nil, ErrEditionCompleted
	}
	if err := expectState(rc.round, models.RoundSimulated); err != nil {
		return nil, err
	}
	handler, ok := c.handlers[rc.round.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRoundKind, rc.round.Kind)
	}

	outcome, err := handler.Resolve(ctx, rc)
	if err != nil {
		return nil, err
	}
	if err := c.eliminate(ctx, rc, outcome.losers); err != nil {
		return nil, err
	}
	return c.finishRound(ctx, rc)
}

// eliminate marks each loser eliminated in this round. Losers share the
// finishing place just below the clubs still in the competition.
func (c *RoundController) eliminate(ctx context.Context, rc *roundContext, losers []int) error {
	if len(losers) == 0 {
		return nil
	}
	if err := rc.reloadParticipants(ctx); err != nil {
		return err
	}

	losing := make(map[int]bool, len(losers))
	for _, id := range losers {
		losing[id] = true
	}
	survivors := 0
	for _, p := range rc.participants {
		if p.IsActive() && !losing[p.ClubID] {
			survivors++
		}
	}
	position := survivors + 1

	for _, clubID := range losers {
		p := rc.participant(clubID)
		if p == nil {
			return fmt.Errorf("%w: club %d", ErrParticipantNotFound, clubID)
		}
		if !p.IsActive() {
			return fmt.Errorf("%w: club %d in round %d", ErrParticipantNotActive, clubID, rc.round.RoundOrder)
		}
		p.Status = models.ParticipantEliminated
		p.EliminatedInRoundID = &rc.round.ID
		p.FinalPosition = &position
		if err := rc.repo.UpdateParticipant(ctx, p); err != nil {
			return fmt.Errorf("failed to eliminate club %d: %w", clubID, err)
		}
	}
	return nil
}

// finishRound marks the round resolved and, after the last round, completes
// the edition with the one club still active as champion.
func (c *RoundController) finishRound(ctx context.Context, rc *roundContext) (*transitionResult, error) {
	now := c.now()
	rc.round.State = models.RoundResolved
	rc.round.IsCompleted = true
	rc.round.CompletedAt = &now
	if err := rc.repo.UpdateRound(ctx, rc.round); err != nil {
		return nil, fmt.Errorf("failed to update round %d: %w", rc.round.ID, err)
	}
	result := &transitionResult{round: rc.round, event: brackets.EventRoundResolved}
	if !rc.isLastRound() {
		return result, nil
	}

	if err := rc.reloadParticipants(ctx); err != nil {
		return nil, err
	}
	var remaining []*models.Participant
	for i := range rc.participants {
		if rc.participants[i].IsActive() {
			remaining = append(remaining, &rc.participants[i])
		}
	}
	if len(remaining) == 1 {
		champion := remaining[0]
		first := 1
		champion.Status = models.ParticipantChampion
		champion.FinalPosition = &first
		if err := rc.repo.UpdateParticipant(ctx, champion); err != nil {
			return nil, fmt.Errorf("failed to crown club %d: %w", champion.ClubID, err)
		}
		rc.edition.WinnerClubID = &champion.ClubID
	} else {
		c.logger.WarnContext(ctx, "last round resolved without a single remaining club",
			slog.Int("edition_id", rc.edition.ID), slog.Int("remaining", len(remaining)))
	}

	rc.edition.Status = models.EditionCompleted
	rc.edition.CompletedAt = &now
	if err := rc.repo.UpdateEdition(ctx, rc.edition); err != nil {
		return nil, fmt.Errorf("failed to complete edition %d: %w", rc.edition.ID, err)
	}
	result.editionCompleted = rc.edition
	return result, nil
}

// roundContext is everything a transition reads, loaded inside its transaction.
type roundContext struct {
	repo         repositories.CupRepository
	edition      *models.Edition
	competition  *models.CompetitionDefinition
	round        *models.Round
	rounds       []models.Round
	participants []models.Participant
	now          func() time.Time
}

func loadRoundContext(ctx context.Context, repo repositories.CupRepository, roundID int, now func() time.Time) (*roundContext, error) {
	round, err := repo.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round %d: %w", roundID, err)
	}
	edition, err := repo.GetEditionByID(ctx, round.EditionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load edition %d: %w", round.EditionID, err)
	}
	competition, err := repo.GetCompetitionByID(ctx, edition.CompetitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load competition %d: %w", edition.CompetitionID, err)
	}
	rounds, err := repo.ListRoundsByEdition(ctx, edition.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds of edition %d: %w", edition.ID, err)
	}
	rc := &roundContext{repo: repo, edition: edition, competition: competition, round: round, rounds: rounds, now: now}
	if err := rc.reloadParticipants(ctx); err != nil {
		return nil, err
	}
	return rc, nil
}

func (rc *roundContext) reloadParticipants(ctx context.Context) error {
	participants, err := rc.repo.ListParticipantsByEdition(ctx, rc.edition.ID)
	if err != nil {
		return fmt.Errorf("failed to list participants of edition %d: %w", rc.edition.ID, err)
	}
	rc.participants = participants
	return nil
}

func (rc *roundContext) participant(clubID int) *models.Participant {
	for i := range rc.participants {
		if rc.participants[i].ClubID == clubID {
			return &rc.participants[i]
		}
	}
	return nil
}

// rng returns the reproducible stream for one draw or tiebreak of the edition.
func (rc *roundContext) rng(label string, id int) brackets.RNG {
	return brackets.NewSeededRNG(brackets.DeriveSeed(rc.edition.Seed, label, id))
}

func (rc *roundContext) isLastRound() bool {
	for _, r := range rc.rounds {
		if r.RoundOrder > rc.round.RoundOrder {
			return false
		}
	}
	return true
}

// entryOrder is the order of the round the participant joins in.
func (rc *roundContext) entryOrder(p models.Participant) int {
	first := rc.round.RoundOrder
	for _, r := range rc.rounds {
		if p.EntryRoundID != nil && r.ID == *p.EntryRoundID {
			return r.RoundOrder
		}
		first = min(first, r.RoundOrder)
	}
	return first
}

// eligible returns the active participants that have entered by this round.
func (rc *roundContext) eligible() []models.Participant {
	var out []models.Participant
	for _, p := range rc.participants {
		if p.IsActive() && rc.entryOrder(p) <= rc.round.RoundOrder {
			out = append(out, p)
		}
	}
	return out
}

var errNoMatchday = errors.New("group round has no matchday")
