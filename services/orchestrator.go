package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
)

// ClubEntry is a club entering an edition, with the snapshot the draw needs.
type ClubEntry struct {
	ClubID              int    `json:"club_id"`
	Name                string `json:"name"`
	Country             string `json:"country"`
	LeagueTier          int    `json:"league_tier"`
	Reputation          int    `json:"reputation"`
	QualificationMethod string `json:"qualification_method,omitempty"`
}

type EditionRequest struct {
	CompetitionID int         `json:"competition_id"`
	StartYear     int         `json:"start_year"`
	Seed          int64       `json:"seed,omitempty"`
	Clubs         []ClubEntry `json:"clubs"`
}

// Orchestrator runs the editions of one competition format.
type Orchestrator interface {
	Format() models.CupFormat
	CreateCompetition(ctx context.Context, def *models.CompetitionDefinition) error
	CreateEdition(ctx context.Context, req EditionRequest) (*models.Edition, error)
	PlayNextRound(ctx context.Context, editionID int) (*models.Round, error)
	RunEdition(ctx context.Context, editionID int) (*models.Edition, error)
}

// editionRunner is the part of an orchestrator that does not depend on the
// format: playing rounds in order and paying prizes after each one.
type editionRunner struct {
	store      repositories.Store
	controller *RoundController
	prizes     *PrizeService
	calendar   Calendar
	logger     *slog.Logger
}

func (r *editionRunner) CreateCompetition(ctx context.Context, def *models.CompetitionDefinition) error {
	if err := validateCompetition(def); err != nil {
		return err
	}
	if err := r.store.CreateCompetition(ctx, def); err != nil {
		return fmt.Errorf("failed to create competition %q: %w", def.Name, err)
	}
	r.logger.InfoContext(ctx, "competition created", slog.Int("competition_id", def.ID), slog.String("name", def.Name))
	return nil
}

// nextRound is the first round of the edition that is not resolved.
func (r *editionRunner) nextRound(ctx context.Context, editionID int) (*models.Round, error) {
	rounds, err := r.store.ListRoundsByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds of edition %d: %w", editionID, err)
	}
	for i := range rounds {
		if rounds[i].State != models.RoundResolved {
			return &rounds[i], nil
		}
	}
	return nil, fmt.Errorf("%w: edition %d", ErrNoPendingRounds, editionID)
}

// PlayNextRound plays the next round to resolution on its planned date, then
// settles prize money for everything earned so far.
func (r *editionRunner) PlayNextRound(ctx context.Context, editionID int) (*models.Round, error) {
	edition, err := r.store.GetEditionByID(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load edition %d: %w", editionID, err)
	}
	if edition.Status == models.EditionCompleted {
		return nil, fmt.Errorf("%w: edition %d", ErrEditionCompleted, editionID)
	}
	round, err := r.nextRound(ctx, editionID)
	if err != nil {
		return nil, err
	}

	played, err := r.controller.PlayRound(ctx, round.ID, time.Time{})
	if err != nil {
		return nil, err
	}
	if _, err := r.prizes.Settle(ctx, editionID); err != nil {
		return played, fmt.Errorf("round %d played but prize settlement failed: %w", played.RoundOrder, err)
	}
	return played, nil
}

// RunEdition plays every remaining round of the edition in order.
func (r *editionRunner) RunEdition(ctx context.Context, editionID int) (*models.Edition, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		edition, err := r.store.GetEditionByID(ctx, editionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load edition %d: %w", editionID, err)
		}
		if edition.Status == models.EditionCompleted {
			return edition, nil
		}
		if _, err := r.PlayNextRound(ctx, editionID); err != nil {
			if errors.Is(err, ErrNoPendingRounds) {
				return edition, nil
			}
			return nil, err
		}
	}
}

func (r *editionRunner) loadCompetition(ctx context.Context, id int, format models.CupFormat) (*models.CompetitionDefinition, error) {
	competition, err := r.store.GetCompetitionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load competition %d: %w", id, err)
	}
	if competition.Format != format {
		return nil, fmt.Errorf("%w: competition %d is %s, expected %s", ErrUnsupportedFormat, id, competition.Format, format)
	}
	return competition, nil
}

func validateClubs(clubs []ClubEntry) error {
	if len(clubs) < 2 {
		return fmt.Errorf("%w: got %d", ErrNotEnoughEntrants, len(clubs))
	}
	seen := make(map[int]bool, len(clubs))
	for _, c := range clubs {
		if seen[c.ClubID] {
			return fmt.Errorf("%w: club %d", ErrDuplicateClub, c.ClubID)
		}
		seen[c.ClubID] = true
	}
	return nil
}

func editionSeed(req EditionRequest) int64 {
	if req.Seed != 0 {
		return req.Seed
	}
	return brackets.DeriveSeed(int64(req.CompetitionID), "edition", req.StartYear)
}

func newParticipant(editionID int, club ClubEntry, entryRoundID int) *models.Participant {
	method := club.QualificationMethod
	if method == "" {
		method = fmt.Sprintf("league tier %d", club.LeagueTier)
	}
	return &models.Participant{
		EditionID:           editionID,
		ClubID:              club.ClubID,
		ClubName:            club.Name,
		Country:             club.Country,
		LeagueTier:          club.LeagueTier,
		Reputation:          club.Reputation,
		QualificationMethod: method,
		Status:              models.ParticipantActive,
		EntryRoundID:        &entryRoundID,
	}
}

// DomesticCupOrchestrator runs single-elimination cups with tiered entry.
type DomesticCupOrchestrator struct {
	editionRunner
}

func NewDomesticCupOrchestrator(store repositories.Store, controller *RoundController, prizes *PrizeService, calendar Calendar, logger *slog.Logger) *DomesticCupOrchestrator {
	return &DomesticCupOrchestrator{editionRunner{store: store, controller: controller, prizes: prizes, calendar: calendar, logger: logger}}
}

func (o *DomesticCupOrchestrator) Format() models.CupFormat {
	return models.FormatKnockout
}

// CreateEdition plans the rounds from the tier entry map. Entry rounds are
// shifted so the earliest tier present plays round 1.
func (o *DomesticCupOrchestrator) CreateEdition(ctx context.Context, req EditionRequest) (*models.Edition, error) {
	competition, err := o.loadCompetition(ctx, req.CompetitionID, models.FormatKnockout)
	if err != nil {
		return nil, err
	}
	if err := validateClubs(req.Clubs); err != nil {
		return nil, err
	}

	raw := make([]int, len(req.Clubs))
	for i, club := range req.Clubs {
		raw[i] = competition.EntryRoundForTier(club.LeagueTier)
	}
	entryOrders := brackets.NormalizeEntryRounds(raw)
	entering := make(map[int]int)
	for _, order := range entryOrders {
		entering[order]++
	}
	plans, err := brackets.PlanKnockoutRounds(entering)
	if err != nil {
		return nil, fmt.Errorf("failed to plan rounds: %w", err)
	}

	edition := &models.Edition{
		CompetitionID: competition.ID,
		StartYear:     req.StartYear,
		EndYear:       req.StartYear + 1,
		Status:        models.EditionUpcoming,
		Seed:          editionSeed(req),
		StartDate:     o.calendar.DomesticRoundDate(req.StartYear, 1),
	}
	err = o.store.WithinTx(ctx, func(ctx context.Context, repo repositories.CupRepository) error {
		if err := repo.CreateEdition(ctx, edition); err != nil {
			return fmt.Errorf("failed to create edition: %w", err)
		}
		roundIDs := make(map[int]int, len(plans))
		for _, plan := range plans {
			date := o.calendar.DomesticRoundDate(req.StartYear, plan.Order)
			round := &models.Round{
				EditionID:     edition.ID,
				RoundOrder:    plan.Order,
				RoundType:     plan.Type,
				Name:          plan.Name,
				Kind:          models.RoundKindKnockout,
				IsTwoLegged:   competition.TwoLeggedSemiFinals && plan.Type == models.RoundSemiFinal,
				State:         models.RoundPending,
				ScheduledDate: &date,
			}
			if err := repo.CreateRound(ctx, round); err != nil {
				return fmt.Errorf("failed to create %s: %w", plan.Name, err)
			}
			roundIDs[plan.Order] = round.ID
			edition.Rounds = append(edition.Rounds, *round)
		}
		for i, club := range req.Clubs {
			if err := repo.CreateParticipant(ctx, newParticipant(edition.ID, club, roundIDs[entryOrders[i]])); err != nil {
				return fmt.Errorf("failed to enter club %d: %w", club.ClubID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	edition.Competition = competition
	o.logger.InfoContext(ctx, "domestic edition created",
		slog.Int("edition_id", edition.ID),
		slog.String("competition", competition.Name),
		slog.String("season", edition.Season()),
		slog.Int("clubs", len(req.Clubs)),
		slog.Int("rounds", len(plans)))
	return edition, nil
}

// ContinentalCupOrchestrator runs a group stage followed by two-legged
// knockout rounds and a single-leg final.
type ContinentalCupOrchestrator struct {
	editionRunner
}

func NewContinentalCupOrchestrator(store repositories.Store, controller *RoundController, prizes *PrizeService, calendar Calendar, logger *slog.Logger) *ContinentalCupOrchestrator {
	return &ContinentalCupOrchestrator{editionRunner{store: store, controller: controller, prizes: prizes, calendar: calendar, logger: logger}}
}

func (o *ContinentalCupOrchestrator) Format() models.CupFormat {
	return models.FormatGroupThenKnockout
}

// CreateEdition needs exactly NumGroups*GroupSize clubs.
func (o *ContinentalCupOrchestrator) CreateEdition(ctx context.Context, req EditionRequest) (*models.Edition, error) {
	competition, err := o.loadCompetition(ctx, req.CompetitionID, models.FormatGroupThenKnockout)
	if err != nil {
		return nil, err
	}
	if err := validateClubs(req.Clubs); err != nil {
		return nil, err
	}
	if want := competition.NumGroups * competition.GroupSize; len(req.Clubs) != want {
		return nil, fmt.Errorf("%w: %s needs %d clubs, got %d", ErrInvalidEntrantCount, competition.Name, want, len(req.Clubs))
	}

	matchdays := len(brackets.GroupSchedule(competition.GroupSize))
	knockouts, err := brackets.PlanQualifierRounds(2*competition.NumGroups, matchdays+1)
	if err != nil {
		return nil, fmt.Errorf("failed to plan knockout rounds: %w", err)
	}

	edition := &models.Edition{
		CompetitionID: competition.ID,
		StartYear:     req.StartYear,
		EndYear:       req.StartYear + 1,
		Status:        models.EditionUpcoming,
		Seed:          editionSeed(req),
		StartDate:     o.calendar.GroupMatchdayDate(req.StartYear, 1),
	}
	err = o.store.WithinTx(ctx, func(ctx context.Context, repo repositories.CupRepository) error {
		if err := repo.CreateEdition(ctx, edition); err != nil {
			return fmt.Errorf("failed to create edition: %w", err)
		}

		var firstRoundID int
		for md := 1; md <= matchdays; md++ {
			date := o.calendar.GroupMatchdayDate(req.StartYear, md)
			matchday := md
			round := &models.Round{
				EditionID:     edition.ID,
				RoundOrder:    md,
				RoundType:     models.RoundGroupStage,
				Name:          fmt.Sprintf("Group stage matchday %d", md),
				Kind:          models.RoundKindGroupMatchday,
				IsGroupStage:  true,
				Matchday:      &matchday,
				State:         models.RoundPending,
				ScheduledDate: &date,
			}
			if err := repo.CreateRound(ctx, round); err != nil {
				return fmt.Errorf("failed to create matchday %d: %w", md, err)
			}
			if md == 1 {
				firstRoundID = round.ID
			}
			edition.Rounds = append(edition.Rounds, *round)
		}

		for i, plan := range knockouts {
			date := o.calendar.KnockoutRoundDate(req.StartYear, i)
			kind := models.RoundKindKnockout
			if i == 0 {
				kind = models.RoundKindGroupWinners
			}
			round := &models.Round{
				EditionID:     edition.ID,
				RoundOrder:    plan.Order,
				RoundType:     plan.Type,
				Name:          plan.Name,
				Kind:          kind,
				IsTwoLegged:   plan.Type != models.RoundFinal,
				State:         models.RoundPending,
				ScheduledDate: &date,
			}
			if err := repo.CreateRound(ctx, round); err != nil {
				return fmt.Errorf("failed to create %s: %w", plan.Name, err)
			}
			edition.Rounds = append(edition.Rounds, *round)
		}

		for _, club := range req.Clubs {
			if err := repo.CreateParticipant(ctx, newParticipant(edition.ID, club, firstRoundID)); err != nil {
				return fmt.Errorf("failed to enter club %d: %w", club.ClubID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	edition.Competition = competition
	o.logger.InfoContext(ctx, "continental edition created",
		slog.Int("edition_id", edition.ID),
		slog.String("competition", competition.Name),
		slog.String("season", edition.Season()),
		slog.Int("groups", competition.NumGroups))
	return edition, nil
}

// DrawGroups performs the group draw, which is part of the first matchday's
// draw, and returns the members of each group.
func (o *ContinentalCupOrchestrator) DrawGroups(ctx context.Context, editionID int) (map[string][]models.Participant, error) {
	rounds, err := o.store.ListRoundsByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds of edition %d: %w", editionID, err)
	}
	if len(rounds) == 0 || rounds[0].Kind != models.RoundKindGroupMatchday {
		return nil, fmt.Errorf("%w: edition %d has no group stage", ErrUnsupportedFormat, editionID)
	}
	if rounds[0].State == models.RoundPending {
		if _, err := o.controller.DrawRound(ctx, rounds[0].ID); err != nil {
			return nil, err
		}
	}

	participants, err := o.store.ListParticipantsByEdition(ctx, editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of edition %d: %w", editionID, err)
	}
	groups := make(map[string][]models.Participant)
	for _, name := range groupNames(participants) {
		groups[name] = groupMembers(participants, name)
	}
	return groups, nil
}

// QualifyByLeaguePosition takes the top spots[country] clubs of each
// country's final league table, given best first.
func QualifyByLeaguePosition(tables map[string][]ClubEntry, spots map[string]int) []ClubEntry {
	countries := make([]string, 0, len(tables))
	for country := range tables {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	var qualified []ClubEntry
	for _, country := range countries {
		table := tables[country]
		n := min(spots[country], len(table))
		for pos := 0; pos < n; pos++ {
			club := table[pos]
			if club.Country == "" {
				club.Country = country
			}
			club.QualificationMethod = fmt.Sprintf("league position %d", pos+1)
			qualified = append(qualified, club)
		}
	}
	return qualified
}
