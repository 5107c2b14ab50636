package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/cup-engine/models"
	"github.com/google/uuid"
)

type memoryState struct {
	competitions map[int]models.CompetitionDefinition
	editions     map[int]models.Edition
	rounds       map[int]models.Round
	participants map[int]models.Participant
	ties         map[int]models.Tie
	fixtures     map[int]models.Fixture
	awards       map[uuid.UUID]models.PrizeAward
}

func newMemoryState() *memoryState {
	return &memoryState{
		competitions: make(map[int]models.CompetitionDefinition),
		editions:     make(map[int]models.Edition),
		rounds:       make(map[int]models.Round),
		participants: make(map[int]models.Participant),
		ties:         make(map[int]models.Tie),
		fixtures:     make(map[int]models.Fixture),
		awards:       make(map[uuid.UUID]models.PrizeAward),
	}
}

// clone copies the maps. Stored values own their slices (they are copied on the
// way in and out), so sharing them between states is safe.
func (s *memoryState) clone() *memoryState {
	return &memoryState{
		competitions: maps.Clone(s.competitions),
		editions:     maps.Clone(s.editions),
		rounds:       maps.Clone(s.rounds),
		participants: maps.Clone(s.participants),
		ties:         maps.Clone(s.ties),
		fixtures:     maps.Clone(s.fixtures),
		awards:       maps.Clone(s.awards),
	}
}

// MemoryStore is an in-process Store. A transaction holds the store lock for its
// whole duration and works on a copy of the state that replaces the original
// only when the callback succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
	ids   IDGenerator
	now   func() time.Time
}

func NewMemoryStore(ids IDGenerator) *MemoryStore {
	if ids == nil {
		ids = NewSequenceIDGenerator()
	}
	return &MemoryStore{state: newMemoryState(), ids: ids, now: time.Now}
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repo CupRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &memoryRepo{state: working, ids: s.ids, now: s.now}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *MemoryStore) repo() *memoryRepo {
	return &memoryRepo{state: s.state, ids: s.ids, now: s.now}
}

func (s *MemoryStore) CreateCompetition(ctx context.Context, c *models.CompetitionDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().CreateCompetition(ctx, c)
}

func (s *MemoryStore) GetCompetitionByID(ctx context.Context, id int) (*models.CompetitionDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().GetCompetitionByID(ctx, id)
}

func (s *MemoryStore) ListCompetitions(ctx context.Context) ([]models.CompetitionDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListCompetitions(ctx)
}

func (s *MemoryStore) CreateEdition(ctx context.Context, e *models.Edition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().CreateEdition(ctx, e)
}

func (s *MemoryStore) GetEditionByID(ctx context.Context, id int) (*models.Edition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().GetEditionByID(ctx, id)
}

func (s *MemoryStore) UpdateEdition(ctx context.Context, e *models.Edition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().UpdateEdition(ctx, e)
}

func (s *MemoryStore) ListEditions(ctx context.Context, filter EditionFilter) ([]models.Edition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListEditions(ctx, filter)
}

func (s *MemoryStore) CreateRound(ctx context.Context, r *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().CreateRound(ctx, r)
}

func (s *MemoryStore) GetRoundByID(ctx context.Context, id int) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().GetRoundByID(ctx, id)
}

func (s *MemoryStore) UpdateRound(ctx context.Context, r *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().UpdateRound(ctx, r)
}

func (s *MemoryStore) ListRoundsByEdition(ctx context.Context, editionID int) ([]models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListRoundsByEdition(ctx, editionID)
}

func (s *MemoryStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().CreateParticipant(ctx, p)
}

func (s *MemoryStore) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().UpdateParticipant(ctx, p)
}

func (s *MemoryStore) GetParticipantByClub(ctx context.Context, editionID, clubID int) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().GetParticipantByClub(ctx, editionID, clubID)
}

func (s *MemoryStore) ListParticipantsByEdition(ctx context.Context, editionID int) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListParticipantsByEdition(ctx, editionID)
}

func (s *MemoryStore) CreateTie(ctx context.Context, t *models.Tie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().CreateTie(ctx, t)
}

func (s *MemoryStore) UpdateTie(ctx context.Context, t *models.Tie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().UpdateTie(ctx, t)
}

func (s *MemoryStore) ListTiesByRound(ctx context.Context, roundID int) ([]models.Tie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListTiesByRound(ctx, roundID)
}

func (s *MemoryStore) ListTiesByEdition(ctx context.Context, editionID int) ([]models.Tie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListTiesByEdition(ctx, editionID)
}

func (s *MemoryStore) CreateFixture(ctx context.Context, f *models.Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().CreateFixture(ctx, f)
}

func (s *MemoryStore) UpdateFixture(ctx context.Context, f *models.Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().UpdateFixture(ctx, f)
}

func (s *MemoryStore) ListFixturesByRound(ctx context.Context, roundID int) ([]models.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListFixturesByRound(ctx, roundID)
}

func (s *MemoryStore) ListFixturesByEdition(ctx context.Context, editionID int) ([]models.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListFixturesByEdition(ctx, editionID)
}

func (s *MemoryStore) CreatePrizeAward(ctx context.Context, a *models.PrizeAward) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().CreatePrizeAward(ctx, a)
}

func (s *MemoryStore) MarkPrizeAwardCredited(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().MarkPrizeAwardCredited(ctx, id, at)
}

func (s *MemoryStore) ListPrizeAwardsByEdition(ctx context.Context, editionID int, onlyPending bool) ([]models.PrizeAward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo().ListPrizeAwardsByEdition(ctx, editionID, onlyPending)
}

// memoryRepo works on one state without locking; the owner holds the lock.
type memoryRepo struct {
	state *memoryState
	ids   IDGenerator
	now   func() time.Time
}

func (r *memoryRepo) CreateCompetition(_ context.Context, c *models.CompetitionDefinition) error {
	for _, existing := range r.state.competitions {
		if existing.Name == c.Name {
			return ErrCompetitionConflict
		}
	}
	c.ID = r.ids.NextID("competition")
	c.CreatedAt = r.now()
	r.state.competitions[c.ID] = copyCompetition(*c)
	return nil
}

func (r *memoryRepo) GetCompetitionByID(_ context.Context, id int) (*models.CompetitionDefinition, error) {
	c, ok := r.state.competitions[id]
	if !ok {
		return nil, ErrCompetitionNotFound
	}
	out := copyCompetition(c)
	return &out, nil
}

func (r *memoryRepo) ListCompetitions(_ context.Context) ([]models.CompetitionDefinition, error) {
	out := make([]models.CompetitionDefinition, 0, len(r.state.competitions))
	for _, id := range sortedKeys(r.state.competitions) {
		out = append(out, copyCompetition(r.state.competitions[id]))
	}
	return out, nil
}

func (r *memoryRepo) CreateEdition(_ context.Context, e *models.Edition) error {
	if _, ok := r.state.competitions[e.CompetitionID]; !ok {
		return fmt.Errorf("%w: competition %d", ErrInvalidEntityReference, e.CompetitionID)
	}
	for _, existing := range r.state.editions {
		if existing.CompetitionID == e.CompetitionID && existing.StartYear == e.StartYear {
			return ErrEditionConflict
		}
	}
	e.ID = r.ids.NextID("edition")
	e.CreatedAt = r.now()
	r.state.editions[e.ID] = stripEdition(*e)
	return nil
}

func (r *memoryRepo) GetEditionByID(_ context.Context, id int) (*models.Edition, error) {
	e, ok := r.state.editions[id]
	if !ok {
		return nil, ErrEditionNotFound
	}
	return &e, nil
}

func (r *memoryRepo) UpdateEdition(_ context.Context, e *models.Edition) error {
	stored, ok := r.state.editions[e.ID]
	if !ok {
		return ErrEditionNotFound
	}
	stored.Status = e.Status
	stored.WinnerClubID = e.WinnerClubID
	stored.StartDate = e.StartDate
	stored.CompletedAt = e.CompletedAt
	r.state.editions[e.ID] = stored
	return nil
}

func (r *memoryRepo) ListEditions(_ context.Context, filter EditionFilter) ([]models.Edition, error) {
	var out []models.Edition
	for _, id := range sortedKeys(r.state.editions) {
		e := r.state.editions[id]
		if filter.CompetitionID != nil && e.CompetitionID != *filter.CompetitionID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, e.Status) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) CreateRound(_ context.Context, round *models.Round) error {
	if _, ok := r.state.editions[round.EditionID]; !ok {
		return fmt.Errorf("%w: edition %d", ErrInvalidEntityReference, round.EditionID)
	}
	for _, existing := range r.state.rounds {
		if existing.EditionID == round.EditionID && existing.RoundOrder == round.RoundOrder {
			return fmt.Errorf("round order %d already exists in edition %d", round.RoundOrder, round.EditionID)
		}
	}
	round.ID = r.ids.NextID("round")
	round.CreatedAt = r.now()
	r.state.rounds[round.ID] = copyRound(*round)
	return nil
}

func (r *memoryRepo) GetRoundByID(_ context.Context, id int) (*models.Round, error) {
	round, ok := r.state.rounds[id]
	if !ok {
		return nil, ErrRoundNotFound
	}
	out := copyRound(round)
	return &out, nil
}

func (r *memoryRepo) UpdateRound(_ context.Context, round *models.Round) error {
	stored, ok := r.state.rounds[round.ID]
	if !ok {
		return ErrRoundNotFound
	}
	stored.State = round.State
	stored.IsCompleted = round.IsCompleted
	stored.ScheduledDate = round.ScheduledDate
	stored.ByeClubIDs = round.ByeClubIDs
	stored.CompletedAt = round.CompletedAt
	r.state.rounds[round.ID] = copyRound(stored)
	return nil
}

func (r *memoryRepo) ListRoundsByEdition(_ context.Context, editionID int) ([]models.Round, error) {
	var out []models.Round
	for _, round := range r.state.rounds {
		if round.EditionID == editionID {
			out = append(out, copyRound(round))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundOrder < out[j].RoundOrder })
	return out, nil
}

func (r *memoryRepo) CreateParticipant(_ context.Context, p *models.Participant) error {
	if _, ok := r.state.editions[p.EditionID]; !ok {
		return fmt.Errorf("%w: edition %d", ErrInvalidEntityReference, p.EditionID)
	}
	for _, existing := range r.state.participants {
		if existing.EditionID == p.EditionID && existing.ClubID == p.ClubID {
			return ErrParticipantConflict
		}
	}
	p.ID = r.ids.NextID("participant")
	p.CreatedAt = r.now()
	r.state.participants[p.ID] = *p
	return nil
}

func (r *memoryRepo) UpdateParticipant(_ context.Context, p *models.Participant) error {
	stored, ok := r.state.participants[p.ID]
	if !ok {
		return ErrParticipantNotFound
	}
	updated := *p
	// identity and snapshot columns are not updatable
	updated.EditionID, updated.ClubID, updated.CreatedAt = stored.EditionID, stored.ClubID, stored.CreatedAt
	updated.ClubName, updated.Country, updated.LeagueTier = stored.ClubName, stored.Country, stored.LeagueTier
	updated.Reputation, updated.QualificationMethod, updated.EntryRoundID = stored.Reputation, stored.QualificationMethod, stored.EntryRoundID
	r.state.participants[p.ID] = updated
	return nil
}

func (r *memoryRepo) GetParticipantByClub(_ context.Context, editionID, clubID int) (*models.Participant, error) {
	for _, p := range r.state.participants {
		if p.EditionID == editionID && p.ClubID == clubID {
			return &p, nil
		}
	}
	return nil, ErrParticipantNotFound
}

func (r *memoryRepo) ListParticipantsByEdition(_ context.Context, editionID int) ([]models.Participant, error) {
	var out []models.Participant
	for _, id := range sortedKeys(r.state.participants) {
		if p := r.state.participants[id]; p.EditionID == editionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) CreateTie(_ context.Context, t *models.Tie) error {
	if _, ok := r.state.rounds[t.RoundID]; !ok {
		return fmt.Errorf("%w: round %d", ErrInvalidEntityReference, t.RoundID)
	}
	t.ID = r.ids.NextID("tie")
	r.state.ties[t.ID] = stripTie(*t)
	return nil
}

func (r *memoryRepo) UpdateTie(_ context.Context, t *models.Tie) error {
	if _, ok := r.state.ties[t.ID]; !ok {
		return ErrTieNotFound
	}
	r.state.ties[t.ID] = stripTie(*t)
	return nil
}

func (r *memoryRepo) ListTiesByRound(_ context.Context, roundID int) ([]models.Tie, error) {
	return r.filterTies(func(t models.Tie) bool { return t.RoundID == roundID }), nil
}

func (r *memoryRepo) ListTiesByEdition(_ context.Context, editionID int) ([]models.Tie, error) {
	return r.filterTies(func(t models.Tie) bool { return t.EditionID == editionID }), nil
}

func (r *memoryRepo) filterTies(keep func(models.Tie) bool) []models.Tie {
	var out []models.Tie
	for _, id := range sortedKeys(r.state.ties) {
		if t := r.state.ties[id]; keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (r *memoryRepo) CreateFixture(_ context.Context, f *models.Fixture) error {
	if _, ok := r.state.ties[f.TieID]; !ok {
		return fmt.Errorf("%w: tie %d", ErrInvalidEntityReference, f.TieID)
	}
	f.ID = r.ids.NextID("fixture")
	r.state.fixtures[f.ID] = copyFixture(*f)
	return nil
}

func (r *memoryRepo) UpdateFixture(_ context.Context, f *models.Fixture) error {
	stored, ok := r.state.fixtures[f.ID]
	if !ok {
		return ErrFixtureNotFound
	}
	stored.HomeScore, stored.AwayScore = f.HomeScore, f.AwayScore
	stored.Status = f.Status
	stored.ScheduledAt = f.ScheduledAt
	stored.Events = f.Events
	r.state.fixtures[f.ID] = copyFixture(stored)
	return nil
}

func (r *memoryRepo) ListFixturesByRound(_ context.Context, roundID int) ([]models.Fixture, error) {
	return r.filterFixtures(func(f models.Fixture) bool { return f.RoundID == roundID }), nil
}

func (r *memoryRepo) ListFixturesByEdition(_ context.Context, editionID int) ([]models.Fixture, error) {
	return r.filterFixtures(func(f models.Fixture) bool { return f.EditionID == editionID }), nil
}

func (r *memoryRepo) filterFixtures(keep func(models.Fixture) bool) []models.Fixture {
	var out []models.Fixture
	for _, f := range r.state.fixtures {
		if keep(f) {
			out = append(out, copyFixture(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TieID != out[j].TieID {
			return out[i].TieID < out[j].TieID
		}
		return out[i].Leg < out[j].Leg
	})
	return out
}

func (r *memoryRepo) CreatePrizeAward(_ context.Context, a *models.PrizeAward) (bool, error) {
	if _, exists := r.state.awards[a.ID]; exists {
		return false, nil
	}
	a.CreatedAt = r.now()
	r.state.awards[a.ID] = *a
	return true, nil
}

func (r *memoryRepo) MarkPrizeAwardCredited(_ context.Context, id uuid.UUID, at time.Time) error {
	a, ok := r.state.awards[id]
	if !ok || a.Credited {
		return ErrPrizeAwardNotFound
	}
	a.Credited = true
	a.CreditedAt = &at
	r.state.awards[id] = a
	return nil
}

func (r *memoryRepo) ListPrizeAwardsByEdition(_ context.Context, editionID int, onlyPending bool) ([]models.PrizeAward, error) {
	var out []models.PrizeAward
	for _, a := range r.state.awards {
		if a.EditionID != editionID || (onlyPending && a.Credited) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func copyCompetition(c models.CompetitionDefinition) models.CompetitionDefinition {
	c.TierEntryRounds = maps.Clone(c.TierEntryRounds)
	return c
}

func copyRound(r models.Round) models.Round {
	r.ByeClubIDs = slices.Clone(r.ByeClubIDs)
	return r
}

func copyFixture(f models.Fixture) models.Fixture {
	if f.Events != nil {
		f.Events = append(json.RawMessage(nil), f.Events...)
	}
	return f
}

func stripEdition(e models.Edition) models.Edition {
	e.Competition, e.Rounds = nil, nil
	return e
}

func stripTie(t models.Tie) models.Tie {
	t.Fixtures = nil
	return t
}
