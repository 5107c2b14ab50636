package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
)

const (
	pointsForWin  = 3
	pointsForDraw = 1
)

// MatchResult is one played group fixture.
type MatchResult struct {
	HomeClubID int
	AwayClubID int
	HomeScore  int
	AwayScore  int
}

// GroupFixture is one scheduled group match.
type GroupFixture struct {
	Matchday   int
	HomeClubID int
	AwayClubID int
}

// GroupStageManager keeps the group tables of one edition. It works on
// whatever repository it is given, so inside a transaction its writes commit
// together with the round.
type GroupStageManager struct {
	repo      repositories.CupRepository
	editionID int
}

func NewGroupStageManager(repo repositories.CupRepository, editionID int) *GroupStageManager {
	return &GroupStageManager{repo: repo, editionID: editionID}
}

func (m *GroupStageManager) members(ctx context.Context, groupName string) ([]models.Participant, error) {
	participants, err := m.repo.ListParticipantsByEdition(ctx, m.editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of edition %d: %w", m.editionID, err)
	}
	return groupMembers(participants, groupName), nil
}

// Schedule returns the matchdays of a group, built from the members' draw slots.
func (m *GroupStageManager) Schedule(ctx context.Context, groupName string) ([][]GroupFixture, error) {
	members, err := m.members(ctx, groupName)
	if err != nil {
		return nil, err
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: group %s", ErrGroupTooSmall, groupName)
	}
	return scheduleFor(members), nil
}

// RecordMatchday adds one matchday's results to the members' cumulative
// group record. Every result must be a fixture of that matchday.
func (m *GroupStageManager) RecordMatchday(ctx context.Context, groupName string, matchday int, results []MatchResult) error {
	members, err := m.members(ctx, groupName)
	if err != nil {
		return err
	}
	if len(members) < 2 {
		return fmt.Errorf("%w: group %s", ErrGroupTooSmall, groupName)
	}
	schedule := scheduleFor(members)
	if matchday < 1 || matchday > len(schedule) {
		return fmt.Errorf("%w: group %s has no matchday %d", ErrResultNotInSchedule, groupName, matchday)
	}

	expected := make(map[[2]int]bool, len(schedule[matchday-1]))
	for _, gf := range schedule[matchday-1] {
		expected[[2]int{gf.HomeClubID, gf.AwayClubID}] = true
	}

	byClub := make(map[int]*models.Participant, len(members))
	for i := range members {
		byClub[members[i].ClubID] = &members[i]
	}

	touched := make(map[int]bool)
	for _, res := range results {
		key := [2]int{res.HomeClubID, res.AwayClubID}
		if !expected[key] {
			return fmt.Errorf("%w: group %s matchday %d: %d v %d",
				ErrResultNotInSchedule, groupName, matchday, res.HomeClubID, res.AwayClubID)
		}
		delete(expected, key)
		applyGroupResult(byClub[res.HomeClubID], res.HomeScore, res.AwayScore)
		applyGroupResult(byClub[res.AwayClubID], res.AwayScore, res.HomeScore)
		touched[res.HomeClubID], touched[res.AwayClubID] = true, true
	}

	for clubID := range touched {
		if err := m.repo.UpdateParticipant(ctx, byClub[clubID]); err != nil {
			return fmt.Errorf("failed to update group record of club %d: %w", clubID, err)
		}
	}
	return nil
}

// ComputeStandings rebuilds the group table from its played fixtures.
func (m *GroupStageManager) ComputeStandings(ctx context.Context, groupName string) ([]models.GroupStanding, error) {
	participants, err := m.repo.ListParticipantsByEdition(ctx, m.editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of edition %d: %w", m.editionID, err)
	}
	fixtures, err := m.repo.ListFixturesByEdition(ctx, m.editionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures of edition %d: %w", m.editionID, err)
	}
	return ComputeStandings(groupName, participants, fixtures), nil
}

// Qualifiers returns the group winner and runner-up.
func (m *GroupStageManager) Qualifiers(ctx context.Context, groupName string) (winner, runnerUp models.GroupStanding, err error) {
	standings, err := m.ComputeStandings(ctx, groupName)
	if err != nil {
		return winner, runnerUp, err
	}
	if len(standings) < 2 {
		return winner, runnerUp, fmt.Errorf("%w: group %s", ErrGroupTooSmall, groupName)
	}
	return standings[0], standings[1], nil
}

// ComputeStandings orders a group by points, goal difference and goals for,
// all descending. Clubs still level are ordered by ascending club ID so the
// table never depends on input order.
func ComputeStandings(groupName string, participants []models.Participant, fixtures []models.Fixture) []models.GroupStanding {
	members := groupMembers(participants, groupName)
	rows := make(map[int]*models.GroupStanding, len(members))
	standings := make([]models.GroupStanding, len(members))
	for i, p := range members {
		standings[i] = models.GroupStanding{GroupName: groupName, ClubID: p.ClubID, ClubName: p.ClubName}
		rows[p.ClubID] = &standings[i]
	}

	for _, f := range fixtures {
		if f.GroupName == nil || *f.GroupName != groupName || !f.IsPlayed() {
			continue
		}
		home, away := rows[f.HomeClubID], rows[f.AwayClubID]
		if home == nil || away == nil {
			continue
		}
		addToStanding(home, *f.HomeScore, *f.AwayScore)
		addToStanding(away, *f.AwayScore, *f.HomeScore)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.ClubID < b.ClubID
	})
	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings
}

func addToStanding(s *models.GroupStanding, scored, conceded int) {
	s.Played++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	switch {
	case scored > conceded:
		s.Won++
		s.Points += pointsForWin
	case scored == conceded:
		s.Drawn++
		s.Points += pointsForDraw
	default:
		s.Lost++
	}
}

func applyGroupResult(p *models.Participant, scored, conceded int) {
	p.GroupPlayed++
	p.GroupGoalsFor += scored
	p.GroupGoalsAgainst += conceded
	switch {
	case scored > conceded:
		p.GroupWon++
		p.GroupPoints += pointsForWin
	case scored == conceded:
		p.GroupDrawn++
		p.GroupPoints += pointsForDraw
	default:
		p.GroupLost++
	}
}

// groupMembers returns the group's clubs in draw-slot order.
func groupMembers(participants []models.Participant, groupName string) []models.Participant {
	var members []models.Participant
	for _, p := range participants {
		if p.GroupName != nil && *p.GroupName == groupName {
			members = append(members, p)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		si, sj := slotOf(members[i]), slotOf(members[j])
		if si != sj {
			return si < sj
		}
		return members[i].ClubID < members[j].ClubID
	})
	return members
}

func slotOf(p models.Participant) int {
	if p.GroupSeed == nil {
		return 0
	}
	return *p.GroupSeed
}

func scheduleFor(members []models.Participant) [][]GroupFixture {
	slots := brackets.GroupSchedule(len(members))
	out := make([][]GroupFixture, len(slots))
	for md, pairs := range slots {
		for _, pair := range pairs {
			if pair.Home < 0 || pair.Away < 0 {
				continue
			}
			out[md] = append(out[md], GroupFixture{
				Matchday:   md + 1,
				HomeClubID: members[pair.Home].ClubID,
				AwayClubID: members[pair.Away].ClubID,
			})
		}
	}
	return out
}

// groupNames lists the distinct groups of the participants in order.
func groupNames(participants []models.Participant) []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range participants {
		if p.GroupName != nil && !seen[*p.GroupName] {
			seen[*p.GroupName] = true
			names = append(names, *p.GroupName)
		}
	}
	sort.Strings(names)
	return names
}
