package models

// GroupStanding is derived from a group's fixtures and never stored.
type GroupStanding struct {
	GroupName      string `json:"group_name"`
	Position       int    `json:"position"`
	ClubID         int    `json:"club_id"`
	ClubName       string `json:"club_name"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}
