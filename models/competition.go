package models

import "time"

// CupType identifies the prize and round conventions a competition follows.
type CupType string

const (
	CupTypeDomestic         CupType = "domestic_cup"
	CupTypeLeagueCup        CupType = "domestic_league_cup"
	CupTypeChampionsLeague  CupType = "champions_league"
	CupTypeEuropaLeague     CupType = "europa_league"
	CupTypeConferenceLeague CupType = "conference_league"
)

func (t CupType) IsContinental() bool {
	switch t {
	case CupTypeChampionsLeague, CupTypeEuropaLeague, CupTypeConferenceLeague:
		return true
	}
	return false
}

func (t CupType) Valid() bool {
	switch t {
	case CupTypeDomestic, CupTypeLeagueCup, CupTypeChampionsLeague, CupTypeEuropaLeague, CupTypeConferenceLeague:
		return true
	}
	return false
}

type CupFormat string

const (
	FormatKnockout          CupFormat = "knockout"
	FormatGroupThenKnockout CupFormat = "group_then_knockout"
)

// DrawPolicy selects how knockout pairings are produced.
type DrawPolicy string

const (
	DrawRandom DrawPolicy = "random"
	DrawSeeded DrawPolicy = "seeded"
	DrawTiered DrawPolicy = "tiered"
)

type CompetitionDefinition struct {
	ID                  int         `json:"id" db:"id"`
	Name                string      `json:"name" db:"name"`
	ShortName           string      `json:"short_name" db:"short_name"`
	CupType             CupType     `json:"cup_type" db:"cup_type"`
	Format              CupFormat   `json:"format" db:"format"`
	Country             *string     `json:"country,omitempty" db:"country"` // nil for continental competitions
	TierEntryRounds     map[int]int `json:"tier_entry_rounds,omitempty" db:"tier_entry_rounds"`
	DrawPolicy          DrawPolicy  `json:"draw_policy" db:"draw_policy"`
	TypicalParticipants int         `json:"typical_participants" db:"typical_participants"`
	LowerTierHostsDraw  bool        `json:"lower_tier_hosts_draw" db:"lower_tier_hosts_draw"`
	TwoLeggedSemiFinals bool        `json:"two_legged_semi_finals" db:"two_legged_semi_finals"`
	NumGroups           int         `json:"num_groups,omitempty" db:"num_groups"`
	GroupSize           int         `json:"group_size,omitempty" db:"group_size"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
}

// EntryRoundForTier returns the round number a club from the given league tier enters in.
// Tiers missing from the map enter in the first round.
func (c *CompetitionDefinition) EntryRoundForTier(tier int) int {
	if round, ok := c.TierEntryRounds[tier]; ok && round > 0 {
		return round
	}
	return 1
}
