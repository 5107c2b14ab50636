package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/cup-engine/models"
)

func strPtr(s string) *string { return &s }

// FACupPreset enters lower tiers first: the top flight joins four rounds in.
func FACupPreset() models.CompetitionDefinition {
	return models.CompetitionDefinition{
		Name:                "FA Cup",
		ShortName:           "FAC",
		CupType:             models.CupTypeDomestic,
		Format:              models.FormatKnockout,
		Country:             strPtr("England"),
		TierEntryRounds:     map[int]int{1: 4, 2: 3, 3: 2, 4: 1, 5: 1},
		DrawPolicy:          models.DrawTiered,
		TypicalParticipants: 124,
	}
}

func LeagueCupPreset() models.CompetitionDefinition {
	return models.CompetitionDefinition{
		Name:                "League Cup",
		ShortName:           "LC",
		CupType:             models.CupTypeLeagueCup,
		Format:              models.FormatKnockout,
		Country:             strPtr("England"),
		TierEntryRounds:     map[int]int{1: 1, 2: 1},
		DrawPolicy:          models.DrawRandom,
		TypicalParticipants: 44,
		TwoLeggedSemiFinals: true,
	}
}

// CopaDelReyPreset plays single legs hosted by the lower-division club.
func CopaDelReyPreset() models.CompetitionDefinition {
	return models.CompetitionDefinition{
		Name:                "Copa del Rey",
		ShortName:           "CdR",
		CupType:             models.CupTypeDomestic,
		Format:              models.FormatKnockout,
		Country:             strPtr("Spain"),
		TierEntryRounds:     map[int]int{1: 3, 2: 2},
		DrawPolicy:          models.DrawTiered,
		TypicalParticipants: 42,
		LowerTierHostsDraw:  true,
	}
}

func ChampionsLeaguePreset() models.CompetitionDefinition {
	return models.CompetitionDefinition{
		Name:                "Champions League",
		ShortName:           "UCL",
		CupType:             models.CupTypeChampionsLeague,
		Format:              models.FormatGroupThenKnockout,
		DrawPolicy:          models.DrawRandom,
		TypicalParticipants: 32,
		NumGroups:           8,
		GroupSize:           4,
	}
}

func EuropaLeaguePreset() models.CompetitionDefinition {
	return models.CompetitionDefinition{
		Name:                "Europa League",
		ShortName:           "UEL",
		CupType:             models.CupTypeEuropaLeague,
		Format:              models.FormatGroupThenKnockout,
		DrawPolicy:          models.DrawRandom,
		TypicalParticipants: 32,
		NumGroups:           8,
		GroupSize:           4,
	}
}

// Presets lists the built-in competitions by short name.
func Presets() map[string]models.CompetitionDefinition {
	out := make(map[string]models.CompetitionDefinition)
	for _, def := range []models.CompetitionDefinition{
		FACupPreset(), LeagueCupPreset(), CopaDelReyPreset(), ChampionsLeaguePreset(), EuropaLeaguePreset(),
	} {
		out[def.ShortName] = def
	}
	return out
}

func validateCompetition(def *models.CompetitionDefinition) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCompetition)
	}
	if !def.CupType.Valid() {
		return fmt.Errorf("%w: unknown cup type %q", ErrInvalidCompetition, def.CupType)
	}
	if def.DrawPolicy == "" {
		def.DrawPolicy = models.DrawRandom
	}
	switch def.DrawPolicy {
	case models.DrawRandom, models.DrawSeeded, models.DrawTiered:
	default:
		return fmt.Errorf("%w: unknown draw policy %q", ErrInvalidCompetition, def.DrawPolicy)
	}
	for tier, round := range def.TierEntryRounds {
		if tier < 1 || round < 1 {
			return fmt.Errorf("%w: tier %d enters at round %d", ErrInvalidCompetition, tier, round)
		}
	}

	switch def.Format {
	case models.FormatKnockout:
	case models.FormatGroupThenKnockout:
		if def.NumGroups < 1 || def.GroupSize < 2 {
			return fmt.Errorf("%w: %d groups of %d", ErrInvalidCompetition, def.NumGroups, def.GroupSize)
		}
		if q := 2 * def.NumGroups; q&(q-1) != 0 {
			return fmt.Errorf("%w: %d group qualifiers is not a power of two", ErrInvalidCompetition, q)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, def.Format)
	}
	return nil
}
