package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/services"
)

type CompetitionHandler struct {
	season   *services.SeasonService
	editions *services.EditionService
}

func NewCompetitionHandler(season *services.SeasonService, editions *services.EditionService) *CompetitionHandler {
	return &CompetitionHandler{season: season, editions: editions}
}

// createCompetitionInput accepts either a preset short name or a full definition.
type createCompetitionInput struct {
	Preset     string                        `json:"preset,omitempty"`
	Definition *models.CompetitionDefinition `json:"definition,omitempty"`
}

// Create handles POST /competitions.
func (h *CompetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createCompetitionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var def models.CompetitionDefinition
	switch {
	case input.Preset != "" && input.Definition != nil:
		badRequestResponse(w, r, errors.New("give either preset or definition, not both"))
		return
	case input.Preset != "":
		preset, ok := services.Presets()[input.Preset]
		if !ok {
			badRequestResponse(w, r, fmt.Errorf("unknown preset %q", input.Preset))
			return
		}
		def = preset
	case input.Definition != nil:
		def = *input.Definition
		def.ID = 0
	default:
		badRequestResponse(w, r, errors.New("preset or definition is required"))
		return
	}

	if err := h.season.CreateCompetition(r.Context(), &def); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logOperatorAction(r, "competition created", slog.Int("competition_id", def.ID), slog.String("name", def.Name))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competition": def}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List handles GET /competitions.
func (h *CompetitionHandler) List(w http.ResponseWriter, r *http.Request) {
	competitions, err := h.editions.ListCompetitions(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if competitions == nil {
		competitions = []models.CompetitionDefinition{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitions": competitions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get handles GET /competitions/{competitionID}.
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	competition, err := h.editions.GetCompetition(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Presets handles GET /competitions/presets.
func (h *CompetitionHandler) Presets(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"presets": services.Presets()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
