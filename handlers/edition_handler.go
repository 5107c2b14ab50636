package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/cup-engine/models"
	"github.com/Dosada05/cup-engine/repositories"
	"github.com/Dosada05/cup-engine/services"
)

type EditionHandler struct {
	season   *services.SeasonService
	editions *services.EditionService
	prizes   *services.PrizeService
}

func NewEditionHandler(season *services.SeasonService, editions *services.EditionService, prizes *services.PrizeService) *EditionHandler {
	return &EditionHandler{season: season, editions: editions, prizes: prizes}
}

// Create handles POST /editions.
func (h *EditionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.EditionRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.CompetitionID <= 0 {
		badRequestResponse(w, r, errors.New("competition_id is required"))
		return
	}
	if req.StartYear <= 0 {
		badRequestResponse(w, r, errors.New("start_year is required"))
		return
	}

	edition, err := h.season.CreateEdition(r.Context(), req)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logOperatorAction(r, "edition created", slog.Int("edition_id", edition.ID), slog.Int("competition_id", edition.CompetitionID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"edition": edition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List handles GET /editions?competition_id=&status=.
func (h *EditionHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repositories.EditionFilter
	query := r.URL.Query()
	if idStr := query.Get("competition_id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			badRequestResponse(w, r, errors.New("invalid competition_id query parameter"))
			return
		}
		filter.CompetitionID = &id
	}
	for _, status := range query["status"] {
		switch s := models.EditionStatus(status); s {
		case models.EditionUpcoming, models.EditionInProgress, models.EditionCompleted:
			filter.Statuses = append(filter.Statuses, s)
		default:
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
	}

	editions, err := h.editions.ListEditions(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if editions == nil {
		editions = []models.Edition{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"editions": editions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get handles GET /editions/{editionID}: the edition with rounds, participants and ties.
func (h *EditionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "editionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	summary, err := h.editions.Summary(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"edition": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Standings handles GET /editions/{editionID}/standings.
func (h *EditionHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "editionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tables, err := h.editions.Standings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RoundTies handles GET /rounds/{roundID}/ties.
func (h *EditionHandler) RoundTies(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	ties, err := h.editions.RoundTies(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"ties": ties}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Advance handles POST /editions/{editionID}/advance: plays the next round.
func (h *EditionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "editionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := h.season.PlayNextRound(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logOperatorAction(r, "round played on request", slog.Int("edition_id", id), slog.Int("round_order", round.RoundOrder))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Run handles POST /editions/{editionID}/run: plays every remaining round.
func (h *EditionHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "editionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	edition, err := h.season.RunEdition(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logOperatorAction(r, "edition run on request", slog.Int("edition_id", id), slog.String("status", string(edition.Status)))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"edition": edition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SettlePrizes handles POST /editions/{editionID}/prizes: pays anything
// earned but not yet credited.
func (h *EditionHandler) SettlePrizes(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "editionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	report, err := h.prizes.Settle(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logOperatorAction(r, "prizes settled on request", slog.Int("edition_id", id), slog.Int("credited", report.CreditedCount))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"settlement": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
