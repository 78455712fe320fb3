package controllers

import (
	"fmt"
	"net/http"

	"field_mates_server/logging"
	"field_mates_server/models"
	"field_mates_server/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MatchController handles requests related to matches
type MatchController struct {
	MatchService *services.MatchService
	Log          logging.Logger
}

// NewMatchController creates a new instance of MatchController
func NewMatchController(matchService *services.MatchService, log logging.Logger) *MatchController {
	return &MatchController{MatchService: matchService, Log: logging.OrNoOp(log)}
}

type participantRequest struct {
	UserID string `json:"userId"`
}

type joinResponse struct {
	Match         *models.Match             `json:"match"`
	Participation *models.MatchParticipants `json:"participation,omitempty"`
}

func validateMatch(m *models.Match) error {
	if m.Participants == nil {
		m.Participants = []string{}
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", services.ErrInvalidInput, err)
	}
	return nil
}

func (c *MatchController) GetMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := c.MatchService.FetchAllMatches(r.Context())
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, matches)
}

func (c *MatchController) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var match models.Match
	if err := decodeBody(r, &match); err != nil {
		WriteError(w, c.Log, err)
		return
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	match.RecordID = nil
	match.InUTC()
	if err := validateMatch(&match); err != nil {
		WriteError(w, c.Log, err)
		return
	}

	created, err := c.MatchService.CreateMatch(r.Context(), &match)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	c.Log.Infof("created match %s at %s", created.ID, created.Location)
	WriteJSONResponse(w, http.StatusCreated, created)
}

func (c *MatchController) GetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := c.MatchService.FetchMatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, match)
}

func (c *MatchController) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var match models.Match
	if err := decodeBody(r, &match); err != nil {
		WriteError(w, c.Log, err)
		return
	}
	if err := validateMatch(&match); err != nil {
		WriteError(w, c.Log, err)
		return
	}

	existing, err := c.MatchService.FetchMatch(r.Context(), id)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	match.ID = id
	match.RecordID = existing.RecordID
	match.InUTC()

	updated, err := c.MatchService.UpdateMatch(r.Context(), &match)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, updated)
}

func (c *MatchController) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	existing, err := c.MatchService.FetchMatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}

	deleted, err := c.MatchService.DeleteMatch(r.Context(), existing)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

// AddParticipant joins the user in the body to the match. A full match is
// returned unchanged with no participation.
func (c *MatchController) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, c.Log, err)
		return
	}
	if req.UserID == "" {
		WriteError(w, c.Log, fmt.Errorf("%w: userId is required", services.ErrInvalidInput))
		return
	}

	match, err := c.MatchService.FetchMatch(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}

	updated, participation, err := c.MatchService.JoinMatch(r.Context(), *match, req.UserID)
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, joinResponse{Match: updated, Participation: participation})
}

func (c *MatchController) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	match, err := c.MatchService.FetchMatch(r.Context(), vars["id"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}

	updated, err := c.MatchService.LeaveMatch(r.Context(), *match, vars["userId"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, updated)
}

func (c *MatchController) GetParticipations(w http.ResponseWriter, r *http.Request) {
	participations, err := c.MatchService.ListParticipations(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, c.Log, err)
		return
	}
	WriteJSONResponse(w, http.StatusOK, participations)
}
