package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/eventmetrix/internal/application"
	"github.com/example/eventmetrix/internal/persistence"
)

type teamService interface {
	AllTeams(ctx context.Context) ([]persistence.Team, error)
	CreateCustomTeam(ctx context.Context, name, region string) (persistence.Team, error)
}

// TeamHandler serves the merged team catalog and custom team submission.
// The language code is the persisted UI preference loaded at startup.
type TeamHandler struct {
	service   teamService
	language  string
	responder responder
	logger    *slog.Logger
}

func NewTeamHandler(service teamService, language string, logger *slog.Logger) *TeamHandler {
	base := defaultLogger(logger)
	return &TeamHandler{service: service, language: language, responder: newResponder(base), logger: base}
}

func (h *TeamHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TeamHandler", operation, attrs...)
}

// List handles GET /teams: predefined catalog followed by custom teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	teams, err := h.service.AllTeams(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list teams", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, teamListResponse{Teams: teams})
}

// Create handles POST /teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode team request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	team, err := h.service.CreateCustomTeam(r.Context(), req.Name, req.Region)
	if err != nil {
		h.log(r.Context(), "Create", "name", req.Name).ErrorContext(r.Context(), "failed to create team", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create").With("team_id", team.ID).InfoContext(r.Context(), "custom team created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, team)
}

// Catalog handles GET /catalog, the public form-population payload.
func (h *TeamHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	teams, err := h.service.AllTeams(r.Context())
	if err != nil {
		h.log(r.Context(), "Catalog").ErrorContext(r.Context(), "failed to load catalog", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, catalogResponse{
		Teams:      teams,
		Countries:  persistence.Countries(),
		EventTypes: application.EventTypes(),
		Language:   h.language,
	})
}

type teamRequest struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

type teamListResponse struct {
	Teams []persistence.Team `json:"teams"`
}

type catalogResponse struct {
	Teams      []persistence.Team    `json:"teams"`
	Countries  []persistence.Country `json:"countries"`
	EventTypes []string              `json:"eventTypes"`
	Language   string                `json:"language"`
}
