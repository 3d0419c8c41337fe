package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/eventmetrix/internal/application"
	"github.com/example/eventmetrix/internal/metrics"
	"github.com/example/eventmetrix/internal/persistence"
)

type eventService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (application.EventWithMetrics, error)
	ListEvents(ctx context.Context, principal application.Principal) ([]persistence.Event, error)
	GetEventMetrics(ctx context.Context, principal application.Principal, eventID string) (persistence.EventMetrics, error)
}

// EventHandler serves the event CRUD and metrics lookup endpoints.
type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	events, err := h.service.ListEvents(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list events", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]eventResponse, 0, len(events))
	for _, event := range events {
		payload = append(payload, newEventResponse(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventListResponse{Events: payload})
}

// Create handles POST /events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "owner_id", principal.UserID)

	created, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input: application.EventInput{
			Name:              req.Name,
			Objectives:        req.Objectives,
			City:              req.City,
			LocationURL:       req.LocationURL,
			ExpectedAttendees: req.ExpectedAttendees,
			EventType:         req.EventType,
			StartDate:         req.StartDate,
			EndDate:           req.EndDate,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create event", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	metrics.EventsCreated.Inc()
	logger.With("event_id", created.Event.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventCreatedResponse{
		Event:   newEventResponse(created.Event),
		Metrics: newMetricsResponse(created.Metrics),
	})
}

// Metrics handles GET /events/{id}/metrics.
func (h *EventHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || eventID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	found, err := h.service.GetEventMetrics(r.Context(), principal, eventID)
	if err != nil {
		h.log(r.Context(), "Metrics", "event_id", eventID).ErrorContext(r.Context(), "failed to load metrics", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, newMetricsResponse(found))
}

type eventRequest struct {
	Name              string     `json:"name"`
	Objectives        string     `json:"objectives"`
	City              string     `json:"city"`
	LocationURL       string     `json:"locationUrl,omitempty"`
	ExpectedAttendees *int       `json:"expectedAttendees,omitempty"`
	EventType         string     `json:"eventType"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
}

type eventResponse struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"ownerId"`
	Name              string     `json:"name"`
	Objectives        string     `json:"objectives"`
	City              string     `json:"city"`
	LocationURL       string     `json:"locationUrl,omitempty"`
	ExpectedAttendees *int       `json:"expectedAttendees,omitempty"`
	EventType         string     `json:"eventType"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type eventListResponse struct {
	Events []eventResponse `json:"events"`
}

type eventCreatedResponse struct {
	Event   eventResponse   `json:"event"`
	Metrics metricsResponse `json:"metrics"`
}

type metricsResponse struct {
	EventID        string    `json:"eventId"`
	AttendedCount  int       `json:"attendedCount"`
	TicketRevenue  int       `json:"ticketRevenue"`
	SponsorRevenue int       `json:"sponsorRevenue"`
	Costs          int       `json:"costs"`
	ROIEstimate    float64   `json:"roiEstimate"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newEventResponse(event persistence.Event) eventResponse {
	return eventResponse{
		ID:                event.ID,
		OwnerID:           event.OwnerID,
		Name:              event.Name,
		Objectives:        event.Objectives,
		City:              event.City,
		LocationURL:       event.LocationURL,
		ExpectedAttendees: event.ExpectedAttendees,
		EventType:         event.EventType,
		StartDate:         event.StartDate,
		EndDate:           event.EndDate,
		CreatedAt:         event.CreatedAt,
	}
}

func newMetricsResponse(metrics persistence.EventMetrics) metricsResponse {
	return metricsResponse{
		EventID:        metrics.EventID,
		AttendedCount:  metrics.AttendedCount,
		TicketRevenue:  metrics.TicketRevenue,
		SponsorRevenue: metrics.SponsorRevenue,
		Costs:          metrics.Costs,
		ROIEstimate:    metrics.ROIEstimate,
		UpdatedAt:      metrics.UpdatedAt,
	}
}
