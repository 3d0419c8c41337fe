package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/eventmetrix/internal/application"
)

type analyticsService interface {
	Summary(ctx context.Context, principal application.Principal) (application.Summary, error)
	TopEvents(ctx context.Context, principal application.Principal) ([]application.RankedEvent, error)
	MonthlyTrend(ctx context.Context, principal application.Principal) ([]application.MonthlyPoint, error)
	EventTypeDistribution(ctx context.Context, principal application.Principal) ([]application.EventTypeCount, error)
}

// AnalyticsHandler serves the dashboard rollup endpoints.
type AnalyticsHandler struct {
	service   analyticsService
	responder responder
	logger    *slog.Logger
}

func NewAnalyticsHandler(service analyticsService, logger *slog.Logger) *AnalyticsHandler {
	base := defaultLogger(logger)
	return &AnalyticsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AnalyticsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AnalyticsHandler", operation, attrs...)
}

// Summary handles GET /dashboard/summary.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	summary, err := h.service.Summary(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Summary").ErrorContext(r.Context(), "failed to build summary", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, summary)
}

// TopEvents handles GET /dashboard/top-events.
func (h *AnalyticsHandler) TopEvents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	ranked, err := h.service.TopEvents(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "TopEvents").ErrorContext(r.Context(), "failed to rank events", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]rankedEventResponse, 0, len(ranked))
	for _, entry := range ranked {
		payload = append(payload, rankedEventResponse{
			Event:   newEventResponse(entry.Event),
			Metrics: newMetricsResponse(entry.Metrics),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, topEventsResponse{Events: payload})
}

// Trends handles GET /dashboard/trends.
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	points, err := h.service.MonthlyTrend(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Trends").ErrorContext(r.Context(), "failed to build trends", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, trendsResponse{Points: points})
}

// EventTypes handles GET /dashboard/event-types.
func (h *AnalyticsHandler) EventTypes(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	counts, err := h.service.EventTypeDistribution(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "EventTypes").ErrorContext(r.Context(), "failed to build distribution", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventTypesResponse{EventTypes: counts})
}

type rankedEventResponse struct {
	Event   eventResponse   `json:"event"`
	Metrics metricsResponse `json:"metrics"`
}

type topEventsResponse struct {
	Events []rankedEventResponse `json:"events"`
}

type trendsResponse struct {
	Points []application.MonthlyPoint `json:"points"`
}

type eventTypesResponse struct {
	EventTypes []application.EventTypeCount `json:"eventTypes"`
}
