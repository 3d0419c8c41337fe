package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/example/eventmetrix/internal/persistence"
)

// topEventLimit bounds the "top performing events" ranking.
const topEventLimit = 5

// trendMonths labels the synthetic six-point trend series.
var trendMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// AnalyticsService derives dashboard rollups from a user's events joined with
// their metrics rows. Events without a metrics row count toward the event
// total but are excluded from revenue and ROI aggregates.
type AnalyticsService struct {
	events  EventStore
	metrics MetricsStore
	intN    func(n int) int
	now     func() time.Time
	cache   *summaryCache
	logger  *slog.Logger
}

// NewAnalyticsService wires dependencies for the analytics service.
func NewAnalyticsService(events EventStore, metrics MetricsStore, intN func(n int) int, now func() time.Time) *AnalyticsService {
	return NewAnalyticsServiceWithLogger(events, metrics, intN, now, nil)
}

// NewAnalyticsServiceWithLogger constructs an analytics service with a specified logger.
func NewAnalyticsServiceWithLogger(events EventStore, metrics MetricsStore, intN func(n int) int, now func() time.Time, logger *slog.Logger) *AnalyticsService {
	if intN == nil {
		intN = rand.IntN
	}
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{
		events:  events,
		metrics: metrics,
		intN:    intN,
		now:     now,
		cache:   newSummaryCache(30*time.Second, 128, now),
		logger:  defaultLogger(logger),
	}
}

func (s *AnalyticsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AnalyticsService", operation, attrs...)
}

// InvalidateSummary drops the cached summary for a user. The event service
// calls this after each creation.
func (s *AnalyticsService) InvalidateSummary(userID string) {
	if s == nil {
		return
	}
	s.cache.Invalidate(userID)
}

// Summary computes the dashboard KPI rollup for a user's events.
func (s *AnalyticsService) Summary(ctx context.Context, principal Principal) (Summary, error) {
	if s == nil || s.events == nil || s.metrics == nil {
		return Summary{}, fmt.Errorf("analytics stores not configured")
	}
	if principal.UserID == "" {
		return Summary{}, ErrUnauthorized
	}

	if cached, ok := s.cache.Get(principal.UserID); ok {
		return cached, nil
	}

	events, joined, err := s.eventsWithMetrics(ctx, principal.UserID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{TotalEvents: len(events)}
	for _, entry := range joined {
		summary.TotalAttendees += entry.Metrics.AttendedCount
		summary.TotalRevenue += entry.Metrics.TicketRevenue + entry.Metrics.SponsorRevenue
		summary.TotalCosts += entry.Metrics.Costs
		summary.AverageROI += entry.Metrics.ROIEstimate
	}
	if len(joined) > 0 {
		summary.AverageROI /= float64(len(joined))
	}

	s.cache.Store(principal.UserID, summary)
	s.loggerWith(ctx, "Summary", "user_id", principal.UserID).DebugContext(ctx, "summary computed", "total_events", summary.TotalEvents)
	return summary, nil
}

// TopEvents ranks the user's events with metrics by ROI, descending, ties
// keeping insertion order, truncated to the top five.
func (s *AnalyticsService) TopEvents(ctx context.Context, principal Principal) ([]RankedEvent, error) {
	if s == nil || s.events == nil || s.metrics == nil {
		return nil, fmt.Errorf("analytics stores not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	_, joined, err := s.eventsWithMetrics(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(joined, func(i, j int) bool {
		return joined[i].Metrics.ROIEstimate > joined[j].Metrics.ROIEstimate
	})
	if len(joined) > topEventLimit {
		joined = joined[:topEventLimit]
	}
	return joined, nil
}

// MonthlyTrend produces the six-point synthetic series backing the trend
// chart. The numbers are independently randomized, not a rollup of stored
// events.
func (s *AnalyticsService) MonthlyTrend(ctx context.Context, principal Principal) ([]MonthlyPoint, error) {
	if s == nil {
		return nil, fmt.Errorf("AnalyticsService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	points := make([]MonthlyPoint, 0, len(trendMonths))
	for _, month := range trendMonths {
		monthEvents := s.intN(5) + 1
		points = append(points, MonthlyPoint{
			Month:     month,
			Events:    monthEvents,
			Attendees: monthEvents * (50 + s.intN(200)),
			Revenue:   monthEvents * (5000 + s.intN(15000)),
		})
	}
	return points, nil
}

// EventTypeDistribution counts the user's events per event type, ordered by
// first appearance.
func (s *AnalyticsService) EventTypeDistribution(ctx context.Context, principal Principal) ([]EventTypeCount, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("analytics stores not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	events, err := s.events.ListEventsByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	counts := make([]EventTypeCount, 0, len(events))
	index := make(map[string]int, len(events))
	for _, event := range events {
		if at, ok := index[event.EventType]; ok {
			counts[at].Count++
			continue
		}
		index[event.EventType] = len(counts)
		counts = append(counts, EventTypeCount{EventType: event.EventType, Count: 1})
	}
	return counts, nil
}

// eventsWithMetrics joins a user's events with their metrics rows, keeping
// event insertion order and skipping events that have no row.
func (s *AnalyticsService) eventsWithMetrics(ctx context.Context, userID string) ([]persistence.Event, []RankedEvent, error) {
	events, err := s.events.ListEventsByOwner(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	allMetrics, err := s.metrics.ListEventMetrics(ctx)
	if err != nil {
		return nil, nil, err
	}

	byEvent := make(map[string]persistence.EventMetrics, len(allMetrics))
	for _, metrics := range allMetrics {
		byEvent[metrics.EventID] = metrics
	}

	joined := make([]RankedEvent, 0, len(events))
	for _, event := range events {
		if metrics, ok := byEvent[event.ID]; ok {
			joined = append(joined, RankedEvent{Event: event, Metrics: metrics})
		}
	}
	return events, joined, nil
}
