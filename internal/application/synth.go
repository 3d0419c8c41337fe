package application

import (
	"math/rand/v2"
	"time"

	"github.com/example/eventmetrix/internal/persistence"
)

// ZeroCostROI is the explicit ROI policy for events whose synthesized costs
// are zero: report 0% rather than letting a non-finite ratio reach aggregates.
const ZeroCostROI = 0.0

// Upper bounds (exclusive) for the synthesized placeholder figures.
const (
	defaultAttendeeBound = 100
	ticketRevenueBound   = 50000
	sponsorRevenueBound  = 100000
	costsBound           = 30000
)

// Synthesizer fabricates the placeholder metrics row paired with each new
// event. The integer source is injectable so tests are deterministic.
type Synthesizer struct {
	intN func(n int) int
	now  func() time.Time
}

// NewSynthesizer constructs a synthesizer. A nil intN falls back to the
// process-wide PRNG and a nil now to wall-clock time.
func NewSynthesizer(intN func(n int) int, now func() time.Time) *Synthesizer {
	if intN == nil {
		intN = rand.IntN
	}
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{intN: intN, now: now}
}

// Synthesize builds the metrics row for a freshly created event. Attendance
// is bounded by the event's expected attendees, or 100 when absent or zero.
func (s *Synthesizer) Synthesize(event persistence.Event) persistence.EventMetrics {
	bound := defaultAttendeeBound
	if event.ExpectedAttendees != nil && *event.ExpectedAttendees > 0 {
		bound = *event.ExpectedAttendees
	}

	metrics := persistence.EventMetrics{
		EventID:        event.ID,
		AttendedCount:  s.intN(bound),
		TicketRevenue:  s.intN(ticketRevenueBound),
		SponsorRevenue: s.intN(sponsorRevenueBound),
		Costs:          s.intN(costsBound),
		UpdatedAt:      s.now(),
	}
	metrics.ROIEstimate = ComputeROI(metrics.TicketRevenue, metrics.SponsorRevenue, metrics.Costs)
	return metrics
}

// ComputeROI returns (ticket + sponsor - costs) / costs as a percentage,
// applying the ZeroCostROI policy when costs are zero.
func ComputeROI(ticketRevenue, sponsorRevenue, costs int) float64 {
	if costs == 0 {
		return ZeroCostROI
	}
	return float64(ticketRevenue+sponsorRevenue-costs) / float64(costs) * 100
}
