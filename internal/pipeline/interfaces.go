package pipeline

import (
	"context"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
)

// EventSource supplies the raw event stream. Implementations must send
// records sorted by user id then timestamp and must already exclude the
// anonymous sentinel user; the pipeline re-verifies neither.
type EventSource interface {
	// StreamSorted sends every event to out in order. It returns once the
	// stream is exhausted or ctx is cancelled; the pipeline owns closing
	// decisions around the channel.
	StreamSorted(ctx context.Context, out chan<- domain.EventRecord) error
}

// FactsDeriver reduces one journey to its facts record. Satisfied by
// journey.Deriver.
type FactsDeriver interface {
	Derive(j domain.Journey) (*domain.JourneyFacts, error)
}

// FactsSink receives derived journey facts in batches. The sink serializes
// its own writes; the pipeline guarantees each user's facts arrive in
// chronological journey order.
type FactsSink interface {
	InsertFacts(ctx context.Context, facts []*domain.JourneyFacts) (int, error)
}
