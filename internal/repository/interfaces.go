package repository

import (
	"context"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
)

// FunnelQuery selects journey funnel metrics, optionally grouped by one
// journey attribute.
type FunnelQuery struct {
	GroupBy  string
	From     int64
	To       int64
	MinCount int
}

// FunnelGroupResult holds the raw per-group counts; rates are derived by
// the service layer.
type FunnelGroupResult struct {
	GroupValue             string
	JourneyCount           uint64
	IdvSuccessCount        uint64
	GpoPendingCount        uint64
	InPersonPendingCount   uint64
	DocCaptureAttemptCount uint64
	DocCaptureSuccessCount uint64
}

// FunnelResult is the result of a funnel metrics query.
type FunnelResult struct {
	TotalJourneys uint64
	Groups        []FunnelGroupResult
}

// BounceQuery selects the terminal-bounce report.
type BounceQuery struct {
	From int64
	To   int64
}

// BounceGroupResult describes one bucket's bounce behavior, including the
// cross-journey lookback: Recovered counts journeys that bounced but were
// followed by a later journey of the same user that eventually succeeded.
type BounceGroupResult struct {
	Bucket         string
	BucketCount    uint64
	BounceCount    uint64
	RecoveredCount uint64
}

// BounceResult is the result of a bounce query.
type BounceResult struct {
	Groups []BounceGroupResult
}

// EventRepository defines storage operations for raw telemetry events.
type EventRepository interface {
	// InsertBatch inserts a batch of events into the storage
	InsertBatch(ctx context.Context, events []domain.EventRecord) (int, error)

	// StreamSorted sends every non-anonymous event ordered by user id then
	// timestamp, the order the journey pipeline requires.
	StreamSorted(ctx context.Context, out chan<- domain.EventRecord) error

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}

// JourneyRepository defines storage operations for derived journey facts.
type JourneyRepository interface {
	// InsertFacts inserts a batch of journey facts rows
	InsertFacts(ctx context.Context, facts []*domain.JourneyFacts) (int, error)

	// GetFunnelMetrics retrieves aggregated journey metrics based on the query
	GetFunnelMetrics(ctx context.Context, query FunnelQuery) (*FunnelResult, error)

	// GetBounceMetrics retrieves the terminal-bounce report
	GetBounceMetrics(ctx context.Context, query BounceQuery) (*BounceResult, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}
