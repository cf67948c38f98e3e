package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
	"github.com/matthinz/idv-journey-analytics/internal/repository"
)

// funnelGroupColumns maps a group_by value to the SQL expression labelling
// each group. Boolean columns read as yes/no so the report stays readable.
var funnelGroupColumns = map[string]string{
	"bucket":                   "bucket",
	"locale":                   "locale",
	"service_provider":         "if(service_provider = '', '(none)', service_provider)",
	"document_type":            "if(document_type = '', '(none)', document_type)",
	"caught_by_threatmetrix":   "if(caught_by_threatmetrix, 'yes', 'no')",
	"attempted_hybrid_handoff": "if(attempted_hybrid_handoff, 'yes', 'no')",
	"desktop_only":             "if(desktop_only, 'yes', 'no')",
	"mobile_only":              "if(mobile_only, 'yes', 'no')",
	"document_capture_success": "if(document_capture_success, 'yes', 'no')",
}

// JourneyRepository implements repository.JourneyRepository for ClickHouse.
type JourneyRepository struct {
	client *Client
	log    *zap.Logger
}

// NewJourneyRepository creates a new ClickHouse journey repository
func NewJourneyRepository(client *Client, log *zap.Logger) *JourneyRepository {
	return &JourneyRepository{
		client: client,
		log:    log,
	}
}

// InitSchema creates the journeys table if it does not exist. Rows are
// ordered by (user_id, timestamp) so the cross-journey window queries read
// a user's journeys sequentially.
func (r *JourneyRepository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS journeys (
		user_id String,
		timestamp DateTime64(3),
		bucket LowCardinality(String),
		idv_success Bool,
		idv_success_but_gpo_pending Bool,
		idv_success_but_in_person_pending Bool,
		attempted_hybrid_handoff Bool,
		bounced Bool,
		caught_by_threatmetrix Bool,
		clicked_help_link Bool,
		changed_browser Bool,
		changed_device Bool,
		desktop_browser String,
		desktop_device String,
		desktop_only Bool,
		did_hybrid_handoff Bool,
		document_capture_attempts UInt32,
		document_capture_success Bool,
		document_type String,
		last_event String,
		length UInt32,
		locale LowCardinality(String),
		mobile_browser String,
		mobile_device String,
		mobile_only Bool,
		path String,
		saw_hybrid_handoff Bool,
		service_provider String
	) ENGINE = MergeTree
	ORDER BY (user_id, timestamp)
	PARTITION BY toYYYYMM(timestamp)
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create journeys table: %w", err)
	}

	r.log.Info("ClickHouse journeys schema initialized successfully")
	return nil
}

// InsertFacts inserts a batch of journey facts rows into ClickHouse
func (r *JourneyRepository) InsertFacts(ctx context.Context, facts []*domain.JourneyFacts) (int, error) {
	if len(facts) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO journeys")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, row := range facts {
		if err := batch.AppendStruct(row); err != nil {
			return 0, fmt.Errorf("failed to append journey facts to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return len(facts), nil
}

// GetFunnelMetrics retrieves aggregated journey metrics based on the query
func (r *JourneyRepository) GetFunnelMetrics(ctx context.Context, query repository.FunnelQuery) (*repository.FunnelResult, error) {
	groupExpr := "'all'"
	if query.GroupBy != "" {
		expr, ok := funnelGroupColumns[query.GroupBy]
		if !ok {
			return nil, fmt.Errorf("unsupported group_by value: %s", query.GroupBy)
		}
		groupExpr = expr
	}

	sql := fmt.Sprintf(`
		SELECT
			%s AS group_value,
			count() AS journey_count,
			countIf(idv_success) AS idv_success_count,
			countIf(idv_success_but_gpo_pending) AS gpo_pending_count,
			countIf(idv_success_but_in_person_pending) AS in_person_pending_count,
			countIf(document_capture_attempts > 0) AS doc_capture_attempt_count,
			countIf(document_capture_success) AS doc_capture_success_count
		FROM journeys
		WHERE timestamp >= fromUnixTimestamp(?) AND timestamp <= fromUnixTimestamp(?)
		GROUP BY group_value
		HAVING count() > ?
		ORDER BY group_value
	`, groupExpr)

	rows, err := r.client.Conn().Query(ctx, sql, query.From, query.To, query.MinCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query funnel metrics: %w", err)
	}
	defer r.closeRows(rows, "funnel metrics")

	result := &repository.FunnelResult{}
	for rows.Next() {
		var group repository.FunnelGroupResult
		if err := rows.Scan(
			&group.GroupValue,
			&group.JourneyCount,
			&group.IdvSuccessCount,
			&group.GpoPendingCount,
			&group.InPersonPendingCount,
			&group.DocCaptureAttemptCount,
			&group.DocCaptureSuccessCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan funnel metrics row: %w", err)
		}
		result.TotalJourneys += group.JourneyCount
		result.Groups = append(result.Groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating funnel metrics rows: %w", err)
	}

	return result, nil
}

// GetBounceMetrics retrieves the terminal-bounce report. The window over
// (user_id, timestamp) relates each journey to the same user's later
// journeys: a terminal bounce has none, a recovered bounce is followed by
// a journey that eventually succeeded.
func (r *JourneyRepository) GetBounceMetrics(ctx context.Context, query repository.BounceQuery) (*repository.BounceResult, error) {
	sql := `
		SELECT
			bucket,
			count() AS bucket_count,
			countIf(bounced AND subsequent_journeys = 0) AS bounce_count,
			countIf(bounced AND subsequent_journeys > 0 AND eventual_idv_success) AS recovered_count
		FROM (
			SELECT
				bucket,
				bounced,
				count() OVER w AS subsequent_journeys,
				max(idv_success) OVER w AS eventual_idv_success
			FROM journeys
			WHERE timestamp >= fromUnixTimestamp(?) AND timestamp <= fromUnixTimestamp(?)
			WINDOW w AS (
				PARTITION BY user_id
				ORDER BY timestamp
				ROWS BETWEEN 1 FOLLOWING AND UNBOUNDED FOLLOWING
			)
		)
		GROUP BY bucket
		ORDER BY bucket
	`

	rows, err := r.client.Conn().Query(ctx, sql, query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query bounce metrics: %w", err)
	}
	defer r.closeRows(rows, "bounce metrics")

	result := &repository.BounceResult{}
	for rows.Next() {
		var group repository.BounceGroupResult
		if err := rows.Scan(
			&group.Bucket,
			&group.BucketCount,
			&group.BounceCount,
			&group.RecoveredCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bounce metrics row: %w", err)
		}
		result.Groups = append(result.Groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bounce metrics rows: %w", err)
	}

	return result, nil
}

// Ping checks if the database connection is alive
func (r *JourneyRepository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the repository and releases resources
func (r *JourneyRepository) Close() error {
	return r.client.Close()
}

func (r *JourneyRepository) closeRows(rows driver.Rows, tag string) {
	if err := rows.Close(); err != nil {
		r.log.Error("Failed to close rows", zap.String("query", tag), zap.Error(err))
	}
}
