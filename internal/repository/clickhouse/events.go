package clickhouse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
)

// attrColumn describes one optional attribute column of the events table.
// Nullable columns keep "field absent" distinct from "field blank".
type attrColumn struct {
	name    string
	boolean bool
}

// eventAttrColumns is the fixed attribute schema, ordered as in the table
// DDL. Insert and select code both derive from this list so they cannot
// drift apart.
var eventAttrColumns = []attrColumn{
	{name: domain.FieldBrowserName},
	{name: domain.FieldBrowserDevice},
	{name: domain.FieldBrowserDeviceName},
	{name: domain.FieldBrowserMobile, boolean: true},
	{name: domain.FieldBrowserBot, boolean: true},
	{name: domain.FieldLocale},
	{name: domain.FieldServiceProvider},
	{name: domain.FieldSuccess, boolean: true},
	{name: domain.FieldFlowPath},
	{name: domain.FieldDocClass},
	{name: domain.FieldRedirectURL},
	{name: domain.FieldThreatmetrixReview},
	{name: domain.FieldGpoPending, boolean: true},
	{name: domain.FieldInPersonPending, boolean: true},
	{name: domain.FieldDeactivationReason},
	{name: domain.FieldFraudRejection, boolean: true},
	{name: domain.FieldFraudReviewPending, boolean: true},
	{name: domain.FieldNewEvent, boolean: true},
}

// EventRepository implements repository.EventRepository for ClickHouse.
type EventRepository struct {
	client *Client
	log    *zap.Logger
}

// NewEventRepository creates a new ClickHouse event repository
func NewEventRepository(client *Client, log *zap.Logger) *EventRepository {
	return &EventRepository{
		client: client,
		log:    log,
	}
}

// InitSchema creates the events table if it does not exist.
func (r *EventRepository) InitSchema(ctx context.Context) error {
	columns := "user_id String,\n\t\ttimestamp DateTime64(3),\n\t\tname LowCardinality(String)"
	for _, col := range eventAttrColumns {
		kind := "String"
		if col.boolean {
			kind = "Bool"
		}
		columns += fmt.Sprintf(",\n\t\t%s Nullable(%s)", col.name, kind)
	}

	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS events (
		%s
	) ENGINE = MergeTree
	ORDER BY (user_id, timestamp)
	PARTITION BY toYYYYMM(timestamp)
	SETTINGS index_granularity = 8192
	`, columns)

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	r.log.Info("ClickHouse events schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of events into ClickHouse
func (r *EventRepository) InsertBatch(ctx context.Context, events []domain.EventRecord) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, event := range events {
		values := make([]any, 0, 3+len(eventAttrColumns))
		values = append(values, event.UserID, event.Timestamp, event.Name)
		for _, col := range eventAttrColumns {
			values = append(values, attrValue(event, col))
		}

		if err := batch.Append(values...); err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return len(events), nil
}

// StreamSorted sends every non-anonymous event to out sorted by user id
// then timestamp. It stops early when ctx is cancelled.
func (r *EventRepository) StreamSorted(ctx context.Context, out chan<- domain.EventRecord) error {
	selectList := "user_id, timestamp, name"
	for _, col := range eventAttrColumns {
		selectList += ", " + col.name
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE user_id != ?
		ORDER BY user_id, timestamp
	`, selectList)

	rows, err := r.client.Conn().Query(ctx, query, domain.AnonymousUserID)
	if err != nil {
		return fmt.Errorf("failed to query sorted events: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close event rows", zap.Error(err))
		}
	}()

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- event:
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating event rows: %w", err)
	}

	return nil
}

// Ping checks if the database connection is alive
func (r *EventRepository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the repository and releases resources
func (r *EventRepository) Close() error {
	return r.client.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(rows rowScanner) (domain.EventRecord, error) {
	var event domain.EventRecord

	dest := make([]any, 0, 3+len(eventAttrColumns))
	dest = append(dest, &event.UserID, &event.Timestamp, &event.Name)

	strHolders := make(map[int]**string)
	boolHolders := make(map[int]**bool)
	for i, col := range eventAttrColumns {
		if col.boolean {
			holder := new(*bool)
			boolHolders[i] = holder
			dest = append(dest, holder)
		} else {
			holder := new(*string)
			strHolders[i] = holder
			dest = append(dest, holder)
		}
	}

	if err := rows.Scan(dest...); err != nil {
		return event, fmt.Errorf("failed to scan event row: %w", err)
	}

	attrs := make(map[string]any)
	for i, col := range eventAttrColumns {
		if col.boolean {
			if v := *boolHolders[i]; v != nil {
				attrs[col.name] = *v
			}
		} else {
			if v := *strHolders[i]; v != nil {
				attrs[col.name] = *v
			}
		}
	}
	if len(attrs) > 0 {
		event.Attrs = attrs
	}

	return event, nil
}

// attrValue renders an attribute for its Nullable column; an absent field
// stays NULL.
func attrValue(event domain.EventRecord, col attrColumn) any {
	raw, ok := event.Attrs[col.name]
	if !ok || raw == nil {
		return nil
	}

	if col.boolean {
		if b, isBool := raw.(bool); isBool {
			return b
		}
		return nil
	}

	value, _ := event.Str(col.name)
	return value
}
