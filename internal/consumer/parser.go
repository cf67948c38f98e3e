package consumer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
)

// NDJSONEventParser implements MessageParser for newline-delimited JSON log
// events as shipped from the analytics log stream
type NDJSONEventParser struct{}

// NewNDJSONEventParser creates a new NDJSON event parser
func NewNDJSONEventParser() *NDJSONEventParser {
	return &NDJSONEventParser{}
}

// Parse parses a JSON log line into an EventRecord. The event name and
// timestamp are required; every remaining key lands in the attribute bag.
// Log shippers write the timestamp under "@timestamp".
func (p *NDJSONEventParser) Parse(body []byte) (*domain.EventRecord, error) {
	var row map[string]interface{}
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	name, ok := row["name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("event is missing a name")
	}
	delete(row, "name")

	timestamp, err := parseTimestamp(row)
	if err != nil {
		return nil, err
	}

	userID := domain.AnonymousUserID
	if id, ok := row["user_id"].(string); ok && id != "" {
		userID = id
	}
	delete(row, "user_id")

	attrs := make(map[string]any, len(row))
	for key, value := range row {
		attrs[key] = value
	}
	normalizeBooleans(attrs)

	return &domain.EventRecord{
		UserID:    userID,
		Timestamp: timestamp,
		Name:      name,
		Attrs:     attrs,
	}, nil
}

func parseTimestamp(row map[string]interface{}) (time.Time, error) {
	raw, ok := row["@timestamp"]
	if ok {
		delete(row, "@timestamp")
	} else {
		raw, ok = row["timestamp"]
		if !ok {
			return time.Time{}, fmt.Errorf("event is missing a timestamp")
		}
		delete(row, "timestamp")
	}

	switch value := raw.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
		}
		return ts, nil
	case float64:
		sec := int64(value)
		nsec := int64((value - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", raw)
	}
}

// normalizeBooleans rewrites 0/1 values as booleans for the attributes the
// journey rules read as flags. Older log lines carry them as integers.
func normalizeBooleans(attrs map[string]any) {
	for _, field := range domain.BooleanFields {
		value, ok := attrs[field]
		if !ok {
			continue
		}
		if n, isNumber := value.(float64); isNumber && (n == 0 || n == 1) {
			attrs[field] = n == 1
		}
	}
}
