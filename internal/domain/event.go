package domain

import (
	"strconv"
	"time"
)

// Attribute field names shared between the ingestion normalizer, the
// ClickHouse schema and the journey fact rules.
const (
	FieldBrowserBot         = "browser_bot"
	FieldBrowserDevice      = "browser_device"
	FieldBrowserDeviceName  = "browser_device_name"
	FieldBrowserMobile      = "browser_mobile"
	FieldBrowserName        = "browser_name"
	FieldFraudRejection     = "fraud_rejection"
	FieldFraudReviewPending = "fraud_review_pending"
	FieldNewEvent           = "new_event"
	FieldDeactivationReason = "deactivation_reason"
	FieldDocClass           = "doc_class"
	FieldFlowPath           = "flow_path"
	FieldGpoPending         = "gpo_verification_pending"
	FieldInPersonPending    = "in_person_verification_pending"
	FieldLocale             = "locale"
	FieldRedirectURL        = "redirect_url"
	FieldServiceProvider    = "service_provider"
	FieldSuccess            = "success"
	FieldThreatmetrixReview = "threatmetrix_review_status"
)

// BooleanFields lists the attribute fields upstream loggers emit as 0/1;
// ingestion normalizes them to booleans before a record is stored.
var BooleanFields = []string{
	FieldBrowserBot,
	FieldBrowserMobile,
	FieldFraudRejection,
	FieldFraudReviewPending,
	FieldGpoPending,
	FieldInPersonPending,
	FieldNewEvent,
	FieldSuccess,
}

// AnonymousUserID is the sentinel user id attached to events logged before
// a session is associated with an account. Records carrying it never enter
// the journey pipeline.
const AnonymousUserID = "anonymous-uuid"

// EventRecord is one observed telemetry event. Records are immutable once
// created: normalization of raw types happens at ingestion and nothing
// downstream mutates the attribute bag.
type EventRecord struct {
	UserID    string
	Timestamp time.Time
	Name      string

	// Attrs holds the event's optional fields. A missing key means the
	// upstream event did not carry the field, which is distinct from a
	// present-but-empty value.
	Attrs map[string]any
}

// Str returns the named attribute rendered as a string. ok reports whether
// the field was present at all; absent fields render as "".
func (e EventRecord) Str(field string) (value string, ok bool) {
	raw, ok := e.Attrs[field]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", true
	}
}

// Bool returns the named attribute as a boolean, treating an absent field
// as false.
func (e EventRecord) Bool(field string) bool {
	v, _ := e.BoolOK(field)
	return v
}

// BoolOK returns the named attribute as a boolean along with whether a
// boolean value was present. Non-boolean values are treated as absent;
// ingestion normalizes the documented boolean fields before records reach
// the bag.
func (e EventRecord) BoolOK(field string) (value, ok bool) {
	raw, present := e.Attrs[field]
	if !present || raw == nil {
		return false, false
	}
	b, isBool := raw.(bool)
	return b, isBool
}
