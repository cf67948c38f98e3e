package journey

import (
	"fmt"
	"strings"
	"time"
)

// ConflictingEvent captures one event's contribution to an attribute that
// was expected to hold a single value across the journey.
type ConflictingEvent struct {
	UserID    string
	Timestamp time.Time
	Name      string
	Value     string
}

// IntegrityError reports that an attribute expected to be uniform across a
// journey observed more than one distinct value. It identifies the field,
// every distinct value seen, and the events that supplied them so upstream
// data quality can be diagnosed.
type IntegrityError struct {
	Field  string
	Values []string
	Events []ConflictingEvent
}

func (e *IntegrityError) Error() string {
	quoted := make([]string, len(e.Values))
	for i, v := range e.Values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("too many values for %s: %s", e.Field, strings.Join(quoted, ","))
}

// MissingValueError reports that a required attribute had zero qualifying
// events to derive from.
type MissingValueError struct {
	Field string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("no value found for %s", e.Field)
}

// ContractError reports a journey whose first event is not a configured
// start marker. Segmentation guarantees this never happens, so seeing one
// means the segmenter and deriver disagree about the flow definition and
// the run should halt.
type ContractError struct {
	FirstEvent string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("invalid first event in journey: %q", e.FirstEvent)
}
