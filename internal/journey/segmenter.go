package journey

import (
	"github.com/matthinz/idv-journey-analytics/internal/domain"
)

// Segmenter partitions one user's chronologically ordered event sequence
// into journeys. It keeps at most one in-progress journey and never returns
// an error: events that fit no journey are dropped, and a journey that
// never sees its terminal marker is still emitted (truncated).
type Segmenter struct {
	flow Flow
}

// NewSegmenter creates a segmenter for the given flow definition.
func NewSegmenter(flow Flow) *Segmenter {
	return &Segmenter{flow: flow}
}

// Trace walks the user's sorted events once and returns the journeys in
// the order their start markers were observed.
//
// Rules, in priority order per event:
//   - a start marker closes any in-progress journey (truncated) and opens
//     a new one at this event
//   - with no journey in progress, the event is dropped; in particular a
//     stray terminal marker never starts or extends anything
//   - the terminal marker is appended and closes the journey
//   - any other event is appended only if it falls within the inactivity
//     timeout of the last appended event; otherwise it is dropped while
//     the journey stays open
func (s *Segmenter) Trace(events []domain.EventRecord) []domain.Journey {
	var journeys []domain.Journey
	var inProgress []domain.EventRecord

	for _, event := range events {
		if s.flow.startsJourney(event.Name) {
			if inProgress != nil {
				journeys = append(journeys, domain.Journey{Events: inProgress})
			}
			// Fresh buffer per journey; emitted journeys must never share
			// backing storage with the accumulator.
			inProgress = []domain.EventRecord{event}
			continue
		}

		if inProgress == nil {
			continue
		}

		if event.Name == s.flow.EndEventName {
			inProgress = append(inProgress, event)
			journeys = append(journeys, domain.Journey{Events: inProgress})
			inProgress = nil
			continue
		}

		last := inProgress[len(inProgress)-1]
		if event.Timestamp.Sub(last.Timestamp) > s.flow.InactivityTimeout {
			continue
		}

		inProgress = append(inProgress, event)
	}

	if inProgress != nil {
		journeys = append(journeys, domain.Journey{Events: inProgress})
	}

	return journeys
}
