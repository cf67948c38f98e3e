package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
)

var testBase = time.Date(2023, 8, 1, 17, 0, 0, 0, time.UTC)

func testEvent(name string, offset time.Duration, attrs map[string]any) domain.EventRecord {
	return domain.EventRecord{
		UserID:    "user123",
		Timestamp: testBase.Add(offset),
		Name:      name,
		Attrs:     attrs,
	}
}

func TestSegmenter_Trace_TerminalMarkerClosesJourney(t *testing.T) {
	segmenter := NewSegmenter(DefaultFlow())

	journeys := segmenter.Trace([]domain.EventRecord{
		testEvent(WelcomeVisitedEvent, 0, nil),
		testEvent(AgreementSubmittedEvent, time.Minute, nil),
		testEvent(FinalResolutionEvent, 2*time.Minute, nil),
	})

	assert.Len(t, journeys, 1)
	assert.Equal(t, 3, journeys[0].Len())
	assert.Equal(t, FinalResolutionEvent, journeys[0].Last().Name)
}

func TestSegmenter_Trace_EventsBeforeStartMarkerAreDropped(t *testing.T) {
	segmenter := NewSegmenter(DefaultFlow())

	journeys := segmenter.Trace([]domain.EventRecord{
		testEvent("IdV: intro visited", 0, nil),
		testEvent(AgreementVisitedEvent, time.Minute, nil),
		testEvent(WelcomeVisitedEvent, 2*time.Minute, nil),
		testEvent(AgreementVisitedEvent, 3*time.Minute, nil),
	})

	assert.Len(t, journeys, 1)
	assert.Equal(t, WelcomeVisitedEvent, journeys[0].First().Name)
	assert.Equal(t, 2, journeys[0].Len())
}

func TestSegmenter_Trace_BackToBackStartMarkers(t *testing.T) {
	segmenter := NewSegmenter(DefaultFlow())

	journeys := segmenter.Trace([]domain.EventRecord{
		testEvent(WelcomeVisitedEvent, 0, nil),
		testEvent(GettingStartedVisitedEvent, time.Minute, nil),
		testEvent(FinalResolutionEvent, 2*time.Minute, nil),
	})

	assert.Len(t, journeys, 2)

	// First journey was abandoned when the second start marker arrived; it
	// carries no terminal event.
	assert.Equal(t, 1, journeys[0].Len())
	assert.NotEqual(t, FinalResolutionEvent, journeys[0].Last().Name)

	assert.Equal(t, GettingStartedVisitedEvent, journeys[1].First().Name)
	assert.Equal(t, FinalResolutionEvent, journeys[1].Last().Name)
}

func TestSegmenter_Trace_StrayEndMarkerIsDropped(t *testing.T) {
	segmenter := NewSegmenter(DefaultFlow())

	journeys := segmenter.Trace([]domain.EventRecord{
		testEvent(FinalResolutionEvent, 0, nil),
		testEvent(WelcomeVisitedEvent, time.Minute, nil),
	})

	assert.Len(t, journeys, 1)
	assert.Equal(t, WelcomeVisitedEvent, journeys[0].First().Name)
	assert.Equal(t, 1, journeys[0].Len())
}

func TestSegmenter_Trace_InactivityTimeoutExcludesWithoutClosing(t *testing.T) {
	segmenter := NewSegmenter(DefaultFlow())

	journeys := segmenter.Trace([]domain.EventRecord{
		testEvent(WelcomeVisitedEvent, 0, nil),
		testEvent(AgreementVisitedEvent, time.Minute, nil),
		// More than an hour after the last appended event: excluded.
		testEvent("IdV: doc auth ssn visited", 2*time.Hour, nil),
		// Still closable by the terminal marker, which marker handling
		// appends regardless of the gap.
		testEvent(FinalResolutionEvent, 3*time.Hour, nil),
	})

	assert.Len(t, journeys, 1)
	assert.Equal(t, 3, journeys[0].Len())
	assert.Equal(t, FinalResolutionEvent, journeys[0].Last().Name)
	for _, e := range journeys[0].Events {
		assert.NotEqual(t, "IdV: doc auth ssn visited", e.Name)
	}
}

func TestSegmenter_Trace_ExcludedEventsLeaveJourneyOpen(t *testing.T) {
	segmenter := NewSegmenter(DefaultFlow())

	journeys := segmenter.Trace([]domain.EventRecord{
		testEvent(WelcomeVisitedEvent, 0, nil),
		testEvent("IdV: doc auth ssn visited", 90*time.Minute, nil),
		testEvent("IdV: doc auth verify visited", 95*time.Minute, nil),
	})

	// Both stray events fall outside the timeout window of the welcome
	// event; the journey survives them and is emitted truncated at end of
	// stream.
	assert.Len(t, journeys, 1)
	assert.Equal(t, 1, journeys[0].Len())
	assert.Equal(t, WelcomeVisitedEvent, journeys[0].First().Name)
}

func TestSegmenter_Trace_EndOfStreamEmitsTruncatedJourney(t *testing.T) {
	segmenter := NewSegmenter(DefaultFlow())

	journeys := segmenter.Trace([]domain.EventRecord{
		testEvent(GettingStartedVisitedEvent, 0, nil),
		testEvent(GettingStartedSubmittedEvent, time.Minute, nil),
	})

	assert.Len(t, journeys, 1)
	assert.Equal(t, 2, journeys[0].Len())
	assert.NotEqual(t, FinalResolutionEvent, journeys[0].Last().Name)
}

func TestSegmenter_Trace_NeverEmitsEmptyJourney(t *testing.T) {
	flow := DefaultFlow()
	segmenter := NewSegmenter(flow)

	sequences := [][]domain.EventRecord{
		nil,
		{testEvent("IdV: intro visited", 0, nil)},
		{testEvent(FinalResolutionEvent, 0, nil)},
		{
			testEvent(WelcomeVisitedEvent, 0, nil),
			testEvent(WelcomeVisitedEvent, time.Minute, nil),
			testEvent(FinalResolutionEvent, 2*time.Minute, nil),
			testEvent(AgreementVisitedEvent, 3*time.Minute, nil),
			testEvent(GettingStartedVisitedEvent, 4*time.Minute, nil),
		},
	}

	for _, events := range sequences {
		for _, j := range segmenter.Trace(events) {
			assert.NotZero(t, j.Len())
			assert.True(t, flow.startsJourney(j.First().Name))
		}
	}
}
