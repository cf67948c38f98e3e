package domain

import "time"

// Journey is one bounded attempt by a user to progress through the
// verification flow: an ordered, contiguous slice of that user's events,
// opened by a start marker and closed by the terminal marker, a newer start
// marker, or end of input. A journey without a terminal event is truncated;
// truncation is visible only through the absence of that event, there is no
// separate flag.
type Journey struct {
	Events []EventRecord
}

// First returns the journey's opening event. Segmentation guarantees the
// slice is never empty.
func (j Journey) First() EventRecord {
	return j.Events[0]
}

// Last returns the journey's final event.
func (j Journey) Last() EventRecord {
	return j.Events[len(j.Events)-1]
}

// Len returns the number of events in the journey.
func (j Journey) Len() int {
	return len(j.Events)
}

// JourneyFacts is the flat record of derived scalars for a single journey,
// one row in the ClickHouse journeys table. UserID and Timestamp are kept
// so the reporting layer can relate a user's journeys by time order
// (subsequent-journey counts, eventual-success lookback).
type JourneyFacts struct {
	UserID                       string    `ch:"user_id"`
	Timestamp                    time.Time `ch:"timestamp"`
	Bucket                       string    `ch:"bucket"`
	IdvSuccess                   bool      `ch:"idv_success"`
	IdvSuccessButGpoPending      bool      `ch:"idv_success_but_gpo_pending"`
	IdvSuccessButInPersonPending bool      `ch:"idv_success_but_in_person_pending"`
	AttemptedHybridHandoff       bool      `ch:"attempted_hybrid_handoff"`
	Bounced                      bool      `ch:"bounced"`
	CaughtByThreatmetrix         bool      `ch:"caught_by_threatmetrix"`
	ClickedHelpLink              bool      `ch:"clicked_help_link"`
	ChangedBrowser               bool      `ch:"changed_browser"`
	ChangedDevice                bool      `ch:"changed_device"`
	DesktopBrowser               string    `ch:"desktop_browser"`
	DesktopDevice                string    `ch:"desktop_device"`
	DesktopOnly                  bool      `ch:"desktop_only"`
	DidHybridHandoff             bool      `ch:"did_hybrid_handoff"`
	DocumentCaptureAttempts      uint32    `ch:"document_capture_attempts"`
	DocumentCaptureSuccess       bool      `ch:"document_capture_success"`
	DocumentType                 string    `ch:"document_type"`
	LastEvent                    string    `ch:"last_event"`
	Length                       uint32    `ch:"length"`
	Locale                       string    `ch:"locale"`
	MobileBrowser                string    `ch:"mobile_browser"`
	MobileDevice                 string    `ch:"mobile_device"`
	MobileOnly                   bool      `ch:"mobile_only"`
	Path                         string    `ch:"path"`
	SawHybridHandoff             bool      `ch:"saw_hybrid_handoff"`
	ServiceProvider              string    `ch:"service_provider"`
}
