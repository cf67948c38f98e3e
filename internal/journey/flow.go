// Package journey segments per-user telemetry into bounded journeys and
// reduces each journey to its derived analytic facts.
package journey

import "time"

// Flow describes one deployment of the verification funnel: which event
// names open and close a journey, how long a journey tolerates inactivity,
// and the event names the fact rules match against. It is passed explicitly
// into Segmenter and Deriver so different flow definitions can run side by
// side without interference.
type Flow struct {
	// StartEventNames are the event names that open a new journey.
	StartEventNames []string

	// EndEventName is the terminal marker closing a journey.
	EndEventName string

	// InactivityTimeout is the maximum gap between consecutive in-journey
	// events before a subsequent event is excluded from the journey.
	InactivityTimeout time.Duration

	// Buckets maps a journey's first event name to its flow-variant label.
	Buckets map[string]string

	// SubmitEventByBucket maps a bucket label to the submit event whose
	// absence (together with a failed journey) marks a bounce.
	SubmitEventByBucket map[string]string

	// Event names referenced by individual fact rules.
	HandoffSubmittedEvent  string
	HandoffVisitedEvent    string
	CaptureVisitedEvent    string
	CaptureSubmittedEvent  string
	ProofingResultsEvent   string
	VendorSubmittedEvent   string
	ExternalRedirectEvent  string
	ReturnToSPNameFragment string

	// HybridFlowPath is the flow_path attribute value tagging the
	// alternate-device (phone handoff) variant of a step.
	HybridFlowPath string

	// HelpLinkSubstring marks an external redirect as a help-center visit.
	HelpLinkSubstring string

	// PathNamePrefix is stripped from event names when rendering the
	// journey path.
	PathNamePrefix string
}

// Default flow constants for the IdV doc-auth funnel.
const (
	WelcomeVisitedEvent          = "IdV: doc auth welcome visited"
	WelcomeSubmittedEvent        = "IdV: doc auth welcome submitted"
	GettingStartedVisitedEvent   = "IdV: doc auth getting_started visited"
	GettingStartedSubmittedEvent = "IdV: doc auth getting_started submitted"
	AgreementVisitedEvent        = "IdV: doc auth agreement visited"
	AgreementSubmittedEvent      = "IdV: doc auth agreement submitted"
	FinalResolutionEvent         = "IdV: final resolution"

	BucketWelcome        = "welcome"
	BucketGettingStarted = "getting_started"
)

// DefaultFlow returns the flow definition for the IdV doc-auth funnel:
// journeys open at the welcome or getting_started step (the two sides of
// the intro A/B test), close at final resolution, and tolerate up to an
// hour of inactivity between events.
func DefaultFlow() Flow {
	return Flow{
		StartEventNames:   []string{WelcomeVisitedEvent, GettingStartedVisitedEvent},
		EndEventName:      FinalResolutionEvent,
		InactivityTimeout: time.Hour,
		Buckets: map[string]string{
			WelcomeVisitedEvent:        BucketWelcome,
			GettingStartedVisitedEvent: BucketGettingStarted,
		},
		SubmitEventByBucket: map[string]string{
			BucketWelcome:        AgreementSubmittedEvent,
			BucketGettingStarted: GettingStartedSubmittedEvent,
		},
		HandoffSubmittedEvent:  "IdV: doc auth hybrid handoff submitted",
		HandoffVisitedEvent:    "IdV: doc auth hybrid handoff visited",
		CaptureVisitedEvent:    "IdV: doc auth document_capture visited",
		CaptureSubmittedEvent:  "IdV: doc auth document_capture submitted",
		ProofingResultsEvent:   "IdV: doc auth verify proofing results",
		VendorSubmittedEvent:   "IdV: doc auth image upload vendor submitted",
		ExternalRedirectEvent:  "External Redirect",
		ReturnToSPNameFragment: "Return to SP",
		HybridFlowPath:         "hybrid",
		HelpLinkSubstring:      "https://www.login.gov/help",
		PathNamePrefix:         "IdV: doc auth ",
	}
}

// startsJourney reports whether an event with the given name opens a new
// journey.
func (f Flow) startsJourney(name string) bool {
	for _, start := range f.StartEventNames {
		if name == start {
			return true
		}
	}
	return false
}
