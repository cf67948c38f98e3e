package journey

import (
	"fmt"
	"strings"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
)

// Deriver reduces one journey to its JourneyFacts record. Each attribute
// has its own aggregation rule; rules are independent of each other except
// where bucket feeds the bounce rule.
type Deriver struct {
	flow Flow
}

// NewDeriver creates a deriver for the given flow definition.
func NewDeriver(flow Flow) *Deriver {
	return &Deriver{flow: flow}
}

// Derive computes every fact for the journey. It returns an IntegrityError
// when a uniform attribute conflicts, a MissingValueError when a required
// attribute has nothing to derive from, and a ContractError when the
// journey's first event is not a configured start marker. On any error the
// facts record is not partially produced.
func (d *Deriver) Derive(j domain.Journey) (*domain.JourneyFacts, error) {
	bucket, err := d.bucket(j)
	if err != nil {
		return nil, err
	}

	userID, err := uniformValue(j, "user_id", func(e domain.EventRecord) string { return e.UserID })
	if err != nil {
		return nil, err
	}

	locale, found := mostPopularAttr(j, domain.FieldLocale, false, nil)
	if !found {
		return nil, &MissingValueError{Field: domain.FieldLocale}
	}

	idvSuccess := d.idvSuccess(j)
	desktopBrowser, _ := mostPopularAttr(j, domain.FieldBrowserName, true, notMobile)
	desktopDevice, _ := mostPopularAttr(j, domain.FieldBrowserDevice, true, notMobile)
	mobileBrowser, _ := mostPopularAttr(j, domain.FieldBrowserName, true, isMobile)
	mobileDevice, _ := mostPopularAttr(j, domain.FieldBrowserDevice, true, isMobile)
	serviceProvider, _ := mostPopularAttr(j, domain.FieldServiceProvider, true, nil)

	facts := &domain.JourneyFacts{
		UserID:                       userID,
		Timestamp:                    j.First().Timestamp,
		Bucket:                       bucket,
		IdvSuccess:                   idvSuccess,
		IdvSuccessButGpoPending:      d.idvSuccessButGpoPending(j),
		IdvSuccessButInPersonPending: d.idvSuccessButInPersonPending(j),
		AttemptedHybridHandoff:       d.attemptedHybridHandoff(j),
		Bounced:                      d.bounced(j, bucket, idvSuccess),
		CaughtByThreatmetrix:         caughtByThreatmetrix(j),
		ClickedHelpLink:              d.clickedHelpLink(j),
		ChangedBrowser:               distinctValues(j, domain.FieldBrowserName) > 1,
		ChangedDevice:                distinctValues(j, domain.FieldBrowserDeviceName) > 1,
		DesktopBrowser:               desktopBrowser,
		DesktopDevice:                desktopDevice,
		DesktopOnly:                  allEvents(j, func(e domain.EventRecord) bool { return !e.Bool(domain.FieldBrowserMobile) }),
		DidHybridHandoff:             d.didHybridHandoff(j),
		DocumentCaptureAttempts:      uint32(countEvents(j, d.isCaptureSubmitted)),
		DocumentCaptureSuccess:       d.documentCaptureSuccess(j),
		DocumentType:                 d.documentType(j),
		LastEvent:                    j.Last().Name,
		Length:                       uint32(j.Len()),
		Locale:                       locale,
		MobileBrowser:                mobileBrowser,
		MobileDevice:                 mobileDevice,
		MobileOnly:                   allEvents(j, eventIsMobileOrUnknown),
		Path:                         d.path(j),
		SawHybridHandoff:             anyEvent(j, func(e domain.EventRecord) bool { return e.Name == d.flow.HandoffVisitedEvent }),
		ServiceProvider:              serviceProvider,
	}

	return facts, nil
}

// bucket resolves the journey's flow variant from its first event. Any
// first event outside the configured start markers violates the
// segmentation contract.
func (d *Deriver) bucket(j domain.Journey) (string, error) {
	bucket, ok := d.flow.Buckets[j.First().Name]
	if !ok {
		return "", &ContractError{FirstEvent: j.First().Name}
	}
	return bucket, nil
}

func (d *Deriver) idvSuccess(j domain.Journey) bool {
	return anyEvent(j, func(e domain.EventRecord) bool {
		return e.Name == d.flow.EndEventName &&
			e.Bool(domain.FieldSuccess) &&
			!e.Bool(domain.FieldGpoPending) &&
			!e.Bool(domain.FieldInPersonPending)
	})
}

func (d *Deriver) idvSuccessButGpoPending(j domain.Journey) bool {
	return anyEvent(j, func(e domain.EventRecord) bool {
		return e.Name == d.flow.EndEventName &&
			e.Bool(domain.FieldSuccess) &&
			e.Bool(domain.FieldGpoPending)
	})
}

func (d *Deriver) idvSuccessButInPersonPending(j domain.Journey) bool {
	return anyEvent(j, func(e domain.EventRecord) bool {
		reason, _ := e.Str(domain.FieldDeactivationReason)
		return e.Name == d.flow.EndEventName &&
			e.Bool(domain.FieldSuccess) &&
			reason == "in_person_verification_pending"
	})
}

func (d *Deriver) isHybridHandoffSubmit(e domain.EventRecord) bool {
	flowPath, _ := e.Str(domain.FieldFlowPath)
	return e.Name == d.flow.HandoffSubmittedEvent && flowPath == d.flow.HybridFlowPath
}

func (d *Deriver) attemptedHybridHandoff(j domain.Journey) bool {
	return anyEvent(j, d.isHybridHandoffSubmit)
}

// didHybridHandoff is the ordered-pair rule: a hybrid handoff submit must
// be followed strictly later in time by a document-capture visit on the
// hybrid path.
func (d *Deriver) didHybridHandoff(j domain.Journey) bool {
	return anyEvent(j, func(handoff domain.EventRecord) bool {
		if !d.isHybridHandoffSubmit(handoff) {
			return false
		}
		return anyEvent(j, func(e domain.EventRecord) bool {
			flowPath, _ := e.Str(domain.FieldFlowPath)
			return e.Timestamp.After(handoff.Timestamp) &&
				e.Name == d.flow.CaptureVisitedEvent &&
				flowPath == d.flow.HybridFlowPath
		})
	})
}

// bounced: the bucket's submit event never occurred and the journey did
// not succeed.
func (d *Deriver) bounced(j domain.Journey, bucket string, idvSuccess bool) bool {
	submitEvent := d.flow.SubmitEventByBucket[bucket]
	submitted := anyEvent(j, func(e domain.EventRecord) bool { return e.Name == submitEvent })
	return !submitted && !idvSuccess
}

func caughtByThreatmetrix(j domain.Journey) bool {
	return anyEvent(j, func(e domain.EventRecord) bool {
		status, _ := e.Str(domain.FieldThreatmetrixReview)
		return status == "reject" || status == "review"
	})
}

func (d *Deriver) clickedHelpLink(j domain.Journey) bool {
	return anyEvent(j, func(e domain.EventRecord) bool {
		url, _ := e.Str(domain.FieldRedirectURL)
		return e.Name == d.flow.ExternalRedirectEvent && strings.Contains(url, d.flow.HelpLinkSubstring)
	})
}

func (d *Deriver) isCaptureSubmitted(e domain.EventRecord) bool {
	return e.Name == d.flow.CaptureSubmittedEvent
}

func (d *Deriver) documentCaptureSuccess(j domain.Journey) bool {
	return anyEvent(j, func(e domain.EventRecord) bool {
		return e.Name == d.flow.ProofingResultsEvent && e.Bool(domain.FieldSuccess)
	})
}

// documentType scans in order and lets the last document class the user
// tried win.
func (d *Deriver) documentType(j domain.Journey) string {
	var result string
	for _, e := range j.Events {
		if e.Name != d.flow.VendorSubmittedEvent {
			continue
		}
		if docClass, ok := e.Str(domain.FieldDocClass); ok {
			result = docClass
		}
	}
	return result
}

// path renders the journey as the cleaned event names joined by a
// directional separator.
func (d *Deriver) path(j domain.Journey) string {
	names := make([]string, j.Len())
	for i, e := range j.Events {
		names[i] = d.cleanEventName(e)
	}
	return strings.Join(names, " -> ")
}

// cleanEventName shortens an event name for path display and suffixes it
// with whatever context the event carries: the redirect target (except on
// the noisy Return-to-SP events) and a success/failure tag when the
// success flag is present.
func (d *Deriver) cleanEventName(e domain.EventRecord) string {
	name := e.Name
	name = strings.Replace(name, d.flow.PathNamePrefix, "", 1)
	name = strings.Replace(name, "visited", "visit", 1)
	name = strings.Replace(name, "submitted", "submit", 1)

	var attrs []string

	if url, ok := e.Str(domain.FieldRedirectURL); ok && !strings.Contains(name, d.flow.ReturnToSPNameFragment) {
		attrs = append(attrs, url)
	}

	if success, ok := e.BoolOK(domain.FieldSuccess); ok {
		if success {
			attrs = append(attrs, "success")
		} else {
			attrs = append(attrs, "failure")
		}
	}

	if len(attrs) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(attrs, ", "))
}

func notMobile(e domain.EventRecord) bool {
	return !e.Bool(domain.FieldBrowserMobile)
}

func isMobile(e domain.EventRecord) bool {
	return e.Bool(domain.FieldBrowserMobile)
}

func eventIsMobileOrUnknown(e domain.EventRecord) bool {
	mobile, ok := e.BoolOK(domain.FieldBrowserMobile)
	return !ok || mobile
}

// anyEvent is the existence-over-sequence aggregation.
func anyEvent(j domain.Journey, pred func(domain.EventRecord) bool) bool {
	for _, e := range j.Events {
		if pred(e) {
			return true
		}
	}
	return false
}

// allEvents is the all-match aggregation.
func allEvents(j domain.Journey, pred func(domain.EventRecord) bool) bool {
	for _, e := range j.Events {
		if !pred(e) {
			return false
		}
	}
	return true
}

// countEvents is the counting aggregation.
func countEvents(j domain.Journey, pred func(domain.EventRecord) bool) int {
	count := 0
	for _, e := range j.Events {
		if pred(e) {
			count++
		}
	}
	return count
}

// distinctValues counts the distinct identifiers for a field across the
// journey. An absent field contributes a single blank identifier.
func distinctValues(j domain.Journey, field string) int {
	seen := make(map[string]struct{})
	for _, e := range j.Events {
		value, _ := e.Str(field)
		seen[value] = struct{}{}
	}
	return len(seen)
}

// attrTally is an insertion-ordered tally of a field's values.
type attrTally struct {
	keys   []string
	counts map[string]int
}

func indexAttrs(j domain.Journey, field string, ignoreBlank bool, filter func(domain.EventRecord) bool) attrTally {
	tally := attrTally{counts: make(map[string]int)}
	for _, e := range j.Events {
		if filter != nil && !filter(e) {
			continue
		}
		value, _ := e.Str(field)
		if ignoreBlank && value == "" {
			continue
		}
		if _, ok := tally.counts[value]; !ok {
			tally.keys = append(tally.keys, value)
		}
		tally.counts[value]++
	}
	return tally
}

// mostPopularAttr is the most-frequent-value aggregation. Iterating the
// tally in insertion order and replacing the leader only on a strictly
// greater count breaks ties toward the value seen first. found is false
// when no event qualified.
func mostPopularAttr(j domain.Journey, field string, ignoreBlank bool, filter func(domain.EventRecord) bool) (result string, found bool) {
	tally := indexAttrs(j, field, ignoreBlank, filter)

	highest := -1
	for _, key := range tally.keys {
		if tally.counts[key] > highest {
			result = key
			highest = tally.counts[key]
		}
	}

	return result, highest >= 0
}

// uniformValue is the uniform-over-all aggregation: exactly one distinct
// value is expected for the field across every event. More than one is a
// data-integrity error carrying the conflicting values and the events that
// supplied them.
func uniformValue(j domain.Journey, field string, get func(domain.EventRecord) string) (string, error) {
	var values []string
	seen := make(map[string]struct{})
	for _, e := range j.Events {
		value := get(e)
		if _, ok := seen[value]; !ok {
			seen[value] = struct{}{}
			values = append(values, value)
		}
	}

	if len(values) == 1 {
		return values[0], nil
	}

	conflicts := make([]ConflictingEvent, j.Len())
	for i, e := range j.Events {
		conflicts[i] = ConflictingEvent{
			UserID:    e.UserID,
			Timestamp: e.Timestamp,
			Name:      e.Name,
			Value:     get(e),
		}
	}

	return "", &IntegrityError{
		Field:  field,
		Values: values,
		Events: conflicts,
	}
}
