package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"from is required"`
}

// FunnelGroupData represents aggregated journey outcomes for a specific group
type FunnelGroupData struct {
	GroupValue             string  `json:"group_value" example:"welcome"`
	JourneyCount           uint64  `json:"journey_count" example:"1500"`
	IdvSuccessCount        uint64  `json:"idv_success_count" example:"900"`
	IdvSuccessRate         float64 `json:"idv_success_rate" example:"0.6"`
	GpoPendingCount        uint64  `json:"gpo_pending_count" example:"40"`
	InPersonPendingCount   uint64  `json:"in_person_pending_count" example:"12"`
	DocCaptureAttemptCount uint64  `json:"doc_capture_attempt_count" example:"1200"`
	DocCaptureSuccessCount uint64  `json:"doc_capture_success_count" example:"1000"`
	DocCaptureSuccessRate  float64 `json:"doc_capture_success_rate" example:"0.83"`
}

// GetFunnelMetricsResponse represents the funnel metrics query response
type GetFunnelMetricsResponse struct {
	From          int64             `json:"from" example:"1690909200"`
	To            int64             `json:"to" example:"1690995600"`
	GroupBy       string            `json:"group_by,omitempty" example:"bucket"`
	TotalJourneys uint64            `json:"total_journeys" example:"5000"`
	Groups        []FunnelGroupData `json:"groups,omitempty"`
}

// BounceGroupData represents bounce outcomes for one starting bucket
type BounceGroupData struct {
	Bucket         string  `json:"bucket" example:"welcome"`
	JourneyCount   uint64  `json:"journey_count" example:"1500"`
	BounceCount    uint64  `json:"bounce_count" example:"300"`
	BounceRate     float64 `json:"bounce_rate" example:"0.2"`
	RecoveredCount uint64  `json:"recovered_count" example:"45"`
}

// GetBouncesResponse represents the bounce report query response
type GetBouncesResponse struct {
	From   int64             `json:"from" example:"1690909200"`
	To     int64             `json:"to" example:"1690995600"`
	Groups []BounceGroupData `json:"groups,omitempty"`
}
