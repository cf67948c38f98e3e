package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/matthinz/idv-journey-analytics/internal/dto"
	"github.com/matthinz/idv-journey-analytics/internal/repository"
)

// defaultMinCount hides groups too small to report on. Groups at or below
// this count are noise in the funnel report and a re-identification hazard.
const defaultMinCount = 70

// validGroupBy lists the journey attributes the funnel report can group on.
var validGroupBy = map[string]bool{
	"bucket":                   true,
	"locale":                   true,
	"service_provider":         true,
	"document_type":            true,
	"caught_by_threatmetrix":   true,
	"attempted_hybrid_handoff": true,
	"desktop_only":             true,
	"mobile_only":              true,
	"document_capture_success": true,
}

// JourneyService represents journey reporting service
type JourneyService struct {
	repository repository.JourneyRepository
	log        *zap.Logger
}

// NewJourneyService creates a new journey service
func NewJourneyService(repo repository.JourneyRepository, log *zap.Logger) *JourneyService {
	return &JourneyService{
		repository: repo,
		log:        log,
	}
}

// GetFunnelMetrics retrieves aggregated journey outcomes from the repository
func (s *JourneyService) GetFunnelMetrics(req *dto.GetFunnelMetricsRequest) (*dto.GetFunnelMetricsResponse, error) {
	ctx := context.Background()

	if req.From > req.To {
		s.log.Warn("Invalid time range for funnel metrics",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To))
		return nil, fmt.Errorf("from timestamp must be less than or equal to to timestamp")
	}

	if req.GroupBy != "" && !validGroupBy[req.GroupBy] {
		s.log.Warn("Invalid group_by value",
			zap.String("group_by", req.GroupBy))
		return nil, fmt.Errorf("invalid group_by value: %s (supported: %s)", req.GroupBy, supportedGroupings())
	}

	minCount := req.MinCount
	if minCount <= 0 {
		minCount = defaultMinCount
	}

	query := repository.FunnelQuery{
		GroupBy:  req.GroupBy,
		From:     req.From,
		To:       req.To,
		MinCount: minCount,
	}

	s.log.Info("Querying funnel metrics",
		zap.Int64("from", req.From),
		zap.Int64("to", req.To),
		zap.String("group_by", req.GroupBy),
		zap.Int("min_count", minCount))

	result, err := s.repository.GetFunnelMetrics(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get funnel metrics from repository: %w", err)
	}

	response := &dto.GetFunnelMetricsResponse{
		From:          req.From,
		To:            req.To,
		GroupBy:       req.GroupBy,
		TotalJourneys: result.TotalJourneys,
		Groups:        make([]dto.FunnelGroupData, 0, len(result.Groups)),
	}

	for _, group := range result.Groups {
		response.Groups = append(response.Groups, dto.FunnelGroupData{
			GroupValue:             group.GroupValue,
			JourneyCount:           group.JourneyCount,
			IdvSuccessCount:        group.IdvSuccessCount,
			IdvSuccessRate:         rate(group.IdvSuccessCount, group.JourneyCount),
			GpoPendingCount:        group.GpoPendingCount,
			InPersonPendingCount:   group.InPersonPendingCount,
			DocCaptureAttemptCount: group.DocCaptureAttemptCount,
			DocCaptureSuccessCount: group.DocCaptureSuccessCount,
			DocCaptureSuccessRate:  rate(group.DocCaptureSuccessCount, group.DocCaptureAttemptCount),
		})
	}

	return response, nil
}

// GetBounces retrieves the per-bucket bounce report
func (s *JourneyService) GetBounces(req *dto.GetBouncesRequest) (*dto.GetBouncesResponse, error) {
	ctx := context.Background()

	if req.From > req.To {
		s.log.Warn("Invalid time range for bounce report",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To))
		return nil, fmt.Errorf("from timestamp must be less than or equal to to timestamp")
	}

	query := repository.BounceQuery{
		From: req.From,
		To:   req.To,
	}

	s.log.Info("Querying bounce report",
		zap.Int64("from", req.From),
		zap.Int64("to", req.To))

	result, err := s.repository.GetBounceMetrics(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bounce metrics from repository: %w", err)
	}

	response := &dto.GetBouncesResponse{
		From:   req.From,
		To:     req.To,
		Groups: make([]dto.BounceGroupData, 0, len(result.Groups)),
	}

	for _, group := range result.Groups {
		response.Groups = append(response.Groups, dto.BounceGroupData{
			Bucket:         group.Bucket,
			JourneyCount:   group.BucketCount,
			BounceCount:    group.BounceCount,
			BounceRate:     rate(group.BounceCount, group.BucketCount),
			RecoveredCount: group.RecoveredCount,
		})
	}

	return response, nil
}

func rate(numerator, denominator uint64) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

func supportedGroupings() string {
	groupings := make([]string, 0, len(validGroupBy))
	for name := range validGroupBy {
		groupings = append(groupings, name)
	}
	sort.Strings(groupings)
	return strings.Join(groupings, ", ")
}
