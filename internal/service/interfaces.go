package service

import (
	"github.com/matthinz/idv-journey-analytics/internal/dto"
)

// JourneyServicer defines the interface for journey reporting operations
type JourneyServicer interface {
	GetFunnelMetrics(req *dto.GetFunnelMetricsRequest) (*dto.GetFunnelMetricsResponse, error)
	GetBounces(req *dto.GetBouncesRequest) (*dto.GetBouncesResponse, error)
}
