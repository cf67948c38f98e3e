package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/matthinz/idv-journey-analytics/internal/domain"
	"github.com/matthinz/idv-journey-analytics/internal/dto"
	"github.com/matthinz/idv-journey-analytics/internal/repository"
)

const (
	testFrom int64 = 1690909200
	testTo   int64 = 1690995600
)

// MockJourneyRepository is a mock implementation of repository.JourneyRepository
type MockJourneyRepository struct {
	mock.Mock
}

func (m *MockJourneyRepository) InsertFacts(ctx context.Context, facts []*domain.JourneyFacts) (int, error) {
	args := m.Called(ctx, facts)
	return args.Int(0), args.Error(1)
}

func (m *MockJourneyRepository) GetFunnelMetrics(ctx context.Context, query repository.FunnelQuery) (*repository.FunnelResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.FunnelResult), args.Error(1)
}

func (m *MockJourneyRepository) GetBounceMetrics(ctx context.Context, query repository.BounceQuery) (*repository.BounceResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BounceResult), args.Error(1)
}

func (m *MockJourneyRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockJourneyRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockJourneyRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestJourneyService_GetFunnelMetrics_Success(t *testing.T) {
	mockRepo := new(MockJourneyRepository)
	log := zap.NewNop()

	service := NewJourneyService(mockRepo, log)

	req := &dto.GetFunnelMetricsRequest{
		From:    testFrom,
		To:      testTo,
		GroupBy: "bucket",
	}

	result := &repository.FunnelResult{
		TotalJourneys: 2000,
		Groups: []repository.FunnelGroupResult{
			{
				GroupValue:             "welcome",
				JourneyCount:           1500,
				IdvSuccessCount:        900,
				GpoPendingCount:        40,
				InPersonPendingCount:   12,
				DocCaptureAttemptCount: 1200,
				DocCaptureSuccessCount: 1000,
			},
			{
				GroupValue:             "getting_started",
				JourneyCount:           500,
				IdvSuccessCount:        250,
				DocCaptureAttemptCount: 400,
				DocCaptureSuccessCount: 100,
			},
		},
	}

	mockRepo.On("GetFunnelMetrics", mock.Anything, mock.MatchedBy(func(q repository.FunnelQuery) bool {
		return q.GroupBy == "bucket" && q.From == testFrom && q.To == testTo && q.MinCount == defaultMinCount
	})).Return(result, nil)

	resp, err := service.GetFunnelMetrics(req)

	assert.NoError(t, err)
	assert.Equal(t, uint64(2000), resp.TotalJourneys)
	assert.Len(t, resp.Groups, 2)
	assert.Equal(t, "welcome", resp.Groups[0].GroupValue)
	assert.InDelta(t, 0.6, resp.Groups[0].IdvSuccessRate, 0.0001)
	assert.InDelta(t, 1000.0/1200.0, resp.Groups[0].DocCaptureSuccessRate, 0.0001)
	assert.InDelta(t, 0.5, resp.Groups[1].IdvSuccessRate, 0.0001)
	mockRepo.AssertExpectations(t)
}

func TestJourneyService_GetFunnelMetrics_ExplicitMinCount(t *testing.T) {
	mockRepo := new(MockJourneyRepository)
	log := zap.NewNop()

	service := NewJourneyService(mockRepo, log)

	req := &dto.GetFunnelMetricsRequest{
		From:     testFrom,
		To:       testTo,
		MinCount: 5,
	}

	mockRepo.On("GetFunnelMetrics", mock.Anything, mock.MatchedBy(func(q repository.FunnelQuery) bool {
		return q.MinCount == 5 && q.GroupBy == ""
	})).Return(&repository.FunnelResult{}, nil)

	_, err := service.GetFunnelMetrics(req)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestJourneyService_GetFunnelMetrics_InvalidTimeRange(t *testing.T) {
	mockRepo := new(MockJourneyRepository)
	log := zap.NewNop()

	service := NewJourneyService(mockRepo, log)

	req := &dto.GetFunnelMetricsRequest{
		From: testTo,
		To:   testFrom,
	}

	resp, err := service.GetFunnelMetrics(req)

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "from timestamp must be less than or equal to")
	mockRepo.AssertNotCalled(t, "GetFunnelMetrics")
}

func TestJourneyService_GetFunnelMetrics_InvalidGroupBy(t *testing.T) {
	mockRepo := new(MockJourneyRepository)
	log := zap.NewNop()

	service := NewJourneyService(mockRepo, log)

	req := &dto.GetFunnelMetricsRequest{
		From:    testFrom,
		To:      testTo,
		GroupBy: "user_id",
	}

	resp, err := service.GetFunnelMetrics(req)

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "invalid group_by value")
	mockRepo.AssertNotCalled(t, "GetFunnelMetrics")
}

func TestJourneyService_GetFunnelMetrics_RepositoryError(t *testing.T) {
	mockRepo := new(MockJourneyRepository)
	log := zap.NewNop()

	service := NewJourneyService(mockRepo, log)

	req := &dto.GetFunnelMetricsRequest{
		From: testFrom,
		To:   testTo,
	}

	repoErr := errors.New("database connection error")
	mockRepo.On("GetFunnelMetrics", mock.Anything, mock.Anything).Return(nil, repoErr)

	resp, err := service.GetFunnelMetrics(req)

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "failed to get funnel metrics")
}

func TestJourneyService_GetBounces_Success(t *testing.T) {
	mockRepo := new(MockJourneyRepository)
	log := zap.NewNop()

	service := NewJourneyService(mockRepo, log)

	req := &dto.GetBouncesRequest{
		From: testFrom,
		To:   testTo,
	}

	result := &repository.BounceResult{
		Groups: []repository.BounceGroupResult{
			{
				Bucket:         "welcome",
				BucketCount:    1500,
				BounceCount:    300,
				RecoveredCount: 45,
			},
		},
	}

	mockRepo.On("GetBounceMetrics", mock.Anything, mock.MatchedBy(func(q repository.BounceQuery) bool {
		return q.From == testFrom && q.To == testTo
	})).Return(result, nil)

	resp, err := service.GetBounces(req)

	assert.NoError(t, err)
	assert.Len(t, resp.Groups, 1)
	assert.Equal(t, "welcome", resp.Groups[0].Bucket)
	assert.Equal(t, uint64(300), resp.Groups[0].BounceCount)
	assert.InDelta(t, 0.2, resp.Groups[0].BounceRate, 0.0001)
	assert.Equal(t, uint64(45), resp.Groups[0].RecoveredCount)
	mockRepo.AssertExpectations(t)
}

func TestJourneyService_GetBounces_InvalidTimeRange(t *testing.T) {
	mockRepo := new(MockJourneyRepository)
	log := zap.NewNop()

	service := NewJourneyService(mockRepo, log)

	req := &dto.GetBouncesRequest{
		From: testTo,
		To:   testFrom,
	}

	resp, err := service.GetBounces(req)

	assert.Error(t, err)
	assert.Nil(t, resp)
	mockRepo.AssertNotCalled(t, "GetBounceMetrics")
}

func TestJourneyService_GetBounces_RepositoryError(t *testing.T) {
	mockRepo := new(MockJourneyRepository)
	log := zap.NewNop()

	service := NewJourneyService(mockRepo, log)

	req := &dto.GetBouncesRequest{
		From: testFrom,
		To:   testTo,
	}

	repoErr := errors.New("database connection error")
	mockRepo.On("GetBounceMetrics", mock.Anything, mock.Anything).Return(nil, repoErr)

	resp, err := service.GetBounces(req)

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "failed to get bounce metrics")
}
