package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/matthinz/idv-journey-analytics/internal/dto"
)

const (
	testFrom int64 = 1690909200
	testTo   int64 = 1690995600
)

// MockJourneyService is a mock implementation of service.JourneyServicer
type MockJourneyService struct {
	mock.Mock
}

func (m *MockJourneyService) GetFunnelMetrics(req *dto.GetFunnelMetricsRequest) (*dto.GetFunnelMetricsResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetFunnelMetricsResponse), args.Error(1)
}

func (m *MockJourneyService) GetBounces(req *dto.GetBouncesRequest) (*dto.GetBouncesResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.GetBouncesResponse), args.Error(1)
}

func TestHandler_HealthCheck(t *testing.T) {
	mockService := new(MockJourneyService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}

func TestHandler_GetFunnelMetrics_Success(t *testing.T) {
	mockService := new(MockJourneyService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	expected := &dto.GetFunnelMetricsResponse{
		From:          testFrom,
		To:            testTo,
		GroupBy:       "bucket",
		TotalJourneys: 2000,
		Groups: []dto.FunnelGroupData{
			{
				GroupValue:      "welcome",
				JourneyCount:    1500,
				IdvSuccessCount: 900,
				IdvSuccessRate:  0.6,
			},
		},
	}

	mockService.On("GetFunnelMetrics", mock.MatchedBy(func(req *dto.GetFunnelMetricsRequest) bool {
		return req.From == testFrom && req.To == testTo && req.GroupBy == "bucket"
	})).Return(expected, nil)

	url := fmt.Sprintf("/v1/journeys/metrics?from=%d&to=%d&group_by=bucket", testFrom, testTo)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.GetFunnelMetricsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, uint64(2000), response.TotalJourneys)
	assert.Len(t, response.Groups, 1)
	assert.Equal(t, "welcome", response.Groups[0].GroupValue)
	mockService.AssertExpectations(t)
}

func TestHandler_GetFunnelMetrics_MissingRequiredParams(t *testing.T) {
	mockService := new(MockJourneyService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	req := httptest.NewRequest(http.MethodGet, "/v1/journeys/metrics?group_by=bucket", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "validation_error", response.Error)
	mockService.AssertNotCalled(t, "GetFunnelMetrics")
}

func TestHandler_GetFunnelMetrics_ServiceError(t *testing.T) {
	mockService := new(MockJourneyService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	serviceErr := errors.New("invalid group_by value: user_id")
	mockService.On("GetFunnelMetrics", mock.Anything).Return(nil, serviceErr)

	url := fmt.Sprintf("/v1/journeys/metrics?from=%d&to=%d&group_by=user_id", testFrom, testTo)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response dto.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "internal_error", response.Error)
}

func TestHandler_GetBounces_Success(t *testing.T) {
	mockService := new(MockJourneyService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	expected := &dto.GetBouncesResponse{
		From: testFrom,
		To:   testTo,
		Groups: []dto.BounceGroupData{
			{
				Bucket:         "welcome",
				JourneyCount:   1500,
				BounceCount:    300,
				BounceRate:     0.2,
				RecoveredCount: 45,
			},
		},
	}

	mockService.On("GetBounces", mock.MatchedBy(func(req *dto.GetBouncesRequest) bool {
		return req.From == testFrom && req.To == testTo
	})).Return(expected, nil)

	url := fmt.Sprintf("/v1/journeys/bounces?from=%d&to=%d", testFrom, testTo)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.GetBouncesResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Groups, 1)
	assert.Equal(t, uint64(300), response.Groups[0].BounceCount)
	mockService.AssertExpectations(t)
}

func TestHandler_GetBounces_MissingRequiredParams(t *testing.T) {
	mockService := new(MockJourneyService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	req := httptest.NewRequest(http.MethodGet, "/v1/journeys/bounces", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetBounces")
}

func TestHandler_GetBounces_ServiceError(t *testing.T) {
	mockService := new(MockJourneyService)
	log := zap.NewNop()

	handler := NewHandler(mockService, log)

	serviceErr := errors.New("database connection error")
	mockService.On("GetBounces", mock.Anything).Return(nil, serviceErr)

	url := fmt.Sprintf("/v1/journeys/bounces?from=%d&to=%d", testFrom, testTo)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
