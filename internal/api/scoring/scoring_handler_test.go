package scoring

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zipte-app/zipte-server/internal/types"
)

// MockScoringService is a mock implementation of the Service interface
type MockScoringService struct {
	mock.Mock
}

func (m *MockScoringService) RankByScore(ctx context.Context, prefs types.UserPreferences, weights map[string]float64, topN int) ([]types.ScoredRow, error) {
	args := m.Called(ctx, prefs, weights, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ScoredRow), args.Error(1)
}

func (m *MockScoringService) Train(ctx context.Context, weights types.WeightSchedule, seed int64) (*TrainingResult, error) {
	args := m.Called(ctx, weights, seed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TrainingResult), args.Error(1)
}

const scoreBody = `{
	"user_preferences": {
		"district": "개포동",
		"target_price": 60000,
		"price_tolerance": 20000,
		"target_area": 84,
		"area_tolerance": 30
	},
	"weights": {
		"amenity": 0.2, "welfare": 0.3, "education": 0.3,
		"subway": 1, "bus": 2, "location": 20, "price": 10, "area": 10
	},
	"top_n": 5
}`

func scoreRequestOf(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/apt/scores", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestScoresHandler(t *testing.T) {
	svc := new(MockScoringService)
	svc.On("RankByScore", mock.Anything, mock.Anything, mock.Anything, 5).Return([]types.ScoredRow{
		{Name: "래미안", District: "개포동", AdjustedScore: 61.2, BaseScore: 40.1},
	}, nil)

	rec := httptest.NewRecorder()
	NewHandler(svc, slog.Default()).Scores(rec, scoreRequestOf(scoreBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "래미안")
	svc.AssertExpectations(t)
}

func TestScoresHandlerMissingWeights(t *testing.T) {
	svc := new(MockScoringService)

	rec := httptest.NewRecorder()
	NewHandler(svc, slog.Default()).Scores(rec, scoreRequestOf(`{"user_preferences": {}, "top_n": 5}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "RankByScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScoresHandlerMalformedBody(t *testing.T) {
	svc := new(MockScoringService)

	rec := httptest.NewRecorder()
	NewHandler(svc, slog.Default()).Scores(rec, scoreRequestOf(`{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoresHandlerInvalidPreference(t *testing.T) {
	svc := new(MockScoringService)
	svc.On("RankByScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, types.ErrInvalidPreference)

	rec := httptest.NewRecorder()
	NewHandler(svc, slog.Default()).Scores(rec, scoreRequestOf(scoreBody))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoresHandlerModelUnavailable(t *testing.T) {
	svc := new(MockScoringService)
	svc.On("RankByScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, types.ErrModelUnavailable)

	rec := httptest.NewRecorder()
	NewHandler(svc, slog.Default()).Scores(rec, scoreRequestOf(scoreBody))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
