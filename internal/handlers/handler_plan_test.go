package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/handlers"
	"github.com/cryptonest/cryptonest_backend/internal/platform/config"
	"github.com/cryptonest/cryptonest_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PlanService ---
type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) GetPlan(ctx context.Context, planKey domain.PlanKey) (*domain.Plan, error) {
	args := m.Called(ctx, planKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanService) ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}

func (m *MockPlanService) SeedDefaultPlans(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPlanService) UpdatePlan(ctx context.Context, planKey domain.PlanKey, req dto.UpdatePlanRequest, actorID string) (*domain.Plan, error) {
	args := m.Called(ctx, planKey, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

var _ portssvc.PlanSvcFacade = (*MockPlanService)(nil)

// --- Test Suite ---
type PlanHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockPlanService *MockPlanService
	jwtSecret       string
}

func (suite *PlanHandlerTestSuite) generateTestToken(userID string, role domain.UserRole) string {
	token, err := utils.GenerateJWT(userID, string(role), suite.jwtSecret, time.Hour, "cryptonest-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *PlanHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockPlanService = new(MockPlanService)

	cfg := &config.Config{
		JWTSecret:    suite.jwtSecret,
		IsProduction: true, // skip swagger registration
	}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Plan: suite.mockPlanService,
	})
}

func (suite *PlanHandlerTestSuite) starterPlan() domain.Plan {
	return domain.Plan{
		PlanKey:      domain.PlanStarter,
		Name:         "Starter",
		MinAmount:    decimal.NewFromInt(100),
		MaxAmount:    decimal.NewFromInt(999),
		InterestRate: decimal.NewFromInt(10),
		DurationDays: 30,
		IsActive:     true,
	}
}

func (suite *PlanHandlerTestSuite) TestListPlans_Success() {
	suite.mockPlanService.On("ListPlans", mock.Anything, false).Return([]domain.Plan{suite.starterPlan()}, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleUser))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var body []dto.PlanResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Require().Len(body, 1)
	suite.Equal(domain.PlanStarter, body[0].PlanKey)
	suite.mockPlanService.AssertExpectations(suite.T())
}

func (suite *PlanHandlerTestSuite) TestListPlans_IncludeInactiveIgnoredForUsers() {
	// Non-admins asking for retired tiers still get the active set.
	suite.mockPlanService.On("ListPlans", mock.Anything, false).Return([]domain.Plan{suite.starterPlan()}, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/plans?includeInactive=true", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleUser))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPlanService.AssertExpectations(suite.T())
}

func (suite *PlanHandlerTestSuite) TestListPlans_IncludeInactiveHonoredForAdmins() {
	suite.mockPlanService.On("ListPlans", mock.Anything, true).Return([]domain.Plan{suite.starterPlan()}, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/plans?includeInactive=true", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleAdmin))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPlanService.AssertExpectations(suite.T())
}

func (suite *PlanHandlerTestSuite) TestGetPlan_NotFound() {
	suite.mockPlanService.On("GetPlan", mock.Anything, domain.PlanKey("GOLD")).Return(nil, apperrors.ErrNotFound).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/plans/GOLD", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleUser))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *PlanHandlerTestSuite) TestGetPlan_Unauthenticated() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/plans/GOLD", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockPlanService.AssertNotCalled(suite.T(), "GetPlan", mock.Anything, mock.Anything)
}

func (suite *PlanHandlerTestSuite) TestUpdatePlan_ForbiddenForUsers() {
	payload, _ := json.Marshal(gin.H{"isActive": false})
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/admin/plans/STARTER", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString(), domain.RoleUser))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockPlanService.AssertNotCalled(suite.T(), "UpdatePlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PlanHandlerTestSuite) TestUpdatePlan_AdminSuccess() {
	adminID := uuid.NewString()
	updated := suite.starterPlan()
	updated.IsActive = false

	suite.mockPlanService.On("UpdatePlan", mock.Anything, domain.PlanStarter,
		mock.MatchedBy(func(r dto.UpdatePlanRequest) bool {
			return r.IsActive != nil && !*r.IsActive
		}), adminID).Return(&updated, nil).Once()

	payload, _ := json.Marshal(gin.H{"isActive": false})
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/admin/plans/STARTER", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(adminID, domain.RoleAdmin))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var body dto.PlanResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.False(body.IsActive)
	suite.mockPlanService.AssertExpectations(suite.T())
}

func TestPlanHandler(t *testing.T) {
	suite.Run(t, new(PlanHandlerTestSuite))
}
