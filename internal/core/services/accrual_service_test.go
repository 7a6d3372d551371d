package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const accrualJobName = "daily_interest_accrual"

type AccrualServiceTestSuite struct {
	suite.Suite
	mockInvestmentRepo *MockInvestmentRepository
	mockAccountRepo    *MockAccountRepository
	mockTxnRepo        *MockTransactionRepository
	mockJobLockRepo    *MockJobLockRepository
	mockRunRepo        *MockAccrualRunRepository
	mockPlanSvc        *MockPlanReaderSvc
	service            portssvc.AccrualSvcFacade
	ctx                context.Context
}

func (suite *AccrualServiceTestSuite) SetupTest() {
	suite.mockInvestmentRepo = new(MockInvestmentRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockJobLockRepo = new(MockJobLockRepository)
	suite.mockRunRepo = new(MockAccrualRunRepository)
	suite.mockPlanSvc = new(MockPlanReaderSvc)
	suite.service = services.NewAccrualService(
		suite.mockInvestmentRepo,
		suite.mockAccountRepo,
		suite.mockTxnRepo,
		suite.mockJobLockRepo,
		suite.mockRunRepo,
		suite.mockPlanSvc,
		time.Hour,
	)
	suite.ctx = context.Background()
}

// expectCycleScaffolding wires the lease and run bookkeeping every
// successful cycle performs regardless of what the batch contains.
func (suite *AccrualServiceTestSuite) expectCycleScaffolding() {
	suite.mockJobLockRepo.On("AcquireLock", suite.ctx, accrualJobName, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockJobLockRepo.On("ReleaseLock", suite.ctx, accrualJobName, mock.AnythingOfType("string")).Return(nil)
	suite.mockRunRepo.On("SaveRun", suite.ctx, mock.AnythingOfType("domain.AccrualRun")).Return(nil)
	suite.mockRunRepo.On("FinishRun", suite.ctx, mock.AnythingOfType("domain.AccrualRun")).Return(nil)
}

func (suite *AccrualServiceTestSuite) goldPlan() *domain.Plan {
	return &domain.Plan{
		PlanKey:      domain.PlanGold,
		Name:         "Gold",
		MinAmount:    decimal.NewFromInt(100),
		MaxAmount:    decimal.NewFromInt(100000),
		InterestRate: decimal.NewFromInt(15),
		DurationDays: 20,
		IsActive:     true,
	}
}

func (suite *AccrualServiceTestSuite) activeInvestment(startedDaysAgo int) domain.Investment {
	start := time.Now().UTC().AddDate(0, 0, -startedDaysAgo)
	return domain.Investment{
		InvestmentID: uuid.NewString(),
		UserID:       uuid.NewString(),
		PlanKey:      domain.PlanGold,
		Principal:    decimal.NewFromInt(1000),
		Status:       domain.InvestmentActive,
		StartDate:    &start,
		InterestPaid: decimal.Zero,
	}
}

func decimalEqual(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleCreditsOneDay() {
	inv := suite.activeInvestment(5)
	account := &domain.Account{AccountID: uuid.NewString(), UserID: inv.UserID}

	// 15% of 1000 over 20 days pays 7.5 per day.
	daily := decimal.NewFromFloat(7.5)

	suite.expectCycleScaffolding()
	suite.mockInvestmentRepo.On("ListActiveInvestments", suite.ctx).Return([]domain.Investment{inv}, nil)
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanGold).Return(suite.goldPlan(), nil)
	suite.mockInvestmentRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockInvestmentRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockAccountRepo.On("FindAccountByUserIDForUpdate", suite.ctx, nil, inv.UserID).Return(account, nil)
	suite.mockAccountRepo.On("ApplyBalanceChangeInTx", suite.ctx, nil, account.AccountID,
		mock.MatchedBy(func(c portsrepo.BalanceChange) bool {
			return c.BalanceDelta.Equal(daily) && c.InterestDelta.Equal(daily) && c.InvestedDelta.IsZero()
		}), "system", mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Type == domain.TxnInterest && txn.Amount.Equal(daily) && txn.UserID == inv.UserID
		})).Return(nil)
	suite.mockInvestmentRepo.On("ApplyAccrualInTx", suite.ctx, nil, inv.InvestmentID, decimalEqual(daily), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockInvestmentRepo.On("Commit", suite.ctx, nil).Return(nil)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().NoError(err)
	suite.Require().NotNil(run)
	suite.Equal(1, run.Processed)
	suite.Equal(1, run.Credited)
	suite.Equal(0, run.Closed)
	suite.Equal(0, run.Failed)
	suite.True(run.TotalDistributed.Equal(daily), "distributed %s", run.TotalDistributed)
	suite.mockInvestmentRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleSkipsRecordAlreadyPaidToday() {
	inv := suite.activeInvestment(5)
	touched := time.Now().UTC()
	inv.LastAccruedAt = &touched

	suite.expectCycleScaffolding()
	suite.mockInvestmentRepo.On("ListActiveInvestments", suite.ctx).Return([]domain.Investment{inv}, nil)
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanGold).Return(suite.goldPlan(), nil)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(1, run.Processed)
	suite.Equal(0, run.Credited)
	suite.True(run.TotalDistributed.IsZero())
	suite.mockInvestmentRepo.AssertNotCalled(suite.T(), "Begin", suite.ctx)
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleMaturedRecordClosesDespiteSameDayAccrual() {
	// A record that got its daily payment earlier today and has since
	// passed its end date must still be closed and paid its remainder.
	inv := suite.activeInvestment(25)
	inv.InterestPaid = decimal.NewFromFloat(142.5)
	touched := time.Now().UTC()
	inv.LastAccruedAt = &touched
	account := &domain.Account{AccountID: uuid.NewString(), UserID: inv.UserID}

	remainder := decimal.NewFromFloat(7.5)

	suite.expectCycleScaffolding()
	suite.mockInvestmentRepo.On("ListActiveInvestments", suite.ctx).Return([]domain.Investment{inv}, nil)
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanGold).Return(suite.goldPlan(), nil)
	suite.mockInvestmentRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockInvestmentRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockAccountRepo.On("FindAccountByUserIDForUpdate", suite.ctx, nil, inv.UserID).Return(account, nil)
	suite.mockAccountRepo.On("ApplyBalanceChangeInTx", suite.ctx, nil, account.AccountID,
		mock.MatchedBy(func(c portsrepo.BalanceChange) bool {
			return c.BalanceDelta.Equal(remainder) && c.InterestDelta.Equal(remainder)
		}), "system", mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Type == domain.TxnInterest && txn.Amount.Equal(remainder)
		})).Return(nil)
	suite.mockInvestmentRepo.On("CloseInvestmentInTx", suite.ctx, nil, inv.InvestmentID, decimalEqual(remainder), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockInvestmentRepo.On("Commit", suite.ctx, nil).Return(nil)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(1, run.Closed)
	suite.Equal(1, run.Credited)
	suite.True(run.TotalDistributed.Equal(remainder))
	suite.mockInvestmentRepo.AssertNotCalled(suite.T(), "ApplyAccrualInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockInvestmentRepo.AssertExpectations(suite.T())
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleMaturityPaysRemainderAndCloses() {
	inv := suite.activeInvestment(21)
	inv.InterestPaid = decimal.NewFromFloat(142.5)
	account := &domain.Account{AccountID: uuid.NewString(), UserID: inv.UserID}

	// Full-term interest is 150; 142.5 already paid leaves 7.5 at maturity.
	remainder := decimal.NewFromFloat(7.5)

	suite.expectCycleScaffolding()
	suite.mockInvestmentRepo.On("ListActiveInvestments", suite.ctx).Return([]domain.Investment{inv}, nil)
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanGold).Return(suite.goldPlan(), nil)
	suite.mockInvestmentRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockInvestmentRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockAccountRepo.On("FindAccountByUserIDForUpdate", suite.ctx, nil, inv.UserID).Return(account, nil)
	suite.mockAccountRepo.On("ApplyBalanceChangeInTx", suite.ctx, nil, account.AccountID,
		mock.MatchedBy(func(c portsrepo.BalanceChange) bool {
			return c.BalanceDelta.Equal(remainder) && c.InterestDelta.Equal(remainder)
		}), "system", mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Type == domain.TxnInterest && txn.Amount.Equal(remainder)
		})).Return(nil)
	suite.mockInvestmentRepo.On("CloseInvestmentInTx", suite.ctx, nil, inv.InvestmentID, decimalEqual(remainder), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockInvestmentRepo.On("Commit", suite.ctx, nil).Return(nil)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(1, run.Closed)
	suite.Equal(1, run.Credited)
	suite.True(run.TotalDistributed.Equal(remainder))
	suite.mockInvestmentRepo.AssertNotCalled(suite.T(), "ApplyAccrualInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockInvestmentRepo.AssertExpectations(suite.T())
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleMaturityOverpaidClampsToZero() {
	inv := suite.activeInvestment(25)
	inv.InterestPaid = decimal.NewFromInt(160)

	suite.expectCycleScaffolding()
	suite.mockInvestmentRepo.On("ListActiveInvestments", suite.ctx).Return([]domain.Investment{inv}, nil)
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanGold).Return(suite.goldPlan(), nil)
	suite.mockInvestmentRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockInvestmentRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockInvestmentRepo.On("CloseInvestmentInTx", suite.ctx, nil, inv.InvestmentID, decimalEqual(decimal.Zero), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockInvestmentRepo.On("Commit", suite.ctx, nil).Return(nil)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(1, run.Closed)
	suite.Equal(0, run.Credited)
	suite.True(run.TotalDistributed.IsZero())
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByUserIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleClosesRecordWithMissingPlan() {
	inv := suite.activeInvestment(5)

	suite.expectCycleScaffolding()
	suite.mockInvestmentRepo.On("ListActiveInvestments", suite.ctx).Return([]domain.Investment{inv}, nil)
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanGold).Return(nil, apperrors.ErrNotFound)
	suite.mockInvestmentRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockInvestmentRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockInvestmentRepo.On("CloseInvestmentInTx", suite.ctx, nil, inv.InvestmentID, decimalEqual(decimal.Zero), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Type == domain.TxnSecurity && txn.Amount.IsZero()
		})).Return(nil)
	suite.mockInvestmentRepo.On("Commit", suite.ctx, nil).Return(nil)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(1, run.Closed)
	suite.Equal(0, run.Failed)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleClosesActiveRecordWithoutStartDate() {
	inv := suite.activeInvestment(5)
	inv.StartDate = nil

	suite.expectCycleScaffolding()
	suite.mockInvestmentRepo.On("ListActiveInvestments", suite.ctx).Return([]domain.Investment{inv}, nil)
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanGold).Return(suite.goldPlan(), nil)
	suite.mockInvestmentRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockInvestmentRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockInvestmentRepo.On("CloseInvestmentInTx", suite.ctx, nil, inv.InvestmentID, decimalEqual(decimal.Zero), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil, mock.AnythingOfType("domain.Transaction")).Return(nil)
	suite.mockInvestmentRepo.On("Commit", suite.ctx, nil).Return(nil)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(1, run.Closed)
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleReturnsConflictWhenLockHeld() {
	suite.mockJobLockRepo.On("AcquireLock", suite.ctx, accrualJobName, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(apperrors.ErrConflict)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrConflict))
	suite.Nil(run)
	suite.mockRunRepo.AssertNotCalled(suite.T(), "SaveRun", mock.Anything, mock.Anything)
	suite.mockJobLockRepo.AssertNotCalled(suite.T(), "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccrualServiceTestSuite) TestRunAccrualCycleContinuesPastFailedRecord() {
	broken := suite.activeInvestment(5)
	broken.PlanKey = domain.PlanSilver
	healthy := suite.activeInvestment(5)
	account := &domain.Account{AccountID: uuid.NewString(), UserID: healthy.UserID}
	daily := decimal.NewFromFloat(7.5)

	suite.expectCycleScaffolding()
	suite.mockInvestmentRepo.On("ListActiveInvestments", suite.ctx).Return([]domain.Investment{broken, healthy}, nil)
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanSilver).Return(nil, errors.New("connection reset"))
	suite.mockPlanSvc.On("GetPlan", suite.ctx, domain.PlanGold).Return(suite.goldPlan(), nil)
	suite.mockInvestmentRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockInvestmentRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockAccountRepo.On("FindAccountByUserIDForUpdate", suite.ctx, nil, healthy.UserID).Return(account, nil)
	suite.mockAccountRepo.On("ApplyBalanceChangeInTx", suite.ctx, nil, account.AccountID, mock.AnythingOfType("repositories.BalanceChange"), "system", mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil, mock.AnythingOfType("domain.Transaction")).Return(nil)
	suite.mockInvestmentRepo.On("ApplyAccrualInTx", suite.ctx, nil, healthy.InvestmentID, decimalEqual(daily), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockInvestmentRepo.On("Commit", suite.ctx, nil).Return(nil)

	run, err := suite.service.RunAccrualCycle(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(2, run.Processed)
	suite.Equal(1, run.Failed)
	suite.Equal(1, run.Credited)
	suite.True(run.TotalDistributed.Equal(daily))
}

func (suite *AccrualServiceTestSuite) TestLatestRun() {
	finished := time.Now().UTC()
	expected := &domain.AccrualRun{
		RunID:            uuid.NewString(),
		StartedAt:        finished.Add(-time.Minute),
		FinishedAt:       &finished,
		Processed:        3,
		Credited:         2,
		TotalDistributed: decimal.NewFromInt(15),
	}
	suite.mockRunRepo.On("FindLatestRun", suite.ctx).Return(expected, nil)

	run, err := suite.service.LatestRun(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(expected, run)
	suite.mockRunRepo.AssertExpectations(suite.T())
}

func TestAccrualServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccrualServiceTestSuite))
}
