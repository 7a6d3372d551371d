package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/core/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WithdrawalServiceTestSuite struct {
	suite.Suite
	mockWithdrawalRepo *MockWithdrawalRepository
	mockAccountRepo    *MockAccountRepository
	mockTxnRepo        *MockTransactionRepository
	service            portssvc.WithdrawalSvcFacade
	ctx                context.Context
}

func (suite *WithdrawalServiceTestSuite) SetupTest() {
	suite.mockWithdrawalRepo = new(MockWithdrawalRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewWithdrawalService(suite.mockWithdrawalRepo, suite.mockAccountRepo, suite.mockTxnRepo)
	suite.ctx = context.Background()
}

func (suite *WithdrawalServiceTestSuite) TestCreateWithdrawalReservesFunds() {
	userID := uuid.NewString()
	amount := decimal.NewFromInt(300)
	req := dto.CreateWithdrawalRequest{Amount: amount, Destination: "bank:GB33BUKB20201555555555"}
	account := &domain.Account{AccountID: uuid.NewString(), UserID: userID}

	suite.mockWithdrawalRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockWithdrawalRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockAccountRepo.On("FindAccountByUserIDForUpdate", suite.ctx, nil, userID).Return(account, nil)
	suite.mockAccountRepo.On("ApplyBalanceChangeInTx", suite.ctx, nil, account.AccountID,
		mock.MatchedBy(func(c portsrepo.BalanceChange) bool {
			return c.BalanceDelta.Equal(amount.Neg()) && c.InvestedDelta.IsZero() && c.InterestDelta.IsZero()
		}), userID, mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockWithdrawalRepo.On("SaveWithdrawalInTx", suite.ctx, nil,
		mock.MatchedBy(func(w domain.Withdrawal) bool {
			return w.Status == domain.WithdrawalPending && w.Amount.Equal(amount) && w.UserID == userID
		})).Return(nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Type == domain.TxnWithdrawal && txn.Amount.Equal(amount)
		})).Return(nil)
	suite.mockWithdrawalRepo.On("Commit", suite.ctx, nil).Return(nil)

	withdrawal, err := suite.service.CreateWithdrawal(suite.ctx, userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(withdrawal)
	suite.Equal(domain.WithdrawalPending, withdrawal.Status)
	suite.True(withdrawal.Amount.Equal(amount))
	suite.mockWithdrawalRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *WithdrawalServiceTestSuite) TestCreateWithdrawalRejectsNonPositiveAmount() {
	req := dto.CreateWithdrawalRequest{Amount: decimal.NewFromInt(-5), Destination: "bank:x"}

	withdrawal, err := suite.service.CreateWithdrawal(suite.ctx, uuid.NewString(), req)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Nil(withdrawal)
	suite.mockWithdrawalRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *WithdrawalServiceTestSuite) TestCreateWithdrawalInsufficientFunds() {
	userID := uuid.NewString()
	req := dto.CreateWithdrawalRequest{Amount: decimal.NewFromInt(300), Destination: "bank:x"}
	account := &domain.Account{AccountID: uuid.NewString(), UserID: userID}

	suite.mockWithdrawalRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockWithdrawalRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockAccountRepo.On("FindAccountByUserIDForUpdate", suite.ctx, nil, userID).Return(account, nil)
	suite.mockAccountRepo.On("ApplyBalanceChangeInTx", suite.ctx, nil, account.AccountID, mock.AnythingOfType("repositories.BalanceChange"), userID, mock.AnythingOfType("time.Time")).Return(apperrors.ErrInsufficientFunds)

	withdrawal, err := suite.service.CreateWithdrawal(suite.ctx, userID, req)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrInsufficientFunds))
	suite.Nil(withdrawal)
	suite.mockWithdrawalRepo.AssertNotCalled(suite.T(), "SaveWithdrawalInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockWithdrawalRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *WithdrawalServiceTestSuite) TestApproveWithdrawal() {
	withdrawalID := uuid.NewString()
	actorID := uuid.NewString()

	suite.mockWithdrawalRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockWithdrawalRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockWithdrawalRepo.On("ResolveWithdrawalInTx", suite.ctx, nil, withdrawalID, domain.WithdrawalApproved, actorID, mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockWithdrawalRepo.On("Commit", suite.ctx, nil).Return(nil)

	err := suite.service.ApproveWithdrawal(suite.ctx, withdrawalID, actorID)

	suite.Require().NoError(err)
	// Funds were debited at request time; approval touches no balances.
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ApplyBalanceChangeInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockWithdrawalRepo.AssertExpectations(suite.T())
}

func (suite *WithdrawalServiceTestSuite) TestRejectWithdrawalRefundsReservedAmount() {
	actorID := uuid.NewString()
	withdrawal := &domain.Withdrawal{
		WithdrawalID: uuid.NewString(),
		UserID:       uuid.NewString(),
		Amount:       decimal.NewFromInt(300),
		Status:       domain.WithdrawalPending,
	}
	account := &domain.Account{AccountID: uuid.NewString(), UserID: withdrawal.UserID}

	suite.mockWithdrawalRepo.On("FindWithdrawalByID", suite.ctx, withdrawal.WithdrawalID).Return(withdrawal, nil)
	suite.mockWithdrawalRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockWithdrawalRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockWithdrawalRepo.On("ResolveWithdrawalInTx", suite.ctx, nil, withdrawal.WithdrawalID, domain.WithdrawalRejected, actorID, mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockAccountRepo.On("FindAccountByUserIDForUpdate", suite.ctx, nil, withdrawal.UserID).Return(account, nil)
	suite.mockAccountRepo.On("ApplyBalanceChangeInTx", suite.ctx, nil, account.AccountID,
		mock.MatchedBy(func(c portsrepo.BalanceChange) bool {
			return c.BalanceDelta.Equal(withdrawal.Amount)
		}), actorID, mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Type == domain.TxnDeposit && txn.Amount.Equal(withdrawal.Amount)
		})).Return(nil)
	suite.mockWithdrawalRepo.On("Commit", suite.ctx, nil).Return(nil)

	err := suite.service.RejectWithdrawal(suite.ctx, withdrawal.WithdrawalID, actorID)

	suite.Require().NoError(err)
	suite.mockWithdrawalRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *WithdrawalServiceTestSuite) TestRejectWithdrawalAlreadyResolved() {
	withdrawalID := uuid.NewString()
	withdrawal := &domain.Withdrawal{
		WithdrawalID: withdrawalID,
		UserID:       uuid.NewString(),
		Amount:       decimal.NewFromInt(300),
		Status:       domain.WithdrawalApproved,
	}

	suite.mockWithdrawalRepo.On("FindWithdrawalByID", suite.ctx, withdrawalID).Return(withdrawal, nil)
	suite.mockWithdrawalRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockWithdrawalRepo.On("Rollback", suite.ctx, nil).Return(nil)
	suite.mockWithdrawalRepo.On("ResolveWithdrawalInTx", suite.ctx, nil, withdrawalID, domain.WithdrawalRejected, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(apperrors.ErrConflict)

	err := suite.service.RejectWithdrawal(suite.ctx, withdrawalID, uuid.NewString())

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrConflict))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ApplyBalanceChangeInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalServiceTestSuite))
}
