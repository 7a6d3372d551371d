package services_test

import (
	"context"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceChangeInTx(ctx context.Context, tx pgx.Tx, accountID string, change portsrepo.BalanceChange, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, accountID, change, actorID, now)
	return args.Error(0)
}

var _ portsrepo.AccountRepositoryWithTx = (*MockAccountRepository)(nil)

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListTransactionsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumAmountsByUser(ctx context.Context, userID string) (map[domain.TransactionType]decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.TransactionType]decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

// --- Mock InvestmentRepository ---

type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockInvestmentRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockInvestmentRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockInvestmentRepository) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	args := m.Called(ctx, investmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListInvestmentsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Investment, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListActiveInvestments(ctx context.Context) ([]domain.Investment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListPendingInvestments(ctx context.Context, limit int, offset int) ([]domain.Investment, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) SummarizeInvestmentsByUser(ctx context.Context, userID string) ([]domain.InvestmentSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvestmentSummary), args.Error(1)
}

func (m *MockInvestmentRepository) SaveInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error {
	args := m.Called(ctx, tx, investment)
	return args.Error(0)
}

func (m *MockInvestmentRepository) ActivateInvestment(ctx context.Context, investmentID string, startDate time.Time, actorID string) error {
	args := m.Called(ctx, investmentID, startDate, actorID)
	return args.Error(0)
}

func (m *MockInvestmentRepository) CancelInvestmentInTx(ctx context.Context, tx pgx.Tx, investmentID string, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, investmentID, actorID, now)
	return args.Error(0)
}

func (m *MockInvestmentRepository) ApplyAccrualInTx(ctx context.Context, tx pgx.Tx, investmentID string, interestDelta decimal.Decimal, accruedAt time.Time) error {
	args := m.Called(ctx, tx, investmentID, interestDelta, accruedAt)
	return args.Error(0)
}

func (m *MockInvestmentRepository) CloseInvestmentInTx(ctx context.Context, tx pgx.Tx, investmentID string, finalInterest decimal.Decimal, closedAt time.Time) error {
	args := m.Called(ctx, tx, investmentID, finalInterest, closedAt)
	return args.Error(0)
}

var _ portsrepo.InvestmentRepositoryWithTx = (*MockInvestmentRepository)(nil)

// --- Mock DepositRepository ---

type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockDepositRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDepositRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockDepositRepository) FindDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error) {
	args := m.Called(ctx, depositID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}

func (m *MockDepositRepository) ListDepositsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Deposit, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deposit), args.Error(1)
}

func (m *MockDepositRepository) ListPendingDeposits(ctx context.Context, limit int, offset int) ([]domain.Deposit, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deposit), args.Error(1)
}

func (m *MockDepositRepository) SaveDeposit(ctx context.Context, deposit domain.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockDepositRepository) ResolveDepositInTx(ctx context.Context, tx pgx.Tx, depositID string, status domain.DepositStatus, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, depositID, status, actorID, now)
	return args.Error(0)
}

var _ portsrepo.DepositRepositoryWithTx = (*MockDepositRepository)(nil)

// --- Mock WithdrawalRepository ---

type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockWithdrawalRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) FindWithdrawalByID(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, withdrawalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ListWithdrawalsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.Withdrawal, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ListPendingWithdrawals(ctx context.Context, limit int, offset int) ([]domain.Withdrawal, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) SaveWithdrawalInTx(ctx context.Context, tx pgx.Tx, withdrawal domain.Withdrawal) error {
	args := m.Called(ctx, tx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) ResolveWithdrawalInTx(ctx context.Context, tx pgx.Tx, withdrawalID string, status domain.WithdrawalStatus, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, withdrawalID, status, actorID, now)
	return args.Error(0)
}

var _ portsrepo.WithdrawalRepositoryWithTx = (*MockWithdrawalRepository)(nil)

// --- Mock PlanRepository ---

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindPlanByKey(ctx context.Context, planKey domain.PlanKey) (*domain.Plan, error) {
	args := m.Called(ctx, planKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) UpsertPlans(ctx context.Context, plans []domain.Plan) error {
	args := m.Called(ctx, plans)
	return args.Error(0)
}

func (m *MockPlanRepository) UpdatePlan(ctx context.Context, plan domain.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

var _ portsrepo.PlanRepositoryFacade = (*MockPlanRepository)(nil)

// --- Mock JobLockRepository ---

type MockJobLockRepository struct {
	mock.Mock
}

func (m *MockJobLockRepository) AcquireLock(ctx context.Context, jobName string, holderID string, lockedUntil time.Time) error {
	args := m.Called(ctx, jobName, holderID, lockedUntil)
	return args.Error(0)
}

func (m *MockJobLockRepository) ReleaseLock(ctx context.Context, jobName string, holderID string) error {
	args := m.Called(ctx, jobName, holderID)
	return args.Error(0)
}

var _ portsrepo.JobLockRepository = (*MockJobLockRepository)(nil)

// --- Mock AccrualRunRepository ---

type MockAccrualRunRepository struct {
	mock.Mock
}

func (m *MockAccrualRunRepository) SaveRun(ctx context.Context, run domain.AccrualRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockAccrualRunRepository) FinishRun(ctx context.Context, run domain.AccrualRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockAccrualRunRepository) FindLatestRun(ctx context.Context) (*domain.AccrualRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccrualRun), args.Error(1)
}

var _ portsrepo.AccrualRunRepository = (*MockAccrualRunRepository)(nil)

// --- Mock PlanReaderSvc ---

type MockPlanReaderSvc struct {
	mock.Mock
}

func (m *MockPlanReaderSvc) GetPlan(ctx context.Context, planKey domain.PlanKey) (*domain.Plan, error) {
	args := m.Called(ctx, planKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanReaderSvc) ListPlans(ctx context.Context, includeInactive bool) ([]domain.Plan, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Plan), args.Error(1)
}

var _ portssvc.PlanReaderSvc = (*MockPlanReaderSvc)(nil)

// --- Mock AccountWriterSvc ---

type MockAccountWriterSvc struct {
	mock.Mock
}

func (m *MockAccountWriterSvc) CreateAccountForUser(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountWriterSvc = (*MockAccountWriterSvc)(nil)

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByGoogleSubjectID(ctx context.Context, subjectID string) (*domain.User, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindPasswordHash(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) FindRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User, passwordHash string) error {
	args := m.Called(ctx, user, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string, now time.Time) error {
	args := m.Called(ctx, userID, passwordHash, now)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiry time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiry)
	return args.Error(0)
}

func (m *MockUserRepository) LinkGoogleSubject(ctx context.Context, userID string, subjectID string, now time.Time) error {
	args := m.Called(ctx, userID, subjectID, now)
	return args.Error(0)
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

// --- Mock ResetTokenRepository ---

type MockResetTokenRepository struct {
	mock.Mock
}

func (m *MockResetTokenRepository) SaveToken(ctx context.Context, token domain.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockResetTokenRepository) FindTokenByID(ctx context.Context, tokenID string) (*domain.PasswordResetToken, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordResetToken), args.Error(1)
}

func (m *MockResetTokenRepository) ConsumeToken(ctx context.Context, tokenID string, now time.Time) error {
	args := m.Called(ctx, tokenID, now)
	return args.Error(0)
}

func (m *MockResetTokenRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

var _ portsrepo.ResetTokenRepository = (*MockResetTokenRepository)(nil)

// --- Mock UserService ---

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actorID string) (*domain.User, error) {
	args := m.Called(ctx, userID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpsertGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, email string, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) StoreRefreshTokenHash(ctx context.Context, userID string, tokenHash string, expiry time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiry)
	return args.Error(0)
}

func (m *MockUserService) GetRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)
