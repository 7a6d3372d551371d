package pgsql

import (
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:        newPgxUserRepository(dbPool),
		PlanRepo:        newPgxPlanRepository(dbPool),
		AccountRepo:     newPgxAccountRepository(dbPool),
		InvestmentRepo:  newPgxInvestmentRepository(dbPool),
		DepositRepo:     newPgxDepositRepository(dbPool),
		WithdrawalRepo:  newPgxWithdrawalRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		ResetTokenRepo:  newPgxResetTokenRepository(dbPool),
		JobLockRepo:     newPgxJobLockRepository(dbPool),
		AccrualRunRepo:  newPgxAccrualRunRepository(dbPool),
	}
}
