package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UserRepo        UserRepositoryFacade
	PlanRepo        PlanRepositoryFacade
	AccountRepo     AccountRepositoryWithTx
	InvestmentRepo  InvestmentRepositoryWithTx
	DepositRepo     DepositRepositoryWithTx
	WithdrawalRepo  WithdrawalRepositoryWithTx
	TransactionRepo TransactionRepositoryFacade
	ResetTokenRepo  ResetTokenRepository
	JobLockRepo     JobLockRepository
	AccrualRunRepo  AccrualRunRepository
}
