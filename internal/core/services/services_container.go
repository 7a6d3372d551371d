package services

import (
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/platform/config"
)

// NewServiceContainer wires all application services over the repository
// provider. Construction order follows the dependency graph: plans and
// accounts first, then the user service (which opens a ledger account on
// registration), then the request and accrual services on top.
func NewServiceContainer(repos portsrepo.RepositoryProvider, cfg *config.Config) *portssvc.ServiceContainer {
	planService := NewPlanService(repos.PlanRepo)
	accountService := NewAccountService(repos.AccountRepo, repos.TransactionRepo)
	userService := NewUserService(repos.UserRepo, accountService)

	depositService := NewDepositService(repos.DepositRepo, repos.AccountRepo, repos.TransactionRepo)
	withdrawalService := NewWithdrawalService(repos.WithdrawalRepo, repos.AccountRepo, repos.TransactionRepo)
	investmentService := NewInvestmentService(repos.InvestmentRepo, repos.AccountRepo, repos.TransactionRepo, planService)
	transactionService := NewTransactionService(repos.TransactionRepo)

	accrualService := NewAccrualService(
		repos.InvestmentRepo,
		repos.AccountRepo,
		repos.TransactionRepo,
		repos.JobLockRepo,
		repos.AccrualRunRepo,
		planService,
		cfg.AccrualLockTTL,
	)

	tokenService := NewTokenService(cfg, userService)
	authService := NewAuthService(cfg, repos.UserRepo, repos.ResetTokenRepo, repos.AccountRepo, repos.TransactionRepo)
	googleOAuthService := NewGoogleOAuthHandlerService(cfg)

	return &portssvc.ServiceContainer{
		User:               userService,
		Plan:               planService,
		Account:            accountService,
		Deposit:            depositService,
		Withdrawal:         withdrawalService,
		Investment:         investmentService,
		Transaction:        transactionService,
		Accrual:            accrualService,
		Auth:               authService,
		TokenService:       tokenService,
		GoogleOAuthHandler: googleOAuthService,
	}
}
