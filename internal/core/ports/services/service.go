package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	User               UserSvcFacade
	Plan               PlanSvcFacade
	Account            AccountSvcFacade
	Deposit            DepositSvcFacade
	Withdrawal         WithdrawalSvcFacade
	Investment         InvestmentSvcFacade
	Transaction        TransactionSvcFacade
	Accrual            AccrualSvcFacade
	Auth               AuthSvcFacade
	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
}
