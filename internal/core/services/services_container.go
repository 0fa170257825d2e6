package services

import (
	"github.com/budgetbook/backend/internal/core/ports/providers"
	portsrepo "github.com/budgetbook/backend/internal/core/ports/repositories"
	portssvc "github.com/budgetbook/backend/internal/core/ports/services"
	"github.com/budgetbook/backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, rateProvider providers.ExchangeRateProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Rates first, the ledger depends on it for normalization and display.
	container.Rates = NewRatesService(
		rateProvider,
		cfg.BaseCurrency,
		cfg.ConvertibleCurrencies,
		cfg.RatesTTL,
		cfg.RatesFetchTimeout,
	)

	container.Ledger = NewLedgerService(
		repos.AccountRepo,
		repos.TransactionRepo,
		repos.CategoryRepo,
		repos.UserRepo,
		container.Rates,
	)
	container.Taxonomy = NewTaxonomyService(repos.CategoryRepo)
	container.Planner = NewPlannerService(repos.PlanRepo, repos.CategoryRepo)
	container.Transfer = NewTransferService(repos.AccountRepo, repos.TransactionRepo)
	container.User = NewUserService(repos.UserRepo, cfg.BaseCurrency)

	return container
}
