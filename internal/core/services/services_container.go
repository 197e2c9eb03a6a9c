package services

import (
	"github.com/SscSPs/ledger_engine/internal/core/matching"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithCategoryAccounts(cfg.CategoryAccounts),
	)
	container.Journal = NewJournalService(repos.JournalRepo, container.Account)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.AccountRepo)
	container.Reconciliation = NewReconciliationService(
		repos.ReconciliationRepo,
		repos.AccountRepo,
		WithMatcher(matching.NewMatcher(cfg.Matching)),
	)

	return container
}
