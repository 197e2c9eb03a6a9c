package services

// ServiceContainer holds instances of all the application services.
// It is the entry point handlers and commands use to reach the core.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Journal        JournalSvcFacade
	Reporting      ReportingService
	Reconciliation ReconciliationSvcFacade
}
