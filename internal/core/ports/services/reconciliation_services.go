package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// ReconciliationReaderSvc defines read operations for reconciliations.
type ReconciliationReaderSvc interface {
	GetReconciliation(ctx context.Context, bookID string, reconciliationID string) (*domain.Reconciliation, error)

	// GetSummary reports items, unmatched statement lines and the current variance.
	GetSummary(ctx context.Context, bookID string, reconciliationID string) (*domain.ReconciliationSummary, error)
}

// ReconciliationWriterSvc defines the reconciliation workflow.
type ReconciliationWriterSvc interface {
	// StartReconciliation opens a reconciliation; an unknown account yields apperrors.ErrInvalidAccount.
	StartReconciliation(ctx context.Context, bookID string, req dto.StartReconciliationRequest, userID string) (*domain.Reconciliation, error)

	// ImportStatementLines validates and stores statement lines; a malformed line yields apperrors.ErrInvalidStatement.
	ImportStatementLines(ctx context.Context, bookID string, reconciliationID string, req dto.ImportStatementLinesRequest, userID string) ([]domain.BankStatementLine, error)

	// RunAutoMatch matches unmatched statement lines against unreconciled book transactions and persists the matches.
	RunAutoMatch(ctx context.Context, bookID string, reconciliationID string, userID string) (*domain.AutoMatchResult, error)

	// ManualMatch pairs a statement line with a transaction, overriding any automatic match.
	ManualMatch(ctx context.Context, bookID string, reconciliationID string, req dto.ManualMatchRequest, userID string) (*domain.ReconciliationItem, error)

	// CreateOutstandingItem records a book/bank difference that will not auto-match.
	CreateOutstandingItem(ctx context.Context, bookID string, reconciliationID string, req dto.CreateOutstandingItemRequest, userID string) (*domain.ReconciliationItem, error)

	// ClearItem marks an outstanding item as cleared.
	ClearItem(ctx context.Context, bookID string, reconciliationID string, itemID string, req dto.ClearItemRequest, userID string) (*domain.ReconciliationItem, error)

	// CompleteReconciliation freezes the reconciliation with its final variance.
	CompleteReconciliation(ctx context.Context, bookID string, reconciliationID string, userID string) (*domain.Reconciliation, error)
}

// ReconciliationSvcFacade combines all reconciliation service interfaces
type ReconciliationSvcFacade interface {
	ReconciliationReaderSvc
	ReconciliationWriterSvc
}
