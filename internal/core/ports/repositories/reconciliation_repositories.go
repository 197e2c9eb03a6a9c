package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationReader defines read operations for reconciliation data
type ReconciliationReader interface {
	FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.Reconciliation, error)

	// ListStatementLines returns statement lines in statement order.
	ListStatementLines(ctx context.Context, reconciliationID string, onlyUnmatched bool) ([]domain.BankStatementLine, error)

	FindStatementLineByID(ctx context.Context, lineID string) (*domain.BankStatementLine, error)

	// ListItems returns the items of a reconciliation in creation order.
	ListItems(ctx context.Context, reconciliationID string) ([]domain.ReconciliationItem, error)

	FindItemByID(ctx context.Context, itemID string) (*domain.ReconciliationItem, error)

	// ListUnreconciledTransactions returns posted lines of the account dated on or before asOf
	// that no match item of any reconciliation has claimed, ordered by date then line.
	ListUnreconciledTransactions(ctx context.Context, accountID string, asOf time.Time) ([]domain.BookTransaction, error)

	// FindTransactionByID returns a posted line of the account as a book transaction.
	FindTransactionByID(ctx context.Context, accountID string, transactionID string) (*domain.BookTransaction, error)
}

// ReconciliationWriter defines write operations for reconciliation data
type ReconciliationWriter interface {
	SaveReconciliation(ctx context.Context, rec domain.Reconciliation) error

	// CompleteReconciliation sets the status to COMPLETED and freezes the variance.
	CompleteReconciliation(ctx context.Context, reconciliationID string, variance decimal.Decimal, userID string, at time.Time) error

	// SaveStatementLines appends lines to a reconciliation.
	SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) error

	// SaveMatches atomically stores match items and flags their statement lines as matched.
	// Items whose statement line is already matched, or whose transaction is already claimed,
	// are skipped. It returns the items actually stored.
	SaveMatches(ctx context.Context, items []domain.ReconciliationItem) ([]domain.ReconciliationItem, error)

	// SaveManualMatch stores a MATCHED_MANUAL item, replacing any match of the same statement line
	// or transaction inside the reconciliation. If the same pair is already matched the existing
	// item is returned unchanged. A transaction claimed by another reconciliation yields apperrors.ErrConflict.
	SaveManualMatch(ctx context.Context, item domain.ReconciliationItem) (*domain.ReconciliationItem, error)

	// SaveItem stores an outstanding item.
	SaveItem(ctx context.Context, item domain.ReconciliationItem) error

	// ClearItem marks an item cleared as of clearingDate.
	ClearItem(ctx context.Context, itemID string, clearingDate time.Time) error
}

// ReconciliationRepositoryFacade combines all reconciliation repository interfaces
type ReconciliationRepositoryFacade interface {
	ReconciliationReader
	ReconciliationWriter
}
