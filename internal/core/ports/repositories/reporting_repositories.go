package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReportingRepository reads aggregates of POSTED journal lines. Nil bounds mean unbounded.
type ReportingRepository interface {
	// SumPostedLinesByAccount totals the debit and credit columns per account of a book
	// for entries dated within [from, to]. Accounts without lines are absent.
	SumPostedLinesByAccount(ctx context.Context, bookID string, from, to *time.Time) (map[string]domain.LineTotals, error)

	// SumPostedLinesForAccount totals one account's posted lines within [from, to].
	SumPostedLinesForAccount(ctx context.Context, accountID string, from, to *time.Time) (domain.LineTotals, error)

	// ListPostedLines returns up to limit posted lines of an account dated within [from, to],
	// ordered by entry date, posting date, entry id and line number, strictly after `after` when set.
	ListPostedLines(ctx context.Context, accountID string, from, to time.Time, after *domain.LedgerCursor, limit int) ([]domain.LedgerLine, error)
}
