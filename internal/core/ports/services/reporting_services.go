package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// ReportingService defines operations for generating financial reports.
// A nil asOf includes every posted entry.
type ReportingService interface {
	// AccountBalance sums the posted lines of one account up to asOf in its normal-balance orientation.
	AccountBalance(ctx context.Context, bookID string, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// TrialBalance lists every account of the book with its balance in the debit or credit column.
	TrialBalance(ctx context.Context, bookID string, asOf *time.Time) (*domain.TrialBalanceReport, error)

	// BalanceSheet groups asset, liability and equity balances and adds retained earnings.
	BalanceSheet(ctx context.Context, bookID string, asOf *time.Time) (*domain.BalanceSheetReport, error)

	// ProfitAndLoss reports revenue and expense activity between two dates inclusive.
	ProfitAndLoss(ctx context.Context, bookID string, from, to time.Time) (*domain.PAndLReport, error)

	// GeneralLedger returns one page of an account's posted lines with running balances.
	GeneralLedger(ctx context.Context, bookID string, accountID string, params dto.GeneralLedgerParams) (*domain.GeneralLedgerPage, error)
}
