package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StartReconciliationRequest opens a reconciliation of one account against a statement.
type StartReconciliationRequest struct {
	AccountID      string          `json:"accountID" binding:"required"`
	StatementDate  time.Time       `json:"statementDate" binding:"required"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// StatementLineRequest is a statement line as delivered by the extraction step.
// Date and amount are checked by the service so a bad line reports which line is wrong.
type StatementLineRequest struct {
	Date        *time.Time       `json:"date"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        domain.Side      `json:"type"` // CREDIT deposit, DEBIT withdrawal, empty uses the amount sign
	Reference   string           `json:"reference"`
}

// ImportStatementLinesRequest carries a batch of statement lines.
type ImportStatementLinesRequest struct {
	Lines []StatementLineRequest `json:"lines" binding:"required,min=1"`
}

// ManualMatchRequest pairs a statement line with a book transaction chosen by a person.
type ManualMatchRequest struct {
	StatementLineID string `json:"statementLineID" binding:"required"`
	TransactionID   string `json:"transactionID" binding:"required"`
}

// CreateOutstandingItemRequest records a known difference between book and bank.
type CreateOutstandingItemRequest struct {
	Kind          domain.OutstandingKind `json:"kind" binding:"required,oneof=OUTSTANDING_CHECK DEPOSIT_IN_TRANSIT BANK_CHARGE OTHER"`
	Description   string                 `json:"description" binding:"required"`
	Amount        decimal.Decimal        `json:"amount"` // signed: deposits positive, withdrawals negative
	TransactionID *string                `json:"transactionID"`
}

// ClearItemRequest marks an outstanding item as cleared. A missing date means today.
type ClearItemRequest struct {
	ClearingDate *time.Time `json:"clearingDate"`
}

// ToStatementLines converts request lines into domain lines without validating them.
func ToStatementLines(reqs []StatementLineRequest) []domain.BankStatementLine {
	lines := make([]domain.BankStatementLine, len(reqs))
	for i, r := range reqs {
		line := domain.BankStatementLine{
			Sequence:    i + 1,
			Description: r.Description,
			Direction:   r.Type,
			Reference:   r.Reference,
		}
		if r.Date != nil {
			line.Date = *r.Date
		}
		if r.Amount != nil {
			line.Amount = *r.Amount
		}
		lines[i] = line
	}
	return lines
}
