package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reconciliation represents a row of the reconciliations table.
type Reconciliation struct {
	ReconciliationID string          `db:"reconciliation_id"`
	BookID           string          `db:"book_id"`
	AccountID        string          `db:"account_id"`
	StatementDate    time.Time       `db:"statement_date"`
	OpeningBalance   decimal.Decimal `db:"opening_balance"`
	ClosingBalance   decimal.Decimal `db:"closing_balance"`
	Status           string          `db:"status"`
	Variance         decimal.Decimal `db:"variance"`
	CompletedAt      *time.Time      `db:"completed_at"`
	AuditFields
}

// StatementLine represents a row of the bank_statement_lines table.
type StatementLine struct {
	LineID               string          `db:"line_id"`
	ReconciliationID     string          `db:"reconciliation_id"`
	Sequence             int             `db:"sequence"`
	LineDate             time.Time       `db:"line_date"`
	Description          string          `db:"description"`
	Amount               decimal.Decimal `db:"amount"`
	Direction            *string         `db:"direction"` // Nullable: DEBIT, CREDIT or unset
	Reference            *string         `db:"reference"`
	IsMatched            bool            `db:"is_matched"`
	MatchedTransactionID *string         `db:"matched_transaction_id"`
}

// ReconciliationItem represents a row of the reconciliation_items table.
type ReconciliationItem struct {
	ItemID           string          `db:"item_id"`
	ReconciliationID string          `db:"reconciliation_id"`
	ItemType         string          `db:"item_type"`
	StatementLineID  *string         `db:"statement_line_id"`
	TransactionID    *string         `db:"transaction_id"`
	OutstandingKind  *string         `db:"outstanding_kind"`
	Description      string          `db:"description"`
	Amount           decimal.Decimal `db:"amount"`
	MatchScore       float64         `db:"match_score"`
	IsCleared        bool            `db:"is_cleared"`
	ClearingDate     *time.Time      `db:"clearing_date"`
	CreatedAt        time.Time       `db:"created_at"`
	CreatedBy        string          `db:"created_by"`
}
