package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the lifecycle state of a reconciliation.
type ReconciliationStatus string

const (
	ReconciliationInProgress ReconciliationStatus = "IN_PROGRESS"
	ReconciliationCompleted  ReconciliationStatus = "COMPLETED"
)

// ItemType classifies a reconciliation item.
type ItemType string

const (
	MatchedExact  ItemType = "MATCHED_EXACT"
	MatchedNear   ItemType = "MATCHED_NEAR"
	MatchedFuzzy  ItemType = "MATCHED_FUZZY"
	MatchedManual ItemType = "MATCHED_MANUAL"
	Outstanding   ItemType = "OUTSTANDING"
)

// IsMatch reports whether the item pairs a statement line with a book transaction.
func (t ItemType) IsMatch() bool {
	switch t {
	case MatchedExact, MatchedNear, MatchedFuzzy, MatchedManual:
		return true
	}
	return false
}

// OutstandingKind says why an item is outstanding.
type OutstandingKind string

const (
	OutstandingCheck OutstandingKind = "OUTSTANDING_CHECK"
	DepositInTransit OutstandingKind = "DEPOSIT_IN_TRANSIT"
	BankCharge       OutstandingKind = "BANK_CHARGE"
	OtherOutstanding OutstandingKind = "OTHER"
)

// IsValid reports whether k is a known outstanding kind.
func (k OutstandingKind) IsValid() bool {
	switch k {
	case OutstandingCheck, DepositInTransit, BankCharge, OtherOutstanding:
		return true
	}
	return false
}

// BankStatementLine is one row of an imported bank statement.
type BankStatementLine struct {
	LineID               string          `json:"lineID"`
	ReconciliationID     string          `json:"reconciliationID"`
	Sequence             int             `json:"sequence"` // position in the statement
	Date                 time.Time       `json:"date"`
	Description          string          `json:"description"`
	Amount               decimal.Decimal `json:"amount"`
	Direction            Side            `json:"direction,omitempty"` // CREDIT is a deposit, DEBIT a withdrawal
	Reference            string          `json:"reference,omitempty"`
	IsMatched            bool            `json:"isMatched"`
	MatchedTransactionID string          `json:"matchedTransactionID,omitempty"`
}

// SignedAmount returns the line as cash movement: deposits positive, withdrawals negative.
// Without a direction the sign of Amount is used as-is.
func (l BankStatementLine) SignedAmount() decimal.Decimal {
	switch l.Direction {
	case Credit:
		return l.Amount.Abs()
	case Debit:
		return l.Amount.Abs().Neg()
	default:
		return l.Amount
	}
}

// Reconciliation compares one account's book activity against a bank statement.
type Reconciliation struct {
	ReconciliationID string               `json:"reconciliationID"`
	BookID           string               `json:"bookID"`
	AccountID        string               `json:"accountID"`
	StatementDate    time.Time            `json:"statementDate"`
	OpeningBalance   decimal.Decimal      `json:"openingBalance"`
	ClosingBalance   decimal.Decimal      `json:"closingBalance"`
	Status           ReconciliationStatus `json:"status"`
	Variance         decimal.Decimal      `json:"variance"`
	CompletedAt      *time.Time           `json:"completedAt,omitempty"`
	AuditFields
}

// ReconciliationItem is either a match between a statement line and a book transaction, or an outstanding item.
type ReconciliationItem struct {
	ItemID           string          `json:"itemID"`
	ReconciliationID string          `json:"reconciliationID"`
	ItemType         ItemType        `json:"itemType"`
	StatementLineID  string          `json:"statementLineID,omitempty"`
	TransactionID    string          `json:"transactionID,omitempty"`
	OutstandingKind  OutstandingKind `json:"outstandingKind,omitempty"`
	Description      string          `json:"description,omitempty"`
	Amount           decimal.Decimal `json:"amount"` // signed cash movement
	MatchScore       float64         `json:"matchScore"`
	IsCleared        bool            `json:"isCleared"`
	ClearingDate     *time.Time      `json:"clearingDate,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
}

// Match pairs a statement line with a book transaction found by the matcher.
type Match struct {
	StatementLine BankStatementLine `json:"statementLine"`
	Transaction   BookTransaction   `json:"transaction"`
	Type          ItemType          `json:"type"`
	Score         float64           `json:"score"`
	Similarity    float64           `json:"similarity"`
	DayDistance   int               `json:"dayDistance"`
}

// AutoMatchResult is the outcome of one automatic matching pass.
type AutoMatchResult struct {
	Matches                 []Match             `json:"matches"`
	UnmatchedStatementLines []BankStatementLine `json:"unmatchedStatementLines"`
	UnmatchedTransactions   []BookTransaction   `json:"unmatchedTransactions"`
	Variance                decimal.Decimal     `json:"variance"`
}

// ReconciliationSummary reports the current state of a reconciliation.
type ReconciliationSummary struct {
	Reconciliation          Reconciliation       `json:"reconciliation"`
	Items                   []ReconciliationItem `json:"items"`
	UnmatchedStatementLines []BankStatementLine  `json:"unmatchedStatementLines"`
	MatchedTotal            decimal.Decimal      `json:"matchedTotal"`
	OutstandingTotal        decimal.Decimal      `json:"outstandingTotal"` // uncleared outstanding items only
	ExpectedMovement        decimal.Decimal      `json:"expectedMovement"` // closing minus opening
	Variance                decimal.Decimal      `json:"variance"`
}
