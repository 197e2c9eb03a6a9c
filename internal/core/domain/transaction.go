package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side indicates whether an amount is a Debit or a Credit.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// BookTransaction is a posted journal line on a reconciled account, as seen by the matcher.
// A debit to the (asset) bank account is money in.
type BookTransaction struct {
	TransactionID string          `json:"transactionID"` // journal line id
	EntryID       string          `json:"entryID"`
	AccountID     string          `json:"accountID"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"` // always non-negative
	Direction     Side            `json:"direction"`
}

// SignedAmount returns the amount as cash movement: deposits positive, withdrawals negative.
func (t BookTransaction) SignedAmount() decimal.Decimal {
	if t.Direction == Credit {
		return t.Amount.Abs().Neg()
	}
	return t.Amount.Abs()
}
