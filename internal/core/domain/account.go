package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in chart-of-accounts order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// IsValid reports whether t is one of the five known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalBalanceFor returns the side on which an account of type t increases.
// Assets and expenses are debit-normal, everything else is credit-normal.
func NormalBalanceFor(t AccountType) Side {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// Account represents a ledger account inside a book.
// Accounts form a tree through ParentAccountID; children are looked up, never stored.
type Account struct {
	AccountID       string          `json:"accountID"`
	BookID          string          `json:"bookID"`
	Code            string          `json:"code"` // unique per book
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	ParentAccountID string          `json:"parentAccountID,omitempty"`
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	Balance         decimal.Decimal `json:"balance"` // posted balance in normal-balance orientation
	Version         int64           `json:"version"`
	AuditFields
}

// NormalBalance is the side on which the account increases.
func (a Account) NormalBalance() Side {
	return NormalBalanceFor(a.AccountType)
}
