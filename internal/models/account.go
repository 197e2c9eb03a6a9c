package models

import (
	"github.com/shopspring/decimal"
)

// AccountType mirrors the account_type column.
type AccountType string

// Account represents a row of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	BookID          string          `db:"book_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     AccountType     `db:"account_type"`
	ParentAccountID *string         `db:"parent_account_id"` // Nullable
	Description     string          `db:"description"`
	IsActive        bool            `db:"is_active"`
	Balance         decimal.Decimal `db:"balance"`
	Version         int64           `db:"version"`
	AuditFields
}
