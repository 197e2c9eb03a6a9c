package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus mirrors the journal_entries.status column.
type EntryStatus string

// JournalEntry represents a row of the journal_entries table.
type JournalEntry struct {
	EntryID         string      `db:"entry_id"`
	BookID          string      `db:"book_id"`
	EntryDate       time.Time   `db:"entry_date"`
	Description     string      `db:"description"`
	ReferenceNumber *string     `db:"reference_number"` // Nullable
	Status          EntryStatus `db:"status"`
	PostingDate     *time.Time  `db:"posting_date"`
	VoidDate        *time.Time  `db:"void_date"`
	AuditFields
}

// JournalLine represents a row of the journal_lines table.
type JournalLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	LineNumber  int             `db:"line_number"`
	AccountID   string          `db:"account_id"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Description *string         `db:"description"` // Nullable
}
