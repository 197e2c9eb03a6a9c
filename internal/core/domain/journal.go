package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft  EntryStatus = "DRAFT"
	Posted EntryStatus = "POSTED"
	Void   EntryStatus = "VOID"
)

// IsValid reports whether s is a known status.
func (s EntryStatus) IsValid() bool {
	return s == Draft || s == Posted || s == Void
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// The only moves are DRAFT -> POSTED and POSTED -> VOID.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case Draft:
		return next == Posted
	case Posted:
		return next == Void
	default:
		return false
	}
}

// JournalEntry is a dated set of debit and credit lines that must balance before it can be posted.
type JournalEntry struct {
	EntryID         string             `json:"entryID"`
	BookID          string             `json:"bookID"`
	EntryDate       time.Time          `json:"entryDate"`
	Description     string             `json:"description"`
	ReferenceNumber string             `json:"referenceNumber,omitempty"`
	Status          EntryStatus        `json:"status"`
	PostingDate     *time.Time         `json:"postingDate,omitempty"`
	VoidDate        *time.Time         `json:"voidDate,omitempty"`
	Lines           []JournalEntryLine `json:"lines"`
	AuditFields
}

// JournalEntryLine moves money into or out of one account. Exactly one of Debit or Credit is normally non-zero.
type JournalEntryLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// Totals sums the debit and credit columns of the entry.
func (e JournalEntry) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}

// AccountIDs returns the distinct accounts touched by the entry in first-seen order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}
