package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one debit or credit line of a journal entry request.
type EntryLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit" binding:"gte=0"`
	Credit      decimal.Decimal `json:"credit" binding:"gte=0"`
	Description string          `json:"description"`
}

// CreateEntryRequest defines the data needed to create a draft journal entry.
type CreateEntryRequest struct {
	Date            time.Time          `json:"date" binding:"required"`
	Description     string             `json:"description" binding:"required"`
	ReferenceNumber string             `json:"referenceNumber"`
	Lines           []EntryLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateEntryRequest changes a draft entry. Nil fields are left as they are;
// a non-nil Lines replaces every line of the entry.
type UpdateEntryRequest struct {
	Date            *time.Time         `json:"date"`
	Description     *string            `json:"description"`
	ReferenceNumber *string            `json:"referenceNumber"`
	Lines           []EntryLineRequest `json:"lines" binding:"omitempty,dive"`
}

// CategorizedTransactionRequest records a simple cash movement against a configured category.
// A DEBIT direction is money received into the cash account, CREDIT is money paid out.
type CategorizedTransactionRequest struct {
	Date            time.Time       `json:"date" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	ReferenceNumber string          `json:"referenceNumber"`
	Category        string          `json:"category" binding:"required"`
	CashAccountID   string          `json:"cashAccountID" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"gt=0"`
	Direction       domain.Side     `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Post            bool            `json:"post"` // post immediately after creating
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Status    domain.EntryStatus `form:"status" binding:"omitempty,oneof=DRAFT POSTED VOID"`
	Limit     int                `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken *string            `form:"nextToken"`
}

// EntryLineResponse defines the data returned for a journal entry line.
type EntryLineResponse struct {
	LineID      string          `json:"lineID"`
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID         string              `json:"entryID"`
	BookID          string              `json:"bookID"`
	Date            time.Time           `json:"date"`
	Description     string              `json:"description"`
	ReferenceNumber string              `json:"referenceNumber,omitempty"`
	Status          domain.EntryStatus  `json:"status"`
	PostingDate     *time.Time          `json:"postingDate,omitempty"`
	VoidDate        *time.Time          `json:"voidDate,omitempty"`
	TotalDebits     decimal.Decimal     `json:"totalDebits"`
	TotalCredits    decimal.Decimal     `json:"totalCredits"`
	Lines           []EntryLineResponse `json:"lines"`
	CreatedAt       time.Time           `json:"createdAt"`
	CreatedBy       string              `json:"createdBy"`
	LastUpdatedAt   time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy   string              `json:"lastUpdatedBy"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	debits, credits := e.Totals()
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = EntryLineResponse{
			LineID:      l.LineID,
			LineNumber:  l.LineNumber,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		BookID:          e.BookID,
		Date:            e.EntryDate,
		Description:     e.Description,
		ReferenceNumber: e.ReferenceNumber,
		Status:          e.Status,
		PostingDate:     e.PostingDate,
		VoidDate:        e.VoidDate,
		TotalDebits:     debits,
		TotalCredits:    credits,
		Lines:           lines,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
		LastUpdatedAt:   e.LastUpdatedAt,
		LastUpdatedBy:   e.LastUpdatedBy,
	}
}

// ToJournalEntryResponses converts a slice of entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToJournalEntryResponse(&entries[i])
	}
	return res
}
