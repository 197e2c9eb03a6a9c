package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry of the book with its lines.
	GetEntryByID(ctx context.Context, bookID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries of the book.
	ListEntries(ctx context.Context, bookID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// JournalWriterSvc defines write operations on draft entries.
type JournalWriterSvc interface {
	// CreateEntry validates and stores a new DRAFT entry.
	CreateEntry(ctx context.Context, bookID string, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error)

	// UpdateEntry changes a DRAFT entry; other statuses yield apperrors.ErrImmutableEntry.
	UpdateEntry(ctx context.Context, bookID string, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a DRAFT entry; other statuses yield apperrors.ErrImmutableEntry.
	DeleteEntry(ctx context.Context, bookID string, entryID string, userID string) error

	// RecordCategorizedTransaction builds a two-line entry between a cash account and the account mapped to a category.
	RecordCategorizedTransaction(ctx context.Context, bookID string, req dto.CategorizedTransactionRequest, userID string) (*domain.JournalEntry, error)
}

// JournalPostingSvc moves entries through DRAFT -> POSTED -> VOID.
type JournalPostingSvc interface {
	// PostEntry applies a DRAFT entry to account balances atomically.
	PostEntry(ctx context.Context, bookID string, entryID string, userID string) (*domain.JournalEntry, error)

	// VoidEntry reverses a POSTED entry's effect on balances atomically.
	VoidEntry(ctx context.Context, bookID string, entryID string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalPostingSvc
}
