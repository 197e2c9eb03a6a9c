package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves an entry together with its lines ordered by line number.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntriesByBook retrieves a page of entries, newest entry date first, optionally filtered by status.
	// It returns the entries (with lines), a token for the next page, and an error.
	ListEntriesByBook(ctx context.Context, bookID string, status domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for draft entries.
type JournalWriter interface {
	// SaveEntry persists a new draft entry and its lines.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateDraftEntry overwrites header fields and lines of an entry that is still DRAFT.
	// If the stored entry is no longer a draft it returns apperrors.ErrImmutableEntry.
	UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error

	// DeleteDraftEntry removes a DRAFT entry and its lines, or returns apperrors.ErrImmutableEntry.
	DeleteDraftEntry(ctx context.Context, entryID string) error
}

// JournalPoster moves entries through the posting lifecycle.
type JournalPoster interface {
	// TransitionEntry atomically changes an entry's status from `from` to `to`. The balance
	// changes are computed from the lines read under the entry lock, so an edit committed
	// after the caller loaded the entry is the one applied. On any failure nothing is changed.
	TransitionEntry(ctx context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	JournalPoster
}
