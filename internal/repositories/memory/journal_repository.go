package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	out := copyEntry(entry)
	return &out, nil
}

// newerThan orders entries newest first: entry date, then creation time, then id.
func newerThan(a, b domain.JournalEntry) bool {
	if !a.EntryDate.Equal(b.EntryDate) {
		return a.EntryDate.After(b.EntryDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.EntryID > b.EntryID
}

func (s *Store) ListEntriesByBook(ctx context.Context, bookID string, status domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	var cursor *domain.JournalEntry
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, entryID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &domain.JournalEntry{EntryID: entryID, EntryDate: entryDate}
		cursor.CreatedAt = createdAt
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	page := make([]domain.JournalEntry, 0)
	for _, e := range s.entries {
		if e.BookID != bookID || (status != "" && e.Status != status) {
			continue
		}
		if cursor != nil && !newerThan(*cursor, e) {
			continue
		}
		page = append(page, e)
	}
	sort.Slice(page, func(i, j int) bool { return newerThan(page[i], page[j]) })

	var token *string
	if len(page) > limit {
		page = page[:limit]
		last := page[len(page)-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt, last.EntryID)
		token = &t
	}

	out := make([]domain.JournalEntry, len(page))
	for i, e := range page {
		out[i] = copyEntry(e)
	}
	return out, token, nil
}

func (s *Store) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
	}
	s.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

func (s *Store) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[entry.EntryID]
	if !ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entry.EntryID)
	}
	if stored.Status != domain.Draft {
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrImmutableEntry, entry.EntryID, stored.Status)
	}
	entry.Status = domain.Draft
	entry.CreatedAt, entry.CreatedBy = stored.CreatedAt, stored.CreatedBy
	s.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

func (s *Store) DeleteDraftEntry(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	if stored.Status != domain.Draft {
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrImmutableEntry, entryID, stored.Status)
	}
	delete(s.entries, entryID)
	return nil
}

// TransitionEntry computes the balance changes from the stored lines and validates everything
// before touching state, so a failure leaves the entry and every balance exactly as they were.
func (s *Store) TransitionEntry(ctx context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	if err := accounting.CheckTransition(entryID, entry.Status, to); err != nil {
		return err
	}
	if entry.Status != from {
		return fmt.Errorf("%w: entry %s is %s, expected %s", apperrors.ErrInvalidTransition, entryID, entry.Status, from)
	}

	accounts := make(map[string]domain.Account, len(entry.Lines))
	for _, l := range entry.Lines {
		if acc, ok := s.accounts[l.AccountID]; ok {
			accounts[l.AccountID] = acc
		}
	}
	balanceChanges, err := accounting.TransitionChanges(entry.Lines, accounts, to)
	if err != nil {
		return err
	}

	for accountID, delta := range balanceChanges {
		acc := s.accounts[accountID]
		acc.Balance = acc.Balance.Add(delta)
		acc.Version++
		acc.LastUpdatedAt = at
		acc.LastUpdatedBy = userID
		s.accounts[accountID] = acc
	}

	stamp := at
	entry = copyEntry(entry)
	entry.Status = to
	switch to {
	case domain.Posted:
		entry.PostingDate = &stamp
	case domain.Void:
		entry.VoidDate = &stamp
	}
	entry.LastUpdatedAt = at
	entry.LastUpdatedBy = userID
	s.entries[entryID] = entry
	return nil
}
