package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

func within(day time.Time, from, to *time.Time) bool {
	if from != nil && day.Before(*from) {
		return false
	}
	if to != nil && day.After(*to) {
		return false
	}
	return true
}

// eachPostedLine calls fn for every line of every POSTED entry dated within [from, to].
// The caller must hold the read lock.
func (s *Store) eachPostedLine(from, to *time.Time, fn func(domain.JournalEntry, domain.JournalEntryLine)) {
	for _, e := range s.entries {
		if e.Status != domain.Posted || !within(e.EntryDate, from, to) {
			continue
		}
		for _, l := range e.Lines {
			fn(e, l)
		}
	}
}

func (s *Store) SumPostedLinesByAccount(ctx context.Context, bookID string, from, to *time.Time) (map[string]domain.LineTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.LineTotals)
	s.eachPostedLine(from, to, func(e domain.JournalEntry, l domain.JournalEntryLine) {
		if e.BookID != bookID {
			return
		}
		t, ok := out[l.AccountID]
		if !ok {
			t = domain.LineTotals{Debits: decimal.Zero, Credits: decimal.Zero}
		}
		t.Debits = t.Debits.Add(l.Debit)
		t.Credits = t.Credits.Add(l.Credit)
		out[l.AccountID] = t
	})
	return out, nil
}

func (s *Store) SumPostedLinesForAccount(ctx context.Context, accountID string, from, to *time.Time) (domain.LineTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := domain.LineTotals{Debits: decimal.Zero, Credits: decimal.Zero}
	s.eachPostedLine(from, to, func(_ domain.JournalEntry, l domain.JournalEntryLine) {
		if l.AccountID != accountID {
			return
		}
		totals.Debits = totals.Debits.Add(l.Debit)
		totals.Credits = totals.Credits.Add(l.Credit)
	})
	return totals, nil
}

func (s *Store) ListPostedLines(ctx context.Context, accountID string, from, to time.Time, after *domain.LedgerCursor, limit int) ([]domain.LedgerLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := []domain.LedgerLine{}
	s.eachPostedLine(&from, &to, func(e domain.JournalEntry, l domain.JournalEntryLine) {
		if l.AccountID != accountID {
			return
		}
		description := l.Description
		if description == "" {
			description = e.Description
		}
		line := domain.LedgerLine{
			EntryID:         e.EntryID,
			LineID:          l.LineID,
			LineNumber:      l.LineNumber,
			EntryDate:       e.EntryDate,
			PostingDate:     *e.PostingDate,
			Description:     description,
			ReferenceNumber: e.ReferenceNumber,
			Debit:           l.Debit,
			Credit:          l.Credit,
		}
		if after != nil && pagination.CompareLedgerCursor(line.Cursor(), *after) <= 0 {
			return
		}
		lines = append(lines, line)
	})

	sort.Slice(lines, func(i, j int) bool {
		return pagination.CompareLedgerCursor(lines[i].Cursor(), lines[j].Cursor()) < 0
	})
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	return lines, nil
}
