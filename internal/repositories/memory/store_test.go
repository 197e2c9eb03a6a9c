package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func seedAccount(t *testing.T, s *Store, id, code string, typ domain.AccountType) {
	t.Helper()
	require.NoError(t, s.SaveAccount(context.Background(), domain.Account{
		AccountID: id, BookID: "book", Code: code, Name: code, AccountType: typ, IsActive: true, Balance: decimal.Zero,
	}))
}

func seedEntry(t *testing.T, s *Store, id string, date time.Time, amount string, debitAcc, creditAcc string) {
	t.Helper()
	amt := decimal.RequireFromString(amount)
	entry := domain.JournalEntry{
		EntryID: id, BookID: "book", EntryDate: date, Description: "entry " + id, Status: domain.Draft,
		Lines: []domain.JournalEntryLine{
			{LineID: id + "-1", EntryID: id, LineNumber: 1, AccountID: debitAcc, Debit: amt, Credit: decimal.Zero},
			{LineID: id + "-2", EntryID: id, LineNumber: 2, AccountID: creditAcc, Debit: decimal.Zero, Credit: amt},
		},
	}
	entry.CreatedAt = date
	require.NoError(t, s.SaveEntry(context.Background(), entry))
}

func post(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.TransitionEntry(context.Background(), id, domain.Draft, domain.Posted, "u1", day))
}

func TestSaveAccount_DuplicateCode(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "1000", domain.Asset)

	err := s.SaveAccount(context.Background(), domain.Account{AccountID: "a2", BookID: "book", Code: "1000"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	// Same code in another book is fine.
	err = s.SaveAccount(context.Background(), domain.Account{AccountID: "a3", BookID: "other", Code: "1000"})
	assert.NoError(t, err)
}

func TestTransitionEntry_RollsBackOnUnknownAccount(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "equity", "3000", domain.Equity)
	seedEntry(t, s, "e1", day, "100", "cash", "missing")

	err := s.TransitionEntry(ctx, "e1", domain.Draft, domain.Posted, "u1", day)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	entry, err := s.FindEntryByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.Draft, entry.Status)
	assert.Nil(t, entry.PostingDate)

	cash, err := s.FindAccountByID(ctx, "cash")
	require.NoError(t, err)
	assert.True(t, cash.Balance.IsZero())
}

func TestTransitionEntry_ConcurrentPostAppliesOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "equity", "3000", domain.Equity)
	seedEntry(t, s, "e1", day, "100", "cash", "equity")

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.TransitionEntry(ctx, "e1", domain.Draft, domain.Posted, "u1", day)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrAlreadyPosted)
	}
	assert.Equal(t, 1, succeeded)

	cash, err := s.FindAccountByID(ctx, "cash")
	require.NoError(t, err)
	assert.Equal(t, "100", cash.Balance.String())
}

func TestTransitionEntry_UsesLinesStoredAtPostTime(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "equity", "3000", domain.Equity)
	seedEntry(t, s, "e1", day, "100", "cash", "equity")

	loaded, err := s.FindEntryByID(ctx, "e1")
	require.NoError(t, err)

	edited := *loaded
	edited.Lines = []domain.JournalEntryLine{
		{LineID: "e1-a", EntryID: "e1", LineNumber: 1, AccountID: "cash", Debit: decimal.NewFromInt(500), Credit: decimal.Zero},
		{LineID: "e1-b", EntryID: "e1", LineNumber: 2, AccountID: "equity", Debit: decimal.Zero, Credit: decimal.NewFromInt(500)},
	}
	require.NoError(t, s.UpdateDraftEntry(ctx, edited))

	require.NoError(t, s.TransitionEntry(ctx, "e1", domain.Draft, domain.Posted, "u1", day))
	cash, err := s.FindAccountByID(ctx, "cash")
	require.NoError(t, err)
	assert.Equal(t, "500", cash.Balance.String())

	totals, err := s.SumPostedLinesForAccount(ctx, "cash", nil, nil)
	require.NoError(t, err)
	assert.True(t, cash.Balance.Equal(totals.Debits.Sub(totals.Credits)))

	require.NoError(t, s.TransitionEntry(ctx, "e1", domain.Posted, domain.Void, "u1", day))
	cash, err = s.FindAccountByID(ctx, "cash")
	require.NoError(t, err)
	assert.True(t, cash.Balance.IsZero())
}

func TestDraftOnlyMutations(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "equity", "3000", domain.Equity)
	seedEntry(t, s, "e1", day, "100", "cash", "equity")
	post(t, s, "e1")

	entry, err := s.FindEntryByID(ctx, "e1")
	require.NoError(t, err)
	assert.ErrorIs(t, s.UpdateDraftEntry(ctx, *entry), apperrors.ErrImmutableEntry)
	assert.ErrorIs(t, s.DeleteDraftEntry(ctx, "e1"), apperrors.ErrImmutableEntry)
}

func TestListEntriesByBook_Pagination(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "equity", "3000", domain.Equity)
	for i, id := range []string{"e1", "e2", "e3"} {
		seedEntry(t, s, id, day.AddDate(0, 0, i), "10", "cash", "equity")
	}

	page1, token, err := s.ListEntriesByBook(ctx, "book", "", 2, nil)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "e3", page1[0].EntryID)
	assert.Equal(t, "e2", page1[1].EntryID)
	require.NotNil(t, token)

	page2, token, err := s.ListEntriesByBook(ctx, "book", "", 2, token)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "e1", page2[0].EntryID)
	assert.Nil(t, token)

	posted, _, err := s.ListEntriesByBook(ctx, "book", domain.Posted, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, posted)
}

func TestReportingReadsOnlyPostedLines(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "equity", "3000", domain.Equity)
	seedEntry(t, s, "e1", day, "100", "cash", "equity")
	seedEntry(t, s, "e2", day.AddDate(0, 0, 1), "40", "cash", "equity")
	seedEntry(t, s, "e3", day.AddDate(0, 0, 2), "5", "cash", "equity")
	post(t, s, "e1")
	post(t, s, "e2")
	require.NoError(t, s.TransitionEntry(ctx, "e2", domain.Posted, domain.Void, "u1", day))

	totals, err := s.SumPostedLinesByAccount(ctx, "book", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "100", totals["cash"].Debits.String())
	assert.Equal(t, "100", totals["equity"].Credits.String())

	lines, err := s.ListPostedLines(ctx, "cash", day, day.AddDate(0, 0, 5), nil, 10)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "e1", lines[0].EntryID)

	after := lines[0].Cursor()
	lines, err = s.ListPostedLines(ctx, "cash", day, day.AddDate(0, 0, 5), &after, 10)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSaveManualMatch(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "equity", "3000", domain.Equity)
	seedEntry(t, s, "e1", day, "100", "cash", "equity")
	post(t, s, "e1")

	for _, id := range []string{"r1", "r2"} {
		require.NoError(t, s.SaveReconciliation(ctx, domain.Reconciliation{ReconciliationID: id, BookID: "book", AccountID: "cash", Status: domain.ReconciliationInProgress}))
	}
	require.NoError(t, s.SaveStatementLines(ctx, []domain.BankStatementLine{
		{LineID: "l1", ReconciliationID: "r1", Sequence: 1, Date: day, Amount: decimal.NewFromInt(100)},
		{LineID: "l2", ReconciliationID: "r1", Sequence: 2, Date: day, Amount: decimal.NewFromInt(100)},
		{LineID: "l3", ReconciliationID: "r2", Sequence: 1, Date: day, Amount: decimal.NewFromInt(100)},
	}))

	first, err := s.SaveManualMatch(ctx, domain.ReconciliationItem{ItemID: "i1", ReconciliationID: "r1", ItemType: domain.MatchedManual, StatementLineID: "l1", TransactionID: "e1-1"})
	require.NoError(t, err)
	assert.Equal(t, "i1", first.ItemID)

	again, err := s.SaveManualMatch(ctx, domain.ReconciliationItem{ItemID: "i2", ReconciliationID: "r1", ItemType: domain.MatchedManual, StatementLineID: "l1", TransactionID: "e1-1"})
	require.NoError(t, err)
	assert.Equal(t, "i1", again.ItemID, "same pair returns the existing item")

	// Moving the transaction to another line releases the first line.
	moved, err := s.SaveManualMatch(ctx, domain.ReconciliationItem{ItemID: "i3", ReconciliationID: "r1", ItemType: domain.MatchedManual, StatementLineID: "l2", TransactionID: "e1-1"})
	require.NoError(t, err)
	assert.Equal(t, "i3", moved.ItemID)
	items, err := s.ListItems(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	l1, err := s.FindStatementLineByID(ctx, "l1")
	require.NoError(t, err)
	assert.False(t, l1.IsMatched)

	_, err = s.SaveManualMatch(ctx, domain.ReconciliationItem{ItemID: "i4", ReconciliationID: "r2", ItemType: domain.MatchedManual, StatementLineID: "l3", TransactionID: "e1-1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	txns, err := s.ListUnreconciledTransactions(ctx, "cash", day)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestSaveMatches_SkipsClaimed(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1000", domain.Asset)
	seedAccount(t, s, "equity", "3000", domain.Equity)
	seedEntry(t, s, "e1", day, "100", "cash", "equity")
	post(t, s, "e1")
	require.NoError(t, s.SaveReconciliation(ctx, domain.Reconciliation{ReconciliationID: "r1", BookID: "book", AccountID: "cash"}))
	require.NoError(t, s.SaveStatementLines(ctx, []domain.BankStatementLine{
		{LineID: "l1", ReconciliationID: "r1", Sequence: 1, Date: day, Amount: decimal.NewFromInt(100)},
		{LineID: "l2", ReconciliationID: "r1", Sequence: 2, Date: day, Amount: decimal.NewFromInt(100)},
	}))

	saved, err := s.SaveMatches(ctx, []domain.ReconciliationItem{
		{ItemID: "i1", ReconciliationID: "r1", ItemType: domain.MatchedExact, StatementLineID: "l1", TransactionID: "e1-1"},
		{ItemID: "i2", ReconciliationID: "r1", ItemType: domain.MatchedExact, StatementLineID: "l2", TransactionID: "e1-1"},
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "i1", saved[0].ItemID)

	unmatched, err := s.ListStatementLines(ctx, "r1", true)
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "l2", unmatched[0].LineID)
}
