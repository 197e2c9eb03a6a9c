package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	suite.Suite
	f *ledgerFixture
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.f = newLedgerFixture(suite.T())
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (suite *JournalServiceTestSuite) TestCreateEntry_BalancedIsDraft() {
	f := suite.f
	entry, err := f.svc.Journal.CreateEntry(f.ctx, testBook, dto.CreateEntryRequest{
		Date:        time.Date(2024, 1, 5, 15, 30, 0, 0, time.UTC),
		Description: "Cash sale",
		Lines:       []dto.EntryLineRequest{line(f.cash, "100", "0"), line(f.sales, "0", "100")},
	}, testUser)

	suite.Require().NoError(err)
	suite.Equal(domain.Draft, entry.Status)
	suite.Equal(date(2024, 1, 5), entry.EntryDate)
	suite.Len(entry.Lines, 2)
	suite.Equal(1, entry.Lines[0].LineNumber)
	suite.Equal(2, entry.Lines[1].LineNumber)
	suite.Nil(entry.PostingDate)
	suite.True(f.balance(suite.T(), f.cash).IsZero(), "drafts do not move balances")
}

func (suite *JournalServiceTestSuite) TestCreateEntry_Imbalanced() {
	f := suite.f
	_, err := f.svc.Journal.CreateEntry(f.ctx, testBook, dto.CreateEntryRequest{
		Date:        date(2024, 1, 5),
		Description: "Bad entry",
		Lines:       []dto.EntryLineRequest{line(f.cash, "100", "0"), line(f.sales, "0", "90")},
	}, testUser)

	suite.ErrorIs(err, apperrors.ErrImbalancedEntry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_WithinTolerance() {
	f := suite.f
	_, err := f.svc.Journal.CreateEntry(f.ctx, testBook, dto.CreateEntryRequest{
		Date:        date(2024, 1, 5),
		Description: "Rounding",
		Lines:       []dto.EntryLineRequest{line(f.cash, "100.00", "0"), line(f.sales, "0", "99.99")},
	}, testUser)
	suite.NoError(err)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_Rejections() {
	f := suite.f
	otherBookAccount := f.account(suite.T(), "book-2", "1000", "Other cash", domain.Asset)

	tests := []struct {
		name    string
		req     dto.CreateEntryRequest
		wantErr error
	}{
		{
			name:    "no lines",
			req:     dto.CreateEntryRequest{Date: date(2024, 1, 5), Description: "Empty"},
			wantErr: apperrors.ErrEmptyEntry,
		},
		{
			name:    "all zero",
			req:     dto.CreateEntryRequest{Date: date(2024, 1, 5), Description: "Zero", Lines: []dto.EntryLineRequest{line(f.cash, "0", "0"), line(f.sales, "0", "0")}},
			wantErr: apperrors.ErrEmptyEntry,
		},
		{
			name:    "missing description",
			req:     dto.CreateEntryRequest{Date: date(2024, 1, 5), Description: "  ", Lines: []dto.EntryLineRequest{line(f.cash, "1", "0"), line(f.sales, "0", "1")}},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "unknown account",
			req:     dto.CreateEntryRequest{Date: date(2024, 1, 5), Description: "Ghost", Lines: []dto.EntryLineRequest{{AccountID: "nope", Debit: dec("1"), Credit: decimal.Zero}, line(f.sales, "0", "1")}},
			wantErr: apperrors.ErrNotFound,
		},
		{
			name:    "account from another book",
			req:     dto.CreateEntryRequest{Date: date(2024, 1, 5), Description: "Cross", Lines: []dto.EntryLineRequest{line(otherBookAccount, "1", "0"), line(f.sales, "0", "1")}},
			wantErr: apperrors.ErrAccess,
		},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := f.svc.Journal.CreateEntry(f.ctx, testBook, tt.req, testUser)
			suite.ErrorIs(err, tt.wantErr)
		})
	}
}

func (suite *JournalServiceTestSuite) TestCreateEntry_InactiveAccount() {
	f := suite.f
	suite.Require().NoError(f.svc.Account.DeactivateAccount(f.ctx, testBook, f.groceries.AccountID, testUser))

	_, err := f.svc.Journal.CreateEntry(f.ctx, testBook, dto.CreateEntryRequest{
		Date:        date(2024, 1, 5),
		Description: "Groceries",
		Lines:       []dto.EntryLineRequest{line(f.groceries, "10", "0"), line(f.cash, "0", "10")},
	}, testUser)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestPostThenVoid_MovesBalancesAndBack() {
	f := suite.f
	t := suite.T()
	entry := f.draft(t, date(2024, 1, 5), "Cash sale", line(f.cash, "100", "0"), line(f.sales, "0", "100"))

	posted, err := f.svc.Journal.PostEntry(f.ctx, testBook, entry.EntryID, testUser)
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, posted.Status)
	suite.NotNil(posted.PostingDate)
	suite.Equal("100", f.balance(t, f.cash).String())
	suite.Equal("100", f.balance(t, f.sales).String())

	voided, err := f.svc.Journal.VoidEntry(f.ctx, testBook, entry.EntryID, testUser)
	suite.Require().NoError(err)
	suite.Equal(domain.Void, voided.Status)
	suite.NotNil(voided.VoidDate)
	suite.True(f.balance(t, f.cash).IsZero())
	suite.True(f.balance(t, f.sales).IsZero())
}

func (suite *JournalServiceTestSuite) TestStatusMachine() {
	f := suite.f
	t := suite.T()
	draft := f.draft(t, date(2024, 1, 5), "Draft", line(f.cash, "10", "0"), line(f.sales, "0", "10"))

	_, err := f.svc.Journal.VoidEntry(f.ctx, testBook, draft.EntryID, testUser)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition, "drafts cannot be voided")

	posted := f.posted(t, date(2024, 1, 6), "Posted", f.cash, f.sales, "20")
	_, err = f.svc.Journal.PostEntry(f.ctx, testBook, posted.EntryID, testUser)
	suite.ErrorIs(err, apperrors.ErrAlreadyPosted)
	suite.ErrorIs(err, apperrors.ErrConflict)

	_, err = f.svc.Journal.VoidEntry(f.ctx, testBook, posted.EntryID, testUser)
	suite.Require().NoError(err)
	_, err = f.svc.Journal.PostEntry(f.ctx, testBook, posted.EntryID, testUser)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition, "void is terminal")
	_, err = f.svc.Journal.VoidEntry(f.ctx, testBook, posted.EntryID, testUser)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)

	suite.True(f.balance(t, f.cash).IsZero(), "the draft never moved the balance and the void reversed the post")
}

func (suite *JournalServiceTestSuite) TestUpdateAndDelete_DraftOnly() {
	f := suite.f
	t := suite.T()
	draft := f.draft(t, date(2024, 1, 5), "Draft", line(f.cash, "10", "0"), line(f.sales, "0", "10"))

	newDescription := "Corrected"
	updated, err := f.svc.Journal.UpdateEntry(f.ctx, testBook, draft.EntryID, dto.UpdateEntryRequest{
		Description: &newDescription,
		Lines:       []dto.EntryLineRequest{line(f.cash, "15", "0"), line(f.sales, "0", "15")},
	}, testUser)
	suite.Require().NoError(err)
	suite.Equal("Corrected", updated.Description)
	debits, _ := updated.Totals()
	suite.Equal("15", debits.String())

	_, err = f.svc.Journal.UpdateEntry(f.ctx, testBook, draft.EntryID, dto.UpdateEntryRequest{
		Lines: []dto.EntryLineRequest{line(f.cash, "15", "0"), line(f.sales, "0", "1")},
	}, testUser)
	suite.ErrorIs(err, apperrors.ErrImbalancedEntry)

	suite.Require().NoError(f.svc.Journal.DeleteEntry(f.ctx, testBook, draft.EntryID, testUser))
	_, err = f.svc.Journal.GetEntryByID(f.ctx, testBook, draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	posted := f.posted(t, date(2024, 1, 6), "Posted", f.cash, f.sales, "20")
	_, err = f.svc.Journal.UpdateEntry(f.ctx, testBook, posted.EntryID, dto.UpdateEntryRequest{Description: &newDescription}, testUser)
	suite.ErrorIs(err, apperrors.ErrImmutableEntry)
	suite.ErrorIs(f.svc.Journal.DeleteEntry(f.ctx, testBook, posted.EntryID, testUser), apperrors.ErrImmutableEntry)
}

func (suite *JournalServiceTestSuite) TestGetEntry_OtherBook() {
	f := suite.f
	draft := f.draft(suite.T(), date(2024, 1, 5), "Draft", line(f.cash, "10", "0"), line(f.sales, "0", "10"))

	_, err := f.svc.Journal.GetEntryByID(f.ctx, "book-2", draft.EntryID)
	suite.ErrorIs(err, apperrors.ErrAccess)
}

func (suite *JournalServiceTestSuite) TestListEntries() {
	f := suite.f
	t := suite.T()
	for day := 1; day <= 3; day++ {
		f.posted(t, date(2024, 2, day), "Sale", f.cash, f.sales, "10")
	}
	f.draft(t, date(2024, 2, 4), "Pending", line(f.cash, "1", "0"), line(f.sales, "0", "1"))

	first, err := f.svc.Journal.ListEntries(f.ctx, testBook, dto.ListEntriesParams{Status: domain.Posted, Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first.Entries, 2)
	suite.Equal(date(2024, 2, 3), first.Entries[0].Date)
	suite.Require().NotNil(first.NextToken)

	second, err := f.svc.Journal.ListEntries(f.ctx, testBook, dto.ListEntriesParams{Status: domain.Posted, Limit: 2, NextToken: first.NextToken})
	suite.Require().NoError(err)
	suite.Require().Len(second.Entries, 1)
	suite.Equal(date(2024, 2, 1), second.Entries[0].Date)
	suite.Nil(second.NextToken)

	all, err := f.svc.Journal.ListEntries(f.ctx, testBook, dto.ListEntriesParams{})
	suite.Require().NoError(err)
	suite.Len(all.Entries, 4)
}

func (suite *JournalServiceTestSuite) TestRecordCategorizedTransaction() {
	f := suite.f
	t := suite.T()

	income, err := f.svc.Journal.RecordCategorizedTransaction(f.ctx, testBook, dto.CategorizedTransactionRequest{
		Date: date(2024, 3, 1), Description: "March salary", Category: "Salary",
		CashAccountID: f.cash.AccountID, Amount: dec("500"), Direction: domain.Debit, Post: true,
	}, testUser)
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, income.Status)

	spend, err := f.svc.Journal.RecordCategorizedTransaction(f.ctx, testBook, dto.CategorizedTransactionRequest{
		Date: date(2024, 3, 2), Description: "Weekly shop", Category: "groceries",
		CashAccountID: f.cash.AccountID, Amount: dec("80"), Direction: domain.Credit,
	}, testUser)
	suite.Require().NoError(err)
	suite.Equal(domain.Draft, spend.Status)
	_, err = f.svc.Journal.PostEntry(f.ctx, testBook, spend.EntryID, testUser)
	suite.Require().NoError(err)

	suite.Equal("420", f.balance(t, f.cash).String())
	suite.Equal("500", f.balance(t, f.sales).String())
	suite.Equal("80", f.balance(t, f.groceries).String())

	_, err = f.svc.Journal.RecordCategorizedTransaction(f.ctx, testBook, dto.CategorizedTransactionRequest{
		Date: date(2024, 3, 3), Description: "Mystery", Category: "travel",
		CashAccountID: f.cash.AccountID, Amount: dec("5"), Direction: domain.Credit,
	}, testUser)
	suite.ErrorIs(err, apperrors.ErrUnmappedCategory)

	_, err = f.svc.Journal.RecordCategorizedTransaction(f.ctx, testBook, dto.CategorizedTransactionRequest{
		Date: date(2024, 3, 3), Description: "Mapped to nothing", Category: "ghost",
		CashAccountID: f.cash.AccountID, Amount: dec("5"), Direction: domain.Credit,
	}, testUser)
	suite.ErrorIs(err, apperrors.ErrUnmappedCategory)
}

func (suite *JournalServiceTestSuite) TestConcurrentPost_AppliesOnce() {
	f := suite.f
	draft := f.draft(suite.T(), date(2024, 1, 5), "Race", line(f.cash, "100", "0"), line(f.sales, "0", "100"))

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Journal.PostEntry(f.ctx, testBook, draft.EntryID, testUser)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	}
	suite.Equal(1, succeeded)
	suite.Equal("100", f.balance(suite.T(), f.cash).String())
}

// editingJournalRepo commits a draft edit just before the first status transition,
// as a concurrent UpdateEntry would after PostEntry has loaded the entry.
type editingJournalRepo struct {
	*memory.Store
	edit func()
}

func (r *editingJournalRepo) TransitionEntry(ctx context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error {
	if r.edit != nil {
		edit := r.edit
		r.edit = nil
		edit()
	}
	return r.Store.TransitionEntry(ctx, entryID, from, to, userID, at)
}

func TestPostEntry_AppliesLinesEditedAfterLoad(t *testing.T) {
	f := newLedgerFixture(t)
	draft := f.draft(t, date(2024, 1, 5), "Cash sale", line(f.cash, "100", "0"), line(f.sales, "0", "100"))

	repo := &editingJournalRepo{Store: f.store}
	repo.edit = func() {
		_, err := f.svc.Journal.UpdateEntry(f.ctx, testBook, draft.EntryID, dto.UpdateEntryRequest{
			Lines: []dto.EntryLineRequest{line(f.cash, "500", "0"), line(f.sales, "0", "500")},
		}, testUser)
		require.NoError(t, err)
	}
	journal := services.NewJournalService(repo, f.svc.Account)

	posted, err := journal.PostEntry(f.ctx, testBook, draft.EntryID, testUser)
	require.NoError(t, err)
	require.Len(t, posted.Lines, 2)
	assert.True(t, posted.Lines[0].Debit.Equal(dec("500")))

	derived, err := f.svc.Reporting.AccountBalance(f.ctx, testBook, f.cash.AccountID, nil)
	require.NoError(t, err)
	assert.True(t, derived.Equal(dec("500")), "derived balance %s", derived)
	assert.True(t, f.balance(t, f.cash).Equal(derived), "running balance must match the posted lines")
	assert.True(t, f.balance(t, f.sales).Equal(dec("500")))

	_, err = journal.VoidEntry(f.ctx, testBook, draft.EntryID, testUser)
	require.NoError(t, err)
	assert.True(t, f.balance(t, f.cash).IsZero())
	assert.True(t, f.balance(t, f.sales).IsZero())
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntriesByBook(ctx context.Context, bookID string, status domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, bookID, status, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.JournalEntry), nil, args.Error(2)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalRepository) DeleteDraftEntry(ctx context.Context, entryID string) error {
	return m.Called(ctx, entryID).Error(0)
}

func (m *MockJournalRepository) TransitionEntry(ctx context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error {
	return m.Called(ctx, entryID, from, to, userID, at).Error(0)
}

func TestPostEntry_RepositoryFailureIsReturned(t *testing.T) {
	f := newLedgerFixture(t)
	repo := new(MockJournalRepository)
	fixed := date(2024, 4, 1)
	svc := services.NewJournalService(repo, f.svc.Account, services.WithJournalBase(services.BaseService{Now: func() time.Time { return fixed }}))

	entry := &domain.JournalEntry{
		EntryID: "e1", BookID: testBook, EntryDate: date(2024, 3, 31), Description: "Sale", Status: domain.Draft,
		Lines: []domain.JournalEntryLine{
			{LineID: "l1", LineNumber: 1, AccountID: f.cash.AccountID, Debit: dec("100"), Credit: decimal.Zero},
			{LineID: "l2", LineNumber: 2, AccountID: f.sales.AccountID, Debit: decimal.Zero, Credit: dec("100")},
		},
	}
	storeErr := errors.New("connection reset")

	repo.On("FindEntryByID", mock.Anything, "e1").Return(entry, nil).Once()
	repo.On("TransitionEntry", mock.Anything, "e1", domain.Draft, domain.Posted, testUser, fixed).Return(storeErr).Once()

	_, err := svc.PostEntry(context.Background(), testBook, "e1", testUser)
	require.ErrorIs(t, err, storeErr)
	assert.True(t, f.balance(t, f.cash).IsZero())
	repo.AssertExpectations(t)
}
