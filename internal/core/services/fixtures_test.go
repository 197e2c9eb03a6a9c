package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/matching"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testBook = "book-1"
	testUser = "user-1"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ledgerFixture is a small chart of accounts backed by the memory store.
type ledgerFixture struct {
	ctx   context.Context
	store *memory.Store
	svc   *portssvc.ServiceContainer

	cash      *domain.Account
	loan      *domain.Account
	capital   *domain.Account
	sales     *domain.Account
	groceries *domain.Account
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	cfg := &config.Config{
		Matching:         matching.DefaultOptions(),
		CategoryAccounts: map[string]string{"Groceries": "5100", "salary": "4000", "ghost": "9999"},
	}
	f := &ledgerFixture{
		ctx:   context.Background(),
		store: store,
		svc:   services.NewServiceContainer(cfg, memory.NewRepositoryProvider(store)),
	}
	f.cash = f.account(t, testBook, "1000", "Cash", domain.Asset)
	f.loan = f.account(t, testBook, "2000", "Bank Loan", domain.Liability)
	f.capital = f.account(t, testBook, "3000", "Owner Capital", domain.Equity)
	f.sales = f.account(t, testBook, "4000", "Sales", domain.Revenue)
	f.groceries = f.account(t, testBook, "5100", "Groceries", domain.Expense)
	return f
}

func (f *ledgerFixture) account(t *testing.T, bookID, code, name string, typ domain.AccountType) *domain.Account {
	t.Helper()
	acc, err := f.svc.Account.CreateAccount(f.ctx, bookID, dto.CreateAccountRequest{Code: code, Name: name, AccountType: typ}, testUser)
	require.NoError(t, err)
	return acc
}

func (f *ledgerFixture) balance(t *testing.T, acc *domain.Account) decimal.Decimal {
	t.Helper()
	stored, err := f.store.FindAccountByID(f.ctx, acc.AccountID)
	require.NoError(t, err)
	return stored.Balance
}

func line(acc *domain.Account, debit, credit string) dto.EntryLineRequest {
	return dto.EntryLineRequest{AccountID: acc.AccountID, Debit: dec(debit), Credit: dec(credit)}
}

func (f *ledgerFixture) draft(t *testing.T, on time.Time, description string, lines ...dto.EntryLineRequest) *domain.JournalEntry {
	t.Helper()
	entry, err := f.svc.Journal.CreateEntry(f.ctx, testBook, dto.CreateEntryRequest{Date: on, Description: description, Lines: lines}, testUser)
	require.NoError(t, err)
	return entry
}

// posted creates and posts a two-line entry moving amount from creditAcc to debitAcc.
func (f *ledgerFixture) posted(t *testing.T, on time.Time, description string, debitAcc, creditAcc *domain.Account, amount string) *domain.JournalEntry {
	t.Helper()
	entry := f.draft(t, on, description, line(debitAcc, amount, "0"), line(creditAcc, "0", amount))
	posted, err := f.svc.Journal.PostEntry(f.ctx, testBook, entry.EntryID, testUser)
	require.NoError(t, err)
	return posted
}
