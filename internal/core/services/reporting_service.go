package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountReader
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingBase replaces the embedded BaseService.
func WithReportingBase(base BaseService) ReportingServiceOption {
	return func(s *reportingService) {
		s.BaseService = base
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, accountRepo portsrepo.AccountReader, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
		accountRepo:   accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func dateBound(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := accounting.DateOnly(*t)
	return &d
}

// balancesByAccount computes every account's balance from posted lines within [from, to].
// Accounts without activity get zero.
func (s *reportingService) balancesByAccount(ctx context.Context, bookID string, from, to *time.Time) ([]domain.Account, map[string]decimal.Decimal, error) {
	accounts, err := s.accountRepo.ListAccountsByBook(ctx, bookID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	totals, err := s.reportingRepo.SumPostedLinesByAccount(ctx, bookID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum posted lines: %w", err)
	}

	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, acc := range accounts {
		t, ok := totals[acc.AccountID]
		if !ok {
			balances[acc.AccountID] = decimal.Zero
			continue
		}
		balances[acc.AccountID] = accounting.BalanceFromTotals(acc.AccountType, t)
	}
	return accounts, balances, nil
}

func (s *reportingService) getBookAccount(ctx context.Context, bookID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.CheckBook("account", accountID, account.BookID, bookID); err != nil {
		return nil, err
	}
	return account, nil
}

// AccountBalance sums the posted lines of one account up to asOf.
func (s *reportingService) AccountBalance(ctx context.Context, bookID string, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := s.getBookAccount(ctx, bookID, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	totals, err := s.reportingRepo.SumPostedLinesForAccount(ctx, accountID, nil, dateBound(asOf))
	if err != nil {
		s.LogError(ctx, err, "Failed to compute account balance", slog.String("account_id", accountID))
		return decimal.Zero, fmt.Errorf("failed to compute account balance: %w", err)
	}
	return accounting.BalanceFromTotals(account.AccountType, totals), nil
}

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, bookID string, asOf *time.Time) (*domain.TrialBalanceReport, error) {
	asOf = dateBound(asOf)
	accounts, balances, err := s.balancesByAccount(ctx, bookID, nil, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data", slog.String("book_id", bookID))
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		AsOf:         asOf,
		Rows:         make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, acc := range accounts {
		debit, credit := accounting.TrialBalanceColumns(acc.AccountType, balances[acc.AccountID])
		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			Debit:       debit,
			Credit:      credit,
		})
		report.TotalDebits = report.TotalDebits.Add(debit)
		report.TotalCredits = report.TotalCredits.Add(credit)
	}
	report.Difference = report.TotalDebits.Sub(report.TotalCredits).Abs()
	report.IsBalanced = accounting.WithinTolerance(report.TotalDebits, report.TotalCredits)

	if !report.IsBalanced {
		s.GetLogger(ctx).Warn("Trial balance does not close",
			slog.String("book_id", bookID),
			slog.String("difference", report.Difference.String()))
	}
	s.LogDebug(ctx, "Trial balance report generated", slog.String("book_id", bookID), slog.Int("row_count", len(report.Rows)))
	return report, nil
}

// ProfitAndLoss generates a profit and loss report for a specific period
func (s *reportingService) ProfitAndLoss(ctx context.Context, bookID string, from, to time.Time) (*domain.PAndLReport, error) {
	fromDay, toDay := accounting.DateOnly(from), accounting.DateOnly(to)
	if toDay.Before(fromDay) {
		return nil, fmt.Errorf("%w: period end %s is before start %s", apperrors.ErrValidation, toDay.Format(time.DateOnly), fromDay.Format(time.DateOnly))
	}

	accounts, balances, err := s.balancesByAccount(ctx, bookID, &fromDay, &toDay)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve profit and loss data", slog.String("book_id", bookID))
		return nil, err
	}

	report := &domain.PAndLReport{
		From:          fromDay,
		To:            toDay,
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, acc := range accounts {
		amount := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, NetAmount: balances[acc.AccountID]}
		switch acc.AccountType {
		case domain.Revenue:
			report.Revenue = append(report.Revenue, amount)
			report.TotalRevenue = report.TotalRevenue.Add(amount.NetAmount)
		case domain.Expense:
			report.Expenses = append(report.Expenses, amount)
			report.TotalExpenses = report.TotalExpenses.Add(amount.NetAmount)
		}
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

// BalanceSheet generates a balance sheet report as of a specific date
func (s *reportingService) BalanceSheet(ctx context.Context, bookID string, asOf *time.Time) (*domain.BalanceSheetReport, error) {
	asOf = dateBound(asOf)
	accounts, balances, err := s.balancesByAccount(ctx, bookID, nil, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data", slog.String("book_id", bookID))
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		RetainedEarnings: decimal.Zero,
	}
	for _, acc := range accounts {
		balance := balances[acc.AccountID]
		amount := domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, NetAmount: balance}
		switch acc.AccountType {
		case domain.Asset:
			report.Assets = append(report.Assets, amount)
			report.TotalAssets = report.TotalAssets.Add(balance)
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, amount)
			report.TotalLiabilities = report.TotalLiabilities.Add(balance)
		case domain.Equity:
			report.Equity = append(report.Equity, amount)
			report.TotalEquity = report.TotalEquity.Add(balance)
		case domain.Revenue:
			report.RetainedEarnings = report.RetainedEarnings.Add(balance)
		case domain.Expense:
			report.RetainedEarnings = report.RetainedEarnings.Sub(balance)
		}
	}
	claims := report.TotalLiabilities.Add(report.TotalEquity).Add(report.RetainedEarnings)
	report.IsBalanced = accounting.WithinTolerance(report.TotalAssets, claims)
	return report, nil
}

// GeneralLedger returns one page of an account's posted lines with running balances.
// The first page starts from the balance at the end of the day before `from`; later pages
// continue from the balance carried in the token.
func (s *reportingService) GeneralLedger(ctx context.Context, bookID string, accountID string, params dto.GeneralLedgerParams) (*domain.GeneralLedgerPage, error) {
	account, err := s.getBookAccount(ctx, bookID, accountID)
	if err != nil {
		return nil, err
	}

	from, to := accounting.DateOnly(params.From), accounting.DateOnly(params.To)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period end %s is before start %s", apperrors.ErrValidation, to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}

	var after *domain.LedgerCursor
	var opening decimal.Decimal
	if params.NextToken != nil && *params.NextToken != "" {
		cursor, balance, err := pagination.DecodeLedgerToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		after, opening = &cursor, balance
	} else {
		dayBefore := from.AddDate(0, 0, -1)
		totals, err := s.reportingRepo.SumPostedLinesForAccount(ctx, accountID, nil, &dayBefore)
		if err != nil {
			s.LogError(ctx, err, "Failed to compute opening balance", slog.String("account_id", accountID))
			return nil, fmt.Errorf("failed to compute opening balance: %w", err)
		}
		opening = accounting.BalanceFromTotals(account.AccountType, totals)
	}

	lines, err := s.reportingRepo.ListPostedLines(ctx, accountID, from, to, after, limit+1)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger lines", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to list ledger lines: %w", err)
	}
	hasMore := len(lines) > limit
	if hasMore {
		lines = lines[:limit]
	}

	running := opening
	for i := range lines {
		running = running.Add(accounting.SignedDelta(account.AccountType, lines[i].Debit, lines[i].Credit))
		lines[i].RunningBalance = running
	}

	page := &domain.GeneralLedgerPage{
		AccountID:      accountID,
		From:           from,
		To:             to,
		OpeningBalance: opening,
		Lines:          lines,
	}
	if page.Lines == nil {
		page.Lines = []domain.LedgerLine{}
	}
	if hasMore {
		token := pagination.EncodeLedgerToken(lines[len(lines)-1].Cursor(), running)
		page.NextToken = &token
	}
	return page, nil
}
