package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/matching"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reconciliationService implements the ReconciliationSvcFacade interface
type reconciliationService struct {
	BaseService
	reconRepo   portsrepo.ReconciliationRepositoryFacade
	accountRepo portsrepo.AccountReader
	matcher     *matching.Matcher
}

// ReconciliationServiceOption is a functional option for configuring the reconciliation service
type ReconciliationServiceOption func(*reconciliationService)

// WithMatcher sets the matcher used by RunAutoMatch.
func WithMatcher(m *matching.Matcher) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		s.matcher = m
	}
}

// WithReconciliationBase replaces the embedded BaseService.
func WithReconciliationBase(base BaseService) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		s.BaseService = base
	}
}

// NewReconciliationService creates a new reconciliation service with the provided options
func NewReconciliationService(repo portsrepo.ReconciliationRepositoryFacade, accountRepo portsrepo.AccountReader, options ...ReconciliationServiceOption) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		reconRepo:   repo,
		accountRepo: accountRepo,
		matcher:     matching.NewMatcher(matching.DefaultOptions()),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// reconciledAccount returns the account being reconciled, mapping "missing" to ErrInvalidAccount.
func (s *reconciliationService) reconciledAccount(ctx context.Context, bookID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidAccount, accountID)
		}
		return nil, err
	}
	if err := s.CheckBook("account", accountID, account.BookID, bookID); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *reconciliationService) GetReconciliation(ctx context.Context, bookID string, reconciliationID string) (*domain.Reconciliation, error) {
	rec, err := s.reconRepo.FindReconciliationByID(ctx, reconciliationID)
	if err != nil {
		return nil, err
	}
	if err := s.CheckBook("reconciliation", reconciliationID, rec.BookID, bookID); err != nil {
		return nil, err
	}
	return rec, nil
}

// openReconciliation loads a reconciliation that can still be changed.
func (s *reconciliationService) openReconciliation(ctx context.Context, bookID, reconciliationID string) (*domain.Reconciliation, error) {
	rec, err := s.GetReconciliation(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}
	if rec.Status != domain.ReconciliationInProgress {
		return nil, fmt.Errorf("%w: reconciliation %s is %s", apperrors.ErrConflict, reconciliationID, rec.Status)
	}
	return rec, nil
}

func (s *reconciliationService) StartReconciliation(ctx context.Context, bookID string, req dto.StartReconciliationRequest, userID string) (*domain.Reconciliation, error) {
	if req.StatementDate.IsZero() {
		return nil, fmt.Errorf("%w: statement date is required", apperrors.ErrValidation)
	}
	account, err := s.reconciledAccount(ctx, bookID, req.AccountID)
	if err != nil {
		s.LogError(ctx, err, "Cannot start reconciliation", slog.String("account_id", req.AccountID))
		return nil, err
	}

	now := s.now()
	rec := domain.Reconciliation{
		ReconciliationID: uuid.NewString(),
		BookID:           bookID,
		AccountID:        account.AccountID,
		StatementDate:    accounting.DateOnly(req.StatementDate),
		OpeningBalance:   req.OpeningBalance,
		ClosingBalance:   req.ClosingBalance,
		Status:           domain.ReconciliationInProgress,
		Variance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.reconRepo.SaveReconciliation(ctx, rec); err != nil {
		s.LogError(ctx, err, "Failed to save reconciliation", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Reconciliation started",
		slog.String("reconciliation_id", rec.ReconciliationID),
		slog.String("account_id", account.AccountID))
	return &rec, nil
}

func (s *reconciliationService) ImportStatementLines(ctx context.Context, bookID string, reconciliationID string, req dto.ImportStatementLinesRequest, userID string) ([]domain.BankStatementLine, error) {
	rec, err := s.openReconciliation(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}

	lines := dto.ToStatementLines(req.Lines)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no statement lines", apperrors.ErrInvalidStatement)
	}
	if err := matching.ValidateStatementLines(lines); err != nil {
		return nil, err
	}

	existing, err := s.reconRepo.ListStatementLines(ctx, rec.ReconciliationID, false)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].ReconciliationID = rec.ReconciliationID
		lines[i].Sequence = len(existing) + i + 1
		lines[i].Date = accounting.DateOnly(lines[i].Date)
	}

	if err := s.reconRepo.SaveStatementLines(ctx, lines); err != nil {
		s.LogError(ctx, err, "Failed to save statement lines", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}

	s.LogInfo(ctx, "Statement lines imported",
		slog.String("reconciliation_id", reconciliationID),
		slog.Int("count", len(lines)),
		slog.String("user_id", userID))
	return lines, nil
}

func (s *reconciliationService) RunAutoMatch(ctx context.Context, bookID string, reconciliationID string, userID string) (*domain.AutoMatchResult, error) {
	rec, err := s.openReconciliation(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.reconciledAccount(ctx, bookID, rec.AccountID); err != nil {
		return nil, err
	}

	lines, err := s.reconRepo.ListStatementLines(ctx, rec.ReconciliationID, true)
	if err != nil {
		return nil, err
	}
	txns, err := s.reconRepo.ListUnreconciledTransactions(ctx, rec.AccountID, rec.StatementDate)
	if err != nil {
		return nil, err
	}

	result, err := s.matcher.AutoMatch(lines, txns, rec.ClosingBalance.Sub(rec.OpeningBalance))
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]domain.ReconciliationItem, 0, len(result.Matches))
	for _, m := range result.Matches {
		items = append(items, domain.ReconciliationItem{
			ItemID:           uuid.NewString(),
			ReconciliationID: rec.ReconciliationID,
			ItemType:         m.Type,
			StatementLineID:  m.StatementLine.LineID,
			TransactionID:    m.Transaction.TransactionID,
			Description:      m.StatementLine.Description,
			Amount:           m.StatementLine.SignedAmount(),
			MatchScore:       m.Score,
			CreatedAt:        now,
			CreatedBy:        userID,
		})
	}
	saved, err := s.reconRepo.SaveMatches(ctx, items)
	if err != nil {
		s.LogError(ctx, err, "Failed to save matches", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	keepPersisted(result, saved)

	summary, err := s.GetSummary(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}
	result.Variance = summary.Variance

	s.LogInfo(ctx, "Auto match completed",
		slog.String("reconciliation_id", reconciliationID),
		slog.Int("matched", len(saved)),
		slog.Int("unmatched_lines", len(result.UnmatchedStatementLines)),
		slog.Int("unmatched_transactions", len(result.UnmatchedTransactions)))
	return result, nil
}

// keepPersisted narrows result.Matches to the pairs the repository stored. A pair dropped because
// its line or transaction was claimed concurrently goes back to the unmatched lists.
func keepPersisted(result *domain.AutoMatchResult, saved []domain.ReconciliationItem) {
	stored := make(map[string]string, len(saved))
	for _, item := range saved {
		stored[item.StatementLineID] = item.TransactionID
	}

	kept := make([]domain.Match, 0, len(saved))
	for _, m := range result.Matches {
		if txnID, ok := stored[m.StatementLine.LineID]; ok && txnID == m.Transaction.TransactionID {
			kept = append(kept, m)
			continue
		}
		result.UnmatchedStatementLines = append(result.UnmatchedStatementLines, m.StatementLine)
		result.UnmatchedTransactions = append(result.UnmatchedTransactions, m.Transaction)
	}
	result.Matches = kept
}

func (s *reconciliationService) ManualMatch(ctx context.Context, bookID string, reconciliationID string, req dto.ManualMatchRequest, userID string) (*domain.ReconciliationItem, error) {
	rec, err := s.openReconciliation(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}

	line, err := s.reconRepo.FindStatementLineByID(ctx, req.StatementLineID)
	if err != nil {
		return nil, err
	}
	if line.ReconciliationID != rec.ReconciliationID {
		return nil, fmt.Errorf("%w: statement line %s is not part of reconciliation %s", apperrors.ErrNotFound, req.StatementLineID, reconciliationID)
	}
	if _, err := s.reconRepo.FindTransactionByID(ctx, rec.AccountID, req.TransactionID); err != nil {
		return nil, err
	}

	item, err := s.reconRepo.SaveManualMatch(ctx, domain.ReconciliationItem{
		ItemID:           uuid.NewString(),
		ReconciliationID: rec.ReconciliationID,
		ItemType:         domain.MatchedManual,
		StatementLineID:  line.LineID,
		TransactionID:    req.TransactionID,
		Description:      line.Description,
		Amount:           line.SignedAmount(),
		MatchScore:       matching.PerfectMatchScore,
		CreatedAt:        s.now(),
		CreatedBy:        userID,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save manual match",
			slog.String("statement_line_id", req.StatementLineID),
			slog.String("transaction_id", req.TransactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Manual match recorded", slog.String("item_id", item.ItemID))
	return item, nil
}

func (s *reconciliationService) CreateOutstandingItem(ctx context.Context, bookID string, reconciliationID string, req dto.CreateOutstandingItemRequest, userID string) (*domain.ReconciliationItem, error) {
	rec, err := s.openReconciliation(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown outstanding kind %q", apperrors.ErrValidation, req.Kind)
	}
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: outstanding amount must not be zero", apperrors.ErrValidation)
	}

	item := domain.ReconciliationItem{
		ItemID:           uuid.NewString(),
		ReconciliationID: rec.ReconciliationID,
		ItemType:         domain.Outstanding,
		OutstandingKind:  req.Kind,
		Description:      req.Description,
		Amount:           req.Amount,
		CreatedAt:        s.now(),
		CreatedBy:        userID,
	}
	if req.TransactionID != nil && *req.TransactionID != "" {
		if _, err := s.reconRepo.FindTransactionByID(ctx, rec.AccountID, *req.TransactionID); err != nil {
			return nil, err
		}
		item.TransactionID = *req.TransactionID
	}

	if err := s.reconRepo.SaveItem(ctx, item); err != nil {
		s.LogError(ctx, err, "Failed to save outstanding item", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	s.LogInfo(ctx, "Outstanding item recorded", slog.String("item_id", item.ItemID), slog.String("kind", string(item.OutstandingKind)))
	return &item, nil
}

func (s *reconciliationService) ClearItem(ctx context.Context, bookID string, reconciliationID string, itemID string, req dto.ClearItemRequest, userID string) (*domain.ReconciliationItem, error) {
	rec, err := s.openReconciliation(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}
	item, err := s.reconRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.ReconciliationID != rec.ReconciliationID {
		return nil, fmt.Errorf("%w: item %s is not part of reconciliation %s", apperrors.ErrNotFound, itemID, reconciliationID)
	}
	if item.ItemType != domain.Outstanding {
		return nil, fmt.Errorf("%w: only outstanding items can be cleared", apperrors.ErrValidation)
	}

	clearingDate := s.now()
	if req.ClearingDate != nil {
		clearingDate = *req.ClearingDate
	}
	clearingDate = accounting.DateOnly(clearingDate)

	if err := s.reconRepo.ClearItem(ctx, itemID, clearingDate); err != nil {
		s.LogError(ctx, err, "Failed to clear item", slog.String("item_id", itemID))
		return nil, err
	}
	item.IsCleared = true
	item.ClearingDate = &clearingDate

	s.LogInfo(ctx, "Outstanding item cleared", slog.String("item_id", itemID), slog.String("user_id", userID))
	return item, nil
}

// GetSummary computes the variance as
// (matched amounts + uncleared outstanding amounts) - (closing balance - opening balance).
func (s *reconciliationService) GetSummary(ctx context.Context, bookID string, reconciliationID string) (*domain.ReconciliationSummary, error) {
	rec, err := s.GetReconciliation(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}
	items, err := s.reconRepo.ListItems(ctx, reconciliationID)
	if err != nil {
		return nil, err
	}
	unmatched, err := s.reconRepo.ListStatementLines(ctx, reconciliationID, true)
	if err != nil {
		return nil, err
	}

	summary := &domain.ReconciliationSummary{
		Reconciliation:          *rec,
		Items:                   items,
		UnmatchedStatementLines: unmatched,
		MatchedTotal:            decimal.Zero,
		OutstandingTotal:        decimal.Zero,
		ExpectedMovement:        rec.ClosingBalance.Sub(rec.OpeningBalance),
	}
	for _, item := range items {
		switch {
		case item.ItemType.IsMatch():
			summary.MatchedTotal = summary.MatchedTotal.Add(item.Amount)
		case item.ItemType == domain.Outstanding && !item.IsCleared:
			summary.OutstandingTotal = summary.OutstandingTotal.Add(item.Amount)
		}
	}
	summary.Variance = summary.MatchedTotal.Add(summary.OutstandingTotal).Sub(summary.ExpectedMovement)
	return summary, nil
}

func (s *reconciliationService) CompleteReconciliation(ctx context.Context, bookID string, reconciliationID string, userID string) (*domain.Reconciliation, error) {
	if _, err := s.openReconciliation(ctx, bookID, reconciliationID); err != nil {
		return nil, err
	}
	summary, err := s.GetSummary(ctx, bookID, reconciliationID)
	if err != nil {
		return nil, err
	}

	if err := s.reconRepo.CompleteReconciliation(ctx, reconciliationID, summary.Variance, userID, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to complete reconciliation", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	if !summary.Variance.IsZero() {
		s.GetLogger(ctx).Warn("Reconciliation completed with variance",
			slog.String("reconciliation_id", reconciliationID),
			slog.String("variance", summary.Variance.String()))
	}
	return s.GetReconciliation(ctx, bookID, reconciliationID)
}
