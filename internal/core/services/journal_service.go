package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// journalService provides journal entry creation, editing and posting.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.AccountSvcFacade
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithJournalBase replaces the embedded BaseService.
func WithJournalBase(base BaseService) JournalServiceOption {
	return func(s *journalService) {
		s.BaseService = base
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade, options ...JournalServiceOption) portssvc.JournalSvcFacade {
	svc := &journalService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines converts request lines into numbered domain lines.
func buildLines(entryID string, reqs []dto.EntryLineRequest) []domain.JournalEntryLine {
	lines := make([]domain.JournalEntryLine, len(reqs))
	for i, r := range reqs {
		lines[i] = domain.JournalEntryLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			LineNumber:  i + 1,
			AccountID:   r.AccountID,
			Debit:       r.Debit,
			Credit:      r.Credit,
			Description: r.Description,
		}
	}
	return lines
}

// loadEntryAccounts fetches every account referenced by lines and checks that each exists and
// belongs to the book. When requireActive is set, inactive accounts are rejected as well.
func (s *journalService) loadEntryAccounts(ctx context.Context, bookID string, lines []domain.JournalEntryLine, requireActive bool) (map[string]domain.Account, error) {
	ids := domain.JournalEntry{Lines: lines}.AccountIDs()
	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if err := s.CheckBook("account", id, acc.BookID, bookID); err != nil {
			return nil, err
		}
		if requireActive && !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s (%s) is inactive", apperrors.ErrValidation, acc.Code, id)
		}
	}
	return accounts, nil
}

func (s *journalService) CreateEntry(ctx context.Context, bookID string, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(slog.String("book_id", bookID))

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}

	entryID := uuid.NewString()
	lines := buildLines(entryID, req.Lines)
	if _, _, err := accounting.ValidateLines(lines); err != nil {
		logger.Warn("Rejected journal entry", slog.String("error", err.Error()))
		return nil, err
	}
	if _, err := s.loadEntryAccounts(ctx, bookID, lines, true); err != nil {
		logger.Warn("Rejected journal entry accounts", slog.String("error", err.Error()))
		return nil, err
	}

	now := s.now()
	entry := domain.JournalEntry{
		EntryID:         entryID,
		BookID:          bookID,
		EntryDate:       accounting.DateOnly(req.Date),
		Description:     description,
		ReferenceNumber: req.ReferenceNumber,
		Status:          domain.Draft,
		Lines:           lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.journalRepo.SaveEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("entry_id", entryID))
		return nil, err
	}

	logger.Info("Journal entry created", slog.String("entry_id", entryID), slog.Int("lines", len(lines)))
	return &entry, nil
}

func (s *journalService) GetEntryByID(ctx context.Context, bookID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get journal entry", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	if err := s.CheckBook("journal entry", entryID, entry.BookID, bookID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *journalService) ListEntries(ctx context.Context, bookID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, params.Status)
	}

	entries, nextToken, err := s.journalRepo.ListEntriesByBook(ctx, bookID, params.Status, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("book_id", bookID))
		return nil, err
	}

	return &dto.ListEntriesResponse{
		Entries:   dto.ToJournalEntryResponses(entries),
		NextToken: nextToken,
	}, nil
}

func (s *journalService) UpdateEntry(ctx context.Context, bookID string, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.GetEntryByID(ctx, bookID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrImmutableEntry, entryID, entry.Status)
	}

	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
		}
		entry.EntryDate = accounting.DateOnly(*req.Date)
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
		}
		entry.Description = description
	}
	if req.ReferenceNumber != nil {
		entry.ReferenceNumber = *req.ReferenceNumber
	}
	if req.Lines != nil {
		lines := buildLines(entryID, req.Lines)
		if _, _, err := accounting.ValidateLines(lines); err != nil {
			return nil, err
		}
		if _, err := s.loadEntryAccounts(ctx, bookID, lines, true); err != nil {
			return nil, err
		}
		entry.Lines = lines
	}

	entry.LastUpdatedAt = s.now()
	entry.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateDraftEntry(ctx, *entry); err != nil {
		s.LogError(ctx, err, "Failed to update journal entry", slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

func (s *journalService) DeleteEntry(ctx context.Context, bookID string, entryID string, userID string) error {
	entry, err := s.GetEntryByID(ctx, bookID, entryID)
	if err != nil {
		return err
	}
	if entry.Status != domain.Draft {
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrImmutableEntry, entryID, entry.Status)
	}

	if err := s.journalRepo.DeleteDraftEntry(ctx, entryID); err != nil {
		s.LogError(ctx, err, "Failed to delete journal entry", slog.String("entry_id", entryID))
		return err
	}

	s.LogInfo(ctx, "Journal entry deleted", slog.String("entry_id", entryID), slog.String("user_id", userID))
	return nil
}

func (s *journalService) PostEntry(ctx context.Context, bookID string, entryID string, userID string) (*domain.JournalEntry, error) {
	return s.transition(ctx, bookID, entryID, domain.Posted, userID)
}

func (s *journalService) VoidEntry(ctx context.Context, bookID string, entryID string, userID string) (*domain.JournalEntry, error) {
	return s.transition(ctx, bookID, entryID, domain.Void, userID)
}

// transition moves an entry to next and applies (POSTED) or reverses (VOID) its balance effect.
func (s *journalService) transition(ctx context.Context, bookID, entryID string, next domain.EntryStatus, userID string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(slog.String("entry_id", entryID), slog.String("target_status", string(next)))

	entry, err := s.GetEntryByID(ctx, bookID, entryID)
	if err != nil {
		return nil, err
	}
	if err := accounting.CheckTransition(entryID, entry.Status, next); err != nil {
		logger.Warn("Rejected status transition", slog.String("current_status", string(entry.Status)))
		return nil, err
	}

	// Fail fast on the lines as loaded; the repository recomputes the changes under its lock.
	accounts, err := s.loadEntryAccounts(ctx, bookID, entry.Lines, next == domain.Posted)
	if err != nil {
		return nil, err
	}
	changes, err := accounting.TransitionChanges(entry.Lines, accounts, next)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.TransitionEntry(ctx, entryID, entry.Status, next, userID, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to change journal entry status", slog.String("entry_id", entryID))
		return nil, err
	}

	updated, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	logger.Info("Journal entry status changed", slog.Int("accounts", len(changes)))
	return updated, nil
}

func (s *journalService) RecordCategorizedTransaction(ctx context.Context, bookID string, req dto.CategorizedTransactionRequest, userID string) (*domain.JournalEntry, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.Direction != domain.Debit && req.Direction != domain.Credit {
		return nil, fmt.Errorf("%w: direction must be DEBIT or CREDIT", apperrors.ErrValidation)
	}

	categoryAccount, err := s.accountSvc.ResolveCategoryAccount(ctx, bookID, req.Category)
	if err != nil {
		return nil, err
	}
	cash, err := s.accountSvc.GetAccountByID(ctx, bookID, req.CashAccountID)
	if err != nil {
		return nil, err
	}

	cashLine := dto.EntryLineRequest{AccountID: cash.AccountID, Description: req.Description}
	categoryLine := dto.EntryLineRequest{AccountID: categoryAccount.AccountID, Description: req.Category}
	if req.Direction == domain.Debit {
		cashLine.Debit, categoryLine.Credit = req.Amount, req.Amount
	} else {
		categoryLine.Debit, cashLine.Credit = req.Amount, req.Amount
	}

	entry, err := s.CreateEntry(ctx, bookID, dto.CreateEntryRequest{
		Date:            req.Date,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
		Lines:           []dto.EntryLineRequest{cashLine, categoryLine},
	}, userID)
	if err != nil {
		return nil, err
	}
	if !req.Post {
		return entry, nil
	}
	return s.PostEntry(ctx, bookID, entry.EntryID, userID)
}
