package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	// category name (lower-cased) -> account code
	categoryAccounts map[string]string
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithCategoryAccounts configures the category -> account code mapping used by ResolveCategoryAccount.
func WithCategoryAccounts(mapping map[string]string) AccountServiceOption {
	return func(s *accountService) {
		for category, code := range mapping {
			s.categoryAccounts[strings.ToLower(strings.TrimSpace(category))] = code
		}
	}
}

// WithAccountBase replaces the embedded BaseService.
func WithAccountBase(base BaseService) AccountServiceOption {
	return func(s *accountService) {
		s.BaseService = base
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:      repo,
		categoryAccounts: make(map[string]string),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, bookID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		parent, err := s.accountRepo.FindAccountByID(ctx, parentID)
		if err != nil {
			s.LogError(ctx, err, "Failed to find parent account", slog.String("parent_id", parentID))
			return nil, fmt.Errorf("invalid parent account: %w", err)
		}
		if err := s.CheckBook("parent account", parentID, parent.BookID, bookID); err != nil {
			s.LogError(ctx, err, "Parent account belongs to different book",
				slog.String("parent_book", parent.BookID),
				slog.String("requested_book", bookID))
			return nil, err
		}
	}

	now := s.now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		BookID:          bookID,
		Code:            code,
		Name:            name,
		AccountType:     req.AccountType,
		ParentAccountID: parentID,
		Description:     req.Description,
		IsActive:        true,
		Balance:         decimal.Zero,
		Version:         1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("code", account.Code),
			slog.String("book_id", bookID))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("book_id", bookID))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, bookID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	if err := s.CheckBook("account", accountID, account.BookID, bookID); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to get accounts", slog.Int("count", len(accountIDs)))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) ListAccounts(ctx context.Context, bookID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccountsByBook(ctx, bookID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("book_id", bookID))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) ListChildAccounts(ctx context.Context, bookID string, accountID string) ([]domain.Account, error) {
	if _, err := s.GetAccountByID(ctx, bookID, accountID); err != nil {
		return nil, err
	}
	children, err := s.accountRepo.ListChildAccounts(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child accounts", slog.String("account_id", accountID))
		return nil, err
	}
	return children, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, bookID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, bookID, accountID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
		}
		if name != account.Name {
			account.Name = name
			changed = true
		}
	}
	if req.Description != nil && *req.Description != account.Description {
		account.Description = *req.Description
		changed = true
	}
	if req.IsActive != nil && *req.IsActive != account.IsActive {
		account.IsActive = *req.IsActive
		changed = true
	}
	if !changed {
		return account, nil
	}

	account.LastUpdatedAt = s.now()
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, bookID string, accountID string, userID string) error {
	inactive := false
	_, err := s.UpdateAccount(ctx, bookID, accountID, dto.UpdateAccountRequest{IsActive: &inactive}, userID)
	return err
}

func (s *accountService) ResolveCategoryAccount(ctx context.Context, bookID string, category string) (*domain.Account, error) {
	key := strings.ToLower(strings.TrimSpace(category))
	code, ok := s.categoryAccounts[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnmappedCategory, category)
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, bookID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %q maps to unknown account code %s", apperrors.ErrUnmappedCategory, category, code)
		}
		s.LogError(ctx, err, "Failed to resolve category account", slog.String("category", category))
		return nil, err
	}
	return account, nil
}
