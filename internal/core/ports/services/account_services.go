package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account of the book. Accounts of other books yield apperrors.ErrAccess.
	GetAccountByID(ctx context.Context, bookID string, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs regardless of book; missing IDs are absent.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts returns the chart of accounts of a book ordered by code.
	ListAccounts(ctx context.Context, bookID string) ([]domain.Account, error)

	// ListChildAccounts returns the direct children of an account.
	ListChildAccounts(ctx context.Context, bookID string, accountID string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, bookID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, bookID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, bookID string, accountID string, userID string) error
}

// CategoryResolverSvc maps transaction categories to accounts.
type CategoryResolverSvc interface {
	// ResolveCategoryAccount returns the account configured for category, or apperrors.ErrUnmappedCategory.
	ResolveCategoryAccount(ctx context.Context, bookID string, category string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	CategoryResolverSvc
}
