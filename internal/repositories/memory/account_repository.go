package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

func (s *Store) FindAccountByCode(ctx context.Context, bookID string, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.accounts {
		if acc.BookID == bookID && acc.Code == code {
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (s *Store) ListAccountsByBook(ctx context.Context, bookID string) ([]domain.Account, error) {
	return s.listAccounts(func(a domain.Account) bool { return a.BookID == bookID }), nil
}

func (s *Store) ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	return s.listAccounts(func(a domain.Account) bool { return a.ParentAccountID == parentAccountID }), nil
}

func (s *Store) listAccounts(keep func(domain.Account) bool) []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Account{}
	for _, acc := range s.accounts {
		if keep(acc) {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	for _, acc := range s.accounts {
		if acc.BookID == account.BookID && acc.Code == account.Code {
			return fmt.Errorf("%w: account code %s already used in book %s", apperrors.ErrDuplicate, account.Code, account.BookID)
		}
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[account.AccountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	stored.Name = account.Name
	stored.Description = account.Description
	stored.IsActive = account.IsActive
	stored.LastUpdatedAt = account.LastUpdatedAt
	stored.LastUpdatedBy = account.LastUpdatedBy
	stored.Version++
	s.accounts[account.AccountID] = stored
	return nil
}
