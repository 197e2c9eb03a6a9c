package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, book_id, code, name, account_type, parent_account_id, description,
	is_active, balance, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	modelAccs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, fmt.Errorf("failed to scan account rows: %w", err)
	}
	return mapping.ToDomainAccountSlice(modelAccs), nil
}

func (r *PgxAccountRepository) findOne(ctx context.Context, where string, args ...any) (*domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	modelAcc, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	acc := mapping.ToDomainAccount(modelAcc)
	return &acc, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.BookID, m.Code, m.Name, m.AccountType, m.ParentAccountID, m.Description,
		m.IsActive, m.Balance, m.Version, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account code %s already used in book %s", apperrors.ErrDuplicate, m.Code, m.BookID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := r.findOne(ctx, `account_id = $1`, accountID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return acc, err
}

// FindAccountByCode retrieves an account by its code within a book.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, bookID string, code string) (*domain.Account, error) {
	acc, err := r.findOne(ctx, `book_id = $1 AND code = $2`, bookID, code)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	return acc, err
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ANY($1)`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}

	// Missing IDs are simply absent; the caller decides whether that is an error.
	out := make(map[string]domain.Account, len(accounts))
	for _, acc := range accounts {
		out[acc.AccountID] = acc
	}
	return out, nil
}

// ListAccountsByBook returns every account of a book ordered by code.
func (r *PgxAccountRepository) ListAccountsByBook(ctx context.Context, bookID string) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE book_id = $1 ORDER BY code`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for book %s: %w", bookID, err)
	}
	return collectAccounts(rows)
}

// ListChildAccounts returns the direct children of an account ordered by code.
func (r *PgxAccountRepository) ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE parent_account_id = $1 ORDER BY code`, parentAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query child accounts of %s: %w", parentAccountID, err)
	}
	return collectAccounts(rows)
}

// UpdateAccount updates the descriptive fields of an account and bumps its version.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, description = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6, version = version + 1
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.AccountID, account.Name, account.Description, account.IsActive, account.LastUpdatedAt, account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	return nil
}

// lockAccounts reads and locks the given accounts FOR UPDATE inside tx, in id order to avoid
// deadlocks. Unknown ids are absent from the result.
func lockAccounts(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	locked := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return locked, nil
	}
	rows, err := tx.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		locked[acc.AccountID] = acc
	}
	return locked, nil
}

// applyBalanceChanges adds each delta to the stored balance inside tx.
func applyBalanceChanges(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, userID string, at time.Time) error {
	batch := &pgx.Batch{}
	for accountID, delta := range changes {
		batch.Queue(`
			UPDATE accounts
			SET balance = balance + $2, version = version + 1, last_updated_at = $3, last_updated_by = $4
			WHERE account_id = $1`, accountID, delta, at, userID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to update account balances: %w", err)
	}
	return nil
}
