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

const reconciliationColumns = `reconciliation_id, book_id, account_id, statement_date, opening_balance, closing_balance,
	status, variance, completed_at, created_at, created_by, last_updated_at, last_updated_by`

const statementLineColumns = `line_id, reconciliation_id, sequence, line_date, description, amount, direction,
	reference, is_matched, matched_transaction_id`

const itemColumns = `item_id, reconciliation_id, item_type, statement_line_id, transaction_id, outstanding_kind,
	description, amount, match_score, is_cleared, clearing_date, created_at, created_by`

// bookTransactionSelect reads posted lines as book transactions.
const bookTransactionSelect = `
	SELECT jl.line_id, je.entry_id, jl.account_id, je.entry_date,
		COALESCE(NULLIF(jl.description, ''), je.description), jl.debit, jl.credit` + postedLinesFrom

// unclaimed excludes lines already held by a match item of any reconciliation.
const unclaimed = ` AND NOT EXISTS (
	SELECT 1 FROM reconciliation_items ri
	WHERE ri.transaction_id = jl.line_id AND ri.item_type <> 'OUTSTANDING')`

// PgxReconciliationRepository implements the reconciliation repository ports using pgx.
type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) *PgxReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

func scanBookTransaction(row pgx.CollectableRow) (domain.BookTransaction, error) {
	var txn domain.BookTransaction
	var debit, credit decimal.Decimal
	if err := row.Scan(&txn.TransactionID, &txn.EntryID, &txn.AccountID, &txn.Date, &txn.Description, &debit, &credit); err != nil {
		return txn, err
	}
	txn.Amount = debit.Sub(credit).Abs()
	txn.Direction = domain.Debit
	if credit.GreaterThan(debit) {
		txn.Direction = domain.Credit
	}
	return txn, nil
}

func (r *PgxReconciliationRepository) FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.Reconciliation, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+reconciliationColumns+` FROM reconciliations WHERE reconciliation_id = $1`, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation %s: %w", reconciliationID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Reconciliation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: reconciliation %s", apperrors.ErrNotFound, reconciliationID)
		}
		return nil, fmt.Errorf("failed to scan reconciliation %s: %w", reconciliationID, err)
	}
	rec := mapping.ToDomainReconciliation(m)
	return &rec, nil
}

func (r *PgxReconciliationRepository) ListStatementLines(ctx context.Context, reconciliationID string, onlyUnmatched bool) ([]domain.BankStatementLine, error) {
	query := `SELECT ` + statementLineColumns + ` FROM bank_statement_lines WHERE reconciliation_id = $1`
	if onlyUnmatched {
		query += ` AND NOT is_matched`
	}
	query += ` ORDER BY sequence`

	rows, err := r.Pool.Query(ctx, query, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statement lines of %s: %w", reconciliationID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.StatementLine])
	if err != nil {
		return nil, fmt.Errorf("failed to scan statement lines: %w", err)
	}
	out := make([]domain.BankStatementLine, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainStatementLine(m)
	}
	return out, nil
}

func findStatementLine(ctx context.Context, q querier, lineID string, forUpdate bool) (*domain.BankStatementLine, error) {
	query := `SELECT ` + statementLineColumns + ` FROM bank_statement_lines WHERE line_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, query, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statement line %s: %w", lineID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.StatementLine])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, lineID)
		}
		return nil, fmt.Errorf("failed to scan statement line %s: %w", lineID, err)
	}
	line := mapping.ToDomainStatementLine(m)
	return &line, nil
}

func (r *PgxReconciliationRepository) FindStatementLineByID(ctx context.Context, lineID string) (*domain.BankStatementLine, error) {
	return findStatementLine(ctx, r.Pool, lineID, false)
}

func collectItems(rows pgx.Rows) ([]domain.ReconciliationItem, error) {
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ReconciliationItem])
	if err != nil {
		return nil, fmt.Errorf("failed to scan reconciliation items: %w", err)
	}
	out := make([]domain.ReconciliationItem, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainReconciliationItem(m)
	}
	return out, nil
}

func (r *PgxReconciliationRepository) ListItems(ctx context.Context, reconciliationID string) ([]domain.ReconciliationItem, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+itemColumns+` FROM reconciliation_items WHERE reconciliation_id = $1 ORDER BY item_seq`, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items of reconciliation %s: %w", reconciliationID, err)
	}
	return collectItems(rows)
}

func (r *PgxReconciliationRepository) FindItemByID(ctx context.Context, itemID string) (*domain.ReconciliationItem, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+itemColumns+` FROM reconciliation_items WHERE item_id = $1`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation item %s: %w", itemID, err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: reconciliation item %s", apperrors.ErrNotFound, itemID)
	}
	return &items[0], nil
}

func (r *PgxReconciliationRepository) ListUnreconciledTransactions(ctx context.Context, accountID string, asOf time.Time) ([]domain.BookTransaction, error) {
	query := bookTransactionSelect + ` AND jl.account_id = $1 AND je.entry_date <= $2` + unclaimed + ` ORDER BY ` + ledgerOrder
	rows, err := r.Pool.Query(ctx, query, accountID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query unreconciled transactions of %s: %w", accountID, err)
	}
	txns, err := pgx.CollectRows(rows, scanBookTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to scan book transactions: %w", err)
	}
	return txns, nil
}

func (r *PgxReconciliationRepository) FindTransactionByID(ctx context.Context, accountID string, transactionID string) (*domain.BookTransaction, error) {
	rows, err := r.Pool.Query(ctx, bookTransactionSelect+` AND jl.account_id = $1 AND jl.line_id = $2`, accountID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction %s: %w", transactionID, err)
	}
	txn, err := pgx.CollectOneRow(rows, scanBookTransaction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: posted transaction %s on account %s", apperrors.ErrNotFound, transactionID, accountID)
		}
		return nil, fmt.Errorf("failed to scan transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

func (r *PgxReconciliationRepository) SaveReconciliation(ctx context.Context, rec domain.Reconciliation) error {
	m := mapping.ToModelReconciliation(rec)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO reconciliations (`+reconciliationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ReconciliationID, m.BookID, m.AccountID, m.StatementDate, m.OpeningBalance, m.ClosingBalance,
		m.Status, m.Variance, m.CompletedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reconciliation %s", apperrors.ErrDuplicate, m.ReconciliationID)
		}
		return fmt.Errorf("failed to save reconciliation %s: %w", m.ReconciliationID, err)
	}
	return nil
}

func (r *PgxReconciliationRepository) CompleteReconciliation(ctx context.Context, reconciliationID string, variance decimal.Decimal, userID string, at time.Time) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM reconciliations WHERE reconciliation_id = $1 FOR UPDATE`, reconciliationID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: reconciliation %s", apperrors.ErrNotFound, reconciliationID)
			}
			return fmt.Errorf("failed to lock reconciliation %s: %w", reconciliationID, err)
		}
		if domain.ReconciliationStatus(status) != domain.ReconciliationInProgress {
			return fmt.Errorf("%w: reconciliation %s is %s", apperrors.ErrConflict, reconciliationID, status)
		}

		_, err = tx.Exec(ctx, `
			UPDATE reconciliations
			SET status = $2, variance = $3, completed_at = $4, last_updated_at = $4, last_updated_by = $5
			WHERE reconciliation_id = $1`,
			reconciliationID, string(domain.ReconciliationCompleted), variance, at, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to complete reconciliation %s: %w", reconciliationID, err)
		}
		return nil
	})
}

func (r *PgxReconciliationRepository) SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		checked := make(map[string]bool)
		for _, l := range lines {
			if checked[l.ReconciliationID] {
				continue
			}
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reconciliations WHERE reconciliation_id = $1)`, l.ReconciliationID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check reconciliation %s: %w", l.ReconciliationID, err)
			}
			if !exists {
				return fmt.Errorf("%w: reconciliation %s", apperrors.ErrNotFound, l.ReconciliationID)
			}
			checked[l.ReconciliationID] = true
		}

		batch := &pgx.Batch{}
		for _, l := range lines {
			m := mapping.ToModelStatementLine(l)
			batch.Queue(`INSERT INTO bank_statement_lines (`+statementLineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				m.LineID, m.ReconciliationID, m.Sequence, m.LineDate, m.Description, m.Amount, m.Direction,
				m.Reference, m.IsMatched, m.MatchedTransactionID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: statement line", apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert statement lines: %w", err)
		}
		return nil
	})
}

func itemArgs(item domain.ReconciliationItem) []any {
	m := mapping.ToModelReconciliationItem(item)
	return []any{
		m.ItemID, m.ReconciliationID, m.ItemType, m.StatementLineID, m.TransactionID, m.OutstandingKind,
		m.Description, m.Amount, m.MatchScore, m.IsCleared, m.ClearingDate, m.CreatedAt, m.CreatedBy,
	}
}

const insertItem = `INSERT INTO reconciliation_items (` + itemColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func markLine(ctx context.Context, tx pgx.Tx, lineID string, transactionID string) error {
	var matched *string
	if transactionID != "" {
		matched = &transactionID
	}
	_, err := tx.Exec(ctx, `UPDATE bank_statement_lines SET is_matched = $2, matched_transaction_id = $3 WHERE line_id = $1`,
		lineID, matched != nil, matched)
	if err != nil {
		return fmt.Errorf("failed to update statement line %s: %w", lineID, err)
	}
	return nil
}

// SaveMatches stores match items whose line is still unmatched and whose transaction is unclaimed.
// The partial unique index on transaction_id settles races with concurrent runs.
func (r *PgxReconciliationRepository) SaveMatches(ctx context.Context, items []domain.ReconciliationItem) ([]domain.ReconciliationItem, error) {
	saved := make([]domain.ReconciliationItem, 0, len(items))
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		for _, item := range items {
			line, err := findStatementLine(ctx, tx, item.StatementLineID, true)
			if err != nil {
				return err
			}
			if line.IsMatched {
				continue
			}

			tag, err := tx.Exec(ctx, insertItem+` ON CONFLICT (transaction_id) WHERE item_type <> 'OUTSTANDING' DO NOTHING`, itemArgs(item)...)
			if err != nil {
				return fmt.Errorf("failed to insert match item %s: %w", item.ItemID, err)
			}
			if tag.RowsAffected() == 0 {
				continue
			}
			if err := markLine(ctx, tx, item.StatementLineID, item.TransactionID); err != nil {
				return err
			}
			saved = append(saved, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// SaveManualMatch pairs a statement line with a transaction, replacing earlier matches of either side.
func (r *PgxReconciliationRepository) SaveManualMatch(ctx context.Context, item domain.ReconciliationItem) (*domain.ReconciliationItem, error) {
	var result *domain.ReconciliationItem
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := findStatementLine(ctx, tx, item.StatementLineID, true); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			SELECT `+itemColumns+` FROM reconciliation_items
			WHERE item_type <> 'OUTSTANDING' AND (statement_line_id = $1 OR transaction_id = $2)
			ORDER BY item_seq
			FOR UPDATE`, item.StatementLineID, item.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to query existing matches: %w", err)
		}
		existing, err := collectItems(rows)
		if err != nil {
			return err
		}

		var replaced []domain.ReconciliationItem
		for _, e := range existing {
			sameLine := e.StatementLineID == item.StatementLineID
			sameTxn := e.TransactionID == item.TransactionID
			switch {
			case e.ReconciliationID != item.ReconciliationID:
				if sameTxn {
					return fmt.Errorf("%w: transaction %s is matched in reconciliation %s", apperrors.ErrConflict, item.TransactionID, e.ReconciliationID)
				}
			case sameLine && sameTxn:
				out := e
				result = &out
				return nil
			default:
				replaced = append(replaced, e)
			}
		}

		for _, old := range replaced {
			if _, err := tx.Exec(ctx, `DELETE FROM reconciliation_items WHERE item_id = $1`, old.ItemID); err != nil {
				return fmt.Errorf("failed to remove match item %s: %w", old.ItemID, err)
			}
			if old.StatementLineID != item.StatementLineID {
				if err := markLine(ctx, tx, old.StatementLineID, ""); err != nil {
					return err
				}
			}
		}

		if _, err := tx.Exec(ctx, insertItem, itemArgs(item)...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: transaction %s is already matched", apperrors.ErrConflict, item.TransactionID)
			}
			return fmt.Errorf("failed to insert manual match %s: %w", item.ItemID, err)
		}
		if err := markLine(ctx, tx, item.StatementLineID, item.TransactionID); err != nil {
			return err
		}
		saved := item
		result = &saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgxReconciliationRepository) SaveItem(ctx context.Context, item domain.ReconciliationItem) error {
	if _, err := r.Pool.Exec(ctx, insertItem, itemArgs(item)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reconciliation item %s", apperrors.ErrDuplicate, item.ItemID)
		}
		return fmt.Errorf("failed to save reconciliation item %s: %w", item.ItemID, err)
	}
	return nil
}

func (r *PgxReconciliationRepository) ClearItem(ctx context.Context, itemID string, clearingDate time.Time) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE reconciliation_items SET is_cleared = TRUE, clearing_date = $2 WHERE item_id = $1`, itemID, clearingDate)
	if err != nil {
		return fmt.Errorf("failed to clear reconciliation item %s: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: reconciliation item %s", apperrors.ErrNotFound, itemID)
	}
	return nil
}
