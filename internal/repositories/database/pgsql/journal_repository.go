package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, book_id, entry_date, description, reference_number, status, posting_date, void_date,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_number, account_id, debit, credit, description`

// PgxJournalRepository implements the journal repository ports using pgx.
type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// loadLines fetches the lines of the given entries, grouped by entry id and ordered by line number.
func loadLines(ctx context.Context, q querier, entryIDs []string) (map[string][]models.JournalLine, error) {
	grouped := make(map[string][]models.JournalLine, len(entryIDs))
	if len(entryIDs) == 0 {
		return grouped, nil
	}
	rows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_number`, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalLine])
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal lines: %w", err)
	}
	for _, l := range lines {
		grouped[l.EntryID] = append(grouped[l.EntryID], l)
	}
	return grouped, nil
}

// findEntryHeader reads the entry row, optionally locking it for the rest of the transaction.
func findEntryHeader(ctx context.Context, q querier, entryID string, forUpdate bool) (*models.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entry %s: %w", entryID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to scan journal entry %s: %w", entryID, err)
	}
	return &m, nil
}

// FindEntryByID retrieves an entry together with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	m, err := findEntryHeader(ctx, r.Pool, entryID, false)
	if err != nil {
		return nil, err
	}
	lines, err := loadLines(ctx, r.Pool, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(*m, lines[entryID])
	return &entry, nil
}

// ListEntriesByBook retrieves a page of entries, newest first, continuing after nextToken when set.
func (r *PgxJournalRepository) ListEntriesByBook(ctx context.Context, bookID string, status domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := []any{bookID}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE book_id = $1`

	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, entryID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, entryDate, createdAt, entryID)
		n := len(args)
		query += fmt.Sprintf(` AND (entry_date, created_at, entry_id) < ($%d, $%d, $%d)`, n-2, n-1, n)
	}

	// Fetch one extra row to know whether another page exists.
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT $%d`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal entries for book %s: %w", bookID, err)
	}
	headers, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan journal entries: %w", err)
	}

	var token *string
	if len(headers) > limit {
		headers = headers[:limit]
		last := headers[len(headers)-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt, last.EntryID)
		token = &t
	}

	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.EntryID
	}
	lines, err := loadLines(ctx, r.Pool, ids)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]domain.JournalEntry, len(headers))
	for i, h := range headers {
		entries[i] = mapping.ToDomainJournalEntry(h, lines[h.EntryID])
	}
	return entries, token, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalEntryLine) error {
	batch := &pgx.Batch{}
	for _, l := range lines {
		m := mapping.ToModelJournalLine(l)
		batch.Queue(`INSERT INTO journal_lines (`+lineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.LineID, m.EntryID, m.LineNumber, m.AccountID, m.Debit, m.Credit, m.Description)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert journal lines: %w", err)
	}
	return nil
}

// SaveEntry inserts a draft entry and its lines in one transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO journal_entries (`+entryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			m.EntryID, m.BookID, m.EntryDate, m.Description, m.ReferenceNumber, m.Status, m.PostingDate, m.VoidDate,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, m.EntryID)
			}
			return fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err)
		}
		return insertLines(ctx, tx, entry.Lines)
	})
}

func requireDraft(stored *models.JournalEntry) error {
	if domain.EntryStatus(stored.Status) != domain.Draft {
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrImmutableEntry, stored.EntryID, stored.Status)
	}
	return nil
}

// UpdateDraftEntry replaces the header fields and lines of a draft entry.
func (r *PgxJournalRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		stored, err := findEntryHeader(ctx, tx, entry.EntryID, true)
		if err != nil {
			return err
		}
		if err := requireDraft(stored); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE journal_entries
			SET entry_date = $2, description = $3, reference_number = $4, last_updated_at = $5, last_updated_by = $6
			WHERE entry_id = $1`,
			m.EntryID, m.EntryDate, m.Description, m.ReferenceNumber, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update journal entry %s: %w", m.EntryID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1`, m.EntryID); err != nil {
			return fmt.Errorf("failed to replace lines of journal entry %s: %w", m.EntryID, err)
		}
		return insertLines(ctx, tx, entry.Lines)
	})
}

// DeleteDraftEntry removes a draft entry; its lines go with it through ON DELETE CASCADE.
func (r *PgxJournalRepository) DeleteDraftEntry(ctx context.Context, entryID string) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		stored, err := findEntryHeader(ctx, tx, entryID, true)
		if err != nil {
			return err
		}
		if err := requireDraft(stored); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1`, entryID); err != nil {
			return fmt.Errorf("failed to delete journal entry %s: %w", entryID, err)
		}
		return nil
	})
}

// TransitionEntry locks the entry row, re-checks the stored status, then reads the entry's lines
// and locks their accounts. The balance changes come from those lines and are applied together
// with the new status in the same transaction.
func (r *PgxJournalRepository) TransitionEntry(ctx context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		stored, err := findEntryHeader(ctx, tx, entryID, true)
		if err != nil {
			return err
		}
		current := domain.EntryStatus(stored.Status)
		if err := accounting.CheckTransition(entryID, current, to); err != nil {
			return err
		}
		if current != from {
			return fmt.Errorf("%w: entry %s is %s, expected %s", apperrors.ErrInvalidTransition, entryID, current, from)
		}

		grouped, err := loadLines(ctx, tx, []string{entryID})
		if err != nil {
			return err
		}
		lines := mapping.ToDomainJournalLines(grouped[entryID])
		accountIDs := domain.JournalEntry{Lines: lines}.AccountIDs()
		sort.Strings(accountIDs)
		accounts, err := lockAccounts(ctx, tx, accountIDs)
		if err != nil {
			return err
		}
		balanceChanges, err := accounting.TransitionChanges(lines, accounts, to)
		if err != nil {
			return err
		}
		if err := applyBalanceChanges(ctx, tx, balanceChanges, userID, at); err != nil {
			return err
		}

		var stampColumn string
		switch to {
		case domain.Posted:
			stampColumn = "posting_date"
		case domain.Void:
			stampColumn = "void_date"
		}
		_, err = tx.Exec(ctx, `
			UPDATE journal_entries
			SET status = $2, `+stampColumn+` = $3, last_updated_at = $3, last_updated_by = $4
			WHERE entry_id = $1`,
			entryID, string(to), at, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to update status of journal entry %s: %w", entryID, err)
		}
		return nil
	})
}
