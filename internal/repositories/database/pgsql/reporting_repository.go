package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ReportingRepository aggregates posted journal lines for reports.
type ReportingRepository struct {
	BaseRepository
}

func newReportingRepository(pool *pgxpool.Pool) *ReportingRepository {
	return &ReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

// postedLinesFrom joins lines to their POSTED entries. Entry ids are compared with the C collation
// so the ordering agrees with byte-wise string comparison in Go.
const postedLinesFrom = `
	FROM journal_lines jl
	JOIN journal_entries je ON je.entry_id = jl.entry_id
	WHERE je.status = 'POSTED'`

const ledgerOrder = `je.entry_date, je.posting_date, je.entry_id COLLATE "C", jl.line_number`

// dateBounds appends optional entry_date bounds to query.
func dateBounds(query string, args []any, from, to *time.Time) (string, []any) {
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND je.entry_date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND je.entry_date <= $%d`, len(args))
	}
	return query, args
}

// SumPostedLinesByAccount totals debits and credits per account of a book.
func (r *ReportingRepository) SumPostedLinesByAccount(ctx context.Context, bookID string, from, to *time.Time) (map[string]domain.LineTotals, error) {
	query, args := dateBounds(`SELECT jl.account_id, SUM(jl.debit), SUM(jl.credit)`+postedLinesFrom+` AND je.book_id = $1`, []any{bookID}, from, to)
	query += ` GROUP BY jl.account_id`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted lines for book %s: %w", bookID, err)
	}
	defer rows.Close()

	out := make(map[string]domain.LineTotals)
	for rows.Next() {
		var accountID string
		var totals domain.LineTotals
		if err := rows.Scan(&accountID, &totals.Debits, &totals.Credits); err != nil {
			return nil, fmt.Errorf("failed to scan posted line totals: %w", err)
		}
		out[accountID] = totals
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted line totals: %w", err)
	}
	return out, nil
}

// SumPostedLinesForAccount totals one account's posted lines.
func (r *ReportingRepository) SumPostedLinesForAccount(ctx context.Context, accountID string, from, to *time.Time) (domain.LineTotals, error) {
	query, args := dateBounds(`SELECT COALESCE(SUM(jl.debit), 0), COALESCE(SUM(jl.credit), 0)`+postedLinesFrom+` AND jl.account_id = $1`, []any{accountID}, from, to)

	totals := domain.LineTotals{Debits: decimal.Zero, Credits: decimal.Zero}
	if err := r.Pool.QueryRow(ctx, query, args...).Scan(&totals.Debits, &totals.Credits); err != nil {
		return totals, fmt.Errorf("failed to sum posted lines for account %s: %w", accountID, err)
	}
	return totals, nil
}

// ListPostedLines returns a page of an account's posted lines in ledger order.
func (r *ReportingRepository) ListPostedLines(ctx context.Context, accountID string, from, to time.Time, after *domain.LedgerCursor, limit int) ([]domain.LedgerLine, error) {
	query, args := dateBounds(`
		SELECT je.entry_id, jl.line_id, jl.line_number, je.entry_date, je.posting_date,
			COALESCE(NULLIF(jl.description, ''), je.description), COALESCE(je.reference_number, ''),
			jl.debit, jl.credit`+postedLinesFrom+` AND jl.account_id = $1`, []any{accountID}, &from, &to)

	if after != nil {
		args = append(args, after.EntryDate, after.PostingDate, after.EntryID, after.LineNumber)
		n := len(args)
		query += fmt.Sprintf(` AND (je.entry_date, je.posting_date, je.entry_id COLLATE "C", jl.line_number) > ($%d, $%d, $%d COLLATE "C", $%d)`, n-3, n-2, n-1, n)
	}
	query += ` ORDER BY ` + ledgerOrder
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted lines for account %s: %w", accountID, err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LedgerLine, error) {
		var l domain.LedgerLine
		err := row.Scan(&l.EntryID, &l.LineID, &l.LineNumber, &l.EntryDate, &l.PostingDate,
			&l.Description, &l.ReferenceNumber, &l.Debit, &l.Credit)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan posted lines: %w", err)
	}
	return lines, nil
}
