package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

func (s *Store) FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.reconciliations[reconciliationID]
	if !ok {
		return nil, fmt.Errorf("%w: reconciliation %s", apperrors.ErrNotFound, reconciliationID)
	}
	return &rec, nil
}

func (s *Store) ListStatementLines(ctx context.Context, reconciliationID string, onlyUnmatched bool) ([]domain.BankStatementLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.BankStatementLine{}
	for _, l := range s.statementLines {
		if l.ReconciliationID != reconciliationID || (onlyUnmatched && l.IsMatched) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (s *Store) FindStatementLineByID(ctx context.Context, lineID string) (*domain.BankStatementLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.statementLines[lineID]
	if !ok {
		return nil, fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, lineID)
	}
	return &l, nil
}

func (s *Store) ListItems(ctx context.Context, reconciliationID string) ([]domain.ReconciliationItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.ReconciliationItem{}
	for _, id := range s.itemOrder {
		if item := s.items[id]; item.ReconciliationID == reconciliationID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *Store) FindItemByID(ctx context.Context, itemID string) (*domain.ReconciliationItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: reconciliation item %s", apperrors.ErrNotFound, itemID)
	}
	return &item, nil
}

// toBookTransaction views a posted line as cash movement on its account.
func toBookTransaction(e domain.JournalEntry, l domain.JournalEntryLine) domain.BookTransaction {
	txn := domain.BookTransaction{
		TransactionID: l.LineID,
		EntryID:       e.EntryID,
		AccountID:     l.AccountID,
		Date:          e.EntryDate,
		Description:   l.Description,
		Amount:        l.Debit.Sub(l.Credit).Abs(),
		Direction:     domain.Debit,
	}
	if l.Credit.GreaterThan(l.Debit) {
		txn.Direction = domain.Credit
	}
	if txn.Description == "" {
		txn.Description = e.Description
	}
	return txn
}

// claimedTransactions returns the transactions referenced by match items. The caller holds the lock.
func (s *Store) claimedTransactions() map[string]string {
	claimed := make(map[string]string)
	for _, item := range s.items {
		if item.ItemType.IsMatch() && item.TransactionID != "" {
			claimed[item.TransactionID] = item.ReconciliationID
		}
	}
	return claimed
}

func (s *Store) ListUnreconciledTransactions(ctx context.Context, accountID string, asOf time.Time) ([]domain.BookTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claimed := s.claimedTransactions()
	type keyed struct {
		cursor domain.LedgerCursor
		txn    domain.BookTransaction
	}
	var found []keyed
	s.eachPostedLine(nil, &asOf, func(e domain.JournalEntry, l domain.JournalEntryLine) {
		if l.AccountID != accountID {
			return
		}
		if _, taken := claimed[l.LineID]; taken {
			return
		}
		found = append(found, keyed{
			cursor: domain.LedgerCursor{EntryDate: e.EntryDate, PostingDate: *e.PostingDate, EntryID: e.EntryID, LineNumber: l.LineNumber},
			txn:    toBookTransaction(e, l),
		})
	})
	sort.Slice(found, func(i, j int) bool {
		return pagination.CompareLedgerCursor(found[i].cursor, found[j].cursor) < 0
	})

	out := make([]domain.BookTransaction, len(found))
	for i, k := range found {
		out[i] = k.txn
	}
	return out, nil
}

func (s *Store) FindTransactionByID(ctx context.Context, accountID string, transactionID string) (*domain.BookTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.BookTransaction
	s.eachPostedLine(nil, nil, func(e domain.JournalEntry, l domain.JournalEntryLine) {
		if l.LineID == transactionID && l.AccountID == accountID {
			txn := toBookTransaction(e, l)
			found = &txn
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: posted transaction %s on account %s", apperrors.ErrNotFound, transactionID, accountID)
	}
	return found, nil
}

func (s *Store) SaveReconciliation(ctx context.Context, rec domain.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reconciliations[rec.ReconciliationID]; exists {
		return fmt.Errorf("%w: reconciliation %s", apperrors.ErrDuplicate, rec.ReconciliationID)
	}
	s.reconciliations[rec.ReconciliationID] = rec
	return nil
}

func (s *Store) CompleteReconciliation(ctx context.Context, reconciliationID string, variance decimal.Decimal, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.reconciliations[reconciliationID]
	if !ok {
		return fmt.Errorf("%w: reconciliation %s", apperrors.ErrNotFound, reconciliationID)
	}
	if rec.Status != domain.ReconciliationInProgress {
		return fmt.Errorf("%w: reconciliation %s is %s", apperrors.ErrConflict, reconciliationID, rec.Status)
	}
	completedAt := at
	rec.Status = domain.ReconciliationCompleted
	rec.Variance = variance
	rec.CompletedAt = &completedAt
	rec.LastUpdatedAt = at
	rec.LastUpdatedBy = userID
	s.reconciliations[reconciliationID] = rec
	return nil
}

func (s *Store) SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lines {
		if _, ok := s.reconciliations[l.ReconciliationID]; !ok {
			return fmt.Errorf("%w: reconciliation %s", apperrors.ErrNotFound, l.ReconciliationID)
		}
		if _, exists := s.statementLines[l.LineID]; exists {
			return fmt.Errorf("%w: statement line %s", apperrors.ErrDuplicate, l.LineID)
		}
	}
	for _, l := range lines {
		s.statementLines[l.LineID] = l
	}
	return nil
}

func (s *Store) addItem(item domain.ReconciliationItem) {
	s.items[item.ItemID] = item
	s.itemOrder = append(s.itemOrder, item.ItemID)
}

func (s *Store) removeItem(itemID string) {
	delete(s.items, itemID)
	for i, id := range s.itemOrder {
		if id == itemID {
			s.itemOrder = append(s.itemOrder[:i], s.itemOrder[i+1:]...)
			return
		}
	}
}

func (s *Store) markLine(lineID string, transactionID string) {
	l := s.statementLines[lineID]
	l.IsMatched = transactionID != ""
	l.MatchedTransactionID = transactionID
	s.statementLines[lineID] = l
}

func (s *Store) SaveMatches(ctx context.Context, items []domain.ReconciliationItem) ([]domain.ReconciliationItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if _, ok := s.statementLines[item.StatementLineID]; !ok {
			return nil, fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, item.StatementLineID)
		}
	}

	claimed := s.claimedTransactions()
	saved := make([]domain.ReconciliationItem, 0, len(items))
	for _, item := range items {
		if s.statementLines[item.StatementLineID].IsMatched {
			continue
		}
		if _, taken := claimed[item.TransactionID]; taken {
			continue
		}
		s.addItem(item)
		s.markLine(item.StatementLineID, item.TransactionID)
		claimed[item.TransactionID] = item.ReconciliationID
		saved = append(saved, item)
	}
	return saved, nil
}

func (s *Store) SaveManualMatch(ctx context.Context, item domain.ReconciliationItem) (*domain.ReconciliationItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.statementLines[item.StatementLineID]; !ok {
		return nil, fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, item.StatementLineID)
	}

	var replaced []string
	for _, existing := range s.items {
		if !existing.ItemType.IsMatch() {
			continue
		}
		sameLine := existing.StatementLineID == item.StatementLineID
		sameTxn := existing.TransactionID == item.TransactionID
		switch {
		case existing.ReconciliationID != item.ReconciliationID:
			if sameTxn {
				return nil, fmt.Errorf("%w: transaction %s is matched in reconciliation %s", apperrors.ErrConflict, item.TransactionID, existing.ReconciliationID)
			}
		case sameLine && sameTxn:
			out := existing
			return &out, nil
		case sameLine || sameTxn:
			replaced = append(replaced, existing.ItemID)
		}
	}

	for _, id := range replaced {
		old := s.items[id]
		s.removeItem(id)
		if old.StatementLineID != item.StatementLineID {
			s.markLine(old.StatementLineID, "")
		}
	}
	s.addItem(item)
	s.markLine(item.StatementLineID, item.TransactionID)
	return &item, nil
}

func (s *Store) SaveItem(ctx context.Context, item domain.ReconciliationItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ItemID]; exists {
		return fmt.Errorf("%w: reconciliation item %s", apperrors.ErrDuplicate, item.ItemID)
	}
	s.addItem(item)
	return nil
}

func (s *Store) ClearItem(ctx context.Context, itemID string, clearingDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return fmt.Errorf("%w: reconciliation item %s", apperrors.ErrNotFound, itemID)
	}
	cleared := clearingDate
	item.IsCleared = true
	item.ClearingDate = &cleared
	s.items[itemID] = item
	return nil
}
