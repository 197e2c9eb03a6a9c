// Package memory provides an in-process implementation of every repository port.
// It backs the memory storage driver and the service and handler tests.
package memory

import (
	"sync"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// Store keeps all ledger state in maps guarded by a single lock, so every
// repository call observes and mutates a consistent snapshot.
type Store struct {
	mu sync.RWMutex

	accounts        map[string]domain.Account
	entries         map[string]domain.JournalEntry
	reconciliations map[string]domain.Reconciliation
	statementLines  map[string]domain.BankStatementLine
	items           map[string]domain.ReconciliationItem
	itemOrder       []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts:        make(map[string]domain.Account),
		entries:         make(map[string]domain.JournalEntry),
		reconciliations: make(map[string]domain.Reconciliation),
		statementLines:  make(map[string]domain.BankStatementLine),
		items:           make(map[string]domain.ReconciliationItem),
	}
}

var (
	_ portsrepo.AccountRepositoryFacade        = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade        = (*Store)(nil)
	_ portsrepo.ReportingRepository            = (*Store)(nil)
	_ portsrepo.ReconciliationRepositoryFacade = (*Store)(nil)
)

// NewRepositoryProvider wires one store into every repository slot.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        store,
		JournalRepo:        store,
		ReportingRepo:      store,
		ReconciliationRepo: store,
	}
}

func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	lines := make([]domain.JournalEntryLine, len(e.Lines))
	copy(lines, e.Lines)
	e.Lines = lines
	if e.PostingDate != nil {
		t := *e.PostingDate
		e.PostingDate = &t
	}
	if e.VoidDate != nil {
		t := *e.VoidDate
		e.VoidDate = &t
	}
	return e
}
