package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelJournalEntry converts the header of a domain JournalEntry to a model JournalEntry.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         d.EntryID,
		BookID:          d.BookID,
		EntryDate:       d.EntryDate,
		Description:     d.Description,
		ReferenceNumber: nullable(d.ReferenceNumber),
		Status:          models.EntryStatus(d.Status),
		PostingDate:     d.PostingDate,
		VoidDate:        d.VoidDate,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry and its lines to a domain JournalEntry.
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalLine) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		BookID:          m.BookID,
		EntryDate:       m.EntryDate,
		Description:     m.Description,
		ReferenceNumber: deref(m.ReferenceNumber),
		Status:          domain.EntryStatus(m.Status),
		PostingDate:     m.PostingDate,
		VoidDate:        m.VoidDate,
		Lines:           ToDomainJournalLines(lines),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalEntryLine to a model JournalLine
func ToModelJournalLine(d domain.JournalEntryLine) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		LineNumber:  d.LineNumber,
		AccountID:   d.AccountID,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Description: nullable(d.Description),
	}
}

// ToDomainJournalLines converts model lines to domain lines, keeping their order.
func ToDomainJournalLines(ms []models.JournalLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = domain.JournalEntryLine{
			LineID:      m.LineID,
			EntryID:     m.EntryID,
			LineNumber:  m.LineNumber,
			AccountID:   m.AccountID,
			Debit:       m.Debit,
			Credit:      m.Credit,
			Description: deref(m.Description),
		}
	}
	return ds
}
