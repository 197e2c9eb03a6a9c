package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

func ToModelReconciliation(d domain.Reconciliation) models.Reconciliation {
	return models.Reconciliation{
		ReconciliationID: d.ReconciliationID,
		BookID:           d.BookID,
		AccountID:        d.AccountID,
		StatementDate:    d.StatementDate,
		OpeningBalance:   d.OpeningBalance,
		ClosingBalance:   d.ClosingBalance,
		Status:           string(d.Status),
		Variance:         d.Variance,
		CompletedAt:      d.CompletedAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainReconciliation(m models.Reconciliation) domain.Reconciliation {
	return domain.Reconciliation{
		ReconciliationID: m.ReconciliationID,
		BookID:           m.BookID,
		AccountID:        m.AccountID,
		StatementDate:    m.StatementDate,
		OpeningBalance:   m.OpeningBalance,
		ClosingBalance:   m.ClosingBalance,
		Status:           domain.ReconciliationStatus(m.Status),
		Variance:         m.Variance,
		CompletedAt:      m.CompletedAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

func ToModelStatementLine(d domain.BankStatementLine) models.StatementLine {
	return models.StatementLine{
		LineID:               d.LineID,
		ReconciliationID:     d.ReconciliationID,
		Sequence:             d.Sequence,
		LineDate:             d.Date,
		Description:          d.Description,
		Amount:               d.Amount,
		Direction:            nullable(string(d.Direction)),
		Reference:            nullable(d.Reference),
		IsMatched:            d.IsMatched,
		MatchedTransactionID: nullable(d.MatchedTransactionID),
	}
}

func ToDomainStatementLine(m models.StatementLine) domain.BankStatementLine {
	return domain.BankStatementLine{
		LineID:               m.LineID,
		ReconciliationID:     m.ReconciliationID,
		Sequence:             m.Sequence,
		Date:                 m.LineDate,
		Description:          m.Description,
		Amount:               m.Amount,
		Direction:            domain.Side(deref(m.Direction)),
		Reference:            deref(m.Reference),
		IsMatched:            m.IsMatched,
		MatchedTransactionID: deref(m.MatchedTransactionID),
	}
}

func ToModelReconciliationItem(d domain.ReconciliationItem) models.ReconciliationItem {
	return models.ReconciliationItem{
		ItemID:           d.ItemID,
		ReconciliationID: d.ReconciliationID,
		ItemType:         string(d.ItemType),
		StatementLineID:  nullable(d.StatementLineID),
		TransactionID:    nullable(d.TransactionID),
		OutstandingKind:  nullable(string(d.OutstandingKind)),
		Description:      d.Description,
		Amount:           d.Amount,
		MatchScore:       d.MatchScore,
		IsCleared:        d.IsCleared,
		ClearingDate:     d.ClearingDate,
		CreatedAt:        d.CreatedAt,
		CreatedBy:        d.CreatedBy,
	}
}

func ToDomainReconciliationItem(m models.ReconciliationItem) domain.ReconciliationItem {
	return domain.ReconciliationItem{
		ItemID:           m.ItemID,
		ReconciliationID: m.ReconciliationID,
		ItemType:         domain.ItemType(m.ItemType),
		StatementLineID:  deref(m.StatementLineID),
		TransactionID:    deref(m.TransactionID),
		OutstandingKind:  domain.OutstandingKind(deref(m.OutstandingKind)),
		Description:      m.Description,
		Amount:           m.Amount,
		MatchScore:       m.MatchScore,
		IsCleared:        m.IsCleared,
		ClearingDate:     m.ClearingDate,
		CreatedAt:        m.CreatedAt,
		CreatedBy:        m.CreatedBy,
	}
}
