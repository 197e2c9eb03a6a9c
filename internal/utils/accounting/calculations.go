package accounting

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest difference between debits and credits still treated as balanced.
var BalanceTolerance = decimal.RequireFromString("0.01")

// WithinTolerance reports whether a and b differ by at most BalanceTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(BalanceTolerance)
}

// SignedDelta returns the change a debit/credit pair makes to an account balance,
// expressed in the account's normal-balance orientation.
func SignedDelta(accountType domain.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if domain.NormalBalanceFor(accountType) == domain.Debit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// BalanceFromTotals is SignedDelta applied to the summed columns of an account's lines.
func BalanceFromTotals(accountType domain.AccountType, totals domain.LineTotals) decimal.Decimal {
	return SignedDelta(accountType, totals.Debits, totals.Credits)
}

// TrialBalanceColumns places a balance in the debit or credit column of a trial balance.
// A positive balance sits on the account's normal side; a negative one flips to the other side.
func TrialBalanceColumns(accountType domain.AccountType, balance decimal.Decimal) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	onDebitSide := domain.NormalBalanceFor(accountType) == domain.Debit
	if balance.IsNegative() {
		onDebitSide = !onDebitSide
	}
	if onDebitSide {
		debit = balance.Abs()
	} else {
		credit = balance.Abs()
	}
	return debit, credit
}

// ValidateLines checks the structural rules every journal entry must satisfy before posting:
// at least one line, no negative amounts, a non-zero debit and credit, and debits equal to
// credits within BalanceTolerance. It returns the column totals.
func ValidateLines(lines []domain.JournalEntryLine) (debits, credits decimal.Decimal, err error) {
	debits, credits = decimal.Zero, decimal.Zero
	if len(lines) == 0 {
		return debits, credits, apperrors.ErrEmptyEntry
	}

	for i, l := range lines {
		if l.AccountID == "" {
			return debits, credits, fmt.Errorf("%w: line %d has no account", apperrors.ErrValidation, i+1)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return debits, credits, fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i+1)
		}
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}

	if debits.IsZero() || credits.IsZero() {
		return debits, credits, apperrors.ErrEmptyEntry
	}
	if !WithinTolerance(debits, credits) {
		return debits, credits, fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrImbalancedEntry, debits.StringFixed(2), credits.StringFixed(2))
	}
	return debits, credits, nil
}

// BalanceChanges computes the per-account balance delta produced by posting lines.
// Every referenced account must be present in accounts.
func BalanceChanges(lines []domain.JournalEntryLine, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(accounts))
	for _, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, l.AccountID)
		}
		changes[l.AccountID] = changes[l.AccountID].Add(SignedDelta(acc.AccountType, l.Debit, l.Credit))
	}
	return changes, nil
}

// TransitionChanges returns the balance deltas of moving lines to next: the posting effect for
// POSTED, its inverse for VOID. Posting re-validates the lines and requires active accounts.
func TransitionChanges(lines []domain.JournalEntryLine, accounts map[string]domain.Account, next domain.EntryStatus) (map[string]decimal.Decimal, error) {
	posting := next == domain.Posted
	if posting {
		if _, _, err := ValidateLines(lines); err != nil {
			return nil, err
		}
		for _, l := range lines {
			if acc, ok := accounts[l.AccountID]; ok && !acc.IsActive {
				return nil, fmt.Errorf("%w: account %s (%s) is inactive", apperrors.ErrValidation, acc.Code, acc.AccountID)
			}
		}
	}
	changes, err := BalanceChanges(lines, accounts)
	if err != nil {
		return nil, err
	}
	if !posting {
		changes = Negate(changes)
	}
	return changes, nil
}

// Negate flips every delta, used to reverse a posted entry on void.
func Negate(changes map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(changes))
	for id, d := range changes {
		out[id] = d.Neg()
	}
	return out
}

// CheckTransition returns nil when an entry may move from current to next,
// otherwise the error describing why not.
func CheckTransition(entryID string, current, next domain.EntryStatus) error {
	if current.CanTransitionTo(next) {
		return nil
	}
	if current == domain.Posted && next == domain.Posted {
		return fmt.Errorf("%w: entry %s", apperrors.ErrAlreadyPosted, entryID)
	}
	return fmt.Errorf("%w: entry %s cannot move from %s to %s", apperrors.ErrInvalidTransition, entryID, current, next)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the absolute number of calendar days separating a and b.
func DaysBetween(a, b time.Time) int {
	days := int(DateOnly(a).Sub(DateOnly(b)).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
