package matching

import (
	"fmt"
	"math"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

const (
	// Score weights
	amountWeight      = 0.5
	sameDayWeight     = 0.3
	nearDateWeight    = 0.2
	similarityWeight  = 0.2
	PerfectMatchScore = 1.0

	DefaultDateWindowDays = 3
	DefaultFuzzyThreshold = 0.8
)

// DefaultAmountTolerance is the amount difference below which two amounts are the same.
var DefaultAmountTolerance = decimal.RequireFromString("0.01")

// Options tunes the matcher. The zero value is not useful; start from DefaultOptions.
type Options struct {
	AmountTolerance decimal.Decimal
	DateWindowDays  int
	FuzzyThreshold  float64
}

// DefaultOptions returns the standard tolerances: 0.01 on amount, 3 days on date, 0.8 similarity.
func DefaultOptions() Options {
	return Options{
		AmountTolerance: DefaultAmountTolerance,
		DateWindowDays:  DefaultDateWindowDays,
		FuzzyThreshold:  DefaultFuzzyThreshold,
	}
}

// Matcher pairs bank statement lines with book transactions. It holds no state between calls.
type Matcher struct {
	opts Options
}

// NewMatcher creates a Matcher. Non-positive options fall back to their defaults.
func NewMatcher(opts Options) *Matcher {
	def := DefaultOptions()
	if !opts.AmountTolerance.IsPositive() {
		opts.AmountTolerance = def.AmountTolerance
	}
	if opts.DateWindowDays <= 0 {
		opts.DateWindowDays = def.DateWindowDays
	}
	if opts.FuzzyThreshold <= 0 {
		opts.FuzzyThreshold = def.FuzzyThreshold
	}
	return &Matcher{opts: opts}
}

// Options returns the effective options.
func (m *Matcher) Options() Options {
	return m.opts
}

// ValidateStatementLines rejects lines without a date or amount.
func ValidateStatementLines(lines []domain.BankStatementLine) error {
	for i, l := range lines {
		if l.Date.IsZero() {
			return fmt.Errorf("%w: line %d has no date", apperrors.ErrInvalidStatement, i+1)
		}
		if l.Amount.IsZero() {
			return fmt.Errorf("%w: line %d has no amount", apperrors.ErrInvalidStatement, i+1)
		}
		if l.Direction != "" && l.Direction != domain.Debit && l.Direction != domain.Credit {
			return fmt.Errorf("%w: line %d has unknown type %q", apperrors.ErrInvalidStatement, i+1, l.Direction)
		}
	}
	return nil
}

// AutoMatch walks the statement lines in order and claims, for each, the first transaction
// that matches exactly, else the first near match, else the first fuzzy match. A transaction
// is claimed at most once. Lines with no candidate are reported as unmatched, never as an error.
//
// Variance is the signed total of the matched statement lines minus expectedMovement.
func (m *Matcher) AutoMatch(lines []domain.BankStatementLine, txns []domain.BookTransaction, expectedMovement decimal.Decimal) (*domain.AutoMatchResult, error) {
	if err := ValidateStatementLines(lines); err != nil {
		return nil, err
	}

	result := &domain.AutoMatchResult{
		Matches:                 []domain.Match{},
		UnmatchedStatementLines: []domain.BankStatementLine{},
		UnmatchedTransactions:   []domain.BookTransaction{},
	}
	claimed := make([]bool, len(txns))
	matchedTotal := decimal.Zero

	for _, line := range lines {
		idx, matchType := m.findCandidate(line, txns, claimed)
		if idx < 0 {
			result.UnmatchedStatementLines = append(result.UnmatchedStatementLines, line)
			continue
		}
		claimed[idx] = true
		txn := txns[idx]

		similarity := DescriptionSimilarity(line.Description, txn.Description)
		days := accounting.DaysBetween(line.Date, txn.Date)
		score := Score(days, m.opts.DateWindowDays, similarity)
		if matchType == domain.MatchedExact {
			score = PerfectMatchScore
		}

		line.IsMatched = true
		line.MatchedTransactionID = txn.TransactionID
		result.Matches = append(result.Matches, domain.Match{
			StatementLine: line,
			Transaction:   txn,
			Type:          matchType,
			Score:         score,
			Similarity:    round4(similarity),
			DayDistance:   days,
		})
		matchedTotal = matchedTotal.Add(line.SignedAmount())
	}

	for i, txn := range txns {
		if !claimed[i] {
			result.UnmatchedTransactions = append(result.UnmatchedTransactions, txn)
		}
	}
	result.Variance = matchedTotal.Sub(expectedMovement)
	return result, nil
}

func (m *Matcher) findCandidate(line domain.BankStatementLine, txns []domain.BookTransaction, claimed []bool) (int, domain.ItemType) {
	target := line.Amount.Abs()
	near, fuzzy := -1, -1

	for i, txn := range txns {
		if claimed[i] || !m.sameAmount(txn.Amount, target) {
			continue
		}
		days := accounting.DaysBetween(line.Date, txn.Date)
		if days == 0 {
			return i, domain.MatchedExact
		}
		if near < 0 && days <= m.opts.DateWindowDays {
			near = i
		}
		if fuzzy < 0 && DescriptionSimilarity(line.Description, txn.Description) > m.opts.FuzzyThreshold {
			fuzzy = i
		}
	}

	if near >= 0 {
		return near, domain.MatchedNear
	}
	if fuzzy >= 0 {
		return fuzzy, domain.MatchedFuzzy
	}
	return -1, ""
}

func (m *Matcher) sameAmount(amount, target decimal.Decimal) bool {
	return amount.Abs().Sub(target).Abs().LessThan(m.opts.AmountTolerance)
}

// Score is the advisory confidence of a match whose amounts agree:
// 0.5 for the amount, 0.3 on the same day or 0.2 within the date window, plus 0.2 × similarity.
func Score(dayDistance, dateWindowDays int, similarity float64) float64 {
	score := amountWeight
	switch {
	case dayDistance == 0:
		score += sameDayWeight
	case dayDistance <= dateWindowDays:
		score += nearDateWeight
	}
	score += similarityWeight * similarity
	return round4(math.Min(score, PerfectMatchScore))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
