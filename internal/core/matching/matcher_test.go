package matching

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func stmt(id string, date time.Time, amount, desc string) domain.BankStatementLine {
	return domain.BankStatementLine{LineID: id, Date: date, Amount: amt(amount), Description: desc, Direction: domain.Credit}
}

func txn(id string, date time.Time, amount, desc string) domain.BookTransaction {
	return domain.BookTransaction{TransactionID: id, Date: date, Amount: amt(amount), Description: desc, Direction: domain.Debit}
}

func TestAutoMatch_ExactMatch(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	res, err := m.AutoMatch(
		[]domain.BankStatementLine{stmt("s1", day(10), "250", "ACME INVOICE")},
		[]domain.BookTransaction{txn("t1", day(10), "250", "Acme Invoice Payment")},
		decimal.Zero,
	)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)

	match := res.Matches[0]
	assert.Equal(t, domain.MatchedExact, match.Type)
	assert.Equal(t, 1.0, match.Score)
	assert.Equal(t, "t1", match.Transaction.TransactionID)
	assert.True(t, match.StatementLine.IsMatched)
	assert.Equal(t, "t1", match.StatementLine.MatchedTransactionID)
	assert.InDelta(t, 0.6667, match.Similarity, 0.0001)
	assert.Empty(t, res.UnmatchedStatementLines)
	assert.Empty(t, res.UnmatchedTransactions)
	assert.True(t, res.Variance.Equal(amt("250")))
}

func TestAutoMatch_NoCandidate(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	res, err := m.AutoMatch(
		[]domain.BankStatementLine{stmt("s1", day(10), "999.99", "WIRE")},
		[]domain.BookTransaction{txn("t1", day(10), "250", "Acme")},
		decimal.Zero,
	)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	require.Len(t, res.UnmatchedStatementLines, 1)
	assert.Equal(t, "s1", res.UnmatchedStatementLines[0].LineID)
	require.Len(t, res.UnmatchedTransactions, 1)
	assert.True(t, res.Variance.IsZero())
}

func TestAutoMatch_NearMatch(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	res, err := m.AutoMatch(
		[]domain.BankStatementLine{stmt("s1", day(12), "100.005", "deposit")},
		[]domain.BookTransaction{txn("t1", day(10), "100", "customer payment")},
		decimal.Zero,
	)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, domain.MatchedNear, res.Matches[0].Type)
	assert.Equal(t, 2, res.Matches[0].DayDistance)
	assert.Equal(t, 0.7, res.Matches[0].Score)
}

func TestAutoMatch_FuzzyMatch(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	res, err := m.AutoMatch(
		[]domain.BankStatementLine{stmt("s1", day(25), "75", "Monthly Gym Membership Fee")},
		[]domain.BookTransaction{txn("t1", day(2), "75", "monthly gym membership fee")},
		decimal.Zero,
	)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, domain.MatchedFuzzy, res.Matches[0].Type)
	assert.Equal(t, 0.7, res.Matches[0].Score)
}

func TestAutoMatch_AmountOutsideTolerance(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	res, err := m.AutoMatch(
		[]domain.BankStatementLine{stmt("s1", day(10), "100.01", "x")},
		[]domain.BookTransaction{txn("t1", day(10), "100", "x")},
		decimal.Zero,
	)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
}

func TestAutoMatch_ExactPreferredOverEarlierNear(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	res, err := m.AutoMatch(
		[]domain.BankStatementLine{stmt("s1", day(10), "50", "coffee")},
		[]domain.BookTransaction{
			txn("near", day(9), "50", "coffee"),
			txn("exact", day(10), "50", "coffee"),
		},
		decimal.Zero,
	)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "exact", res.Matches[0].Transaction.TransactionID)
	require.Len(t, res.UnmatchedTransactions, 1)
	assert.Equal(t, "near", res.UnmatchedTransactions[0].TransactionID)
}

func TestAutoMatch_NoDoubleClaim(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	lines := []domain.BankStatementLine{
		stmt("s1", day(10), "20", "lunch"),
		stmt("s2", day(10), "20", "lunch"),
		stmt("s3", day(11), "20", "lunch"),
	}
	txns := []domain.BookTransaction{
		txn("t1", day(10), "20", "lunch"),
		txn("t2", day(10), "20", "lunch"),
	}

	res, err := m.AutoMatch(lines, txns, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)

	seen := map[string]bool{}
	for _, match := range res.Matches {
		assert.False(t, seen[match.Transaction.TransactionID], "transaction %s claimed twice", match.Transaction.TransactionID)
		seen[match.Transaction.TransactionID] = true
	}
	assert.Equal(t, "t1", res.Matches[0].Transaction.TransactionID)
	assert.Equal(t, "t2", res.Matches[1].Transaction.TransactionID)
	require.Len(t, res.UnmatchedStatementLines, 1)
	assert.Equal(t, "s3", res.UnmatchedStatementLines[0].LineID)
}

func TestAutoMatch_Deterministic(t *testing.T) {
	m := NewMatcher(DefaultOptions())
	lines := []domain.BankStatementLine{
		stmt("s1", day(3), "10", "a b c"),
		stmt("s2", day(5), "30", "rent january"),
		stmt("s3", day(9), "10", "a b c"),
	}
	txns := []domain.BookTransaction{
		txn("t1", day(4), "10", "a b c"),
		txn("t2", day(5), "30", "rent"),
		txn("t3", day(20), "10", "a b c"),
	}

	first, err := m.AutoMatch(lines, txns, amt("50"))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := m.AutoMatch(lines, txns, amt("50"))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAutoMatch_VarianceUsesSignedAmounts(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	withdrawal := stmt("s2", day(10), "40", "atm")
	withdrawal.Direction = domain.Debit
	out := txn("t2", day(10), "40", "atm")
	out.Direction = domain.Credit

	res, err := m.AutoMatch(
		[]domain.BankStatementLine{stmt("s1", day(10), "100", "pay"), withdrawal},
		[]domain.BookTransaction{txn("t1", day(10), "100", "pay"), out},
		amt("70"),
	)
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)
	// 100 - 40 - 70
	assert.True(t, res.Variance.Equal(amt("-10")), res.Variance.String())
}

func TestAutoMatch_InvalidStatement(t *testing.T) {
	m := NewMatcher(DefaultOptions())

	_, err := m.AutoMatch([]domain.BankStatementLine{{LineID: "s1", Amount: amt("10")}}, nil, decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatement)

	_, err = m.AutoMatch([]domain.BankStatementLine{{LineID: "s1", Date: day(1)}}, nil, decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatement)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 1.0, Score(0, 3, 1.0))
	assert.Equal(t, 0.8, Score(0, 3, 0))
	assert.Equal(t, 0.7, Score(3, 3, 0))
	assert.Equal(t, 0.5, Score(4, 3, 0))
	assert.Equal(t, 0.9, Score(1, 3, 1.0))
}

func TestNewMatcher_Defaults(t *testing.T) {
	m := NewMatcher(Options{})
	assert.Equal(t, DefaultDateWindowDays, m.Options().DateWindowDays)
	assert.Equal(t, DefaultFuzzyThreshold, m.Options().FuzzyThreshold)
	assert.True(t, m.Options().AmountTolerance.Equal(DefaultAmountTolerance))
}
