package pagination

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	entryDate := time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(entryDate, createdAt, "entry-42")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedEntryDate, decodedCreatedAt, entryID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, entryDate, decodedEntryDate, "Entry date should match after decode")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, "entry-42", entryID)

	zeroTime := time.Time{}
	decodedZeroDate, decodedZeroTime, _, err := DecodeToken(EncodeToken(zeroTime, zeroTime, ""))
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, zeroTime, decodedZeroDate)
	assert.Equal(t, zeroTime, decodedZeroTime)
}

func TestDecodeTokenError(t *testing.T) {
	_, _, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	_, _, _, err = DecodeToken(EncodeMultiFieldToken("2023-05-15T00:00:00Z"))
	assert.Error(t, err, "Should return an error for a token without separator")
	assert.Contains(t, err.Error(), "split")

	_, _, _, err = DecodeToken(EncodeMultiFieldToken("notadate", "2023-05-15T14:30:45.123456789Z", "e1"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entry date parse")
}

func TestLedgerToken_RoundTrip(t *testing.T) {
	cursor := domain.LedgerCursor{
		EntryDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		PostingDate: time.Date(2024, 1, 11, 9, 15, 0, 42, time.UTC),
		EntryID:     "entry-1",
		LineNumber:  3,
	}
	balance := decimal.RequireFromString("-1250.75")

	token := EncodeLedgerToken(cursor, balance)
	gotCursor, gotBalance, err := DecodeLedgerToken(token)
	require.NoError(t, err)
	assert.Equal(t, cursor, gotCursor)
	assert.True(t, balance.Equal(gotBalance))
}

func TestDecodeLedgerTokenError(t *testing.T) {
	_, _, err := DecodeLedgerToken(EncodeMultiFieldToken("a", "b"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 fields")

	_, _, err = DecodeLedgerToken(EncodeMultiFieldToken(
		"2024-01-10T00:00:00Z", "2024-01-10T00:00:00Z", "e", "x", "1"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line number parse")
}

func TestCompareLedgerCursor(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	base := domain.LedgerCursor{EntryDate: day, PostingDate: day, EntryID: "b", LineNumber: 2}

	later := base
	later.EntryDate = day.AddDate(0, 0, 1)
	assert.Equal(t, -1, CompareLedgerCursor(base, later))

	otherEntry := base
	otherEntry.EntryID = "a"
	assert.Equal(t, 1, CompareLedgerCursor(base, otherEntry))

	nextLine := base
	nextLine.LineNumber = 3
	assert.Equal(t, -1, CompareLedgerCursor(base, nextLine))
	assert.Equal(t, 0, CompareLedgerCursor(base, base))
}
