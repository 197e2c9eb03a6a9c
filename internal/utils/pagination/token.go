package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

const timeFormat = time.RFC3339Nano

// EncodeToken creates a base64 encoded token from an entry date, creation time and entry id.
// It is the cursor for journal entry listings, which are ordered newest first.
func EncodeToken(entryDate time.Time, createdAt time.Time, entryID string) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", entryDate.Format(timeFormat), createdAt.Format(timeFormat), entryID)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into entry date, creation time and entry id.
func DecodeToken(token string) (time.Time, time.Time, string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}

	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return entryDate, createdAt, parts[2], nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(fields, "|")))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}

// EncodeLedgerToken encodes the position of the last line on a general ledger page
// together with the running balance at that line, so the next page can continue the balance.
func EncodeLedgerToken(cursor domain.LedgerCursor, runningBalance decimal.Decimal) string {
	return EncodeMultiFieldToken(
		cursor.EntryDate.Format(timeFormat),
		cursor.PostingDate.Format(timeFormat),
		cursor.EntryID,
		strconv.Itoa(cursor.LineNumber),
		runningBalance.String(),
	)
}

// DecodeLedgerToken is the inverse of EncodeLedgerToken.
func DecodeLedgerToken(token string) (domain.LedgerCursor, decimal.Decimal, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return domain.LedgerCursor{}, decimal.Zero, err
	}
	if len(parts) != 5 {
		return domain.LedgerCursor{}, decimal.Zero, fmt.Errorf("invalid pagination token format (expected 5 fields, got %d)", len(parts))
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return domain.LedgerCursor{}, decimal.Zero, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	postingDate, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return domain.LedgerCursor{}, decimal.Zero, fmt.Errorf("invalid pagination token format (posting date parse): %w", err)
	}
	lineNumber, err := strconv.Atoi(parts[3])
	if err != nil {
		return domain.LedgerCursor{}, decimal.Zero, fmt.Errorf("invalid pagination token format (line number parse): %w", err)
	}
	balance, err := decimal.NewFromString(parts[4])
	if err != nil {
		return domain.LedgerCursor{}, decimal.Zero, fmt.Errorf("invalid pagination token format (balance parse): %w", err)
	}

	return domain.LedgerCursor{
		EntryDate:   entryDate,
		PostingDate: postingDate,
		EntryID:     parts[2],
		LineNumber:  lineNumber,
	}, balance, nil
}

// CompareLedgerCursor orders ledger lines by entry date, posting date, entry id and line number.
// It returns -1, 0 or 1.
func CompareLedgerCursor(a, b domain.LedgerCursor) int {
	if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
		return c
	}
	if c := a.PostingDate.Compare(b.PostingDate); c != 0 {
		return c
	}
	if c := strings.Compare(a.EntryID, b.EntryID); c != 0 {
		return c
	}
	switch {
	case a.LineNumber < b.LineNumber:
		return -1
	case a.LineNumber > b.LineNumber:
		return 1
	}
	return 0
}
