package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ParseTransactions reads book transactions exported as CSV with id, date, description, amount
// and direction columns. Without a direction column the amount sign decides: positive is a debit
// (money in), negative a credit.
func ParseTransactions(r io.Reader) ([]domain.BookTransaction, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	idCol := column(idx, "id", "transaction_id", "transactionid", "line_id")
	dateCol := column(idx, "date", "entry_date")
	amountCol := column(idx, "amount")
	if idCol < 0 || dateCol < 0 || amountCol < 0 {
		return nil, rowError(1, fmt.Errorf("header needs id, date and amount columns"))
	}
	descCol := column(idx, "description", "memo")
	dirCol := column(idx, "direction", "type", "side")
	entryCol := column(idx, "entry_id", "entryid")
	accountCol := column(idx, "account_id", "accountid", "account")

	seen := make(map[string]int, len(records)-1)
	txns := make([]domain.BookTransaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := i + 2
		id := field(rec, idCol)
		if id == "" {
			return nil, rowError(row, fmt.Errorf("missing id"))
		}
		if first, dup := seen[id]; dup {
			return nil, rowError(row, fmt.Errorf("id %q already used on row %d", id, first))
		}
		seen[id] = row

		date, err := parseDate(field(rec, dateCol))
		if err != nil {
			return nil, rowError(row, err)
		}
		amount, err := parseAmount(field(rec, amountCol))
		if err != nil {
			return nil, rowError(row, err)
		}

		direction := domain.Debit
		switch strings.ToUpper(field(rec, dirCol)) {
		case "":
			if amount.IsNegative() {
				direction = domain.Credit
			}
		case "DEBIT", "DR":
		case "CREDIT", "CR":
			direction = domain.Credit
		default:
			return nil, rowError(row, fmt.Errorf("unknown direction %q", field(rec, dirCol)))
		}

		txns = append(txns, domain.BookTransaction{
			TransactionID: id,
			EntryID:       field(rec, entryCol),
			AccountID:     field(rec, accountCol),
			Date:          date,
			Description:   field(rec, descCol),
			Amount:        amount.Abs(),
			Direction:     direction,
		})
	}
	return txns, nil
}
