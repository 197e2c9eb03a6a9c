package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// GenericParser reads a headed CSV with date, description, amount and optional type and reference columns.
// Without a type column the amount sign gives the direction: positive deposits, negative withdrawals.
type GenericParser struct{}

func (p *GenericParser) Format() string { return "generic" }

func (p *GenericParser) Parse(r io.Reader) ([]domain.BankStatementLine, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	dateCol := column(idx, "date", "transaction date", "posting date")
	amountCol := column(idx, "amount")
	if dateCol < 0 || amountCol < 0 {
		return nil, rowError(1, fmt.Errorf("header needs date and amount columns"))
	}
	descCol := column(idx, "description", "details", "memo")
	typeCol := column(idx, "type", "direction")
	refCol := column(idx, "reference", "ref", "check or slip #")

	lines := make([]domain.BankStatementLine, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := i + 2
		date, err := parseDate(field(rec, dateCol))
		if err != nil {
			return nil, rowError(row, err)
		}
		amount, err := parseAmount(field(rec, amountCol))
		if err != nil {
			return nil, rowError(row, err)
		}

		var direction domain.Side
		switch strings.ToUpper(field(rec, typeCol)) {
		case "":
		case "CREDIT", "CR", "DEPOSIT":
			direction = domain.Credit
		case "DEBIT", "DR", "WITHDRAWAL":
			direction = domain.Debit
		default:
			return nil, rowError(row, fmt.Errorf("unknown type %q", field(rec, typeCol)))
		}
		if direction != "" {
			amount = amount.Abs()
		}

		lines = append(lines, domain.BankStatementLine{
			Sequence:    len(lines) + 1,
			Date:        date,
			Description: field(rec, descCol),
			Amount:      amount,
			Direction:   direction,
			Reference:   field(rec, refCol),
		})
	}
	return lines, nil
}
