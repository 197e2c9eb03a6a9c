package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColCheck   = 6
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV. Amounts are signed, so lines carry no direction.
func (p *ChaseParser) Parse(r io.Reader) ([]domain.BankStatementLine, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}

	lines := make([]domain.BankStatementLine, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < chaseNumFields-1 {
			return nil, rowError(i+2, fmt.Errorf("expected %d fields, got %d", chaseNumFields, len(rec)))
		}
		line, err := parseChaseRow(rec)
		if err != nil {
			return nil, rowError(i+2, err)
		}
		line.Sequence = len(lines) + 1
		lines = append(lines, line)
	}
	return lines, nil
}

func parseChaseRow(rec []string) (domain.BankStatementLine, error) {
	date, err := time.Parse(chaseDateFormat, strings.TrimSpace(rec[chaseColDate]))
	if err != nil {
		return domain.BankStatementLine{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}
	amount, err := parseAmount(rec[chaseColAmount])
	if err != nil {
		return domain.BankStatementLine{}, err
	}

	desc := strings.TrimSpace(rec[chaseColDesc])
	ref := field(rec, chaseColCheck)
	if ref == "" {
		ref = makeChaseRef(date, desc)
	}
	return domain.BankStatementLine{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Reference:   ref,
	}, nil
}

// makeChaseRef creates a reference like chase_20250103_GITHUB.
func makeChaseRef(date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("chase_%s_%s", date.Format("20060102"), prefix)
}
