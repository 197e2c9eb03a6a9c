package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/matching"
	"github.com/SscSPs/ledger_engine/internal/importer"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type matchOptions struct {
	statementPath    string
	transactionsPath string
	format           string
	opening          string
	closing          string
	tolerance        string
	dateWindowDays   int
	fuzzyThreshold   float64
}

func newMatchCommand() *cobra.Command {
	opts := matchOptions{}
	defaults := matching.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a bank statement CSV against exported book transactions",
		Long: `Runs the automatic matcher over a bank statement and a book transaction
export and prints the matches, unmatched lines and variance as JSON.

Example:
  ledgerctl match --statement jan.csv --transactions books.csv --format chase \
    --opening 1000 --closing 4221.83`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.statementPath, "statement", "", "bank statement CSV file")
	f.StringVar(&opts.transactionsPath, "transactions", "", "book transactions CSV file")
	f.StringVar(&opts.format, "format", "generic", "statement format: generic or chase")
	f.StringVar(&opts.opening, "opening", "0", "statement opening balance")
	f.StringVar(&opts.closing, "closing", "", "statement closing balance (defaults to opening plus the statement total)")
	f.StringVar(&opts.tolerance, "tolerance", defaults.AmountTolerance.String(), "amount tolerance for near and fuzzy matches")
	f.IntVar(&opts.dateWindowDays, "date-window", defaults.DateWindowDays, "days either side of the statement date to search")
	f.Float64Var(&opts.fuzzyThreshold, "fuzzy-threshold", defaults.FuzzyThreshold, "minimum description similarity for fuzzy matches")
	_ = cmd.MarkFlagRequired("statement")
	_ = cmd.MarkFlagRequired("transactions")

	return cmd
}

func runMatch(out io.Writer, opts matchOptions) error {
	parser, err := importer.DefaultRegistry().Get(opts.format)
	if err != nil {
		return err
	}

	lines, err := readFile(opts.statementPath, parser.Parse)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}
	txns, err := readFile(opts.transactionsPath, importer.ParseTransactions)
	if err != nil {
		return fmt.Errorf("reading transactions: %w", err)
	}

	opening, err := decimal.NewFromString(opts.opening)
	if err != nil {
		return fmt.Errorf("invalid --opening: %w", err)
	}
	closing := opening
	for _, l := range lines {
		closing = closing.Add(l.SignedAmount())
	}
	if opts.closing != "" {
		if closing, err = decimal.NewFromString(opts.closing); err != nil {
			return fmt.Errorf("invalid --closing: %w", err)
		}
	}
	tolerance, err := decimal.NewFromString(opts.tolerance)
	if err != nil {
		return fmt.Errorf("invalid --tolerance: %w", err)
	}

	m := matching.NewMatcher(matching.Options{
		AmountTolerance: tolerance,
		DateWindowDays:  opts.dateWindowDays,
		FuzzyThreshold:  opts.fuzzyThreshold,
	})
	result, err := m.AutoMatch(lines, txns, closing.Sub(opening))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(matchReport{
		StatementLines:    len(lines),
		BookTransactions:  len(txns),
		OpeningBalance:    opening,
		ClosingBalance:    closing,
		AutoMatchResult:   result,
		OutstandingAmount: outstandingTotal(result),
	})
}

type matchReport struct {
	StatementLines    int             `json:"statementLines"`
	BookTransactions  int             `json:"bookTransactions"`
	OpeningBalance    decimal.Decimal `json:"openingBalance"`
	ClosingBalance    decimal.Decimal `json:"closingBalance"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	*domain.AutoMatchResult
}

// outstandingTotal sums the book transactions no statement line claimed.
func outstandingTotal(result *domain.AutoMatchResult) decimal.Decimal {
	total := decimal.Zero
	for _, t := range result.UnmatchedTransactions {
		total = total.Add(t.SignedAmount())
	}
	return total
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}
