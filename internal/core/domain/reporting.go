package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineTotals is the sum of the debit and credit columns of posted lines for one account.
type LineTotals struct {
	Debits  decimal.Decimal `json:"debits"`
	Credits decimal.Decimal `json:"credits"`
}

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport lists every account of a book with its balance in the debit or credit column.
type TrialBalanceReport struct {
	AsOf         *time.Time        `json:"asOf,omitempty"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
	Difference   decimal.Decimal   `json:"difference"`
	IsBalanced   bool              `json:"isBalanced"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// PAndLReport represents a profit and loss report
type PAndLReport struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"` // total revenue minus total expenses
}

// BalanceSheetReport represents a balance sheet report
type BalanceSheetReport struct {
	AsOf             *time.Time      `json:"asOf,omitempty"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`      // equity accounts only
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"` // cumulative revenue minus expenses
	IsBalanced       bool            `json:"isBalanced"`
}

// LedgerCursor is the ordering key of a general ledger line.
type LedgerCursor struct {
	EntryDate   time.Time
	PostingDate time.Time
	EntryID     string
	LineNumber  int
}

// LedgerLine is one posted line of a general ledger listing.
type LedgerLine struct {
	EntryID         string          `json:"entryID"`
	LineID          string          `json:"lineID"`
	LineNumber      int             `json:"lineNumber"`
	EntryDate       time.Time       `json:"entryDate"`
	PostingDate     time.Time       `json:"postingDate"`
	Description     string          `json:"description"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
}

// Cursor returns the ordering key of the line.
func (l LedgerLine) Cursor() LedgerCursor {
	return LedgerCursor{EntryDate: l.EntryDate, PostingDate: l.PostingDate, EntryID: l.EntryID, LineNumber: l.LineNumber}
}

// GeneralLedgerPage is one page of an account's posted lines between two dates.
type GeneralLedgerPage struct {
	AccountID      string          `json:"accountID"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"openingBalance"` // balance before the first line of this page
	Lines          []LedgerLine    `json:"lines"`
	NextToken      *string         `json:"nextToken,omitempty"`
}
