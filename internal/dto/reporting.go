package dto

import "time"

// ReportAsOfParams is the query of point-in-time reports. A missing asOf means "everything posted so far".
type ReportAsOfParams struct {
	AsOf *time.Time `form:"asOf" time_format:"2006-01-02"`
}

// ReportPeriodParams is the query of period reports.
type ReportPeriodParams struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// GeneralLedgerParams is the query of a general ledger page.
type GeneralLedgerParams struct {
	From      time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To        time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
	Limit     int       `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken *string   `form:"nextToken"`
}
