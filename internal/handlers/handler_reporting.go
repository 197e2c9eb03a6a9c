package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers report routes under a book group.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/profit-and-loss", h.getProfitAndLoss)
	}
	rg.GET("/accounts/:account_id/balance", h.getAccountBalance)
	rg.GET("/accounts/:account_id/ledger", h.getGeneralLedger)
}

// getAccountBalance godoc
// @Summary Get an account balance
// @Description Sums posted lines up to asOf in the account's normal-balance orientation.
// @Tags reports
// @Produce json
// @Param book_id path string true "Book ID"
// @Param account_id path string true "Account ID"
// @Param asOf query string false "Inclusive cut-off date (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /books/{book_id}/accounts/{account_id}/balance [get]
func (h *reportingHandler) getAccountBalance(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var params dto.ReportAsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, s.logger, err, "query parameters")
		return
	}

	accountID := c.Param("account_id")
	balance, err := h.reportingService.AccountBalance(c.Request.Context(), s.bookID, accountID, params.AsOf)
	if err != nil {
		respondWithError(c, s.logger, err, "calculate account balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountID: accountID, AsOf: params.AsOf, Balance: balance})
}

// getTrialBalance godoc
// @Summary Get the trial balance
// @Tags reports
// @Produce json
// @Param book_id path string true "Book ID"
// @Param asOf query string false "Inclusive cut-off date (YYYY-MM-DD)"
// @Success 200 {object} domain.TrialBalanceReport
// @Security BearerAuth
// @Router /books/{book_id}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var params dto.ReportAsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, s.logger, err, "query parameters")
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), s.bookID, params.AsOf)
	if err != nil {
		respondWithError(c, s.logger, err, "generate trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Get the balance sheet
// @Description Assets, liabilities and equity, with retained earnings from cumulative revenue minus expenses.
// @Tags reports
// @Produce json
// @Param book_id path string true "Book ID"
// @Param asOf query string false "Inclusive cut-off date (YYYY-MM-DD)"
// @Success 200 {object} domain.BalanceSheetReport
// @Security BearerAuth
// @Router /books/{book_id}/reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var params dto.ReportAsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, s.logger, err, "query parameters")
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), s.bookID, params.AsOf)
	if err != nil {
		respondWithError(c, s.logger, err, "generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getProfitAndLoss godoc
// @Summary Get the profit and loss report
// @Tags reports
// @Produce json
// @Param book_id path string true "Book ID"
// @Param from query string true "Start date (YYYY-MM-DD), inclusive"
// @Param to query string true "End date (YYYY-MM-DD), inclusive"
// @Success 200 {object} domain.PAndLReport
// @Failure 400 {object} errorResponse "Missing or reversed dates"
// @Security BearerAuth
// @Router /books/{book_id}/reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var params dto.ReportPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, s.logger, err, "query parameters")
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), s.bookID, params.From, params.To)
	if err != nil {
		respondWithError(c, s.logger, err, "generate profit and loss report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getGeneralLedger godoc
// @Summary Get an account's general ledger
// @Description Posted lines between two dates with running balances, paginated by nextToken.
// @Tags reports
// @Produce json
// @Param book_id path string true "Book ID"
// @Param account_id path string true "Account ID"
// @Param from query string true "Start date (YYYY-MM-DD), inclusive"
// @Param to query string true "End date (YYYY-MM-DD), inclusive"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} domain.GeneralLedgerPage
// @Failure 400 {object} errorResponse "Invalid query or token"
// @Security BearerAuth
// @Router /books/{book_id}/accounts/{account_id}/ledger [get]
func (h *reportingHandler) getGeneralLedger(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var params dto.GeneralLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, s.logger, err, "query parameters")
		return
	}

	page, err := h.reportingService.GeneralLedger(c.Request.Context(), s.bookID, c.Param("account_id"), params)
	if err != nil {
		respondWithError(c, s.logger, err, "generate general ledger")
		return
	}
	c.JSON(http.StatusOK, page)
}
