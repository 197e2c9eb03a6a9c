package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// reconciliationHandler exposes the bank reconciliation workflow.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconciliationService: rs}
}

func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	recs := rg.Group("/reconciliations")
	{
		recs.POST("", h.startReconciliation)
		recs.GET("/:reconciliation_id", h.getSummary)
		recs.POST("/:reconciliation_id/statement-lines", h.importStatementLines)
		recs.POST("/:reconciliation_id/auto-match", h.runAutoMatch)
		recs.POST("/:reconciliation_id/manual-match", h.manualMatch)
		recs.POST("/:reconciliation_id/items", h.createOutstandingItem)
		recs.POST("/:reconciliation_id/items/:item_id/clear", h.clearItem)
		recs.POST("/:reconciliation_id/complete", h.completeReconciliation)
	}
}

// startReconciliation godoc
// @Summary Start a reconciliation
// @Description Opens a reconciliation of one account against a bank statement.
// @Tags reconciliations
// @Accept json
// @Produce json
// @Param book_id path string true "Book ID"
// @Param reconciliation body dto.StartReconciliationRequest true "Account and statement balances"
// @Success 201 {object} domain.Reconciliation
// @Failure 404 {object} errorResponse "Account does not exist"
// @Security BearerAuth
// @Router /books/{book_id}/reconciliations [post]
func (h *reconciliationHandler) startReconciliation(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.StartReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "reconciliation request")
		return
	}

	rec, err := h.reconciliationService.StartReconciliation(c.Request.Context(), s.bookID, req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "start reconciliation")
		return
	}
	s.logger.Info("Reconciliation started", slog.String("reconciliation_id", rec.ReconciliationID), slog.String("account_id", rec.AccountID))
	c.JSON(http.StatusCreated, rec)
}

// getSummary godoc
// @Summary Get a reconciliation summary
// @Tags reconciliations
// @Produce json
// @Param book_id path string true "Book ID"
// @Param reconciliation_id path string true "Reconciliation ID"
// @Success 200 {object} domain.ReconciliationSummary
// @Failure 404 {object} errorResponse "Reconciliation not found"
// @Security BearerAuth
// @Router /books/{book_id}/reconciliations/{reconciliation_id} [get]
func (h *reconciliationHandler) getSummary(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	summary, err := h.reconciliationService.GetSummary(c.Request.Context(), s.bookID, c.Param("reconciliation_id"))
	if err != nil {
		respondWithError(c, s.logger, err, "summarize reconciliation")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// importStatementLines godoc
// @Summary Import bank statement lines
// @Description Every line needs a date and an amount; a malformed line rejects the whole batch.
// @Tags reconciliations
// @Accept json
// @Produce json
// @Param book_id path string true "Book ID"
// @Param reconciliation_id path string true "Reconciliation ID"
// @Param lines body dto.ImportStatementLinesRequest true "Statement lines"
// @Success 201 {array} domain.BankStatementLine
// @Failure 400 {object} errorResponse "Malformed statement line"
// @Security BearerAuth
// @Router /books/{book_id}/reconciliations/{reconciliation_id}/statement-lines [post]
func (h *reconciliationHandler) importStatementLines(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.ImportStatementLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "statement lines")
		return
	}

	lines, err := h.reconciliationService.ImportStatementLines(c.Request.Context(), s.bookID, c.Param("reconciliation_id"), req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "import statement lines")
		return
	}
	c.JSON(http.StatusCreated, lines)
}

// runAutoMatch godoc
// @Summary Run automatic matching
// @Description Matches unmatched statement lines to unreconciled book transactions (exact, near, fuzzy) and stores the matches.
// @Tags reconciliations
// @Produce json
// @Param book_id path string true "Book ID"
// @Param reconciliation_id path string true "Reconciliation ID"
// @Success 200 {object} domain.AutoMatchResult
// @Failure 409 {object} errorResponse "Reconciliation already completed"
// @Security BearerAuth
// @Router /books/{book_id}/reconciliations/{reconciliation_id}/auto-match [post]
func (h *reconciliationHandler) runAutoMatch(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	result, err := h.reconciliationService.RunAutoMatch(c.Request.Context(), s.bookID, c.Param("reconciliation_id"), s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "run automatic matching")
		return
	}
	s.logger.Info("Automatic matching finished",
		slog.Int("matches", len(result.Matches)),
		slog.Int("unmatched_statement_lines", len(result.UnmatchedStatementLines)),
		slog.String("variance", result.Variance.String()),
	)
	c.JSON(http.StatusOK, result)
}

// manualMatch godoc
// @Summary Match a statement line manually
// @Description Pairs a statement line with a book transaction, replacing any automatic match of either.
// @Tags reconciliations
// @Accept json
// @Produce json
// @Param book_id path string true "Book ID"
// @Param reconciliation_id path string true "Reconciliation ID"
// @Param match body dto.ManualMatchRequest true "Line and transaction"
// @Success 200 {object} domain.ReconciliationItem
// @Failure 404 {object} errorResponse "Line or transaction not found"
// @Failure 409 {object} errorResponse "Transaction matched in another reconciliation"
// @Security BearerAuth
// @Router /books/{book_id}/reconciliations/{reconciliation_id}/manual-match [post]
func (h *reconciliationHandler) manualMatch(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "manual match")
		return
	}

	item, err := h.reconciliationService.ManualMatch(c.Request.Context(), s.bookID, c.Param("reconciliation_id"), req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "match statement line")
		return
	}
	c.JSON(http.StatusOK, item)
}

// createOutstandingItem godoc
// @Summary Record an outstanding item
// @Tags reconciliations
// @Accept json
// @Produce json
// @Param book_id path string true "Book ID"
// @Param reconciliation_id path string true "Reconciliation ID"
// @Param item body dto.CreateOutstandingItemRequest true "Outstanding item"
// @Success 201 {object} domain.ReconciliationItem
// @Failure 400 {object} errorResponse "Invalid item"
// @Security BearerAuth
// @Router /books/{book_id}/reconciliations/{reconciliation_id}/items [post]
func (h *reconciliationHandler) createOutstandingItem(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.CreateOutstandingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "outstanding item")
		return
	}

	item, err := h.reconciliationService.CreateOutstandingItem(c.Request.Context(), s.bookID, c.Param("reconciliation_id"), req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "create outstanding item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// clearItem godoc
// @Summary Clear an outstanding item
// @Description An empty body clears the item as of today.
// @Tags reconciliations
// @Accept json
// @Produce json
// @Param book_id path string true "Book ID"
// @Param reconciliation_id path string true "Reconciliation ID"
// @Param item_id path string true "Item ID"
// @Param clearing body dto.ClearItemRequest false "Clearing date"
// @Success 200 {object} domain.ReconciliationItem
// @Failure 404 {object} errorResponse "Item not found"
// @Security BearerAuth
// @Router /books/{book_id}/reconciliations/{reconciliation_id}/items/{item_id}/clear [post]
func (h *reconciliationHandler) clearItem(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.ClearItemRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, s.logger, err, "clearing request")
		return
	}

	item, err := h.reconciliationService.ClearItem(c.Request.Context(), s.bookID, c.Param("reconciliation_id"), c.Param("item_id"), req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "clear item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// completeReconciliation godoc
// @Summary Complete a reconciliation
// @Description Freezes the reconciliation with its current variance.
// @Tags reconciliations
// @Produce json
// @Param book_id path string true "Book ID"
// @Param reconciliation_id path string true "Reconciliation ID"
// @Success 200 {object} domain.Reconciliation
// @Failure 409 {object} errorResponse "Already completed"
// @Security BearerAuth
// @Router /books/{book_id}/reconciliations/{reconciliation_id}/complete [post]
func (h *reconciliationHandler) completeReconciliation(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	rec, err := h.reconciliationService.CompleteReconciliation(c.Request.Context(), s.bookID, c.Param("reconciliation_id"), s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "complete reconciliation")
		return
	}
	s.logger.Info("Reconciliation completed", slog.String("reconciliation_id", rec.ReconciliationID), slog.String("variance", rec.Variance.String()))
	c.JSON(http.StatusOK, rec)
}
