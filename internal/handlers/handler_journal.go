package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests for journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers journal entry routes under a book group.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.POST("/categorized", h.recordCategorizedTransaction)
		entries.GET("/:entry_id", h.getEntry)
		entries.PUT("/:entry_id", h.updateEntry)
		entries.DELETE("/:entry_id", h.deleteEntry)
		entries.POST("/:entry_id/post", h.postEntry)
		entries.POST("/:entry_id/void", h.voidEntry)
	}
}

// createEntry godoc
// @Summary Create a draft journal entry
// @Description Validates the double-entry invariant (debits equal credits within 0.01) and stores the entry as DRAFT.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   entry body dto.CreateEntryRequest true "Entry with lines"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} errorResponse "Imbalanced or empty entry"
// @Failure 403 {object} errorResponse "Line references an account of another book"
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /books/{book_id}/entries [post]
func (h *journalHandler) createEntry(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "journal entry request")
		return
	}

	entry, err := h.journalService.CreateEntry(c.Request.Context(), s.bookID, req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "create journal entry")
		return
	}
	s.logger.Info("Journal entry created", slog.String("entry_id", entry.EntryID), slog.Int("lines", len(entry.Lines)))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Newest entry date first. Pass the returned nextToken to fetch the following page.
// @Tags entries
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   status query string false "DRAFT, POSTED or VOID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} errorResponse "Invalid query"
// @Security BearerAuth
// @Router /books/{book_id}/entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, s.logger, err, "query parameters")
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), s.bookID, params)
	if err != nil {
		respondWithError(c, s.logger, err, "list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a journal entry
// @Tags entries
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} errorResponse "Entry not found"
// @Security BearerAuth
// @Router /books/{book_id}/entries/{entry_id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	entry, err := h.journalService.GetEntryByID(c.Request.Context(), s.bookID, c.Param("entry_id"))
	if err != nil {
		respondWithError(c, s.logger, err, "retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// updateEntry godoc
// @Summary Update a draft journal entry
// @Description Only DRAFT entries can change. Replacing lines re-validates the double-entry invariant.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   entry_id path string true "Entry ID"
// @Param   entry body dto.UpdateEntryRequest true "Fields to change"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} errorResponse "Imbalanced or empty entry"
// @Failure 409 {object} errorResponse "Entry is not a draft"
// @Security BearerAuth
// @Router /books/{book_id}/entries/{entry_id} [put]
func (h *journalHandler) updateEntry(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "journal entry update")
		return
	}

	entry, err := h.journalService.UpdateEntry(c.Request.Context(), s.bookID, c.Param("entry_id"), req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "update journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a draft journal entry
// @Tags entries
// @Param   book_id path string true "Book ID"
// @Param   entry_id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 409 {object} errorResponse "Entry is not a draft"
// @Security BearerAuth
// @Router /books/{book_id}/entries/{entry_id} [delete]
func (h *journalHandler) deleteEntry(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	entryID := c.Param("entry_id")
	if err := h.journalService.DeleteEntry(c.Request.Context(), s.bookID, entryID, s.userID); err != nil {
		respondWithError(c, s.logger, err, "delete journal entry")
		return
	}
	s.logger.Info("Journal entry deleted", slog.String("entry_id", entryID))
	c.Status(http.StatusNoContent)
}

// postEntry godoc
// @Summary Post a draft journal entry
// @Description Applies the entry to account balances atomically and marks it POSTED.
// @Tags entries
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} errorResponse "Entry not found"
// @Failure 409 {object} errorResponse "Already posted or void"
// @Security BearerAuth
// @Router /books/{book_id}/entries/{entry_id}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	h.transition(c, domain.Posted)
}

// voidEntry godoc
// @Summary Void a posted journal entry
// @Description Reverses the entry's effect on balances atomically and marks it VOID.
// @Tags entries
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} errorResponse "Entry is not posted"
// @Security BearerAuth
// @Router /books/{book_id}/entries/{entry_id}/void [post]
func (h *journalHandler) voidEntry(c *gin.Context) {
	h.transition(c, domain.Void)
}

func (h *journalHandler) transition(c *gin.Context, to domain.EntryStatus) {
	s, ok := scope(c)
	if !ok {
		return
	}
	entryID := c.Param("entry_id")

	var (
		entry *domain.JournalEntry
		err   error
	)
	if to == domain.Posted {
		entry, err = h.journalService.PostEntry(c.Request.Context(), s.bookID, entryID, s.userID)
	} else {
		entry, err = h.journalService.VoidEntry(c.Request.Context(), s.bookID, entryID, s.userID)
	}
	if err != nil {
		respondWithError(c, s.logger, err, "move journal entry to "+string(to))
		return
	}
	s.logger.Info("Journal entry status changed", slog.String("entry_id", entryID), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// recordCategorizedTransaction godoc
// @Summary Record a categorized cash transaction
// @Description Builds a two-line entry between a cash account and the account configured for the category.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   transaction body dto.CategorizedTransactionRequest true "Transaction"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} errorResponse "Category has no mapped account"
// @Security BearerAuth
// @Router /books/{book_id}/entries/categorized [post]
func (h *journalHandler) recordCategorizedTransaction(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.CategorizedTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "categorized transaction")
		return
	}

	entry, err := h.journalService.RecordCategorizedTransaction(c.Request.Context(), s.bookID, req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "record categorized transaction")
		return
	}
	s.logger.Info("Categorized transaction recorded", slog.String("entry_id", entry.EntryID), slog.String("category", req.Category))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}
