package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers account routes under a book group.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:account_id", h.getAccount)
		accounts.PUT("/:account_id", h.updateAccount)
		accounts.DELETE("/:account_id", h.deactivateAccount)
		accounts.GET("/:account_id/children", h.listChildAccounts)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the book's chart of accounts. Codes are unique per book.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 403 {object} errorResponse "Parent account belongs to another book"
// @Failure 409 {object} errorResponse "Code already used"
// @Security BearerAuth
// @Router /books/{book_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "account request")
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), s.bookID, req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "create account")
		return
	}

	s.logger.Info("Account created", slog.String("account_id", acc.AccountID), slog.String("code", acc.Code))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(acc))
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Tags accounts
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /books/{book_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), s.bookID)
	if err != nil {
		respondWithError(c, s.logger, err, "list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} errorResponse "Account belongs to another book"
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /books/{book_id}/accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	acc, err := h.accountService.GetAccountByID(c.Request.Context(), s.bookID, c.Param("account_id"))
	if err != nil {
		respondWithError(c, s.logger, err, "retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// updateAccount godoc
// @Summary Update an account
// @Description Changes the name, description or active flag. Type and code are fixed once created.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   account_id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /books/{book_id}/accounts/{account_id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, s.logger, err, "account update")
		return
	}

	acc, err := h.accountService.UpdateAccount(c.Request.Context(), s.bookID, c.Param("account_id"), req, s.userID)
	if err != nil {
		respondWithError(c, s.logger, err, "update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Inactive accounts keep their history but cannot receive new lines.
// @Tags accounts
// @Param   book_id path string true "Book ID"
// @Param   account_id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /books/{book_id}/accounts/{account_id} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	accountID := c.Param("account_id")
	if err := h.accountService.DeactivateAccount(c.Request.Context(), s.bookID, accountID, s.userID); err != nil {
		respondWithError(c, s.logger, err, "deactivate account")
		return
	}
	s.logger.Info("Account deactivated", slog.String("account_id", accountID))
	c.Status(http.StatusNoContent)
}

// listChildAccounts godoc
// @Summary List the direct children of an account
// @Tags accounts
// @Produce  json
// @Param   book_id path string true "Book ID"
// @Param   account_id path string true "Parent account ID"
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /books/{book_id}/accounts/{account_id}/children [get]
func (h *accountHandler) listChildAccounts(c *gin.Context) {
	s, ok := scope(c)
	if !ok {
		return
	}
	children, err := h.accountService.ListChildAccounts(c.Request.Context(), s.bookID, c.Param("account_id"))
	if err != nil {
		respondWithError(c, s.logger, err, "list child accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(children)})
}
