package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requestScope is what every book-scoped handler needs from the request.
type requestScope struct {
	logger *slog.Logger
	bookID string
	userID string
}

// scope extracts the book id and the acting user. It writes a 401 and returns false when
// the auth middleware did not run.
func scope(c *gin.Context) (requestScope, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return requestScope{}, false
	}
	bookID := c.Param("book_id")
	return requestScope{
		logger: logger.With(slog.String("book_id", bookID)),
		bookID: bookID,
		userID: userID,
	}, true
}
