package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantName string
	}{
		{"imbalanced entry", fmt.Errorf("create: %w", apperrors.ErrImbalancedEntry), http.StatusBadRequest, "IMBALANCED_ENTRY"},
		{"missing account", apperrors.ErrInvalidAccount, http.StatusNotFound, "INVALID_ACCOUNT"},
		{"other book", fmt.Errorf("%w: account a1", apperrors.ErrAccess), http.StatusForbidden, "ACCESS_DENIED"},
		{"already posted", apperrors.ErrAlreadyPosted, http.StatusConflict, "ALREADY_POSTED"},
		{"duplicate", apperrors.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{"storage failure", apperrors.NewAppError(http.StatusInternalServerError, "failed to begin transaction", errors.New("dial tcp")), http.StatusInternalServerError, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, statusFor(tt.err))
			assert.Equal(t, tt.wantName, errorCode(tt.err))
		})
	}
}
