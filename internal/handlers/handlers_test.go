package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/matching"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	bookPath   = "/api/v1/books/book-1"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// LedgerAPITestSuite drives the real services over the in-memory store through HTTP.
type LedgerAPITestSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func (suite *LedgerAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret:        testSecret,
		IsProduction:     true,
		Matching:         matching.DefaultOptions(),
		CategoryAccounts: map[string]string{"consulting": "4000"},
	}
	container := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore()))

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, container)

	token, err := middleware.GenerateToken(testSecret, "user-1", time.Hour)
	suite.Require().NoError(err)
	suite.token = token
}

func (suite *LedgerAPITestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *LedgerAPITestSuite) decode(w *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (suite *LedgerAPITestSuite) createAccount(code, name string, t domain.AccountType) string {
	w := suite.do(http.MethodPost, bookPath+"/accounts", dto.CreateAccountRequest{Code: code, Name: name, AccountType: t})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var acc dto.AccountResponse
	suite.decode(w, &acc)
	return acc.AccountID
}

func (suite *LedgerAPITestSuite) TestHealthIsPublic() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *LedgerAPITestSuite) TestMissingTokenIsRejected() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, bookPath+"/accounts", nil))
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *LedgerAPITestSuite) TestAccountValidationAndDuplicates() {
	w := suite.do(http.MethodPost, bookPath+"/accounts", map[string]string{"code": "1000", "name": "Cash", "accountType": "INCOME"})
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.createAccount("1000", "Cash", domain.Asset)
	w = suite.do(http.MethodPost, bookPath+"/accounts", dto.CreateAccountRequest{Code: "1000", Name: "Cash again", AccountType: domain.Asset})
	suite.Equal(http.StatusConflict, w.Code)
	var body errorBody
	suite.decode(w, &body)
	suite.Equal("DUPLICATE", body.Code)

	w = suite.do(http.MethodGet, bookPath+"/accounts/does-not-exist", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *LedgerAPITestSuite) TestEntryLifecycle() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)
	revenue := suite.createAccount("4000", "Revenue", domain.Revenue)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	imbalanced := dto.CreateEntryRequest{Date: day, Description: "Consulting", Lines: []dto.EntryLineRequest{
		{AccountID: cash, Debit: decimal.NewFromInt(100)},
		{AccountID: revenue, Credit: decimal.NewFromInt(90)},
	}}
	w := suite.do(http.MethodPost, bookPath+"/entries", imbalanced)
	suite.Equal(http.StatusBadRequest, w.Code)
	var body errorBody
	suite.decode(w, &body)
	suite.Equal("IMBALANCED_ENTRY", body.Code)

	imbalanced.Lines[1].Credit = decimal.NewFromInt(100)
	w = suite.do(http.MethodPost, bookPath+"/entries", imbalanced)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var entry dto.JournalEntryResponse
	suite.decode(w, &entry)
	suite.Equal(domain.Draft, entry.Status)

	w = suite.do(http.MethodPost, bookPath+"/entries/"+entry.EntryID+"/post", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.decode(w, &entry)
	suite.Equal(domain.Posted, entry.Status)
	suite.NotNil(entry.PostingDate)

	w = suite.do(http.MethodPost, bookPath+"/entries/"+entry.EntryID+"/post", nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.decode(w, &body)
	suite.Equal("ALREADY_POSTED", body.Code)

	w = suite.do(http.MethodPut, bookPath+"/entries/"+entry.EntryID, map[string]string{"description": "edited"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.decode(w, &body)
	suite.Equal("IMMUTABLE_ENTRY", body.Code)

	w = suite.do(http.MethodGet, bookPath+"/accounts/"+cash+"/balance", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var bal dto.AccountBalanceResponse
	suite.decode(w, &bal)
	suite.True(bal.Balance.Equal(decimal.NewFromInt(100)), bal.Balance.String())

	w = suite.do(http.MethodGet, bookPath+"/reports/trial-balance", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var tb domain.TrialBalanceReport
	suite.decode(w, &tb)
	suite.True(tb.IsBalanced)
	suite.True(tb.TotalDebits.Equal(decimal.NewFromInt(100)))

	w = suite.do(http.MethodPost, bookPath+"/entries/"+entry.EntryID+"/void", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	w = suite.do(http.MethodGet, bookPath+"/accounts/"+cash+"/balance", nil)
	suite.decode(w, &bal)
	suite.True(bal.Balance.IsZero())

	w = suite.do(http.MethodPost, bookPath+"/entries/"+entry.EntryID+"/post", nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.decode(w, &body)
	suite.Equal("INVALID_TRANSITION", body.Code)
}

func (suite *LedgerAPITestSuite) TestOtherBookIsForbidden() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)
	w := suite.do(http.MethodGet, "/api/v1/books/book-2/accounts/"+cash, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *LedgerAPITestSuite) TestReportQueryValidation() {
	w := suite.do(http.MethodGet, bookPath+"/reports/profit-and-loss?from=2024-01-01", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, bookPath+"/reports/profit-and-loss?from=2024-02-01&to=2024-01-01", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodGet, bookPath+"/reports/profit-and-loss?from=2024-01-01&to=2024-01-31", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var pl domain.PAndLReport
	suite.decode(w, &pl)
	suite.True(pl.NetIncome.IsZero())
}

func (suite *LedgerAPITestSuite) TestReconciliationFlow() {
	cash := suite.createAccount("1000", "Cash", domain.Asset)
	suite.createAccount("4000", "Consulting Revenue", domain.Revenue)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	w := suite.do(http.MethodPost, bookPath+"/entries/categorized", dto.CategorizedTransactionRequest{
		Date: day, Description: "Consulting income", Category: "consulting",
		CashAccountID: cash, Amount: decimal.NewFromInt(100), Direction: domain.Debit, Post: true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, bookPath+"/reconciliations", dto.StartReconciliationRequest{
		AccountID: "missing", StatementDate: day, ClosingBalance: decimal.NewFromInt(100),
	})
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.do(http.MethodPost, bookPath+"/reconciliations", dto.StartReconciliationRequest{
		AccountID: cash, StatementDate: day.AddDate(0, 0, 25), ClosingBalance: decimal.NewFromInt(100),
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var rec domain.Reconciliation
	suite.decode(w, &rec)
	recPath := bookPath + "/reconciliations/" + rec.ReconciliationID

	w = suite.do(http.MethodPost, recPath+"/statement-lines", map[string]any{
		"lines": []map[string]any{{"description": "no date", "amount": "5"}},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	amount := decimal.NewFromInt(100)
	w = suite.do(http.MethodPost, recPath+"/statement-lines", dto.ImportStatementLinesRequest{
		Lines: []dto.StatementLineRequest{{Date: &day, Description: "CONSULTING INCOME", Amount: &amount, Type: domain.Credit}},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, recPath+"/auto-match", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result domain.AutoMatchResult
	suite.decode(w, &result)
	suite.Len(result.Matches, 1)
	suite.Equal(domain.MatchedExact, result.Matches[0].Type)
	suite.True(result.Variance.IsZero(), result.Variance.String())

	w = suite.do(http.MethodPost, recPath+"/complete", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &rec)
	suite.Equal(domain.ReconciliationCompleted, rec.Status)

	w = suite.do(http.MethodPost, recPath+"/complete", nil)
	suite.Equal(http.StatusConflict, w.Code)
}

func TestLedgerAPI(t *testing.T) {
	suite.Run(t, new(LedgerAPITestSuite))
}

// MockReportingService is a mock implementation of portssvc.ReportingService
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) AccountBalance(ctx context.Context, bookID string, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, bookID, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReportingService) TrialBalance(ctx context.Context, bookID string, asOf *time.Time) (*domain.TrialBalanceReport, error) {
	args := m.Called(ctx, bookID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalanceReport), args.Error(1)
}

func (m *MockReportingService) BalanceSheet(ctx context.Context, bookID string, asOf *time.Time) (*domain.BalanceSheetReport, error) {
	args := m.Called(ctx, bookID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheetReport), args.Error(1)
}

func (m *MockReportingService) ProfitAndLoss(ctx context.Context, bookID string, from, to time.Time) (*domain.PAndLReport, error) {
	args := m.Called(ctx, bookID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PAndLReport), args.Error(1)
}

func (m *MockReportingService) GeneralLedger(ctx context.Context, bookID string, accountID string, params dto.GeneralLedgerParams) (*domain.GeneralLedgerPage, error) {
	args := m.Called(ctx, bookID, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneralLedgerPage), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

func TestReportingHandler_HidesStorageErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reporting := new(MockReportingService)
	asOf := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	reporting.On("TrialBalance", mock.Anything, "book-1", mock.MatchedBy(func(d *time.Time) bool {
		return d != nil && d.Equal(asOf)
	})).Return(nil, errors.New("connection reset by peer")).Once()

	cfg := &config.Config{JWTSecret: testSecret, IsProduction: true}
	r := gin.New()
	handlers.RegisterRoutes(r, cfg, &portssvc.ServiceContainer{Reporting: reporting})

	token, err := middleware.GenerateToken(testSecret, "user-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, bookPath+"/reports/trial-balance?asOf=2024-01-31", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Failed to generate trial balance" {
		t.Errorf("unexpected error message %q", body.Error)
	}
	reporting.AssertExpectations(t)
}
