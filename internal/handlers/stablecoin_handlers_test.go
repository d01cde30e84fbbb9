package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fountain/fountain-api/internal/auth"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/api/params"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

// MockStablecoinAPI is a mock implementation of the stablecoin service
type MockStablecoinAPI struct {
	mock.Mock
}

func (m *MockStablecoinAPI) CreateStablecoin(ctx context.Context, caller business.Caller, p params.CreateStablecoinParams) (*business.Stablecoin, *business.Operation, error) {
	args := m.Called(ctx, caller, p)
	sc, _ := args.Get(0).(*business.Stablecoin)
	op, _ := args.Get(1).(*business.Operation)
	return sc, op, args.Error(2)
}

func (m *MockStablecoinAPI) Mint(ctx context.Context, caller business.Caller, p params.MintParams) (*business.Operation, error) {
	args := m.Called(ctx, caller, p)
	op, _ := args.Get(0).(*business.Operation)
	return op, args.Error(1)
}

func (m *MockStablecoinAPI) Burn(ctx context.Context, caller business.Caller, p params.BurnParams) (*business.Operation, decimal.Decimal, error) {
	args := m.Called(ctx, caller, p)
	op, _ := args.Get(0).(*business.Operation)
	return op, args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockStablecoinAPI) Cancel(ctx context.Context, caller business.Caller, stablecoinID uuid.UUID) error {
	return m.Called(ctx, caller, stablecoinID).Error(0)
}

func (m *MockStablecoinAPI) GetStablecoin(ctx context.Context, caller business.Caller, id uuid.UUID) (*business.Stablecoin, error) {
	args := m.Called(ctx, caller, id)
	sc, _ := args.Get(0).(*business.Stablecoin)
	return sc, args.Error(1)
}

func (m *MockStablecoinAPI) GetOperation(ctx context.Context, caller business.Caller, id uuid.UUID) (*business.Operation, error) {
	args := m.Called(ctx, caller, id)
	op, _ := args.Get(0).(*business.Operation)
	return op, args.Error(1)
}

func (m *MockStablecoinAPI) ListOperations(ctx context.Context, caller business.Caller, stablecoinID uuid.UUID) ([]*business.Operation, error) {
	args := m.Called(ctx, caller, stablecoinID)
	ops, _ := args.Get(0).([]*business.Operation)
	return ops, args.Error(1)
}

func (m *MockStablecoinAPI) GetCollectionWalletStatus(ctx context.Context, caller business.Caller, operationID uuid.UUID) (*business.WalletStatus, error) {
	args := m.Called(ctx, caller, operationID)
	status, _ := args.Get(0).(*business.WalletStatus)
	return status, args.Error(1)
}

const testSecret = "handler-test-secret"

var testCaller = business.Caller{CompanyID: "company-1"}

func setupRouter(t *testing.T, svc StablecoinAPI) (*gin.Engine, string) {
	t.Helper()
	authenticator := auth.NewAuthenticator(testSecret, "")
	token, err := authenticator.IssueToken(testCaller, time.Hour)
	require.NoError(t, err)

	h := NewStablecoinHandler(svc)
	r := gin.New()
	api := r.Group("/api/v1", authenticator.EnsureValidToken())
	api.POST("/stablecoins", h.CreateStablecoin)
	api.GET("/stablecoins/:stablecoin_id", h.GetStablecoin)
	api.POST("/stablecoins/:stablecoin_id/mint", h.Mint)
	api.POST("/stablecoins/:stablecoin_id/burn", h.Burn)
	api.POST("/stablecoins/:stablecoin_id/cancel", h.Cancel)
	api.GET("/stablecoins/:stablecoin_id/operations", h.ListOperations)
	api.GET("/operations/:operation_id", h.GetOperation)
	api.GET("/operations/:operation_id/wallet", h.GetWalletStatus)
	return r, token
}

func doRequest(r *gin.Engine, token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStablecoinHandler_CreateStablecoin(t *testing.T) {
	scID := uuid.New()
	opID := uuid.New()
	sc := &business.Stablecoin{ID: scID, CompanyID: "company-1", CurrencyCode: "BRX", IssuerAddress: "rIssuer"}
	op := &business.Operation{
		ID:             opID,
		StablecoinID:   scID,
		Status:         business.OperationStatusRequireDeposit,
		CurrencyCode:   "BRX",
		IssueAmount:    decimal.NewFromInt(100),
		RequiredAmount: decimal.RequireFromString("3.508772"),
		Wallet:         &business.CollectionWallet{Address: "rCollection"},
	}

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *MockStablecoinAPI)
		wantStatus int
		wantBody   []string
	}{
		{
			name: "created",
			body: `{"company_wallet":"rCompany","currency_code":" BRX ","amount":"100","deposit_type":"XRP"}`,
			setupMock: func(m *MockStablecoinAPI) {
				m.On("CreateStablecoin", mock.Anything, testCaller, mock.MatchedBy(func(p params.CreateStablecoinParams) bool {
					return p.CurrencyCode == "BRX" && p.Amount.Equal(decimal.NewFromInt(100)) && p.CompanyWallet == "rCompany"
				})).Return(sc, op, nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   []string{`"wallet_address":"rCollection"`, `"required_amount":"3.508772"`, `"status":"require_deposit"`, `"issuer_address":"rIssuer"`},
		},
		{
			name:       "malformed body",
			body:       `{"company_wallet":`,
			setupMock:  func(m *MockStablecoinAPI) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate currency code",
			body: `{"company_wallet":"rCompany","currency_code":"BRX","amount":"100"}`,
			setupMock: func(m *MockStablecoinAPI) {
				m.On("CreateStablecoin", mock.Anything, testCaller, mock.Anything).Return(nil, nil, business.ErrStablecoinExists)
			},
			wantStatus: http.StatusConflict,
			wantBody:   []string{`"error":"stablecoin already exists"`},
		},
		{
			name: "invalid currency code",
			body: `{"company_wallet":"rCompany","currency_code":"XRP","amount":"100"}`,
			setupMock: func(m *MockStablecoinAPI) {
				m.On("CreateStablecoin", mock.Anything, testCaller, mock.Anything).Return(nil, nil, business.ErrCurrencyCodeInvalid)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{`"error":"currency code invalid"`},
		},
		{
			name: "validation error carries field",
			body: `{"company_wallet":"rCompany","currency_code":"BRX","amount":"0"}`,
			setupMock: func(m *MockStablecoinAPI) {
				m.On("CreateStablecoin", mock.Anything, testCaller, mock.Anything).
					Return(nil, nil, business.NewValidationError("amount", "must be positive"))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{`"field":"amount"`},
		},
		{
			name: "wallet funding failed",
			body: `{"company_wallet":"rCompany","currency_code":"BRX","amount":"100"}`,
			setupMock: func(m *MockStablecoinAPI) {
				m.On("CreateStablecoin", mock.Anything, testCaller, mock.Anything).
					Return(nil, nil, &business.LedgerSubmissionError{Op: "payment", EngineResult: "tecUNFUNDED_PAYMENT"})
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStablecoinAPI)
			tt.setupMock(svc)
			r, token := setupRouter(t, svc)

			w := doRequest(r, token, http.MethodPost, "/api/v1/stablecoins", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, w.Body.String(), want)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestStablecoinHandler_RequiresToken(t *testing.T) {
	svc := new(MockStablecoinAPI)
	r, _ := setupRouter(t, svc)

	w := doRequest(r, "", http.MethodGet, "/api/v1/stablecoins/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "GetStablecoin", mock.Anything, mock.Anything, mock.Anything)
}

func TestStablecoinHandler_ErrorMapping(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: business.ErrStablecoinNotFound, wantStatus: http.StatusNotFound},
		{name: "other company", err: &business.AuthorizationError{Subject: id.String(), Reason: "company mismatch"}, wantStatus: http.StatusForbidden},
		{name: "cancel after completion", err: business.ErrCancelNotAllowed, wantStatus: http.StatusConflict},
		{name: "trust line missing", err: business.ErrTrustLineMissing, wantStatus: http.StatusUnprocessableEntity},
		{name: "refund submission failed", err: &business.LedgerSubmissionError{Op: "refund", Err: errors.New("timeout")}, wantStatus: http.StatusBadGateway},
		{name: "store failure", err: &business.PersistenceError{Op: "update", Err: errors.New("conn reset")}, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockStablecoinAPI)
			svc.On("Cancel", mock.Anything, testCaller, id).Return(tt.err)
			r, token := setupRouter(t, svc)

			w := doRequest(r, token, http.MethodPost, "/api/v1/stablecoins/"+id.String()+"/cancel", "")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestStablecoinHandler_Burn(t *testing.T) {
	id := uuid.New()
	op := &business.Operation{
		ID:             uuid.New(),
		Status:         business.OperationStatusCompleted,
		IssueAmount:    decimal.NewFromInt(40),
		SettlementTxID: "CLAWBACK1",
	}
	svc := new(MockStablecoinAPI)
	svc.On("Burn", mock.Anything, testCaller, mock.MatchedBy(func(p params.BurnParams) bool {
		return p.StablecoinID == id && p.CurrencyCode == "BRX" && p.ReturnAsset == "USD" && p.Amount.Equal(decimal.NewFromInt(40))
	})).Return(op, decimal.NewFromInt(8), nil)
	r, token := setupRouter(t, svc)

	w := doRequest(r, token, http.MethodPost, "/api/v1/stablecoins/"+id.String()+"/burn", `{"currency_code":"BRX","amount":40}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["status"])
	assert.Equal(t, "8", resp["returned_amount"])
	assert.Equal(t, "USD", resp["return_asset"])
	assert.Equal(t, "CLAWBACK1", resp["settlement_tx_id"])
	svc.AssertExpectations(t)
}

func TestStablecoinHandler_Reads(t *testing.T) {
	scID := uuid.New()
	opID := uuid.New()
	op := &business.Operation{ID: opID, StablecoinID: scID, Status: business.OperationStatusPartialDeposit}

	svc := new(MockStablecoinAPI)
	svc.On("GetStablecoin", mock.Anything, testCaller, scID).Return(&business.Stablecoin{ID: scID, CurrencyCode: "BRX"}, nil)
	svc.On("ListOperations", mock.Anything, testCaller, scID).Return([]*business.Operation{op}, nil)
	svc.On("GetOperation", mock.Anything, testCaller, opID).Return(op, nil)
	svc.On("GetCollectionWalletStatus", mock.Anything, testCaller, opID).Return(&business.WalletStatus{
		OperationID:      opID,
		Address:          "rCollection",
		Balance:          decimal.NewFromInt(26),
		BalanceAvailable: true,
	}, nil)
	r, token := setupRouter(t, svc)

	w := doRequest(r, token, http.MethodGet, "/api/v1/stablecoins/"+scID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"object":"stablecoin"`)
	assert.Contains(t, w.Body.String(), `"currency_code":"BRX"`)

	w = doRequest(r, token, http.MethodGet, "/api/v1/stablecoins/"+scID.String()+"/operations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"object":"list"`)
	assert.Contains(t, w.Body.String(), opID.String())

	w = doRequest(r, token, http.MethodGet, "/api/v1/operations/"+opID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"partial_deposit"`)

	w = doRequest(r, token, http.MethodGet, "/api/v1/operations/"+opID.String()+"/wallet", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":"26"`)

	w = doRequest(r, token, http.MethodGet, "/api/v1/operations/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
