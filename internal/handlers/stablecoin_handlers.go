package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/fountain/fountain-api/internal/auth"
	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/types/api/params"
	"github.com/fountain/fountain-api/internal/types/api/requests"
	"github.com/fountain/fountain-api/internal/types/api/responses"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StablecoinAPI is the service surface behind the stablecoin routes
type StablecoinAPI interface {
	CreateStablecoin(ctx context.Context, caller business.Caller, p params.CreateStablecoinParams) (*business.Stablecoin, *business.Operation, error)
	Mint(ctx context.Context, caller business.Caller, p params.MintParams) (*business.Operation, error)
	Burn(ctx context.Context, caller business.Caller, p params.BurnParams) (*business.Operation, decimal.Decimal, error)
	Cancel(ctx context.Context, caller business.Caller, stablecoinID uuid.UUID) error
	GetStablecoin(ctx context.Context, caller business.Caller, id uuid.UUID) (*business.Stablecoin, error)
	GetOperation(ctx context.Context, caller business.Caller, id uuid.UUID) (*business.Operation, error)
	ListOperations(ctx context.Context, caller business.Caller, stablecoinID uuid.UUID) ([]*business.Operation, error)
	GetCollectionWalletStatus(ctx context.Context, caller business.Caller, operationID uuid.UUID) (*business.WalletStatus, error)
}

// StablecoinHandler handles stablecoin mint, burn and status routes
type StablecoinHandler struct {
	service StablecoinAPI
}

// NewStablecoinHandler creates a new StablecoinHandler instance
func NewStablecoinHandler(service StablecoinAPI) *StablecoinHandler {
	return &StablecoinHandler{service: service}
}

func callerOrAbort(c *gin.Context) (business.Caller, bool) {
	caller, err := auth.CallerFromContext(c)
	if err != nil {
		sendError(c, http.StatusUnauthorized, "Unauthorized", err)
		return business.Caller{}, false
	}
	return caller, true
}

// CreateStablecoin godoc
// @Summary      Register a stablecoin
// @Description  Registers a currency code and opens its first mint. The response carries the collection wallet to fund.
// @Tags         stablecoins
// @Accept       json
// @Produce      json
// @Param        stablecoin  body      requests.CreateStablecoinRequest  true  "Stablecoin creation data"
// @Success      201  {object}  responses.MintResponse
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      409  {object}  responses.ErrorResponse
// @Router       /stablecoins [post]
func (h *StablecoinHandler) CreateStablecoin(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var req requests.CreateStablecoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sc, op, err := h.service.CreateStablecoin(c.Request.Context(), caller, params.CreateStablecoinParams{
		CompanyID:     req.CompanyID,
		ClientID:      req.ClientID,
		ClientName:    req.ClientName,
		CompanyWallet: req.CompanyWallet,
		CurrencyCode:  strings.TrimSpace(req.CurrencyCode),
		Amount:        req.Amount,
		DepositType:   req.DepositType,
		WebhookURL:    req.WebhookURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, responses.NewMintResponse(sc, op))
}

// Mint godoc
// @Summary      Mint more of a stablecoin
// @Tags         stablecoins
// @Accept       json
// @Produce      json
// @Param        stablecoin_id  path      string                true  "Stablecoin ID"
// @Param        mint           body      requests.MintRequest  true  "Mint data"
// @Success      201  {object}  responses.MintResponse
// @Router       /stablecoins/{stablecoin_id}/mint [post]
func (h *StablecoinHandler) Mint(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "stablecoin_id")
	if !ok {
		return
	}
	var req requests.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	op, err := h.service.Mint(c.Request.Context(), caller, params.MintParams{
		StablecoinID:  id,
		Amount:        req.Amount,
		CompanyWallet: req.CompanyWallet,
		DepositType:   req.DepositType,
		WebhookURL:    req.WebhookURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, responses.NewMintResponse(nil, op))
}

// Burn godoc
// @Summary      Burn issued tokens
// @Tags         stablecoins
// @Accept       json
// @Produce      json
// @Param        stablecoin_id  path      string                true  "Stablecoin ID"
// @Param        burn           body      requests.BurnRequest  true  "Burn data"
// @Success      200  {object}  responses.BurnResponse
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /stablecoins/{stablecoin_id}/burn [post]
func (h *StablecoinHandler) Burn(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "stablecoin_id")
	if !ok {
		return
	}
	var req requests.BurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	returnAsset := strings.ToUpper(strings.TrimSpace(req.ReturnAsset))
	if returnAsset == "" {
		returnAsset = constants.DefaultReturnAsset
	}

	op, returned, err := h.service.Burn(c.Request.Context(), caller, params.BurnParams{
		StablecoinID: id,
		CurrencyCode: strings.TrimSpace(req.CurrencyCode),
		Amount:       req.Amount,
		ReturnAsset:  returnAsset,
		WebhookURL:   req.WebhookURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, responses.BurnResponse{
		OperationID:    op.ID.String(),
		Status:         string(op.Status),
		Amount:         op.IssueAmount,
		ReturnedAmount: returned,
		ReturnAsset:    returnAsset,
		SettlementTxID: op.SettlementTxID,
		ErrorMessage:   op.ErrorMessage,
	})
}

// Cancel godoc
// @Summary      Cancel a stablecoin
// @Description  Refunds every deposit of the stablecoin's open operations and deactivates it
// @Tags         stablecoins
// @Param        stablecoin_id  path  string  true  "Stablecoin ID"
// @Success      200  {object}  responses.SuccessResponse
// @Failure      409  {object}  responses.ErrorResponse
// @Router       /stablecoins/{stablecoin_id}/cancel [post]
func (h *StablecoinHandler) Cancel(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "stablecoin_id")
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), caller, id); err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccessMessage(c, http.StatusOK, "Stablecoin cancelled")
}

// GetStablecoin godoc
// @Summary      Get a stablecoin
// @Tags         stablecoins
// @Produce      json
// @Param        stablecoin_id  path  string  true  "Stablecoin ID"
// @Success      200  {object}  responses.StablecoinResponse
// @Router       /stablecoins/{stablecoin_id} [get]
func (h *StablecoinHandler) GetStablecoin(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "stablecoin_id")
	if !ok {
		return
	}
	sc, err := h.service.GetStablecoin(c.Request.Context(), caller, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, responses.StablecoinResponse{Object: "stablecoin", Stablecoin: sc})
}

// ListOperations godoc
// @Summary      List the operations of a stablecoin
// @Tags         operations
// @Produce      json
// @Param        stablecoin_id  path  string  true  "Stablecoin ID"
// @Success      200  {object}  responses.ListResponse
// @Router       /stablecoins/{stablecoin_id}/operations [get]
func (h *StablecoinHandler) ListOperations(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "stablecoin_id")
	if !ok {
		return
	}
	ops, err := h.service.ListOperations(c.Request.Context(), caller, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	items := make([]responses.OperationResponse, 0, len(ops))
	for _, op := range ops {
		items = append(items, responses.OperationResponse{Object: "operation", Operation: op})
	}
	sendList(c, items)
}

// GetOperation godoc
// @Summary      Get an operation
// @Tags         operations
// @Produce      json
// @Param        operation_id  path  string  true  "Operation ID"
// @Success      200  {object}  responses.OperationResponse
// @Router       /operations/{operation_id} [get]
func (h *StablecoinHandler) GetOperation(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "operation_id")
	if !ok {
		return
	}
	op, err := h.service.GetOperation(c.Request.Context(), caller, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, responses.OperationResponse{Object: "operation", Operation: op})
}

// GetWalletStatus godoc
// @Summary      Collection wallet status
// @Description  Live balance, funding progress and retirement state of an operation's collection wallet
// @Tags         operations
// @Produce      json
// @Param        operation_id  path  string  true  "Operation ID"
// @Success      200  {object}  business.WalletStatus
// @Router       /operations/{operation_id}/wallet [get]
func (h *StablecoinHandler) GetWalletStatus(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "operation_id")
	if !ok {
		return
	}
	status, err := h.service.GetCollectionWalletStatus(c.Request.Context(), caller, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, status)
}
