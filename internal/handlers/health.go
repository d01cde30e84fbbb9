package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// LedgerProbe reports the latest validated ledger index
type LedgerProbe interface {
	GetValidatedLedgerIndex(ctx context.Context) (uint32, error)
}

type HealthHandler struct {
	ledger LedgerProbe
}

func NewHealthHandler(ledger LedgerProbe) *HealthHandler {
	return &HealthHandler{ledger: ledger}
}

type HealthResponse struct {
	Status      string `json:"status"`
	LedgerIndex uint32 `json:"ledger_index,omitempty"`
	LedgerError string `json:"ledger_error,omitempty"`
}

// Health godoc
// @Summary      Health check
// @Description  Checks if the server is running
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse   "Returns health status"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

// Ready reports whether the ledger is reachable
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.ledger == nil {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	index, err := h.ledger.GetValidatedLedgerIndex(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded", LedgerError: err.Error()})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", LedgerIndex: index})
}
