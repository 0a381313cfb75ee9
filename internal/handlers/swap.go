package handlers

import (
	"net/http"

	"ammlab/internal/models"
	"ammlab/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SwapHandler struct {
	swapService  *services.SwapService
	roundService *services.RoundService
}

func NewSwapHandler(swapService *services.SwapService, roundService *services.RoundService) *SwapHandler {
	return &SwapHandler{
		swapService:  swapService,
		roundService: roundService,
	}
}

type SwapRequest struct {
	PlayerID     uuid.UUID            `json:"player_id" binding:"required"`
	Direction    models.SwapDirection `json:"direction" binding:"required"`
	AmountIn     decimal.Decimal      `json:"amount_in" binding:"required"`
	MinAmountOut decimal.Decimal      `json:"min_amount_out"`
}

// POST /api/v1/pools/:id/swap
func (sh *SwapHandler) Swap(c *gin.Context) {
	poolID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := sh.swapService.Swap(poolID, req.PlayerID, req.Direction, req.AmountIn, req.MinAmountOut)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /api/v1/pools/:id
func (sh *SwapHandler) GetPool(c *gin.Context) {
	poolID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	pool, err := sh.roundService.GetPool(poolID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pool)
}

// GET /api/v1/pools/:id/transactions
func (sh *SwapHandler) GetTransactions(c *gin.Context) {
	poolID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	skip, limit := parsePagination(c)

	if playerIDStr := c.Query("player_id"); playerIDStr != "" {
		playerID, err := uuid.Parse(playerIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player_id"})
			return
		}
		txns, err := sh.swapService.GetTransactionsByPlayer(playerID, poolID, skip, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txns})
		return
	}

	txns, err := sh.swapService.GetTransactionsByPool(poolID, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

// GET /api/v1/pools/:id/balances/:player_id
func (sh *SwapHandler) GetBalances(c *gin.Context) {
	poolID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	playerID, ok := parseUUIDParam(c, "player_id")
	if !ok {
		return
	}

	balances, err := sh.swapService.GetBalances(playerID, poolID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// RegisterSwapRoutes registers pool/swap endpoints on the router group
func RegisterSwapRoutes(rg *gin.RouterGroup, handler *SwapHandler) {
	pools := rg.Group("/pools")
	{
		pools.GET("/:id", handler.GetPool)
		pools.POST("/:id/swap", handler.Swap)
		pools.GET("/:id/transactions", handler.GetTransactions)
		pools.GET("/:id/balances/:player_id", handler.GetBalances)
	}
}
