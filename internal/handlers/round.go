package handlers

import (
	"net/http"

	"ammlab/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RoundHandler struct {
	roundService *services.RoundService
}

func NewRoundHandler(roundService *services.RoundService) *RoundHandler {
	return &RoundHandler{
		roundService: roundService,
	}
}

type CreateRoundRequest struct {
	ExperimentID     uuid.UUID       `json:"experiment_id" binding:"required"`
	RoundNumber      int             `json:"round_number" binding:"required"`
	IsTrainingRound  bool            `json:"is_training_round"`
	CountsForPayment bool            `json:"counts_for_payment"`
	DurationMinutes  int             `json:"duration_minutes" binding:"required"`
	CurrencyXID      uuid.UUID       `json:"currency_x_id" binding:"required"`
	CurrencyYID      uuid.UUID       `json:"currency_y_id" binding:"required"`
	ExternalPriceX   decimal.Decimal `json:"external_price_x"`
	ExternalPriceY   decimal.Decimal `json:"external_price_y"`
	InitialReserveX  decimal.Decimal `json:"initial_reserve_x"`
	InitialReserveY  decimal.Decimal `json:"initial_reserve_y"`
}

// POST /api/v1/rounds
func (rh *RoundHandler) CreateRound(c *gin.Context) {
	var req CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := rh.roundService.CreateRound(services.CreateRoundParams{
		ExperimentID:     req.ExperimentID,
		RoundNumber:      req.RoundNumber,
		IsTrainingRound:  req.IsTrainingRound,
		CountsForPayment: req.CountsForPayment,
		DurationMinutes:  req.DurationMinutes,
		CurrencyXID:      req.CurrencyXID,
		CurrencyYID:      req.CurrencyYID,
		ExternalPriceX:   req.ExternalPriceX,
		ExternalPriceY:   req.ExternalPriceY,
		InitialReserveX:  req.InitialReserveX,
		InitialReserveY:  req.InitialReserveY,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, round)
}

// GET /api/v1/rounds/:id
func (rh *RoundHandler) GetRound(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	round, err := rh.roundService.GetRound(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, round)
}

// GET /api/v1/experiments/:id/rounds
func (rh *RoundHandler) GetRoundsByExperiment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	rounds, err := rh.roundService.GetRoundsByExperiment(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

// POST /api/v1/rounds/:id/initialize
func (rh *RoundHandler) InitializePools(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	pools, err := rh.roundService.InitializePools(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"experiment_rounds": pools})
}

// POST /api/v1/rounds/:id/start
func (rh *RoundHandler) StartRound(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	round, err := rh.roundService.StartRound(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, round)
}

// POST /api/v1/rounds/:id/end
func (rh *RoundHandler) EndRound(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	round, err := rh.roundService.EndRound(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, round)
}

// GET /api/v1/rounds/:id/pools
func (rh *RoundHandler) GetPools(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	pools, err := rh.roundService.GetPools(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"experiment_rounds": pools})
}

// RegisterRoundRoutes registers round endpoints on the router group
func RegisterRoundRoutes(rg *gin.RouterGroup, handler *RoundHandler) {
	rounds := rg.Group("/rounds")
	{
		rounds.POST("", handler.CreateRound)
		rounds.GET("/:id", handler.GetRound)
		rounds.POST("/:id/initialize", handler.InitializePools)
		rounds.POST("/:id/start", handler.StartRound)
		rounds.POST("/:id/end", handler.EndRound)
		rounds.GET("/:id/pools", handler.GetPools)
	}
}
