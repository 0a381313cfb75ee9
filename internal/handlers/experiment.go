package handlers

import (
	"net/http"

	"ammlab/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExperimentHandler struct {
	experimentService *services.ExperimentService
}

func NewExperimentHandler(experimentService *services.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		experimentService: experimentService,
	}
}

type CreateExperimentRequest struct {
	Name                string    `json:"name" binding:"required"`
	AdminID             uuid.UUID `json:"admin_id" binding:"required"`
	NumRounds           int       `json:"num_rounds" binding:"required"`
	NumTrainingRounds   int       `json:"num_training_rounds"`
	NumRoundsForPayment int       `json:"num_rounds_for_payment"`
	NumPlayers          int       `json:"num_players" binding:"required"`
	NumGroups           int       `json:"num_groups" binding:"required"`
}

// POST /api/v1/experiments
func (eh *ExperimentHandler) CreateExperiment(c *gin.Context) {
	var req CreateExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	experiment, err := eh.experimentService.CreateExperiment(
		req.Name, req.AdminID, req.NumRounds, req.NumTrainingRounds,
		req.NumRoundsForPayment, req.NumPlayers, req.NumGroups,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, experiment)
}

// GET /api/v1/experiments
func (eh *ExperimentHandler) ListExperiments(c *gin.Context) {
	skip, limit := parsePagination(c)

	experiments, err := eh.experimentService.ListExperiments(skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"experiments": experiments})
}

// GET /api/v1/experiments/:id
func (eh *ExperimentHandler) GetExperiment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	experiment, err := eh.experimentService.GetExperiment(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, experiment)
}

// POST /api/v1/experiments/:id/start
func (eh *ExperimentHandler) StartExperiment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	experiment, err := eh.experimentService.StartExperiment(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, experiment)
}

// POST /api/v1/experiments/:id/end
func (eh *ExperimentHandler) EndExperiment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	experiment, err := eh.experimentService.EndExperiment(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, experiment)
}

// DELETE /api/v1/experiments/:id
func (eh *ExperimentHandler) DeleteExperiment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := eh.experimentService.DeleteExperiment(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "experiment deleted"})
}

// GET /api/v1/experiments/:id/groups
func (eh *ExperimentHandler) GetGroups(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	groups, err := eh.experimentService.GetGroups(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// RegisterExperimentRoutes registers experiment endpoints on the router group
func RegisterExperimentRoutes(rg *gin.RouterGroup, handler *ExperimentHandler) {
	experiments := rg.Group("/experiments")
	{
		experiments.POST("", handler.CreateExperiment)
		experiments.GET("", handler.ListExperiments)
		experiments.GET("/:id", handler.GetExperiment)
		experiments.POST("/:id/start", handler.StartExperiment)
		experiments.POST("/:id/end", handler.EndExperiment)
		experiments.DELETE("/:id", handler.DeleteExperiment)
		experiments.GET("/:id/groups", handler.GetGroups)
	}
}
