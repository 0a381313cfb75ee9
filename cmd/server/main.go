package main

import (
	"log"
	"math/rand"
	"time"

	"ammlab/internal/config"
	experimentsDAO "ammlab/internal/dao/experiments"
	ledgerDAO "ammlab/internal/dao/ledger"
	registryDAO "ammlab/internal/dao/registry"
	roundsDAO "ammlab/internal/dao/rounds"
	"ammlab/internal/database"
	"ammlab/internal/handlers"
	"ammlab/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run database migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	db := database.GetDB()
	txm := database.NewTxManager(db)

	// Initialize DAOs
	experimentDAO := experimentsDAO.NewExperimentDAO(db)
	groupDAO := experimentsDAO.NewGroupDAO(db)
	roundDAO := roundsDAO.NewRoundDAO(db)
	poolDAO := roundsDAO.NewPoolDAO(db)
	transactionDAO := ledgerDAO.NewTransactionDAO(db)
	balanceDAO := ledgerDAO.NewBalanceDAO(db)
	knowledgeDAO := ledgerDAO.NewKnowledgeDAO(db)
	feedbackDAO := ledgerDAO.NewFeedbackDAO(db)
	currencyDAO := registryDAO.NewCurrencyDAO(db)
	userDAO := registryDAO.NewUserDAO(db)

	// Initialize services
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	knowledgeService := services.NewKnowledgeService(knowledgeDAO, services.BalancedSplitPolicy(rng))
	experimentService := services.NewExperimentService(
		txm, experimentDAO, groupDAO, roundDAO, poolDAO,
		transactionDAO, balanceDAO, knowledgeDAO, feedbackDAO, userDAO,
	)
	roundService := services.NewRoundService(
		txm, roundDAO, poolDAO, experimentDAO, groupDAO,
		currencyDAO, userDAO, balanceDAO, transactionDAO, feedbackDAO,
		knowledgeService,
	)
	swapService := services.NewSwapService(txm, poolDAO, roundDAO, transactionDAO, balanceDAO, userDAO)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	experimentHandler := handlers.NewExperimentHandler(experimentService)
	roundHandler := handlers.NewRoundHandler(roundService)
	swapHandler := handlers.NewSwapHandler(swapService, roundService)

	// Health check endpoint
	r.GET("/health", healthHandler.Health)

	// API routes group
	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/experiments/:id/rounds", roundHandler.GetRoundsByExperiment)

		handlers.RegisterExperimentRoutes(api, experimentHandler)
		handlers.RegisterRoundRoutes(api, roundHandler)
		handlers.RegisterSwapRoutes(api, swapHandler)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
