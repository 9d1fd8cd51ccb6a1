package main

import (
	"fmt"
	"net/http"
	"os"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
	"fintrack/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	budgetService := services.NewBudgetService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, budgetService)
	expenseHandler := handlers.NewExpenseHandler(budgetService)
	dashboardHandler := handlers.NewDashboardHandler(budgetService, userService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware: the SPA client sends credentials, so echo the
	// configured origin rather than using a wildcard.
	clientOrigin := os.Getenv("CLIENT_ORIGIN")
	if clientOrigin == "" {
		clientOrigin = "http://localhost:5173"
	}
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", clientOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public user routes
	users := api.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/logout", authHandler.Logout)

	requireSession := middleware.RequireSession(userService)

	// Protected user routes
	usersAuth := api.Group("/users")
	usersAuth.Use(requireSession)
	usersAuth.GET("/profile", authHandler.Profile)
	usersAuth.POST("/updateProfile", authHandler.UpdateProfile)

	// Ledger routes
	expenses := api.Group("/expenses")
	expenses.Use(requireSession)
	expenses.GET("/getExpenses", expenseHandler.GetExpenses)
	expenses.POST("/createExpenses", expenseHandler.CreateExpenses)
	expenses.PUT("/updateExpenses/:id", expenseHandler.UpdateExpenses)
	expenses.DELETE("/deleteExpenses/:id", expenseHandler.DeleteExpenses)
	expenses.POST("/addIncome", expenseHandler.AddIncome)
	expenses.GET("/getIncomes", expenseHandler.GetIncomes)
	expenses.POST("/addMoreMoney", expenseHandler.AddMoreMoney)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Use(requireSession)
	dashboard.GET("/summary", dashboardHandler.Summary)

	log.Infof("Starting fintrack backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
