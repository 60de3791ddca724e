package main

import (
	"fmt"
	"net/http"
	"os"
	"tally/internal/config"
	"tally/internal/database"
	"tally/internal/handlers"
	"tally/internal/logger"
	"tally/internal/middleware"
	"tally/internal/services"
	"tally/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tally/internal/docs" // Import swagger docs
)

// @title           Tally API
// @version         1.0
// @description     Tally is a personal and family finance application for tracking transactions, managing budgets, and sharing shopping lists.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	// Register custom binding validators
	validator.Register()

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

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	familyService := services.NewFamilyService(db, userService)
	transactionService := services.NewTransactionService(db, categoryService, familyService)
	budgetService := services.NewBudgetService(db, categoryService, familyService)
	shoppingListService := services.NewShoppingListService(db, familyService, transactionService, userService)
	auditService := services.NewAuditService(db)

	// Seed the default category set
	if err := categoryService.SeedDefaults(); err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	familyHandler := handlers.NewFamilyHandler(familyService, auditService)
	shoppingListHandler := handlers.NewShoppingListHandler(shoppingListService, auditService)
	healthHandler := handlers.NewHealthHandler(db, appConfig.Version)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", healthHandler.Health)

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/summary", budgetHandler.GetBudgetSummary)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)

	// Family routes
	families := protected.Group("/families")
	families.POST("", familyHandler.CreateFamily)
	families.GET("", familyHandler.GetFamilies)
	families.GET("/:id", familyHandler.GetFamily)
	families.PUT("/:id", familyHandler.UpdateFamily)
	families.DELETE("/:id", familyHandler.DeleteFamily)
	families.POST("/:id/members", familyHandler.InviteMember)
	families.PUT("/:id/members/:userId", familyHandler.UpdateMember)
	families.DELETE("/:id/members/:userId", familyHandler.RemoveMember)
	families.POST("/:id/leave", familyHandler.LeaveFamily)

	// Shopping list routes
	lists := protected.Group("/shopping-lists")
	lists.POST("", shoppingListHandler.CreateList)
	lists.GET("", shoppingListHandler.GetLists)
	lists.GET("/:id", shoppingListHandler.GetList)
	lists.PUT("/:id", shoppingListHandler.UpdateList)
	lists.DELETE("/:id", shoppingListHandler.DeleteList)
	lists.POST("/:id/items", shoppingListHandler.AddItem)
	lists.PUT("/:id/items/:itemId", shoppingListHandler.UpdateItem)
	lists.DELETE("/:id/items/:itemId", shoppingListHandler.RemoveItem)
	lists.POST("/:id/items/:itemId/purchase", shoppingListHandler.PurchaseItem)

	log.Infof("Starting Tally backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
