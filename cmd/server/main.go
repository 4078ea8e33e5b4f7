package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dulili/internal/handlers"
	appMiddleware "dulili/internal/middleware"
	"dulili/internal/models"
	"dulili/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migration
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis is optional: without it, arrears summaries are computed per
	// request.
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	} else {
		log.Println("Warning: REDIS_URL not set, arrears caching disabled")
	}

	// Session tokens
	tokens, err := services.NewTokenService(os.Getenv("SESSION_SECRET"))
	if err != nil {
		log.Fatalf("Failed to initialize session tokens: %v", err)
	}

	// Services
	arrears := services.NewArrearsService(db, cache)
	plans := services.NewPlanService(db)
	ledger := services.NewRecoveryLedgerService(db, arrears)
	payments := services.NewPaymentService(db, arrears)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, tokens)
	levyHandler := handlers.NewLevyHandler(db)
	planHandler := handlers.NewPlanHandler(db, plans, arrears)
	recoveryHandler := handlers.NewRecoveryHandler(ledger)
	arrearsHandler := handlers.NewArrearsHandler(arrears, payments)
	scheduleHandler := handlers.NewScheduleHandler(db)

	// Public routes
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	// Protected building-scoped routes
	building := e.Group("/buildings/:buildingID")
	building.Use(appMiddleware.RequireAuth(tokens))

	managers := appMiddleware.RequireRole(models.UserRoleAdmin, models.UserRoleManager)
	recovery := appMiddleware.RequireRole(models.UserRoleAdmin, models.UserRoleManager, models.UserRoleCommittee)

	// Levies
	building.GET("/levies", levyHandler.ListLevies)
	building.POST("/levies", levyHandler.CreateLevy, managers)

	// Arrears and payments
	building.GET("/arrears", arrearsHandler.BuildingSummary, recovery)
	building.GET("/arrears/me", arrearsHandler.MySummary)
	building.POST("/payments", arrearsHandler.RecordPayment, managers)

	// Payment plans
	building.GET("/payment-plans", planHandler.ListPlans, recovery)
	building.GET("/payment-plans/eligibility", planHandler.Eligibility)
	building.POST("/payment-plans", planHandler.RequestPlan)
	building.POST("/payment-plans/:id/approve", planHandler.ApprovePlan, managers)
	building.POST("/payment-plans/:id/reject", planHandler.RejectPlan, managers)
	building.POST("/payment-plans/:id/activate", planHandler.ActivatePlan, managers)
	building.POST("/payment-plans/:id/complete", planHandler.CompletePlan, managers)
	building.POST("/payment-plans/:id/cancel", planHandler.CancelPlan, managers)

	// Recovery action ledger
	building.GET("/recovery-actions", recoveryHandler.ListActions, recovery)
	building.POST("/recovery-actions", recoveryHandler.RecordAction, recovery)
	building.POST("/recovery-actions/:id/complete", recoveryHandler.CompleteAction, recovery)
	building.POST("/recovery-actions/:id/cancel", recoveryHandler.CancelAction, recovery)

	// Levy schedules
	building.GET("/levy-schedules", scheduleHandler.ListSchedules, managers)
	building.POST("/levy-schedules", scheduleHandler.CreateSchedule, managers)
	building.POST("/levy-schedules/:id/disable", scheduleHandler.DisableSchedule, managers)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
