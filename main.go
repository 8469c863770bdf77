package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dmoralesp/cafe-pos/config"
	"github.com/dmoralesp/cafe-pos/database"
	"github.com/dmoralesp/cafe-pos/middlewares"
	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/router"
	"github.com/dmoralesp/cafe-pos/utils"
	"gorm.io/gorm"
)

func init() {
	// Load .env before anything reads the environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Keep the connection reachable from middlewares
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	if err := r.SetTrustedProxies([]string{"127.0.0.1", "localhost"}); err != nil {
		utils.ErrorLogger.Printf("Failed to set trusted proxies: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.Supplier{},
		&models.PurchaseEntry{},
		&models.Order{},
		&models.OrderItem{},
		&models.LoyaltyCard{},
		&models.LoyaltyRule{},
		&models.CustomerReward{},
		&models.Shift{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if err := database.ExecuteTriggers(db); err != nil {
		utils.ErrorLogger.Printf("Failed to install triggers: %v", err)
	}
}
