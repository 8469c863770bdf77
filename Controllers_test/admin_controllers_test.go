package Controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/controllers"
	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/utils"
)

func setupTestDBForAdmin(t *testing.T) *gorm.DB {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.LoyaltyCard{},
		&models.LoyaltyRule{},
		&models.CustomerReward{},
		&models.Shift{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	utils.InitLogger()
	return db
}

func setupAdminRouter(db *gorm.DB, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", role)
		c.Next()
	})
	adminCtrl := controllers.NewAdminController(db)
	router.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	router.GET("/dashboard/top-products", adminCtrl.GetTopProducts)
	return router
}

func TestDashboardStats(t *testing.T) {
	db := setupTestDBForAdmin(t)
	router := setupAdminRouter(db, "admin")

	db.Create(&models.Category{Name: "Coffee", LoyaltyEligible: true})
	db.Create(&models.Product{CategoryID: 1, Name: "Latte", Price: 4.50, Stock: 2, Active: true})
	db.Create(&models.Order{
		OrderNumber: uuid.NewString(), CashierID: 1,
		Status: models.OrderStatusCompleted, PaymentMethod: models.PaymentMethodCash,
		TotalAmount: 21, CashReceived: 25,
	})
	db.Create(&models.Order{
		OrderNumber: uuid.NewString(), CashierID: 1,
		Status: models.OrderStatusCancelled, PaymentMethod: models.PaymentMethodCash,
		TotalAmount: 9, CashReceived: 9,
	})
	db.Create(&models.LoyaltyCard{Phone: "081234567890", Points: 7})

	req, _ := http.NewRequest("GET", "/dashboard/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})

	// Cancelled orders count for nothing.
	assert.EqualValues(t, 1, data["total_orders"])
	assert.InDelta(t, 21, data["total_revenue"].(float64), 0.001)
	payments := data["payment_stats"].(map[string]interface{})
	assert.InDelta(t, 21, payments["cash"].(float64), 0.001)
	loyalty := data["loyalty_stats"].(map[string]interface{})
	assert.EqualValues(t, 1, loyalty["cards"])

	// The two-left latte shows up in the low stock list.
	lowStock := data["low_stock"].([]interface{})
	assert.Len(t, lowStock, 1)
}

func TestDashboardRequiresAdmin(t *testing.T) {
	db := setupTestDBForAdmin(t)
	router := setupAdminRouter(db, "cashier")

	req, _ := http.NewRequest("GET", "/dashboard/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ = http.NewRequest("GET", "/dashboard/top-products", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTopProducts(t *testing.T) {
	db := setupTestDBForAdmin(t)
	router := setupAdminRouter(db, "admin")

	db.Create(&models.Category{Name: "Coffee"})
	db.Create(&models.Product{CategoryID: 1, Name: "Latte", Price: 4.50, Stock: 50, Active: true})
	db.Create(&models.Product{CategoryID: 1, Name: "Espresso", Price: 3.00, Stock: 50, Active: true})
	order := models.Order{
		OrderNumber: uuid.NewString(), CashierID: 1,
		Status: models.OrderStatusCompleted, PaymentMethod: models.PaymentMethodCash,
		TotalAmount: 16.50, CashReceived: 20,
	}
	db.Create(&order)
	db.Create(&models.OrderItem{OrderID: order.ID, ProductID: 1, Quantity: 3, Price: 4.50})
	db.Create(&models.OrderItem{OrderID: order.ID, ProductID: 2, Quantity: 1, Price: 3.00})

	req, _ := http.NewRequest("GET", "/dashboard/top-products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := resp["data"].([]interface{})
	assert.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})
	assert.Equal(t, "Latte", first["name"])
	assert.EqualValues(t, 3, first["quantity"])
}
