package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/controllers"
	"github.com/dmoralesp/cafe-pos/database"
	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/services"
	"github.com/dmoralesp/cafe-pos/utils"
)

func setupTestDBForOrders(t *testing.T) *gorm.DB {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
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
	if err := database.ExecuteTriggers(db); err != nil {
		t.Fatalf("failed to install triggers: %v", err)
	}

	// Seed: a loyalty-eligible drinks category, a non-eligible retail one,
	// a customer with a phone, and her loyalty card.
	db.Create(&models.Category{Name: "Coffee", LoyaltyEligible: true})
	db.Create(&models.Category{Name: "Merchandise", LoyaltyEligible: false})
	db.Create(&models.Product{CategoryID: 1, Name: "Latte", Price: 4.50, Stock: 100, Active: true})
	db.Create(&models.Product{CategoryID: 2, Name: "Mug", Price: 12.00, Stock: 10, Active: true})
	db.Create(&models.Product{CategoryID: 1, Name: "Seasonal Blend", Price: 6.00, Stock: 3, Active: true})
	phone := "081234567890"
	db.Create(&models.Customer{Name: "Sari", Phone: &phone})
	db.Create(&models.LoyaltyCard{Phone: phone, HolderName: "Sari", Points: 5, TotalVisits: 2})
	return db
}

func setupOrderRouter(db *gorm.DB, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
		c.Set("role", role)
		c.Next()
	})
	orderCtrl := controllers.NewOrderController(db)
	router.POST("/orders", orderCtrl.CreateOrder)
	router.GET("/orders", orderCtrl.GetAllOrders)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.POST("/orders/:order_id/void", orderCtrl.VoidOrder)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCheckoutAccruesPointsAndRewards(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "cashier")

	shiftSvc := services.NewShiftService(db)
	_, err := shiftSvc.OpenShift(1, 100)
	assert.NoError(t, err)

	// Any sale of 10 or more earns a free cookie.
	db.Create(&models.LoyaltyRule{
		Name:              "Spend 10",
		ConditionType:     models.RuleConditionTransactionAmount,
		Threshold:         10,
		RewardDescription: "Free cookie",
		Active:            true,
	})

	customerID := uint(1)
	payload := map[string]interface{}{
		"customer_id":    customerID,
		"payment_method": "cash",
		"cash_received":  25.0,
		"items": []map[string]interface{}{
			{"product_id": 1, "quantity": 2}, // 2x Latte, loyalty eligible
			{"product_id": 2, "quantity": 1}, // 1x Mug, not eligible
		},
	}
	w := postJSON(t, router, "/orders", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Order completed", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	assert.InDelta(t, 21.0, data["total_amount"].(float64), 0.001)
	assert.InDelta(t, 4.0, data["change"].(float64), 0.001)

	// Stock decremented inside the sale transaction.
	var latte models.Product
	db.First(&latte, 1)
	assert.Equal(t, 98, latte.Stock)

	// The ledger trigger added one point per eligible item: 5 + 2.
	var card models.LoyaltyCard
	db.Where("phone = ?", "081234567890").First(&card)
	assert.Equal(t, 7, card.Points)
	assert.Equal(t, 3, card.TotalVisits)
	assert.NotNil(t, card.LastVisit)

	// The rule evaluator granted the pending reward after commit.
	var rewards []models.CustomerReward
	db.Where("customer_id = ?", customerID).Find(&rewards)
	assert.Len(t, rewards, 1)
	assert.Equal(t, models.RewardStatusPending, rewards[0].Status)
	assert.Equal(t, "Free cookie", rewards[0].Description)
}

func TestCheckoutByPhoneCreatesCard(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "cashier")

	shiftSvc := services.NewShiftService(db)
	_, err := shiftSvc.OpenShift(1, 100)
	assert.NoError(t, err)

	// Walk-in sale: no customer record, just a phone for the card.
	payload := map[string]interface{}{
		"customer_phone": "085555555555",
		"payment_method": "card",
		"items": []map[string]interface{}{
			{"product_id": 1, "quantity": 3},
		},
	}
	w := postJSON(t, router, "/orders", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var card models.LoyaltyCard
	err = db.Where("phone = ?", "085555555555").First(&card).Error
	assert.NoError(t, err)
	assert.Equal(t, 3, card.Points)
	assert.Equal(t, 1, card.TotalVisits)
}

func TestCheckoutRequiresOpenShift(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "cashier")

	payload := map[string]interface{}{
		"payment_method": "cash",
		"cash_received":  10.0,
		"items": []map[string]interface{}{
			{"product_id": 1, "quantity": 1},
		},
	}
	w := postJSON(t, router, "/orders", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "cashier")

	shiftSvc := services.NewShiftService(db)
	_, err := shiftSvc.OpenShift(1, 100)
	assert.NoError(t, err)

	payload := map[string]interface{}{
		"payment_method": "cash",
		"cash_received":  100.0,
		"items": []map[string]interface{}{
			{"product_id": 3, "quantity": 5}, // only 3 left
		},
	}
	w := postJSON(t, router, "/orders", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The whole transaction rolled back.
	var blend models.Product
	db.First(&blend, 3)
	assert.Equal(t, 3, blend.Stock)
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCheckoutRejectsShortCash(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "cashier")

	shiftSvc := services.NewShiftService(db)
	_, err := shiftSvc.OpenShift(1, 100)
	assert.NoError(t, err)

	payload := map[string]interface{}{
		"payment_method": "cash",
		"cash_received":  3.0, // total is 4.50
		"items": []map[string]interface{}{
			{"product_id": 1, "quantity": 1},
		},
	}
	w := postJSON(t, router, "/orders", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoidOrderRestoresStock(t *testing.T) {
	db := setupTestDBForOrders(t)
	cashierRouter := setupOrderRouter(db, "cashier")

	shiftSvc := services.NewShiftService(db)
	_, err := shiftSvc.OpenShift(1, 100)
	assert.NoError(t, err)

	payload := map[string]interface{}{
		"payment_method": "cash",
		"cash_received":  10.0,
		"items": []map[string]interface{}{
			{"product_id": 1, "quantity": 2},
		},
	}
	w := postJSON(t, cashierRouter, "/orders", payload)
	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	orderID := int(resp["data"].(map[string]interface{})["id"].(float64))

	// Cashiers cannot void.
	w = postJSON(t, cashierRouter, "/orders/"+strconv.Itoa(orderID)+"/void", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminRouter := setupOrderRouter(db, "admin")
	w = postJSON(t, adminRouter, "/orders/"+strconv.Itoa(orderID)+"/void", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	db.First(&order, orderID)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	var latte models.Product
	db.First(&latte, 1)
	assert.Equal(t, 100, latte.Stock)

	// Voiding twice is rejected.
	w = postJSON(t, adminRouter, "/orders/"+strconv.Itoa(orderID)+"/void", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderByID(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(db, "cashier")

	shiftSvc := services.NewShiftService(db)
	_, err := shiftSvc.OpenShift(1, 100)
	assert.NoError(t, err)

	payload := map[string]interface{}{
		"payment_method": "wallet",
		"items": []map[string]interface{}{
			{"product_id": 2, "quantity": 1},
		},
	}
	w := postJSON(t, router, "/orders", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	req, err := http.NewRequest("GET", "/orders/1", nil)
	assert.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Order detail", resp["message"])
	data := resp["data"].(map[string]interface{})
	items := data["order_items"].([]interface{})
	assert.Len(t, items, 1)
}
