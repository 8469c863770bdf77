package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/database"
	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/router"
	"github.com/dmoralesp/cafe-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks the main counter flow:
// 0. seed an admin and the catalog, login -> token
// 1. open a shift
// 2. checkout an order for a card-holding customer
// 3. verify the ledger trigger accrued her points
// 4. close the shift and check the reconciliation
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB()
	r := router.SetupRouter(db)

	token := loginTest(t, r)
	openShiftTest(t, r, token)
	orderID := checkoutTest(t, r, token)
	verifyCardPoints(t, db)
	verifyOrderDetail(t, r, token, orderID)
	closeShiftTest(t, r, token)
}

// setupIntegrationDB -> in-memory SQLite with the full schema, the ledger
// trigger, and seed data
func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
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
		log.Fatalf("failed to migrate: %v", err)
	}

	if err := database.ExecuteTriggers(db); err != nil {
		log.Fatalf("failed to install triggers: %v", err)
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Test Admin",
		Email:    "admin@example.com",
		Password: string(hashedPassword),
		Role:     "admin",
	})

	db.Create(&models.Category{Name: "Coffee", LoyaltyEligible: true})
	db.Create(&models.Product{CategoryID: 1, Name: "Latte", Price: 4.50, Stock: 100, Active: true})

	phone := "081234567890"
	db.Create(&models.Customer{Name: "Sari", Phone: &phone})
	db.Create(&models.LoyaltyCard{Phone: phone, HolderName: "Sari", Points: 5, TotalVisits: 2})

	return db
}

func loginTest(t *testing.T, r *gin.Engine) string {
	payload := map[string]interface{}{
		"email":    "admin@example.com",
		"password": "secret123",
	}
	w := doJSON(t, r, "POST", "/login", "", payload)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	token, ok := data["token"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, token)
	return token
}

func openShiftTest(t *testing.T, r *gin.Engine, token string) {
	w := doJSON(t, r, "POST", "/api/shifts", token, map[string]interface{}{
		"start_cash": 100.0,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func checkoutTest(t *testing.T, r *gin.Engine, token string) int {
	payload := map[string]interface{}{
		"customer_id":    1,
		"payment_method": "cash",
		"cash_received":  10.0,
		"items": []map[string]interface{}{
			{"product_id": 1, "quantity": 2},
		},
	}
	w := doJSON(t, r, "POST", "/api/orders", token, payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	assert.InDelta(t, 9.0, data["total_amount"].(float64), 0.001)
	assert.InDelta(t, 1.0, data["change"].(float64), 0.001)
	return int(data["id"].(float64))
}

func verifyCardPoints(t *testing.T, db *gorm.DB) {
	var card models.LoyaltyCard
	assert.NoError(t, db.Where("phone = ?", "081234567890").First(&card).Error)
	assert.Equal(t, 7, card.Points)
	assert.Equal(t, 3, card.TotalVisits)
}

func verifyOrderDetail(t *testing.T, r *gin.Engine, token string, orderID int) {
	w := doJSON(t, r, "GET", "/api/orders/"+strconv.Itoa(orderID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["order_items"].([]interface{})
	assert.Len(t, items, 1)
}

func closeShiftTest(t *testing.T, r *gin.Engine, token string) {
	w := doJSON(t, r, "POST", "/api/shifts/1/close", token, map[string]interface{}{
		"end_cash": 109.0,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.InDelta(t, 109.0, data["expected_cash"].(float64), 0.001)
	assert.Contains(t, data["notes"].(string), "cash balanced")
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
