package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/events"
	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/services"
	"github.com/dmoralesp/cafe-pos/utils"
)

// LowStockThreshold triggers a low_stock broadcast when a sale leaves a
// product at or below it.
const LowStockThreshold = 5

type OrderController struct {
	DB      *gorm.DB
	Loyalty *services.LoyaltyService
	Shifts  *services.ShiftService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{
		DB:      db,
		Loyalty: services.NewLoyaltyService(db),
		Shifts:  services.NewShiftService(db),
	}
}

// GetAllOrders -> list orders with items, optionally by shift or day
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	query := oc.DB.Preload("OrderItems")

	if shiftID := c.Query("shift_id"); shiftID != "" {
		query = query.Where("shift_id = ?", shiftID)
	}
	if day := c.Query("date"); day != "" {
		query = query.Where("DATE(created_at) = ?", day)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder -> counter checkout. Writes the order, its items and the
// stock decrements in one transaction, completing the order as the final
// statement so the points-ledger trigger sees every item. Loyalty rule
// evaluation runs after the commit and never blocks the sale.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	cashierID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("cashier not identified"))
		return
	}

	type ItemReq struct {
		ProductID uint   `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
		Notes     string `json:"notes"`
	}

	type ReqBody struct {
		CustomerID    *uint     `json:"customer_id"`
		CustomerPhone string    `json:"customer_phone"`
		PaymentMethod string    `json:"payment_method" binding:"required"`
		CashReceived  float64   `json:"cash_received"`
		Items         []ItemReq `json:"items" binding:"required"`
	}

	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if len(body.Items) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order has no items"))
		return
	}

	switch body.PaymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodWallet:
	default:
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("unknown payment method %q", body.PaymentMethod))
		return
	}

	for _, item := range body.Items {
		if item.Quantity <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("item quantity must be positive"))
			return
		}
	}

	if body.CustomerID != nil {
		var customer models.Customer
		if err := oc.DB.First(&customer, *body.CustomerID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
			return
		}
	}

	// A sale always belongs to the cashier's open register session.
	shift, err := oc.Shifts.ActiveShift(cashierID)
	if err != nil {
		if errors.Is(err, services.ErrNoOpenShift) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var phone *string
	if body.CustomerPhone != "" {
		phone = &body.CustomerPhone
	}

	tx := oc.DB.Begin()

	order := models.Order{
		OrderNumber:   uuid.NewString(),
		CustomerID:    body.CustomerID,
		CustomerPhone: phone,
		CashierID:     cashierID,
		ShiftID:       &shift.ID,
		Status:        models.OrderStatusPending,
		PaymentMethod: body.PaymentMethod,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var total float64
	var lowStock []models.Product
	for _, item := range body.Items {
		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusNotFound,
				fmt.Errorf("product %d not found", item.ProductID))
			return
		}
		if !product.Active {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("product %q is not for sale", product.Name))
			return
		}
		if product.Stock < item.Quantity {
			tx.Rollback()
			utils.RespondError(c, http.StatusConflict,
				fmt.Errorf("insufficient stock for %q: %d left", product.Name, product.Stock))
			return
		}

		product.Stock -= item.Quantity
		if err := tx.Save(&product).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if product.Stock <= LowStockThreshold {
			lowStock = append(lowStock, product)
		}

		orderItem := models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Notes:     item.Notes,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		total += float64(item.Quantity) * product.Price
	}

	var change float64
	if body.PaymentMethod == models.PaymentMethodCash {
		if body.CashReceived < total {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("cash received %.2f is below total %.2f", body.CashReceived, total))
			return
		}
		change = body.CashReceived - total
	}

	// Completion is a status UPDATE, not part of the insert: the ledger
	// trigger fires on the pending -> completed transition with all items
	// in place.
	updates := map[string]interface{}{
		"status":        models.OrderStatusCompleted,
		"total_amount":  total,
		"cash_received": body.CashReceived,
		"change":        change,
		"updated_at":    time.Now(),
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := oc.DB.Preload("OrderItems").First(&order, order.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Best-effort paths after the sale is committed.
	if order.CustomerID != nil {
		oc.Loyalty.EvaluateOrderRules(*order.CustomerID, order.TotalAmount)
	}
	events.BroadcastOrderCompleted(order)
	for _, product := range lowStock {
		events.BroadcastLowStock(product)
	}

	utils.InfoLogger.Printf("Order %s completed: %s via %s",
		order.OrderNumber, utils.FormatCurrency(order.TotalAmount), order.PaymentMethod)

	utils.RespondJSON(c, http.StatusCreated, "Order completed", order)
}

// GetOrderByID -> order detail with items
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.Product").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// VoidOrder -> admin cancels a completed sale and restores its stock.
// Points already accrued by the ledger trigger are deliberately left alone;
// clawing back loyalty is a manual decision.
func (oc *OrderController) VoidOrder(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	idStr := c.Param("order_id")
	id, _ := strconv.Atoi(idStr)

	var order models.Order
	if err := oc.DB.Preload("OrderItems").First(&order, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if order.Status != models.OrderStatusCompleted {
		utils.RespondError(c, http.StatusBadRequest, errors.New("only completed orders can be voided"))
		return
	}

	tx := oc.DB.Begin()

	for _, item := range order.OrderItems {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	order.Status = models.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastOrderVoided(order)
	utils.InfoLogger.Printf("Order %s voided", order.OrderNumber)

	utils.RespondJSON(c, http.StatusOK, "Order voided", order)
}

// GetDailySales -> per-day totals grouped by payment method
func (oc *OrderController) GetDailySales(c *gin.Context) {
	day := c.Query("date")
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}

	var rows []struct {
		PaymentMethod string  `json:"payment_method"`
		Orders        int64   `json:"orders"`
		Total         float64 `json:"total"`
	}
	err := oc.DB.Model(&models.Order{}).
		Where("DATE(created_at) = ? AND status = ?", day, models.OrderStatusCompleted).
		Select("payment_method, COUNT(*) as orders, COALESCE(SUM(total_amount), 0) as total").
		Group("payment_method").
		Scan(&rows).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var grandTotal float64
	var orderCount int64
	for _, row := range rows {
		grandTotal += row.Total
		orderCount += row.Orders
	}

	utils.RespondJSON(c, http.StatusOK, "Daily sales", gin.H{
		"date":      day,
		"by_method": rows,
		"total":     grandTotal,
		"orders":    orderCount,
	})
}

// currentUserID pulls the authenticated user id out of the gin context.
func currentUserID(c *gin.Context) (uint, bool) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := userIDInterface.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}
