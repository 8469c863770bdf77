package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats -> headline numbers for the admin dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no role found"))
		return
	}

	role, ok := roleInterface.(string)
	if !ok || role != "admin" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized access"))
		return
	}

	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalOrders  int64   `json:"total_orders"`
		TodayOrders  int64   `json:"today_orders"`
		TotalRevenue float64 `json:"total_revenue"`
		TodayRevenue float64 `json:"today_revenue"`
		PaymentStats struct {
			Cash   float64 `json:"cash"`
			Card   float64 `json:"card"`
			Wallet float64 `json:"wallet"`
		} `json:"payment_stats"`
		LoyaltyStats struct {
			Cards          int64 `json:"cards"`
			PendingRewards int64 `json:"pending_rewards"`
			ActiveRules    int64 `json:"active_rules"`
		} `json:"loyalty_stats"`
		OpenShifts int64            `json:"open_shifts"`
		LowStock   []models.Product `json:"low_stock"`
	}

	ac.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Count(&stats.TotalOrders)
	ac.DB.Model(&models.Order{}).
		Where("status = ? AND DATE(created_at) = ?", models.OrderStatusCompleted, today).
		Count(&stats.TodayOrders)

	ac.DB.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TotalRevenue)
	ac.DB.Model(&models.Order{}).
		Where("status = ? AND DATE(created_at) = ?", models.OrderStatusCompleted, today).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TodayRevenue)

	ac.DB.Model(&models.Order{}).
		Where("status = ? AND payment_method = ?", models.OrderStatusCompleted, models.PaymentMethodCash).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.PaymentStats.Cash)
	ac.DB.Model(&models.Order{}).
		Where("status = ? AND payment_method = ?", models.OrderStatusCompleted, models.PaymentMethodCard).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.PaymentStats.Card)
	ac.DB.Model(&models.Order{}).
		Where("status = ? AND payment_method = ?", models.OrderStatusCompleted, models.PaymentMethodWallet).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.PaymentStats.Wallet)

	ac.DB.Model(&models.LoyaltyCard{}).Count(&stats.LoyaltyStats.Cards)
	ac.DB.Model(&models.CustomerReward{}).
		Where("status = ?", models.RewardStatusPending).
		Count(&stats.LoyaltyStats.PendingRewards)
	ac.DB.Model(&models.LoyaltyRule{}).Where("active = ?", true).Count(&stats.LoyaltyStats.ActiveRules)

	ac.DB.Model(&models.Shift{}).Where("ended_at IS NULL").Count(&stats.OpenShifts)

	ac.DB.Where("active = ? AND stock <= ?", true, LowStockThreshold).
		Order("stock asc").Limit(10).Find(&stats.LowStock)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetTopProducts -> best sellers over the last 30 days
func (ac *AdminController) GetTopProducts(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	since := time.Now().AddDate(0, 0, -30)

	var rows []struct {
		ProductID uint    `json:"product_id"`
		Name      string  `json:"name"`
		Quantity  int64   `json:"quantity"`
		Revenue   float64 `json:"revenue"`
	}
	err := ac.DB.Raw(`
		SELECT p.id as product_id, p.name as name,
		       COALESCE(SUM(oi.quantity), 0) as quantity,
		       COALESCE(SUM(oi.price * oi.quantity), 0) as revenue
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = ? AND o.created_at >= ?
		GROUP BY p.id, p.name
		ORDER BY quantity DESC
		LIMIT 10
	`, models.OrderStatusCompleted, since).Scan(&rows).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Top products", rows)
}
