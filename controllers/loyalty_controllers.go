package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/services"
	"github.com/dmoralesp/cafe-pos/utils"
)

type LoyaltyController struct {
	DB      *gorm.DB
	Service *services.LoyaltyService
}

func NewLoyaltyController(db *gorm.DB) *LoyaltyController {
	return &LoyaltyController{
		DB:      db,
		Service: services.NewLoyaltyService(db),
	}
}

/*
========================================
 CARDS (phone-keyed points ledger)
========================================
*/

// GetAllCards
func (lc *LoyaltyController) GetAllCards(c *gin.Context) {
	var cards []models.LoyaltyCard
	if err := lc.DB.Order("points desc").Find(&cards).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of loyalty cards", cards)
}

// GetCardByPhone
func (lc *LoyaltyController) GetCardByPhone(c *gin.Context) {
	phone := c.Param("phone")

	var card models.LoyaltyCard
	if err := lc.DB.Where("phone = ?", phone).First(&card).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrCardNotFound)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Loyalty card detail", card)
}

// CreateCard -> explicit signup; cards are otherwise created by the points
// ledger on the first qualifying purchase
func (lc *LoyaltyController) CreateCard(c *gin.Context) {
	var body struct {
		Phone      string `json:"phone" binding:"required"`
		HolderName string `json:"holder_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	card := models.LoyaltyCard{
		Phone:      body.Phone,
		HolderName: body.HolderName,
	}
	if err := lc.DB.Create(&card).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Loyalty card created", card)
}

// RedeemCardPoints -> trade points for a free item
func (lc *LoyaltyController) RedeemCardPoints(c *gin.Context) {
	phone := c.Param("phone")

	var body struct {
		Points int `json:"points"`
	}
	// Body is optional; the default redemption cost applies.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Points < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("points must not be negative"))
		return
	}
	cost := body.Points
	if cost == 0 {
		cost = services.DefaultRedemptionCost
	}

	card, err := lc.Service.RedeemPoints(phone, cost)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCardNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrInsufficientPoints):
			utils.RespondError(c, http.StatusConflict, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Points redeemed", card)
}

/*
========================================
 RULES (admin-defined promotions)
========================================
*/

// GetAllRules -> includes inactive rules, for the admin screen
func (lc *LoyaltyController) GetAllRules(c *gin.Context) {
	var rules []models.LoyaltyRule
	if err := lc.DB.Find(&rules).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of loyalty rules", rules)
}

// CreateRule -> admin only
func (lc *LoyaltyController) CreateRule(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var body struct {
		Name              string  `json:"name" binding:"required"`
		ConditionType     string  `json:"condition_type" binding:"required"`
		Threshold         float64 `json:"threshold" binding:"required"`
		RewardDescription string  `json:"reward_description" binding:"required"`
		Active            *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.ConditionType != models.RuleConditionTransactionAmount &&
		body.ConditionType != models.RuleConditionMonthlySpend {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unknown condition type"))
		return
	}
	if body.Threshold <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("threshold must be positive"))
		return
	}

	rule := models.LoyaltyRule{
		Name:              body.Name,
		ConditionType:     body.ConditionType,
		Threshold:         body.Threshold,
		RewardDescription: body.RewardDescription,
		Active:            true,
	}
	if body.Active != nil {
		rule.Active = *body.Active
	}

	if err := lc.DB.Create(&rule).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Loyalty rule created", rule)
}

// UpdateRule -> admin only
func (lc *LoyaltyController) UpdateRule(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	idStr := c.Param("rule_id")
	id, _ := strconv.Atoi(idStr)

	var body struct {
		Name              *string  `json:"name"`
		Threshold         *float64 `json:"threshold"`
		RewardDescription *string  `json:"reward_description"`
		Active            *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var rule models.LoyaltyRule
	if err := lc.DB.First(&rule, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.Name != nil && *body.Name != "" {
		rule.Name = *body.Name
	}
	if body.Threshold != nil {
		if *body.Threshold <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("threshold must be positive"))
			return
		}
		rule.Threshold = *body.Threshold
	}
	if body.RewardDescription != nil && *body.RewardDescription != "" {
		rule.RewardDescription = *body.RewardDescription
	}
	if body.Active != nil {
		rule.Active = *body.Active
	}

	if err := lc.DB.Save(&rule).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Loyalty rule updated", rule)
}

// DeleteRule -> admin only
func (lc *LoyaltyController) DeleteRule(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	idStr := c.Param("rule_id")
	id, _ := strconv.Atoi(idStr)

	if err := lc.DB.Delete(&models.LoyaltyRule{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Loyalty rule deleted", gin.H{"rule_id": id})
}

/*
========================================
 REWARDS (rule-granted, customer-keyed)
========================================
*/

// GetCustomerRewards -> rewards for one customer, optionally by status
func (lc *LoyaltyController) GetCustomerRewards(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	query := lc.DB.Preload("Rule").Where("customer_id = ?", id)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var rewards []models.CustomerReward
	if err := query.Order("created_at desc").Find(&rewards).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer rewards", rewards)
}

// RedeemReward -> pending -> redeemed, once
func (lc *LoyaltyController) RedeemReward(c *gin.Context) {
	idStr := c.Param("reward_id")
	id, _ := strconv.Atoi(idStr)

	reward, err := lc.Service.RedeemReward(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrRewardNotPending):
			utils.RespondError(c, http.StatusConflict, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reward redeemed", reward)
}
