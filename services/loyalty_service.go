package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/events"
	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/utils"
)

// SpendWindow is the trailing window used both to aggregate a customer's
// spend for monthly_spend rules and to suppress duplicate rewards for them.
const SpendWindow = 30 * 24 * time.Hour

// DefaultRedemptionCost is how many card points one free item costs.
const DefaultRedemptionCost = 10

var (
	ErrCardNotFound       = errors.New("loyalty card not found")
	ErrInsufficientPoints = errors.New("not enough points on card")
	ErrRewardNotPending   = errors.New("reward is not pending")
)

// LoyaltyService evaluates promotion rules after a sale and handles card
// point redemption. It is distinct from the points ledger, which lives in a
// database trigger and accrues card points per eligible item.
type LoyaltyService struct {
	db *gorm.DB
}

func NewLoyaltyService(db *gorm.DB) *LoyaltyService {
	return &LoyaltyService{db: db}
}

// EvaluateOrderRules runs every active rule against a just-completed order
// and records the newly earned rewards as pending. The order must already
// be persisted so the monthly aggregate includes it.
//
// This path is best-effort: a sale must never fail because loyalty did.
// Every error is logged and swallowed.
func (s *LoyaltyService) EvaluateOrderRules(customerID uint, orderTotal float64) {
	if customerID == 0 {
		return
	}

	rewards, err := s.evaluate(customerID, orderTotal)
	if err != nil {
		utils.ErrorLogger.Printf("loyalty evaluation for customer %d: %v", customerID, err)
	}

	for _, reward := range rewards {
		utils.InfoLogger.Printf("Customer %d earned reward %q", customerID, reward.Description)
		events.BroadcastRewardEarned(reward)
	}
}

// evaluate returns the rewards it managed to create, plus the first error
// it hit. A partial result is possible: rewards written before the error
// stay written.
func (s *LoyaltyService) evaluate(customerID uint, orderTotal float64) ([]models.CustomerReward, error) {
	var rules []models.LoyaltyRule
	if err := s.db.Where("active = ?", true).Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("fetch rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, nil
	}

	// The 30-day aggregate is only computed when some active rule needs it.
	var monthlySpend float64
	spendLoaded := false

	var created []models.CustomerReward
	for _, rule := range rules {
		switch rule.ConditionType {
		case models.RuleConditionTransactionAmount:
			// Fires on every qualifying order, no history check.
			if orderTotal < rule.Threshold {
				continue
			}

		case models.RuleConditionMonthlySpend:
			if !spendLoaded {
				spend, err := s.MonthlySpend(customerID)
				if err != nil {
					return created, fmt.Errorf("aggregate monthly spend: %w", err)
				}
				monthlySpend = spend
				spendLoaded = true
			}
			if monthlySpend < rule.Threshold {
				continue
			}
			dup, err := s.hasRecentReward(customerID, rule.ID)
			if err != nil {
				return created, fmt.Errorf("check duplicate reward: %w", err)
			}
			if dup {
				continue
			}

		default:
			utils.ErrorLogger.Printf("loyalty rule %d has unknown condition type %q", rule.ID, rule.ConditionType)
			continue
		}

		ruleID := rule.ID
		reward := models.CustomerReward{
			Code:        uuid.NewString(),
			CustomerID:  customerID,
			RuleID:      &ruleID,
			Status:      models.RewardStatusPending,
			Description: rule.RewardDescription,
		}
		if err := s.db.Create(&reward).Error; err != nil {
			return created, fmt.Errorf("insert reward for rule %d: %w", rule.ID, err)
		}
		created = append(created, reward)
	}

	return created, nil
}

// MonthlySpend sums the customer's completed-order totals over the trailing
// 30 days.
func (s *LoyaltyService) MonthlySpend(customerID uint) (float64, error) {
	since := time.Now().Add(-SpendWindow)

	var total float64
	err := s.db.Model(&models.Order{}).
		Where("customer_id = ? AND status = ? AND created_at >= ?",
			customerID, models.OrderStatusCompleted, since).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// hasRecentReward reports whether the customer already earned a reward from
// this rule inside the suppression window, regardless of its status.
func (s *LoyaltyService) hasRecentReward(customerID, ruleID uint) (bool, error) {
	since := time.Now().Add(-SpendWindow)

	var count int64
	err := s.db.Model(&models.CustomerReward{}).
		Where("customer_id = ? AND rule_id = ? AND created_at >= ?", customerID, ruleID, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RedeemPoints exchanges card points for a free item. Insufficient points
// reject the redemption and leave the card untouched.
func (s *LoyaltyService) RedeemPoints(phone string, cost int) (*models.LoyaltyCard, error) {
	if cost <= 0 {
		return nil, errors.New("redemption cost must be positive")
	}

	var card models.LoyaltyCard
	if err := s.db.Where("phone = ?", phone).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	if card.Points < cost {
		return nil, ErrInsufficientPoints
	}

	card.Points -= cost
	if err := s.db.Save(&card).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Card %s redeemed %d points, %d left", phone, cost, card.Points)
	return &card, nil
}

// RedeemReward transitions a rule-granted reward from pending to redeemed.
// The transition is monotonic; anything not pending is rejected.
func (s *LoyaltyService) RedeemReward(rewardID uint) (*models.CustomerReward, error) {
	var reward models.CustomerReward
	if err := s.db.First(&reward, rewardID).Error; err != nil {
		return nil, err
	}

	if reward.Status != models.RewardStatusPending {
		return nil, ErrRewardNotPending
	}

	now := time.Now()
	reward.Status = models.RewardStatusRedeemed
	reward.RedeemedAt = &now
	if err := s.db.Save(&reward).Error; err != nil {
		return nil, err
	}

	return &reward, nil
}
