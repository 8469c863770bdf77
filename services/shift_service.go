package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/utils"
)

var (
	ErrShiftClosed    = errors.New("shift is already closed")
	ErrShiftStillOpen = errors.New("cashier already has an open shift")
	ErrNoOpenShift    = errors.New("cashier has no open shift")
)

// ShiftService opens and reconciles register shifts.
type ShiftService struct {
	db *gorm.DB
}

func NewShiftService(db *gorm.DB) *ShiftService {
	return &ShiftService{db: db}
}

// OpenShift starts a register session. A cashier can hold at most one open
// shift at a time.
func (s *ShiftService) OpenShift(cashierID uint, startCash float64) (*models.Shift, error) {
	var count int64
	if err := s.db.Model(&models.Shift{}).
		Where("cashier_id = ? AND ended_at IS NULL", cashierID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrShiftStillOpen
	}

	shift := models.Shift{
		CashierID: cashierID,
		StartCash: startCash,
		StartedAt: time.Now(),
	}
	if err := s.db.Create(&shift).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Shift %d opened by cashier %d with %s in the drawer",
		shift.ID, cashierID, utils.FormatCurrency(startCash))
	return &shift, nil
}

// ActiveShift returns the cashier's currently open shift.
func (s *ShiftService) ActiveShift(cashierID uint) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.Where("cashier_id = ? AND ended_at IS NULL", cashierID).First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenShift
		}
		return nil, err
	}
	return &shift, nil
}

// CashSales sums completed cash-method order totals for a shift.
func (s *ShiftService) CashSales(shiftID uint) (float64, error) {
	var total float64
	err := s.db.Model(&models.Order{}).
		Where("shift_id = ? AND payment_method = ? AND status = ?",
			shiftID, models.PaymentMethodCash, models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// CloseShift reconciles and closes a shift exactly once: expected cash is
// start cash plus the shift's cash sales, and the counted amount is
// compared against it. Orders written while the close is in flight are not
// re-read; a single cashier per register makes that window irrelevant.
func (s *ShiftService) CloseShift(shiftID uint, endCash float64, notes string) (*models.Shift, error) {
	var shift models.Shift
	if err := s.db.First(&shift, shiftID).Error; err != nil {
		return nil, err
	}
	if shift.EndedAt != nil {
		return nil, ErrShiftClosed
	}

	cash, err := s.CashSales(shiftID)
	if err != nil {
		return nil, fmt.Errorf("sum cash sales: %w", err)
	}

	expected := shift.StartCash + cash
	variance := endCash - expected

	note := describeVariance(variance)
	if notes != "" {
		note = notes + " | " + note
	}

	now := time.Now()
	shift.EndedAt = &now
	shift.EndCash = &endCash
	shift.ExpectedCash = &expected
	shift.Notes = note
	if err := s.db.Save(&shift).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Shift %d closed: expected %s, counted %s",
		shift.ID, utils.FormatCurrency(expected), utils.FormatCurrency(endCash))
	return &shift, nil
}

// MethodTotals breaks a shift's completed sales down by payment method.
func (s *ShiftService) MethodTotals(shiftID uint) (map[string]float64, error) {
	var rows []struct {
		PaymentMethod string
		Total         float64
	}
	err := s.db.Model(&models.Order{}).
		Where("shift_id = ? AND status = ?", shiftID, models.OrderStatusCompleted).
		Select("payment_method, COALESCE(SUM(total_amount), 0) as total").
		Group("payment_method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.PaymentMethod] = row.Total
	}
	return totals, nil
}

func describeVariance(variance float64) string {
	switch {
	case math.Abs(variance) < 0.005:
		return "cash balanced"
	case variance < 0:
		return fmt.Sprintf("cash shortage of %s", utils.FormatCurrency(-variance))
	default:
		return fmt.Sprintf("cash overage of %s", utils.FormatCurrency(variance))
	}
}
