package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/events"
	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/services"
	"github.com/dmoralesp/cafe-pos/utils"
)

type ShiftController struct {
	DB      *gorm.DB
	Service *services.ShiftService
}

func NewShiftController(db *gorm.DB) *ShiftController {
	return &ShiftController{
		DB:      db,
		Service: services.NewShiftService(db),
	}
}

// OpenShift -> cashier opens the register with a counted float
func (sc *ShiftController) OpenShift(c *gin.Context) {
	cashierID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("cashier not identified"))
		return
	}

	var body struct {
		StartCash float64 `json:"start_cash"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.StartCash < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("start cash cannot be negative"))
		return
	}

	shift, err := sc.Service.OpenShift(cashierID, body.StartCash)
	if err != nil {
		if errors.Is(err, services.ErrShiftStillOpen) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastShiftOpened(*shift)
	utils.RespondJSON(c, http.StatusCreated, "Shift opened", shift)
}

// CloseShift -> reconcile counted cash against expected and close
func (sc *ShiftController) CloseShift(c *gin.Context) {
	idStr := c.Param("shift_id")
	id, _ := strconv.Atoi(idStr)

	var body struct {
		EndCash float64 `json:"end_cash"`
		Notes   string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	shift, err := sc.Service.CloseShift(uint(id), body.EndCash, body.Notes)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.RespondError(c, http.StatusNotFound, err)
		case errors.Is(err, services.ErrShiftClosed):
			utils.RespondError(c, http.StatusConflict, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	events.BroadcastShiftClosed(*shift)
	utils.RespondJSON(c, http.StatusOK, "Shift closed", shift)
}

// GetActiveShift -> the calling cashier's open shift, if any
func (sc *ShiftController) GetActiveShift(c *gin.Context) {
	cashierID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("cashier not identified"))
		return
	}

	shift, err := sc.Service.ActiveShift(cashierID)
	if err != nil {
		if errors.Is(err, services.ErrNoOpenShift) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Active shift", shift)
}

// GetAllShifts -> shift history, admin view
func (sc *ShiftController) GetAllShifts(c *gin.Context) {
	query := sc.DB.Model(&models.Shift{})

	if cashierID := c.Query("cashier_id"); cashierID != "" {
		query = query.Where("cashier_id = ?", cashierID)
	}
	if c.Query("open") == "true" {
		query = query.Where("ended_at IS NULL")
	}

	var shifts []models.Shift
	if err := query.Order("started_at desc").Find(&shifts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of shifts", shifts)
}

// GetShiftByID -> shift detail with per-method sales totals
func (sc *ShiftController) GetShiftByID(c *gin.Context) {
	idStr := c.Param("shift_id")
	id, _ := strconv.Atoi(idStr)

	var shift models.Shift
	if err := sc.DB.First(&shift, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	totals, err := sc.Service.MethodTotals(shift.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Shift detail", gin.H{
		"shift":         shift,
		"method_totals": totals,
	})
}
