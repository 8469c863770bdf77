package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/utils"
)

type SupplierController struct {
	DB *gorm.DB
}

func NewSupplierController(db *gorm.DB) *SupplierController {
	return &SupplierController{DB: db}
}

// GetAllSuppliers
func (sc *SupplierController) GetAllSuppliers(c *gin.Context) {
	var suppliers []models.Supplier
	if err := sc.DB.Order("name asc").Find(&suppliers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of suppliers", suppliers)
}

// CreateSupplier
func (sc *SupplierController) CreateSupplier(c *gin.Context) {
	var body struct {
		Name           string  `json:"name" binding:"required"`
		DocumentNumber *string `json:"document_number"`
		Phone          *string `json:"phone"`
		Email          *string `json:"email"`
		Address        string  `json:"address"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	supplier := models.Supplier{
		Name:           body.Name,
		DocumentNumber: body.DocumentNumber,
		Phone:          body.Phone,
		Email:          body.Email,
		Address:        body.Address,
	}
	if err := sc.DB.Create(&supplier).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Supplier created", supplier)
}

// GetSupplierByID
func (sc *SupplierController) GetSupplierByID(c *gin.Context) {
	idStr := c.Param("supplier_id")
	id, _ := strconv.Atoi(idStr)

	var supplier models.Supplier
	if err := sc.DB.First(&supplier, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Supplier detail", supplier)
}

// UpdateSupplier
func (sc *SupplierController) UpdateSupplier(c *gin.Context) {
	idStr := c.Param("supplier_id")
	id, _ := strconv.Atoi(idStr)

	var body struct {
		Name           *string `json:"name"`
		DocumentNumber *string `json:"document_number"`
		Phone          *string `json:"phone"`
		Email          *string `json:"email"`
		Address        *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var supplier models.Supplier
	if err := sc.DB.First(&supplier, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.Name != nil && *body.Name != "" {
		supplier.Name = *body.Name
	}
	if body.DocumentNumber != nil {
		supplier.DocumentNumber = body.DocumentNumber
	}
	if body.Phone != nil {
		supplier.Phone = body.Phone
	}
	if body.Email != nil {
		supplier.Email = body.Email
	}
	if body.Address != nil {
		supplier.Address = *body.Address
	}

	if err := sc.DB.Save(&supplier).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Supplier updated", supplier)
}

// DeleteSupplier
func (sc *SupplierController) DeleteSupplier(c *gin.Context) {
	idStr := c.Param("supplier_id")
	id, _ := strconv.Atoi(idStr)

	if err := sc.DB.Delete(&models.Supplier{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Supplier deleted", gin.H{"supplier_id": id})
}

// CreatePurchaseEntry -> goods received; bumps product stock in the same
// transaction
func (sc *SupplierController) CreatePurchaseEntry(c *gin.Context) {
	var body struct {
		SupplierID uint    `json:"supplier_id" binding:"required"`
		ProductID  uint    `json:"product_id" binding:"required"`
		Quantity   int     `json:"quantity" binding:"required"`
		UnitCost   float64 `json:"unit_cost"`
		Notes      string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Quantity <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("quantity must be positive"))
		return
	}

	tx := sc.DB.Begin()

	var supplier models.Supplier
	if err := tx.First(&supplier, body.SupplierID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var product models.Product
	if err := tx.First(&product, body.ProductID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	entry := models.PurchaseEntry{
		SupplierID: body.SupplierID,
		ProductID:  body.ProductID,
		Quantity:   body.Quantity,
		UnitCost:   body.UnitCost,
		Notes:      body.Notes,
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	product.Stock += body.Quantity
	if err := tx.Save(&product).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Purchase entry %d: +%d stock for product %d from supplier %d",
		entry.ID, body.Quantity, body.ProductID, body.SupplierID)

	utils.RespondJSON(c, http.StatusCreated, "Purchase entry recorded", entry)
}

// GetPurchaseEntries -> receiving history, optionally by supplier
func (sc *SupplierController) GetPurchaseEntries(c *gin.Context) {
	query := sc.DB.Preload("Supplier").Preload("Product")

	if supplierID := c.Query("supplier_id"); supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}

	var entries []models.PurchaseEntry
	if err := query.Order("created_at desc").Find(&entries).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Purchase entries", entries)
}
