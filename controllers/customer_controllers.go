package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/models"
	"github.com/dmoralesp/cafe-pos/utils"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// GetAllCustomers -> list customers, optionally filtered by phone or
// document number (exact match, as typed at the counter)
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	query := cc.DB.Model(&models.Customer{})

	if phone := c.Query("phone"); phone != "" {
		query = query.Where("phone = ?", phone)
	}
	if doc := c.Query("document"); doc != "" {
		query = query.Where("document_number = ?", doc)
	}

	var customers []models.Customer
	if err := query.Order("name asc").Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// CreateCustomer
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	type reqBody struct {
		Name           string  `json:"name" binding:"required"`
		DocumentNumber *string `json:"document_number"`
		Phone          *string `json:"phone"`
		Email          *string `json:"email"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer := models.Customer{
		Name:           req.Name,
		DocumentNumber: req.DocumentNumber,
		Phone:          req.Phone,
		Email:          req.Email,
	}

	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New customer created (ID=%d)", customer.ID)

	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

// GetCustomerByID
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

// UpdateCustomer
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		Name           *string `json:"name"`
		DocumentNumber *string `json:"document_number"`
		Phone          *string `json:"phone"`
		Email          *string `json:"email"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.Name != nil && *req.Name != "" {
		customer.Name = *req.Name
	}
	if req.DocumentNumber != nil {
		customer.DocumentNumber = req.DocumentNumber
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Email != nil {
		customer.Email = req.Email
	}

	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// DeleteCustomer
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	if err := cc.DB.Delete(&models.Customer{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"customer_id": id})
}
