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

type ProductController struct {
	DB *gorm.DB
}

func NewProductController(db *gorm.DB) *ProductController {
	return &ProductController{DB: db}
}

// GetAllProducts -> catalog listing, optionally by category or active only
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	query := pc.DB.Preload("Category")

	if catID := c.Query("category_id"); catID != "" {
		query = query.Where("category_id = ?", catID)
	}
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var products []models.Product
	if err := query.Order("name asc").Find(&products).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

// CreateProduct
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var body struct {
		CategoryID  uint    `json:"category_id" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price" binding:"required"`
		Stock       int     `json:"stock"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
		return
	}

	var category models.Category
	if err := pc.DB.First(&category, body.CategoryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	product := models.Product{
		CategoryID:  body.CategoryID,
		Name:        body.Name,
		Price:       body.Price,
		Stock:       body.Stock,
		Active:      true,
		Description: body.Description,
	}
	if err := pc.DB.Create(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Product created", product)
}

// GetProductByID
func (pc *ProductController) GetProductByID(c *gin.Context) {
	idStr := c.Param("product_id")
	id, _ := strconv.Atoi(idStr)

	var product models.Product
	if err := pc.DB.Preload("Category").First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}

// UpdateProduct
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	idStr := c.Param("product_id")
	id, _ := strconv.Atoi(idStr)

	var body struct {
		CategoryID  *uint    `json:"category_id"`
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Stock       *int     `json:"stock"`
		Active      *bool    `json:"active"`
		Description *string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var product models.Product
	if err := pc.DB.First(&product, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.CategoryID != nil {
		product.CategoryID = *body.CategoryID
	}
	if body.Name != nil && *body.Name != "" {
		product.Name = *body.Name
	}
	if body.Price != nil {
		if *body.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
			return
		}
		product.Price = *body.Price
	}
	if body.Stock != nil {
		product.Stock = *body.Stock
	}
	if body.Active != nil {
		product.Active = *body.Active
	}
	if body.Description != nil {
		product.Description = *body.Description
	}

	if err := pc.DB.Save(&product).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	idStr := c.Param("product_id")
	id, _ := strconv.Atoi(idStr)

	if err := pc.DB.Delete(&models.Product{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product deleted", gin.H{"product_id": id})
}
