package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dmoralesp/cafe-pos/controllers"
	"github.com/dmoralesp/cafe-pos/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	customerCtrl := controllers.NewCustomerController(db)
	categoryCtrl := controllers.NewCategoryController(db)
	productCtrl := controllers.NewProductController(db)
	supplierCtrl := controllers.NewSupplierController(db)
	orderCtrl := controllers.NewOrderController(db)
	loyaltyCtrl := controllers.NewLoyaltyController(db)
	shiftCtrl := controllers.NewShiftController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter for login
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", userCtrl.Login)
	}

	// Event stream for POS screens and the admin dashboard
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", controllers.EventsHandler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())

	// USERS
	auth.POST("/register", userCtrl.Register) // admins create accounts
	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)

	// CUSTOMERS
	auth.GET("/customers", customerCtrl.GetAllCustomers)
	auth.POST("/customers", customerCtrl.CreateCustomer)
	auth.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
	auth.PATCH("/customers/:customer_id", customerCtrl.UpdateCustomer)
	auth.DELETE("/customers/:customer_id", customerCtrl.DeleteCustomer)
	auth.GET("/customers/:customer_id/rewards", loyaltyCtrl.GetCustomerRewards)

	// CATEGORIES
	auth.GET("/categories", categoryCtrl.GetAllCategories)
	auth.POST("/categories", categoryCtrl.CreateCategory)
	auth.GET("/categories/:cat_id", categoryCtrl.GetCategoryByID)
	auth.PATCH("/categories/:cat_id", categoryCtrl.UpdateCategory)
	auth.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

	// PRODUCTS
	auth.GET("/products", productCtrl.GetAllProducts)
	auth.POST("/products", productCtrl.CreateProduct)
	auth.GET("/products/:product_id", productCtrl.GetProductByID)
	auth.PATCH("/products/:product_id", productCtrl.UpdateProduct)
	auth.DELETE("/products/:product_id", productCtrl.DeleteProduct)

	// SUPPLIERS & PURCHASES
	auth.GET("/suppliers", supplierCtrl.GetAllSuppliers)
	auth.POST("/suppliers", supplierCtrl.CreateSupplier)
	auth.GET("/suppliers/:supplier_id", supplierCtrl.GetSupplierByID)
	auth.PATCH("/suppliers/:supplier_id", supplierCtrl.UpdateSupplier)
	auth.DELETE("/suppliers/:supplier_id", supplierCtrl.DeleteSupplier)
	auth.GET("/purchases", supplierCtrl.GetPurchaseEntries)
	auth.POST("/purchases", supplierCtrl.CreatePurchaseEntry)

	// ORDERS (checkout)
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.POST("/orders", orderCtrl.CreateOrder)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.POST("/orders/:order_id/void", orderCtrl.VoidOrder)
	auth.GET("/sales/daily", orderCtrl.GetDailySales)

	// LOYALTY CARDS
	auth.GET("/loyalty/cards", loyaltyCtrl.GetAllCards)
	auth.POST("/loyalty/cards", loyaltyCtrl.CreateCard)
	auth.GET("/loyalty/cards/:phone", loyaltyCtrl.GetCardByPhone)
	auth.POST("/loyalty/cards/:phone/redeem", loyaltyCtrl.RedeemCardPoints)

	// LOYALTY RULES (admin)
	auth.GET("/loyalty/rules", loyaltyCtrl.GetAllRules)
	auth.POST("/loyalty/rules", loyaltyCtrl.CreateRule)
	auth.PATCH("/loyalty/rules/:rule_id", loyaltyCtrl.UpdateRule)
	auth.DELETE("/loyalty/rules/:rule_id", loyaltyCtrl.DeleteRule)

	// REWARDS
	auth.POST("/rewards/:reward_id/redeem", loyaltyCtrl.RedeemReward)

	// SHIFTS
	auth.GET("/shifts", shiftCtrl.GetAllShifts)
	auth.POST("/shifts", shiftCtrl.OpenShift)
	auth.GET("/shifts/active", shiftCtrl.GetActiveShift)
	auth.GET("/shifts/:shift_id", shiftCtrl.GetShiftByID)
	auth.POST("/shifts/:shift_id/close", shiftCtrl.CloseShift)

	// ADMIN DASHBOARD
	auth.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	auth.GET("/dashboard/top-products", adminCtrl.GetTopProducts)

	return r
}
