package controllers

import "github.com/gin-gonic/gin"

// RegisterManagementRoutes mounts the management API on rg.
// Login and uploaded files are public; every other route runs behind guards.
func RegisterManagementRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	rg.POST("/auth/login", Login)
	rg.GET("/uploads/:filename", GetUploadedImage)

	admin := rg.Group("", guards...)
	{
		admin.POST("/auth/logout", Logout)
		admin.GET("/menu", GetMenu)

		admin.GET("/shops", ListShops)
		admin.POST("/shops", CreateShop)
		admin.GET("/shops/:id", GetShop)
		admin.PUT("/shops/:id", UpdateShop)
		admin.DELETE("/shops/:id", DeleteShop)
		admin.POST("/shops/:id/logo", UploadShopLogo)

		admin.GET("/clients", ListClients)

		admin.GET("/services", ListServices)
		admin.POST("/services", CreateService)
		admin.POST("/services/quick", QuickCreateService)
		admin.GET("/services/:id", GetService)
		admin.PUT("/services/:id", UpdateService)
		admin.DELETE("/services/:id", DeleteService)

		admin.GET("/transactions/pending", ListPendingTransactions)
		admin.GET("/transactions/ongoing", ListOngoingTransactions)
		admin.POST("/transactions/ongoing/prices", UpdateOngoingPrices)
		admin.GET("/transactions/history", ListTransactionHistory)
		admin.GET("/transactions/:id", GetTransaction)
		admin.PUT("/transactions/:id/review", ReviewTransaction)
		admin.POST("/transactions/:id/done", MarkTransactionDone)
		admin.PUT("/transactions/:id/price", UpdateTransactionPrice)

		admin.GET("/settings", GetSettings)
		admin.PUT("/settings/username", UpdateUsername)
		admin.PUT("/settings/password", UpdatePassword)
		admin.PUT("/settings/fees", UpdateFees)
	}
}
