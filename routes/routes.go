package routes

import (
	"stock-import-service/controllers"
	"stock-import-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterStockRoutes sets up all stock import/export routes.
func RegisterStockRoutes(r *gin.Engine, sc *controllers.StockController) {
	stockRoutes := r.Group("/stock")
	stockRoutes.Use(middleware.MerchantAuth())

	stockRoutes.POST("/import", sc.ImportStock)
	stockRoutes.GET("/import/jobs/:id", sc.GetImportJobStatus)
	stockRoutes.GET("/export", sc.ExportStock)
}
