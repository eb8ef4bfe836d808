package router

import (
	"github.com/AndreCode112/FinanceMartins/internal/blob"
	"github.com/AndreCode112/FinanceMartins/internal/clock"
	"github.com/AndreCode112/FinanceMartins/internal/config"
	"github.com/AndreCode112/FinanceMartins/internal/handler"
	"github.com/AndreCode112/FinanceMartins/internal/middleware"
	"github.com/AndreCode112/FinanceMartins/internal/payable"
	"github.com/AndreCode112/FinanceMartins/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires the services and registers every API route.
func SetupRouter(cfg *config.Config, db *gorm.DB, blobs blob.Store, log *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	clk := clock.System()
	payableService := payable.NewService(db, blobs, clk, log)
	reportService := report.NewService(db, clk, log)

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, db))

	protected.GET("/me", handler.GetMe)

	dashboardHandler := handler.NewDashboardHandler(db, payableService, clk, log)
	protected.GET("/dashboard", dashboardHandler.Overview)
	protected.POST("/dashboard/layout", dashboardHandler.SaveLayout)

	bankHandler := handler.NewBankHandler(db, log)
	protected.POST("/banks", bankHandler.Create)
	protected.DELETE("/banks/:id", bankHandler.Delete)

	categoryHandler := handler.NewCategoryHandler(db, log)
	protected.POST("/categories", categoryHandler.Create)
	protected.DELETE("/categories/:id", categoryHandler.Delete)

	transactionHandler := handler.NewTransactionHandler(db, log)
	protected.POST("/transactions", transactionHandler.Create)
	protected.PUT("/transactions/:id", transactionHandler.Update)
	protected.DELETE("/transactions/:id", transactionHandler.Delete)

	eventHandler := handler.NewEventHandler(db, log)
	protected.GET("/events", eventHandler.List)
	protected.POST("/events", eventHandler.Create)
	protected.PUT("/events/:id", eventHandler.Update)
	protected.DELETE("/events/:id", eventHandler.Delete)
	protected.POST("/events/import", eventHandler.ImportJSON)

	payableHandler := handler.NewPayableHandler(db, payableService, log)
	protected.GET("/payables", payableHandler.List)
	protected.POST("/payables", payableHandler.Create)
	protected.PUT("/payables/:id", payableHandler.Update)
	protected.DELETE("/payables/:id", payableHandler.Delete)
	protected.POST("/payables/:id/status", payableHandler.UpdateStatus)
	protected.POST("/payables/:id/installments/bulk", payableHandler.GroupBulkUpdate)
	protected.POST("/payables/bulk", payableHandler.BulkAction)
	protected.GET("/payables/:id/history", payableHandler.History)
	protected.POST("/payables/:id/receipt", payableHandler.UploadReceipt)
	protected.GET("/payables/:id/receipt", payableHandler.ViewReceipt)
	protected.DELETE("/payables/:id/receipt", payableHandler.DeleteReceipt)

	reportHandler := handler.NewReportHandler(reportService, log)
	protected.GET("/reports/export", reportHandler.Export)

	return r
}
