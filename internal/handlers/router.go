package handlers

import (
	"repairbox/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth        *AuthHandler
	RepairOrder *RepairOrderHandler
	Catalog     *CatalogHandler
	Customer    *CustomerHandler
	Dashboard   *DashboardHandler
	WhatsApp    *WhatsAppHandler
}

type RouteConfig struct {
	JWTSecret     string
	WebhookSecret string
	ElevatedRoles []string
}

// RegisterRoutes mounts the API on router.
func RegisterRoutes(router *gin.Engine, h Handlers, cfg RouteConfig) {
	api := router.Group("/api")

	// public
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/track/:tracking_id", h.RepairOrder.Track)
	if h.WhatsApp != nil {
		api.POST("/whatsapp/webhook", middleware.WebhookSecret(cfg.WebhookSecret), h.WhatsApp.HandleWebhook)
	}

	auth := api.Group("", middleware.JWTAuth(cfg.JWTSecret))
	admin := middleware.RequireRole(cfg.ElevatedRoles...)

	orders := auth.Group("/repair-orders")
	{
		orders.GET("", h.RepairOrder.List)
		orders.POST("", h.RepairOrder.Create)
		orders.GET("/mine", h.RepairOrder.Mine)
		orders.GET("/overdue", h.RepairOrder.Overdue)
		orders.GET("/export", h.RepairOrder.Export)
		orders.GET("/:id", h.RepairOrder.Get)
		orders.PUT("/:id", h.RepairOrder.Update)
		orders.POST("/:id/payments", h.RepairOrder.RecordPayment)
		orders.GET("/:id/logs", h.RepairOrder.ListLogs)
		orders.POST("/:id/logs", h.RepairOrder.CreateLog)
	}

	auth.GET("/customers", h.Customer.Search)
	auth.POST("/customers/quick", h.Customer.QuickCreate)

	auth.GET("/brands", h.Catalog.ListBrands)
	auth.POST("/brands", admin, h.Catalog.SaveBrand)
	auth.GET("/devices", h.Catalog.ListDevices)
	auth.POST("/devices", admin, h.Catalog.SaveDevice)
	auth.GET("/defects", h.Catalog.ListDefects)
	auth.POST("/defects", admin, h.Catalog.SaveDefect)
	auth.GET("/statuses", h.Catalog.ListStatuses)
	auth.POST("/statuses", admin, h.Catalog.SaveStatus)
	auth.GET("/priorities", h.Catalog.ListPriorities)
	auth.POST("/priorities", admin, h.Catalog.SavePriority)
	auth.GET("/checklist-templates", h.Catalog.ListChecklistTemplates)
	auth.POST("/checklist-templates", admin, h.Catalog.SaveChecklistTemplate)
	auth.GET("/checklist-templates/for-device/:device", h.Catalog.ChecklistForDevice)
	auth.GET("/quick-replies", h.Catalog.ListQuickReplies)
	auth.POST("/quick-replies", admin, h.Catalog.SaveQuickReply)

	auth.GET("/dashboard/charts/:name", h.Dashboard.Chart)
	auth.GET("/dashboard/workspace", h.Dashboard.Workspace)
}
