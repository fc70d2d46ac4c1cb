package routes

import (
	"renovapro-backend/config"
	"renovapro-backend/controllers"
	"renovapro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/pending-notices", controllers.GetPendingNotices)
			customers.GET("/dashboard/:productType", controllers.GetCustomerDashboard)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
			customers.POST("/:id/renew", controllers.RenewCustomer)
			customers.PUT("/:id/comment", controllers.UpdateCustomerComment)
			customers.DELETE("/:id/comment", controllers.DeleteCustomerComment)
			customers.POST("/:id/mark-sent", controllers.MarkMessageSent)
		}

		// Template routes
		templates := api.Group("/templates")
		{
			templates.POST("", controllers.CreateTemplate)
			templates.GET("", controllers.GetTemplates)
			templates.GET("/default/:productType/:kind", controllers.GetDefaultTemplate)
			templates.GET("/:id", controllers.GetTemplate)
			templates.PUT("/:id", controllers.UpdateTemplate)
			templates.DELETE("/:id", controllers.DeleteTemplate)
			templates.POST("/:id/preview", controllers.PreviewTemplate)
		}

		// Renewal routes
		renewals := api.Group("/renewals")
		{
			renewals.GET("", controllers.GetRenewals)
			renewals.GET("/stats", controllers.GetRenewalStats)
			renewals.GET("/:id", controllers.GetRenewal)
			renewals.PUT("/:id", controllers.UpdateRenewal)
			renewals.DELETE("/:id", controllers.DeleteRenewal)
		}

		// Message log routes
		logs := api.Group("/logs")
		{
			logs.GET("", controllers.GetMessageLogs)
			logs.GET("/stats", controllers.GetMessageLogStats)
			logs.POST("/:id/resubmit", controllers.ResubmitMessageLog)
		}

		// Settings routes
		settings := api.Group("/settings")
		{
			settings.GET("", controllers.GetSettings)
			settings.PUT("", controllers.UpdateSettings)
		}

		// WhatsApp / scheduler routes
		whatsapp := api.Group("/whatsapp")
		{
			whatsapp.GET("/status", controllers.GetWhatsAppStatus)
			whatsapp.POST("/start", controllers.StartScheduler)
			whatsapp.POST("/stop", controllers.StopScheduler)
			whatsapp.GET("/qr", controllers.GetPairingCode)
			whatsapp.POST("/send-test", controllers.SendTestMessage)
			whatsapp.POST("/process-now", controllers.ProcessNoticesNow)
			whatsapp.GET("/settings", controllers.GetWhatsAppSettings)
			whatsapp.PUT("/settings", controllers.UpdateWhatsAppSettings)
			whatsapp.GET("/logs", controllers.GetDeliveryLogs)
			whatsapp.DELETE("/logs", controllers.ClearDeliveryLogs)
		}
	}

	return r
}
