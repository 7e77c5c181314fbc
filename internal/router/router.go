// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sobrazero/sobrazero-backend/internal/cache"
	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/handlers"
	"github.com/sobrazero/sobrazero-backend/internal/middleware"
	"github.com/sobrazero/sobrazero-backend/internal/services"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
	"github.com/sobrazero/sobrazero-backend/internal/worker"
)

// Initialize wires services, handlers and middleware into the HTTP API.
func Initialize(db *gorm.DB, cfg *config.Config, catalogCache *cache.Cache, pool *worker.Pool) *gin.Engine {
	// Services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 storage unavailable, serving local upload URLs")
		storageService = services.NewLocalStorageService(cfg)
	}

	authService := services.NewAuthService(db, cfg)
	commerceService := services.NewCommerceService(db, catalogCache, notificationService)
	offerService := services.NewOfferService(db, catalogCache)
	reservationService := services.NewReservationService(db, cfg)
	paymentService := services.NewPaymentService(db, cfg, services.NewStripeProvider(cfg))
	reviewService := services.NewReviewService(db)
	cardService := services.NewCardService(db)
	adminService := services.NewAdminService(db, notificationService)
	sweeperService := services.NewSweeperService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	commerceHandler := handlers.NewCommerceHandler(commerceService, storageService)
	offerHandler := handlers.NewOfferHandler(offerService)
	reservationHandler := handlers.NewReservationHandler(reservationService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, pool)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	cardHandler := handlers.NewCardHandler(cardService)
	adminHandler := handlers.NewAdminHandler(adminService, sweeperService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit))
	r.Use(middleware.AuditLogMiddleware(db))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC(),
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit(cfg.RateLimit))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
			auth.POST("/tutorial", middleware.AuthRequired(), authHandler.MarkTutorial)
		}

		comercios := api.Group("/comercios")
		{
			comercios.GET("/publicos", commerceHandler.ListPublic)
			comercios.GET("/:id", commerceHandler.Get)
			comercios.GET("/:id/ofertas", offerHandler.ListByCommerce)
			comercios.GET("/:id/resenas", reviewHandler.ListByCommerce)
			comercios.GET("/:id/reservas", middleware.AuthRequired(), reservationHandler.ListByCommerce)

			// The read-all route predates approval gating. It stays behind
			// a flag until the last legacy client is gone.
			if cfg.Features.AllowLegacyComerciosReadAll {
				comercios.GET("", commerceHandler.ListAll)
			} else {
				comercios.GET("", commerceHandler.ListPublic)
			}

			protected := comercios.Group("")
			if !cfg.Features.AllowLegacyComerciosWrite {
				protected.Use(middleware.AuthRequired())
			} else {
				protected.Use(middleware.OptionalAuth())
			}
			{
				protected.POST("", commerceHandler.Create)
				protected.GET("/mios", commerceHandler.ListMine)
				protected.PUT("/:id", commerceHandler.Update)
				protected.POST("/:id/activar", commerceHandler.Activate)
				protected.POST("/:id/desactivar", commerceHandler.Deactivate)
				protected.POST("/:id/productos", commerceHandler.AddProduct)
				protected.PUT("/:id/productos/:productoId", commerceHandler.UpdateProduct)
				protected.DELETE("/:id/productos/:productoId", commerceHandler.RemoveProduct)
				protected.POST("/:id/imagenes", middleware.UploadRateLimit(cfg.RateLimit), commerceHandler.UploadImage)
			}
		}

		ofertas := api.Group("/ofertas")
		{
			ofertas.GET("", offerHandler.ListPublic)
			ofertas.GET("/:id", offerHandler.Get)

			protected := ofertas.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", offerHandler.Create)
				protected.PUT("/:id", offerHandler.Update)
				protected.DELETE("/:id", offerHandler.Delete)
			}
		}

		reservas := api.Group("/reservas")
		reservas.Use(middleware.AuthRequired())
		{
			reservas.POST("", reservationHandler.Create)
			reservas.GET("", reservationHandler.ListMine)
			reservas.GET("/:id", reservationHandler.Get)
			reservas.PUT("/:id/cancelar", reservationHandler.Cancel)
			reservas.PUT("/:id/retirar", reservationHandler.MarkPickedUp)
		}

		pagos := api.Group("/pagos")
		{
			// The provider calls this unauthenticated.
			pagos.POST("/webhook", paymentHandler.Webhook)
			pagos.POST("/crear-preferencia", middleware.AuthRequired(), paymentHandler.CreatePreference)
		}

		resenas := api.Group("/resenas")
		resenas.Use(middleware.AuthRequired())
		{
			resenas.POST("", reviewHandler.Create)
			resenas.PUT("/:id", reviewHandler.Update)
			resenas.DELETE("/:id", reviewHandler.Delete)
		}

		tarjetas := api.Group("/tarjetas")
		tarjetas.Use(middleware.AuthRequired())
		{
			tarjetas.POST("", cardHandler.Create)
			tarjetas.GET("", cardHandler.List)
			tarjetas.PUT("/:id/preferida", cardHandler.SetPreferred)
			tarjetas.DELETE("/:id", cardHandler.Delete)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/comercios/pendientes", adminHandler.ListPendingComercios)
			admin.PUT("/comercios/:id/aprobar", adminHandler.ApproveCommerce)
			admin.PUT("/comercios/:id/rechazar", adminHandler.RejectCommerce)
			admin.GET("/usuarios", adminHandler.ListUsers)
			admin.PUT("/usuarios/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/notificaciones", adminHandler.ListNotifications)
			admin.PUT("/notificaciones/:id/leida", adminHandler.MarkNotificationRead)
			admin.GET("/auditoria", adminHandler.ListAuditLogs)
			admin.POST("/reservas/expirar", adminHandler.RunSweep)
		}
	}

	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
