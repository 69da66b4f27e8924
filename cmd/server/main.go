package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repairbox/internal/config"
	"repairbox/internal/database"
	"repairbox/internal/events"
	"repairbox/internal/handlers"
	"repairbox/internal/logger"
	"repairbox/internal/middleware"
	"repairbox/internal/migrations"
	"repairbox/internal/redis"
	"repairbox/internal/repository"
	"repairbox/internal/services"
	"repairbox/pkg/mailer"
	"repairbox/pkg/whatsapp"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, cfg.GinMode == gin.DebugMode)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis is optional; tracking lookups fall back to the database
	var cache services.TrackingCache
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		zapLogger.Warn("Redis unavailable, tracking cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cache = redisClient
	}

	var publisher services.EventPublisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			zapLogger.Warn("AMQP unavailable, events disabled", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	var mail services.EmailSender
	smtp := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if smtp.Configured() {
		mail = smtp
	}

	var chat services.MessageSender
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	if whatsappClient.Configured() {
		chat = whatsappClient
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	settingsRepo := repository.NewRepairSettingsRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	orderRepo := repository.NewRepairOrderRepository(db)
	logRepo := repository.NewRepairLogRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userService, cfg.JWTSecret, time.Duration(cfg.JWTExpiryHrs)*time.Hour)
	catalogService := services.NewCatalogService(catalogRepo)
	settingsService := services.NewRepairSettingsService(settingsRepo)
	checklistService := services.NewChecklistService(checklistRepo, catalogRepo)
	customerService := services.NewCustomerService(customerRepo)
	notificationService := services.NewNotificationService(settingsRepo, mail, chat, cfg.ShopName, zapLogger)
	orderService := services.NewRepairOrderService(
		orderRepo, settingsRepo, catalogRepo, customerRepo,
		checklistService, notificationService, publisher, cache,
		services.RepairOrderOptions{
			TaxRate:        decimal.NewFromFloat(cfg.TaxRate),
			TrackingPrefix: cfg.TrackingPrefix,
			ElevatedRoles:  cfg.ElevatedRoles,
			CacheTTL:       time.Duration(cfg.CacheTTL) * time.Second,
		},
		zapLogger,
	)
	logService := services.NewRepairLogService(logRepo, orderRepo, orderService, zapLogger)
	dashboardService := services.NewDashboardService(dashboardRepo, orderRepo)
	whatsappService := services.NewWhatsAppService(chat, orderService, cfg.TrackingPrefix, cfg.ShopName)

	// Initialize handlers
	h := handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService, zapLogger),
		RepairOrder: handlers.NewRepairOrderHandler(orderService, logService, orderRepo, zapLogger),
		Catalog:     handlers.NewCatalogHandler(catalogService, settingsService, checklistService, zapLogger),
		Customer:    handlers.NewCustomerHandler(customerService, zapLogger),
		Dashboard:   handlers.NewDashboardHandler(dashboardService, zapLogger),
	}
	if chat != nil {
		h.WhatsApp = handlers.NewWhatsAppHandler(whatsappService, zapLogger)
	}

	// Setup routes
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(zapLogger))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handlers.RegisterRoutes(router, h, handlers.RouteConfig{
		JWTSecret:     cfg.JWTSecret,
		WebhookSecret: cfg.WhatsappWebhookSecret,
		ElevatedRoles: cfg.ElevatedRoles,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
}
