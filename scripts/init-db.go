package main

import (
	"context"
	"flag"
	"log"
	"time"

	"repairbox/internal/config"
	"repairbox/internal/database"
	"repairbox/internal/logger"
	"repairbox/internal/migrations"
	"repairbox/internal/repository"
	"repairbox/internal/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Provisions a RepairBox database: schema, default statuses, priorities,
// quick replies, checklists, the admin user, dashboard charts and the
// workspace. Safe to run repeatedly. With -sample it also creates a demo
// iPhone 12 repair order.
func main() {
	sample := flag.Bool("sample", false, "create a sample repair order with its catalog entries and customer")
	flag.Parse()

	cfg := config.Load()

	zapLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()

	db, err := database.Initialize(cfg.DatabaseURL, false)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrations.RunMigrations(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	userService := services.NewUserService(repository.NewUserRepository(db))
	settingsRepo := repository.NewRepairSettingsRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	setup := services.NewSetupService(
		settingsRepo,
		catalogRepo,
		checklistRepo,
		repository.NewDashboardRepository(db),
		userService,
		services.AdminAccount{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Email:    cfg.AdminEmail,
		},
		zapLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := setup.Install(ctx); err != nil {
		zapLogger.Fatal("Setup failed", zap.Error(err))
	}

	if *sample {
		admin, err := userService.GetUserByUsername(ctx, cfg.AdminUsername)
		if err != nil {
			zapLogger.Fatal("Admin user not found", zap.String("username", cfg.AdminUsername), zap.Error(err))
		}
		customerRepo := repository.NewCustomerRepository(db)
		orders := services.NewRepairOrderService(
			repository.NewRepairOrderRepository(db), settingsRepo, catalogRepo, customerRepo,
			services.NewChecklistService(checklistRepo, catalogRepo), nil, nil, nil,
			services.RepairOrderOptions{
				TaxRate:        decimal.NewFromFloat(cfg.TaxRate),
				TrackingPrefix: cfg.TrackingPrefix,
				ElevatedRoles:  cfg.ElevatedRoles,
			},
			zapLogger,
		)
		samples := services.NewSampleDataService(
			services.NewCatalogService(catalogRepo),
			services.NewCustomerService(customerRepo),
			orders,
			zapLogger,
		)
		actor := services.Actor{UserID: admin.ID, Username: admin.Username, Email: admin.Email, Roles: []string{admin.Role}}
		if _, err := samples.CreateSampleRepair(ctx, actor); err != nil {
			zapLogger.Fatal("Failed to create sample data", zap.Error(err))
		}
	}

	zapLogger.Info("Database initialization completed",
		zap.String("admin_username", cfg.AdminUsername))
}
