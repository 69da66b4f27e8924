package migrations

import (
	"repairbox/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table the service owns, parents before children.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Customer{},
		&models.Brand{},
		&models.Device{},
		&models.Defect{},
		&models.QuickReply{},
		&models.RepairStatus{},
		&models.RepairPriority{},
		&models.InspectionChecklistTemplate{},
		&models.InspectionChecklistTemplateItem{},
		&models.RepairOrder{},
		&models.RepairOrderDefect{},
		&models.DeviceInspectionItem{},
		&models.RepairLog{},
		&models.DashboardChart{},
		&models.Workspace{},
		&models.WorkspaceChart{},
		&models.WorkspaceShortcut{},
	}
}

// RunMigrations brings the schema up to date. Existing data is kept.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Info("Database migrations completed")
	return nil
}
