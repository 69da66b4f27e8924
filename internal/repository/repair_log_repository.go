package repository

import (
	"context"
	"repairbox/internal/models"

	"gorm.io/gorm"
)

type RepairLogRepository interface {
	CreateAndSyncStatus(ctx context.Context, log *models.RepairLog) error
	GetByOrderID(ctx context.Context, orderID uint) ([]models.RepairLog, error)
}

type repairLogRepository struct {
	db *gorm.DB
}

func NewRepairLogRepository(db *gorm.DB) RepairLogRepository {
	return &repairLogRepository{db: db}
}

// CreateAndSyncStatus appends the log entry and copies its status onto the
// parent order in the same transaction.
func (r *repairLogRepository) CreateAndSyncStatus(ctx context.Context, log *models.RepairLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		if log.Status == "" {
			return nil
		}
		res := tx.Model(&models.RepairOrder{}).Where("id = ?", log.RepairOrderID).UpdateColumn("status", log.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repairLogRepository) GetByOrderID(ctx context.Context, orderID uint) ([]models.RepairLog, error) {
	var logs []models.RepairLog
	err := r.db.WithContext(ctx).Where("repair_order_id = ?", orderID).Order("created_at, id").Find(&logs).Error
	return logs, err
}
