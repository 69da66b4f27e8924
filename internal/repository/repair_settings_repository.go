package repository

import (
	"context"
	"repairbox/internal/models"

	"gorm.io/gorm"
)

type RepairSettingsRepository interface {
	SaveStatus(ctx context.Context, status *models.RepairStatus) error
	GetStatus(ctx context.Context, name string) (*models.RepairStatus, error)
	ListStatuses(ctx context.Context) ([]models.RepairStatus, error)
	DefaultStatus(ctx context.Context) (*models.RepairStatus, error)

	SavePriority(ctx context.Context, priority *models.RepairPriority) error
	GetPriority(ctx context.Context, name string) (*models.RepairPriority, error)
	ListPriorities(ctx context.Context) ([]models.RepairPriority, error)
	DefaultPriority(ctx context.Context) (*models.RepairPriority, error)
}

type repairSettingsRepository struct {
	db *gorm.DB
}

func NewRepairSettingsRepository(db *gorm.DB) RepairSettingsRepository {
	return &repairSettingsRepository{db: db}
}

// SaveStatus upserts the status. A default status clears the flag on every
// other status inside the same transaction.
func (r *repairSettingsRepository) SaveStatus(ctx context.Context, status *models.RepairStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if status.IsDefault {
			if err := tx.Model(&models.RepairStatus{}).
				Where("name <> ? AND is_default = ?", status.Name, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(status).Error
	})
}

func (r *repairSettingsRepository) GetStatus(ctx context.Context, name string) (*models.RepairStatus, error) {
	var status models.RepairStatus
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error; err != nil {
		return nil, translate(err)
	}
	return &status, nil
}

func (r *repairSettingsRepository) ListStatuses(ctx context.Context) ([]models.RepairStatus, error) {
	var statuses []models.RepairStatus
	err := r.db.WithContext(ctx).Order("sequence, name").Find(&statuses).Error
	return statuses, err
}

func (r *repairSettingsRepository) DefaultStatus(ctx context.Context) (*models.RepairStatus, error) {
	var status models.RepairStatus
	if err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&status).Error; err != nil {
		return nil, translate(err)
	}
	return &status, nil
}

// SavePriority follows the same single-default rule as SaveStatus.
func (r *repairSettingsRepository) SavePriority(ctx context.Context, priority *models.RepairPriority) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if priority.IsDefault {
			if err := tx.Model(&models.RepairPriority{}).
				Where("name <> ? AND is_default = ?", priority.Name, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(priority).Error
	})
}

func (r *repairSettingsRepository) GetPriority(ctx context.Context, name string) (*models.RepairPriority, error) {
	var priority models.RepairPriority
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&priority).Error; err != nil {
		return nil, translate(err)
	}
	return &priority, nil
}

func (r *repairSettingsRepository) ListPriorities(ctx context.Context) ([]models.RepairPriority, error) {
	var priorities []models.RepairPriority
	err := r.db.WithContext(ctx).Order("name").Find(&priorities).Error
	return priorities, err
}

func (r *repairSettingsRepository) DefaultPriority(ctx context.Context) (*models.RepairPriority, error) {
	var priority models.RepairPriority
	if err := r.db.WithContext(ctx).Where("is_default = ?", true).First(&priority).Error; err != nil {
		return nil, translate(err)
	}
	return &priority, nil
}
