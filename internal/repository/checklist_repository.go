package repository

import (
	"context"
	"repairbox/internal/models"

	"gorm.io/gorm"
)

type ChecklistRepository interface {
	Save(ctx context.Context, template *models.InspectionChecklistTemplate) error
	GetByName(ctx context.Context, name string) (*models.InspectionChecklistTemplate, error)
	List(ctx context.Context) ([]models.InspectionChecklistTemplate, error)
	FindActiveForDevice(ctx context.Context, device string) ([]models.InspectionChecklistTemplate, error)
	FindActiveForDeviceType(ctx context.Context, deviceType string) ([]models.InspectionChecklistTemplate, error)
	FindActive(ctx context.Context) ([]models.InspectionChecklistTemplate, error)
}

type checklistRepository struct {
	db *gorm.DB
}

func NewChecklistRepository(db *gorm.DB) ChecklistRepository {
	return &checklistRepository{db: db}
}

// Save upserts the template and replaces its items. When the template is the
// default, the flag is cleared on the others in its scope first: same device
// when a device is set, otherwise same device type among device-less
// templates.
func (r *checklistRepository) Save(ctx context.Context, template *models.InspectionChecklistTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if template.IsDefault {
			scope := tx.Model(&models.InspectionChecklistTemplate{}).Where("name <> ?", template.Name)
			switch {
			case template.DeviceName != nil && *template.DeviceName != "":
				scope = scope.Where("device_name = ?", *template.DeviceName)
			case template.DeviceType != "":
				scope = scope.Where("(device_name IS NULL OR device_name = '') AND device_type = ?", template.DeviceType)
			default:
				scope = nil
			}
			if scope != nil {
				if err := scope.Update("is_default", false).Error; err != nil {
					return err
				}
			}
		}

		items := template.Items
		if err := tx.Omit("Items").Save(template).Error; err != nil {
			return err
		}
		if err := tx.Where("template_name = ?", template.Name).Delete(&models.InspectionChecklistTemplateItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].TemplateName = template.Name
			items[i].Idx = i + 1
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		template.Items = items
		return nil
	})
}

func (r *checklistRepository) GetByName(ctx context.Context, name string) (*models.InspectionChecklistTemplate, error) {
	var template models.InspectionChecklistTemplate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx") }).
		Where("name = ?", name).
		First(&template).Error
	if err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (r *checklistRepository) List(ctx context.Context) ([]models.InspectionChecklistTemplate, error) {
	return r.find(ctx, r.db.WithContext(ctx))
}

func (r *checklistRepository) FindActiveForDevice(ctx context.Context, device string) ([]models.InspectionChecklistTemplate, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("is_active = ? AND device_name = ?", true, device))
}

func (r *checklistRepository) FindActiveForDeviceType(ctx context.Context, deviceType string) ([]models.InspectionChecklistTemplate, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("is_active = ? AND device_type = ? AND (device_name IS NULL OR device_name = '')", true, deviceType))
}

func (r *checklistRepository) FindActive(ctx context.Context) ([]models.InspectionChecklistTemplate, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("is_active = ?", true))
}

// find returns matches with the default template first.
func (r *checklistRepository) find(ctx context.Context, q *gorm.DB) ([]models.InspectionChecklistTemplate, error) {
	var templates []models.InspectionChecklistTemplate
	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx") }).
		Order("is_default DESC, name").
		Find(&templates).Error
	return templates, err
}
