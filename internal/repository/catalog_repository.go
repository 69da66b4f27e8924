package repository

import (
	"context"
	"repairbox/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository stores the device reference data: brands, devices,
// defects and quick replies.
type CatalogRepository interface {
	SaveBrand(ctx context.Context, brand *models.Brand) error
	GetBrand(ctx context.Context, name string) (*models.Brand, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)

	SaveDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, name string) (*models.Device, error)
	ListDevices(ctx context.Context, brand string) ([]models.Device, error)

	SaveDefect(ctx context.Context, defect *models.Defect) error
	GetDefect(ctx context.Context, name string) (*models.Defect, error)
	ListDefects(ctx context.Context, device string) ([]models.Defect, error)

	SaveQuickReply(ctx context.Context, reply *models.QuickReply) error
	ListQuickReplies(ctx context.Context) ([]models.QuickReply, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) SaveBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Save(brand).Error
}

func (r *catalogRepository) GetBrand(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&brand).Error; err != nil {
		return nil, translate(err)
	}
	return &brand, nil
}

func (r *catalogRepository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).Order("name").Find(&brands).Error
	return brands, err
}

func (r *catalogRepository) SaveDevice(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Save(device).Error
}

func (r *catalogRepository) GetDevice(ctx context.Context, name string) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&device).Error; err != nil {
		return nil, translate(err)
	}
	return &device, nil
}

func (r *catalogRepository) ListDevices(ctx context.Context, brand string) ([]models.Device, error) {
	var devices []models.Device
	q := r.db.WithContext(ctx).Order("name")
	if brand != "" {
		q = q.Where("brand_name = ?", brand)
	}
	err := q.Find(&devices).Error
	return devices, err
}

func (r *catalogRepository) SaveDefect(ctx context.Context, defect *models.Defect) error {
	return r.db.WithContext(ctx).Save(defect).Error
}

func (r *catalogRepository) GetDefect(ctx context.Context, name string) (*models.Defect, error) {
	var defect models.Defect
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&defect).Error; err != nil {
		return nil, translate(err)
	}
	return &defect, nil
}

func (r *catalogRepository) ListDefects(ctx context.Context, device string) ([]models.Defect, error) {
	var defects []models.Defect
	q := r.db.WithContext(ctx).Order("name")
	if device != "" {
		q = q.Where("device_name = ?", device)
	}
	err := q.Find(&defects).Error
	return defects, err
}

func (r *catalogRepository) SaveQuickReply(ctx context.Context, reply *models.QuickReply) error {
	return r.db.WithContext(ctx).Save(reply).Error
}

func (r *catalogRepository) ListQuickReplies(ctx context.Context) ([]models.QuickReply, error) {
	var replies []models.QuickReply
	err := r.db.WithContext(ctx).Order("category, name").Find(&replies).Error
	return replies, err
}
