package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"repairbox/internal/models"
	"repairbox/internal/repository"
)

type CatalogService interface {
	SaveBrand(ctx context.Context, brand *models.Brand) error
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

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) SaveBrand(ctx context.Context, brand *models.Brand) error {
	brand.Name = strings.TrimSpace(brand.Name)
	if brand.Name == "" {
		return newValidationError("Missing Information", "Brand name is required")
	}
	return s.repo.SaveBrand(ctx, brand)
}

func (s *catalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *catalogService) SaveDevice(ctx context.Context, device *models.Device) error {
	device.Name = strings.TrimSpace(device.Name)
	device.BrandName = strings.TrimSpace(device.BrandName)
	if device.Name == "" {
		return newValidationError("Missing Information", "Device name is required")
	}
	if device.BrandName == "" {
		return newValidationError("Missing Information", "Brand is required")
	}
	if _, err := s.repo.GetBrand(ctx, device.BrandName); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newValidationError("Invalid Reference", fmt.Sprintf("Brand %s not found", device.BrandName))
		}
		return err
	}
	return s.repo.SaveDevice(ctx, device)
}

func (s *catalogService) GetDevice(ctx context.Context, name string) (*models.Device, error) {
	return s.repo.GetDevice(ctx, name)
}

func (s *catalogService) ListDevices(ctx context.Context, brand string) ([]models.Device, error) {
	return s.repo.ListDevices(ctx, brand)
}

// SaveDefect names the defect after its device and title and fills the brand
// from the device when it is not given.
func (s *catalogService) SaveDefect(ctx context.Context, defect *models.Defect) error {
	defect.DefectTitle = strings.TrimSpace(defect.DefectTitle)
	defect.DeviceName = strings.TrimSpace(defect.DeviceName)
	if defect.DefectTitle == "" {
		return newValidationError("Missing Information", "Defect title is required")
	}
	if defect.DeviceName == "" {
		return newValidationError("Missing Information", "Device is required")
	}
	if defect.SellingPrice.IsNegative() {
		return newValidationError("Invalid Amount", "Selling price cannot be negative")
	}

	device, err := s.repo.GetDevice(ctx, defect.DeviceName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newValidationError("Invalid Reference", fmt.Sprintf("Device %s not found", defect.DeviceName))
		}
		return err
	}
	if defect.BrandName == "" {
		defect.BrandName = device.BrandName
	}
	defect.Name = models.DefectName(defect.DeviceName, defect.DefectTitle)
	return s.repo.SaveDefect(ctx, defect)
}

func (s *catalogService) GetDefect(ctx context.Context, name string) (*models.Defect, error) {
	return s.repo.GetDefect(ctx, name)
}

func (s *catalogService) ListDefects(ctx context.Context, device string) ([]models.Defect, error) {
	return s.repo.ListDefects(ctx, device)
}

func (s *catalogService) SaveQuickReply(ctx context.Context, reply *models.QuickReply) error {
	reply.Name = strings.TrimSpace(reply.Name)
	if reply.Name == "" {
		return newValidationError("Missing Information", "Title is required")
	}
	if strings.TrimSpace(reply.Message) == "" {
		return newValidationError("Missing Information", "Message is required")
	}
	return s.repo.SaveQuickReply(ctx, reply)
}

func (s *catalogService) ListQuickReplies(ctx context.Context) ([]models.QuickReply, error) {
	return s.repo.ListQuickReplies(ctx)
}
