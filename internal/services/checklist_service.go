package services

import (
	"context"
	"errors"
	"strings"

	"repairbox/internal/models"
	"repairbox/internal/repository"
)

type ChecklistService interface {
	SaveTemplate(ctx context.Context, template *models.InspectionChecklistTemplate) error
	ListTemplates(ctx context.Context) ([]models.InspectionChecklistTemplate, error)
	FindForDevice(ctx context.Context, device string) (*models.InspectionChecklistTemplate, error)
}

type checklistService struct {
	repo    repository.ChecklistRepository
	catalog repository.CatalogRepository
}

func NewChecklistService(repo repository.ChecklistRepository, catalog repository.CatalogRepository) ChecklistService {
	return &checklistService{repo: repo, catalog: catalog}
}

func (s *checklistService) SaveTemplate(ctx context.Context, template *models.InspectionChecklistTemplate) error {
	template.Name = strings.TrimSpace(template.Name)
	if template.Name == "" {
		return newValidationError("Missing Information", "Template name is required")
	}
	if template.DeviceName != nil {
		name := strings.TrimSpace(*template.DeviceName)
		if name == "" {
			template.DeviceName = nil
		} else {
			template.DeviceName = &name
		}
	}
	for i := range template.Items {
		template.Items[i].ItemName = strings.TrimSpace(template.Items[i].ItemName)
		if template.Items[i].ItemName == "" {
			return newValidationError("Missing Information", "Checklist item name is required")
		}
	}
	return s.repo.Save(ctx, template)
}

func (s *checklistService) ListTemplates(ctx context.Context) ([]models.InspectionChecklistTemplate, error) {
	return s.repo.List(ctx)
}

// FindForDevice picks the checklist for a device: a template bound to the
// device, then one bound to its device type, then any active template.
// Defaults win within each tier. It returns nil when nothing matches.
func (s *checklistService) FindForDevice(ctx context.Context, device string) (*models.InspectionChecklistTemplate, error) {
	if device == "" {
		return nil, nil
	}

	found, err := s.repo.FindActiveForDevice(ctx, device)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return &found[0], nil
	}

	d, err := s.catalog.GetDevice(ctx, device)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if d != nil && d.DeviceType != "" {
		found, err = s.repo.FindActiveForDeviceType(ctx, d.DeviceType)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return &found[0], nil
		}
	}

	found, err = s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		return &found[0], nil
	}
	return nil, nil
}
