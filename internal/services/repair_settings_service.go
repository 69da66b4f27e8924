package services

import (
	"context"
	"strings"

	"repairbox/internal/models"
	"repairbox/internal/repository"
)

type RepairSettingsService interface {
	SaveStatus(ctx context.Context, status *models.RepairStatus) error
	ListStatuses(ctx context.Context) ([]models.RepairStatus, error)
	SavePriority(ctx context.Context, priority *models.RepairPriority) error
	ListPriorities(ctx context.Context) ([]models.RepairPriority, error)
}

type repairSettingsService struct {
	repo repository.RepairSettingsRepository
}

func NewRepairSettingsService(repo repository.RepairSettingsRepository) RepairSettingsService {
	return &repairSettingsService{repo: repo}
}

// SaveStatus stores the status. A default status becomes the only default.
func (s *repairSettingsService) SaveStatus(ctx context.Context, status *models.RepairStatus) error {
	status.Name = strings.TrimSpace(status.Name)
	if status.Name == "" {
		return newValidationError("Missing Information", "Status name is required")
	}
	return s.repo.SaveStatus(ctx, status)
}

func (s *repairSettingsService) ListStatuses(ctx context.Context) ([]models.RepairStatus, error) {
	return s.repo.ListStatuses(ctx)
}

func (s *repairSettingsService) SavePriority(ctx context.Context, priority *models.RepairPriority) error {
	priority.Name = strings.TrimSpace(priority.Name)
	if priority.Name == "" {
		return newValidationError("Missing Information", "Priority name is required")
	}
	if priority.ExtraCharge.IsNegative() {
		return newValidationError("Invalid Amount", "Extra charge cannot be negative")
	}
	return s.repo.SavePriority(ctx, priority)
}

func (s *repairSettingsService) ListPriorities(ctx context.Context) ([]models.RepairPriority, error) {
	return s.repo.ListPriorities(ctx)
}
