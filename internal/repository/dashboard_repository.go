package repository

import (
	"context"
	"repairbox/internal/models"

	"gorm.io/gorm"
)

type DashboardRepository interface {
	ChartExists(ctx context.Context, name string) (bool, error)
	CreateChart(ctx context.Context, chart *models.DashboardChart) error
	GetChart(ctx context.Context, name string) (*models.DashboardChart, error)
	GetWorkspace(ctx context.Context, name string) (*models.Workspace, error)
	SaveWorkspace(ctx context.Context, ws *models.Workspace) error
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) ChartExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DashboardChart{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *dashboardRepository) CreateChart(ctx context.Context, chart *models.DashboardChart) error {
	return r.db.WithContext(ctx).Create(chart).Error
}

func (r *dashboardRepository) GetChart(ctx context.Context, name string) (*models.DashboardChart, error) {
	var chart models.DashboardChart
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&chart).Error; err != nil {
		return nil, translate(err)
	}
	return &chart, nil
}

func (r *dashboardRepository) GetWorkspace(ctx context.Context, name string) (*models.Workspace, error) {
	var ws models.Workspace
	err := r.db.WithContext(ctx).
		Preload("Charts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Shortcuts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("name = ?", name).
		First(&ws).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ws, nil
}

// SaveWorkspace upserts the workspace and rewrites its chart and shortcut
// links.
func (r *dashboardRepository) SaveWorkspace(ctx context.Context, ws *models.Workspace) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Charts", "Shortcuts").Save(ws).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_name = ?", ws.Name).Delete(&models.WorkspaceChart{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_name = ?", ws.Name).Delete(&models.WorkspaceShortcut{}).Error; err != nil {
			return err
		}
		for i := range ws.Charts {
			ws.Charts[i].ID = 0
			ws.Charts[i].WorkspaceName = ws.Name
		}
		for i := range ws.Shortcuts {
			ws.Shortcuts[i].ID = 0
			ws.Shortcuts[i].WorkspaceName = ws.Name
		}
		if len(ws.Charts) > 0 {
			if err := tx.Create(&ws.Charts).Error; err != nil {
				return err
			}
		}
		if len(ws.Shortcuts) > 0 {
			if err := tx.Create(&ws.Shortcuts).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
