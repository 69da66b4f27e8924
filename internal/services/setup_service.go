package services

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"repairbox/internal/models"
	"repairbox/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

const kanbanURL = "/app/kanban-board/view/detail/Repair Order/Repair Status"

var defaultCharts = []models.DashboardChart{
	{
		Name:           ChartRepairsByStatus,
		ChartType:      "Group By",
		Type:           "Donut",
		DocumentType:   "Repair Order",
		GroupByBasedOn: "status",
		GroupByType:    "Count",
		IsPublic:       true,
		FiltersJSON:    datatypes.JSON("[]"),
	},
	{
		Name:         ChartMonthlyRevenue,
		ChartType:    "Sum",
		Type:         "Bar",
		DocumentType: "Repair Order",
		BasedOn:      "booking_date",
		ValueBasedOn: "grand_total",
		Timespan:     "Last Year",
		IsPublic:     true,
		FiltersJSON:  datatypes.JSON("[]"),
	},
}

var defaultShortcuts = []models.WorkspaceShortcut{
	{Label: "New Repair Order", Type: "Url", URL: "/app/repair-order/new"},
	{Label: "Add Device", Type: "Url", URL: "/app/device/new"},
	{Label: "New Checklist", Type: "Url", URL: "/app/inspection-checklist-template/new"},
	{Label: "Repair Kanban", Type: "Url", URL: kanbanURL},
	{Label: "My Repairs", Type: "Url", URL: "/app/repair-order?assigned_to=Current%20User"},
}

type AdminAccount struct {
	Username string
	Password string
	Email    string
}

// SetupService provisions a fresh installation. Every step is safe to run
// again.
type SetupService interface {
	Install(ctx context.Context) error
}

type setupService struct {
	settings   repository.RepairSettingsRepository
	catalog    repository.CatalogRepository
	checklists repository.ChecklistRepository
	dashboards repository.DashboardRepository
	users      UserService
	admin      AdminAccount
	log        *zap.Logger
}

func NewSetupService(
	settings repository.RepairSettingsRepository,
	catalog repository.CatalogRepository,
	checklists repository.ChecklistRepository,
	dashboards repository.DashboardRepository,
	users UserService,
	admin AdminAccount,
	log *zap.Logger,
) SetupService {
	return &setupService{
		settings:   settings,
		catalog:    catalog,
		checklists: checklists,
		dashboards: dashboards,
		users:      users,
		admin:      admin,
		log:        log,
	}
}

// Install imports fixtures, creates the admin user and dashboard charts and
// lays out the workspace. Failures of single records are logged and skipped;
// only the workspace step can fail the install.
func (s *setupService) Install(ctx context.Context) error {
	s.importStatuses(ctx)
	s.importPriorities(ctx)
	s.importQuickReplies(ctx)
	s.importChecklists(ctx)
	s.createAdmin(ctx)
	s.createCharts(ctx)
	if err := s.setupWorkspace(ctx); err != nil {
		return fmt.Errorf("configure workspace: %w", err)
	}
	s.log.Info("RepairBox setup completed")
	return nil
}

func loadFixture(name string, dest interface{}) error {
	raw, err := fixtureFS.ReadFile("fixtures/" + name)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *setupService) importStatuses(ctx context.Context) {
	var records []models.RepairStatus
	if err := loadFixture("repair_status.json", &records); err != nil {
		s.log.Error("Failed to load fixture", zap.String("fixture", "repair_status.json"), zap.Error(err))
		return
	}
	for i := range records {
		r := &records[i]
		_, err := s.settings.GetStatus(ctx, r.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("Failed to check repair status", zap.String("name", r.Name), zap.Error(err))
			continue
		}
		if err := s.settings.SaveStatus(ctx, r); err != nil {
			s.log.Error("Failed to import repair status", zap.String("name", r.Name), zap.Error(err))
		}
	}
	s.log.Info("Imported fixture", zap.String("fixture", "repair_status.json"))
}

func (s *setupService) importPriorities(ctx context.Context) {
	var records []models.RepairPriority
	if err := loadFixture("repair_priority.json", &records); err != nil {
		s.log.Error("Failed to load fixture", zap.String("fixture", "repair_priority.json"), zap.Error(err))
		return
	}
	for i := range records {
		r := &records[i]
		_, err := s.settings.GetPriority(ctx, r.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("Failed to check repair priority", zap.String("name", r.Name), zap.Error(err))
			continue
		}
		if err := s.settings.SavePriority(ctx, r); err != nil {
			s.log.Error("Failed to import repair priority", zap.String("name", r.Name), zap.Error(err))
		}
	}
	s.log.Info("Imported fixture", zap.String("fixture", "repair_priority.json"))
}

func (s *setupService) importQuickReplies(ctx context.Context) {
	var records []models.QuickReply
	if err := loadFixture("quick_reply.json", &records); err != nil {
		s.log.Error("Failed to load fixture", zap.String("fixture", "quick_reply.json"), zap.Error(err))
		return
	}
	existing, err := s.catalog.ListQuickReplies(ctx)
	if err != nil {
		s.log.Error("Failed to list quick replies", zap.Error(err))
		return
	}
	have := make(map[string]bool, len(existing))
	for _, q := range existing {
		have[q.Name] = true
	}
	for i := range records {
		if have[records[i].Name] {
			continue
		}
		if err := s.catalog.SaveQuickReply(ctx, &records[i]); err != nil {
			s.log.Error("Failed to import quick reply", zap.String("name", records[i].Name), zap.Error(err))
		}
	}
	s.log.Info("Imported fixture", zap.String("fixture", "quick_reply.json"))
}

func (s *setupService) importChecklists(ctx context.Context) {
	var records []models.InspectionChecklistTemplate
	if err := loadFixture("inspection_checklist_template.json", &records); err != nil {
		s.log.Error("Failed to load fixture", zap.String("fixture", "inspection_checklist_template.json"), zap.Error(err))
		return
	}
	for i := range records {
		r := &records[i]
		_, err := s.checklists.GetByName(ctx, r.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("Failed to check checklist template", zap.String("name", r.Name), zap.Error(err))
			continue
		}
		if err := s.checklists.Save(ctx, r); err != nil {
			s.log.Error("Failed to import checklist template", zap.String("name", r.Name), zap.Error(err))
		}
	}
	s.log.Info("Imported fixture", zap.String("fixture", "inspection_checklist_template.json"))
}

func (s *setupService) createAdmin(ctx context.Context) {
	if s.admin.Username == "" {
		return
	}
	_, err := s.users.GetUserByUsername(ctx, s.admin.Username)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.log.Error("Failed to check admin user", zap.Error(err))
		return
	}
	admin := &models.User{
		Username: s.admin.Username,
		Email:    s.admin.Email,
		FullName: "Administrator",
		Role:     string(models.SuperAdmin),
		IsActive: true,
	}
	if err := s.users.CreateUser(ctx, admin, s.admin.Password); err != nil {
		s.log.Error("Failed to create admin user", zap.Error(err))
		return
	}
	s.log.Info("Created admin user", zap.String("username", admin.Username))
}

func (s *setupService) createCharts(ctx context.Context) {
	for _, c := range defaultCharts {
		chart := c
		exists, err := s.dashboards.ChartExists(ctx, chart.Name)
		if err != nil {
			s.log.Error("Failed to check chart", zap.String("chart", chart.Name), zap.Error(err))
			continue
		}
		if exists {
			continue
		}
		if err := s.dashboards.CreateChart(ctx, &chart); err != nil {
			s.log.Error("Failed to create chart", zap.String("chart", chart.Name), zap.Error(err))
			continue
		}
		s.log.Info("Created chart", zap.String("chart", chart.Name))
	}
}

func (s *setupService) setupWorkspace(ctx context.Context) error {
	ws, err := s.dashboards.GetWorkspace(ctx, WorkspaceName)
	if errors.Is(err, repository.ErrNotFound) {
		ws = NewWorkspace()
	} else if err != nil {
		return err
	}

	modified, err := ConfigureWorkspace(ws)
	if err != nil {
		return err
	}
	if !modified {
		s.log.Info("Workspace already configured")
		return nil
	}
	if err := s.dashboards.SaveWorkspace(ctx, ws); err != nil {
		return err
	}
	s.log.Info("Workspace configured")
	return nil
}

// NewWorkspace returns the empty workspace with its title header.
func NewWorkspace() *models.Workspace {
	content, _ := json.Marshal([]models.WorkspaceBlock{
		{Type: "header", Data: map[string]any{"text": WorkspaceName, "level": 3, "col": 12}},
	})
	return &models.Workspace{Name: WorkspaceName, Content: datatypes.JSON(content)}
}

// ConfigureWorkspace links the default charts and shortcuts and adds the
// missing layout blocks. Shortcut blocks go right after the first header;
// the Dashboards header and chart blocks go at the end. It reports whether
// anything changed.
func ConfigureWorkspace(ws *models.Workspace) (bool, error) {
	blocks, err := decodeBlocks(ws.Content)
	if err != nil {
		return false, err
	}
	modified := false

	linkedCharts := map[string]bool{}
	for _, c := range ws.Charts {
		linkedCharts[c.ChartName] = true
	}
	for _, c := range defaultCharts {
		if !linkedCharts[c.Name] {
			ws.Charts = append(ws.Charts, models.WorkspaceChart{ChartName: c.Name, Label: c.Name})
			modified = true
		}
	}

	hasHeader := false
	chartBlocks := map[string]bool{}
	shortcutBlocks := map[string]bool{}
	for _, b := range blocks {
		if b.Type == "header" && b.Data["text"] == "Dashboards" {
			hasHeader = true
		}
		if b.Type == "chart" {
			if name, ok := b.Data["chart_name"].(string); ok {
				chartBlocks[name] = true
			}
		}
		if b.Type == "shortcut" {
			if name, ok := b.Data["shortcut_name"].(string); ok {
				shortcutBlocks[name] = true
			}
		}
	}
	if !hasHeader {
		blocks = append(blocks, models.WorkspaceBlock{Type: "header", Data: map[string]any{"text": "Dashboards", "level": 4, "col": 12}})
		modified = true
	}
	for _, c := range defaultCharts {
		if !chartBlocks[c.Name] {
			blocks = append(blocks, models.WorkspaceBlock{Type: "chart", Data: map[string]any{"chart_name": c.Name, "col": 6}})
			modified = true
		}
	}

	linkedShortcuts := map[string]bool{}
	for _, sc := range ws.Shortcuts {
		linkedShortcuts[sc.Label] = true
	}
	for _, sc := range defaultShortcuts {
		if !linkedShortcuts[sc.Label] {
			ws.Shortcuts = append(ws.Shortcuts, sc)
			modified = true
		}
	}

	insertAt := 1
	if insertAt > len(blocks) {
		insertAt = len(blocks)
	}
	for _, sc := range defaultShortcuts {
		if shortcutBlocks[sc.Label] {
			continue
		}
		block := models.WorkspaceBlock{Type: "shortcut", Data: map[string]any{"shortcut_name": sc.Label, "col": 3}}
		blocks = append(blocks[:insertAt], append([]models.WorkspaceBlock{block}, blocks[insertAt:]...)...)
		insertAt++
		modified = true
	}

	if modified {
		content, err := json.Marshal(blocks)
		if err != nil {
			return false, err
		}
		ws.Content = datatypes.JSON(content)
	}
	return modified, nil
}
