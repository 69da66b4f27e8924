package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"repairbox/internal/models"
	"repairbox/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	ChartRepairsByStatus = "Repairs by Status"
	ChartMonthlyRevenue  = "Monthly Revenue"
	WorkspaceName        = "Repair Box"
)

type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

type ChartData struct {
	Chart    string        `json:"chart_name"`
	Type     string        `json:"type"`
	Labels   []string      `json:"labels"`
	Datasets []ChartSeries `json:"datasets"`
}

type WorkspaceView struct {
	Workspace *models.Workspace       `json:"workspace"`
	Blocks    []models.WorkspaceBlock `json:"blocks"`
}

type DashboardService interface {
	ChartData(ctx context.Context, name string) (*ChartData, error)
	Workspace(ctx context.Context) (*WorkspaceView, error)
}

type dashboardService struct {
	dashboards repository.DashboardRepository
	orders     repository.RepairOrderRepository
	now        func() time.Time
}

func NewDashboardService(dashboards repository.DashboardRepository, orders repository.RepairOrderRepository) DashboardService {
	return &dashboardService{dashboards: dashboards, orders: orders, now: time.Now}
}

// ChartData evaluates a stored chart definition. Group By charts count
// orders per status; Sum charts total the grand total per booking month
// over the last year.
func (s *dashboardService) ChartData(ctx context.Context, name string) (*ChartData, error) {
	chart, err := s.dashboards.GetChart(ctx, name)
	if err != nil {
		return nil, err
	}

	switch {
	case chart.ChartType == "Group By" && chart.GroupByBasedOn == "status":
		return s.countByStatus(ctx, chart)
	case chart.ChartType == "Sum" && chart.BasedOn == "booking_date" && chart.ValueBasedOn == "grand_total":
		return s.monthlyRevenue(ctx, chart)
	default:
		return nil, newValidationError("Unsupported Chart",
			fmt.Sprintf("Chart %s of type %s cannot be evaluated", chart.Name, chart.ChartType))
	}
}

func (s *dashboardService) countByStatus(ctx context.Context, chart *models.DashboardChart) (*ChartData, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	data := &ChartData{Chart: chart.Name, Type: chart.Type, Labels: []string{}}
	series := ChartSeries{Name: "Count", Values: []float64{}}
	for _, c := range counts {
		data.Labels = append(data.Labels, c.Status)
		series.Values = append(series.Values, float64(c.Count))
	}
	data.Datasets = []ChartSeries{series}
	return data, nil
}

func (s *dashboardService) monthlyRevenue(ctx context.Context, chart *models.DashboardChart) (*ChartData, error) {
	now := s.now()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	start := end.AddDate(-1, 0, 0)

	orders, err := s.orders.ListBookedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, 12)
	for _, o := range orders {
		key := o.BookingDate.In(now.Location()).Format("2006-01")
		totals[key] = totals[key].Add(o.GrandTotal)
	}

	data := &ChartData{Chart: chart.Name, Type: chart.Type}
	series := ChartSeries{Name: "Revenue"}
	for m := start; m.Before(end); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		data.Labels = append(data.Labels, key)
		series.Values = append(series.Values, totals[key].InexactFloat64())
	}
	data.Datasets = []ChartSeries{series}
	return data, nil
}

func (s *dashboardService) Workspace(ctx context.Context) (*WorkspaceView, error) {
	ws, err := s.dashboards.GetWorkspace(ctx, WorkspaceName)
	if err != nil {
		return nil, err
	}
	blocks, err := decodeBlocks(ws.Content)
	if err != nil {
		return nil, err
	}
	return &WorkspaceView{Workspace: ws, Blocks: blocks}, nil
}

func decodeBlocks(raw []byte) ([]models.WorkspaceBlock, error) {
	blocks := []models.WorkspaceBlock{}
	if len(raw) == 0 {
		return blocks, nil
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("decode workspace content: %w", err)
	}
	return blocks, nil
}
