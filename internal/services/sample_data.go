package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"repairbox/internal/models"
	"repairbox/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	sampleBrand    = "Apple"
	sampleDevice   = "iPhone 12"
	sampleCustomer = "Ahmed Ben Ali"
	samplePhone    = "+216 98 765 432"
	sampleEmail    = "ahmed.benali@example.tn"

	sampleCustomerReport = "Phone dropped from 2m onto concrete. Screen shattered, back glass cracked, " +
		"brief water exposure, battery draining fast, camera lens scratched. Express service needed for business use."
	sampleDiagnosis = "DIAGNOSTIC: screen shattered, back glass cracked, battery 78% health (swollen), " +
		"water corrosion on port, camera lens scratched. PLAN: water treatment, battery, screen, back glass " +
		"and camera lens replacement, full testing."
)

var sampleDefects = []struct {
	title       string
	price       int64
	description string
}{
	{"Screen Replacement", 280, "OLED screen replacement with original quality display"},
	{"Battery Replacement", 120, "High capacity battery replacement (2815 mAh)"},
	{"Back Glass Replacement", 150, "Back glass panel replacement with adhesive"},
	{"Camera Lens Repair", 80, "Rear camera lens glass replacement"},
	{"Charging Port Cleaning", 25, "Deep cleaning of lightning port"},
	{"Water Damage Treatment", 95, "Complete water damage diagnostic and treatment"},
}

// lines billed on the sample order
var sampleOrderDefects = []string{
	"Screen Replacement",
	"Battery Replacement",
	"Back Glass Replacement",
	"Camera Lens Repair",
	"Water Damage Treatment",
}

// SampleDataService provisions a demo repair: an iPhone 12 with several
// broken parts, its catalog entries and customer, partially paid.
type SampleDataService interface {
	CreateSampleRepair(ctx context.Context, actor Actor) (*models.RepairOrder, error)
}

type sampleDataService struct {
	catalog   CatalogService
	customers CustomerService
	orders    RepairOrderService
	log       *zap.Logger
}

func NewSampleDataService(catalog CatalogService, customers CustomerService, orders RepairOrderService, log *zap.Logger) SampleDataService {
	return &sampleDataService{catalog: catalog, customers: customers, orders: orders, log: log}
}

// CreateSampleRepair creates the missing catalog entries and customer, then
// the sample order. An existing order of the sample customer is returned
// as is.
func (s *sampleDataService) CreateSampleRepair(ctx context.Context, actor Actor) (*models.RepairOrder, error) {
	if err := s.ensureCatalog(ctx); err != nil {
		return nil, err
	}
	customer, err := s.ensureCustomer(ctx)
	if err != nil {
		return nil, err
	}

	existing, total, err := s.orders.List(ctx, repository.RepairOrderFilter{CustomerID: &customer.ID, Page: 1, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if total > 0 {
		s.log.Info("Sample repair order already exists", zap.String("tracking_id", existing[0].TrackingID))
		return &existing[0], nil
	}

	now := time.Now().UTC()
	due := now.Add(48 * time.Hour)
	order := &models.RepairOrder{
		CustomerID:         &customer.ID,
		CustomerName:       customer.CustomerName,
		ContactNumber:      customer.MobileNo,
		Email:              customer.EmailID,
		BrandName:          sampleBrand,
		DeviceName:         sampleDevice,
		DeviceModel:        "iPhone 12 (A2403)",
		SerialNumber:       "F17XH8QYPN72",
		DevicePassword:     "1234",
		Status:             models.StatusInProgress,
		Priority:           "Express",
		BookingDate:        now,
		ExpectedCompletion: &due,
		PaidAmount:         decimal.NewFromInt(400),
		AdditionalNotes:    sampleCustomerReport,
		TechnicianNotes:    sampleDiagnosis,
	}
	if actor.UserID != 0 {
		order.AssignedTo = &actor.UserID
	}
	for _, title := range sampleOrderDefects {
		order.Defects = append(order.Defects, models.RepairOrderDefect{DefectName: models.DefectName(sampleDevice, title)})
	}

	if err := s.orders.Create(ctx, actor, order); err != nil {
		return nil, fmt.Errorf("failed to create sample repair order: %w", err)
	}
	s.log.Info("Sample repair order created",
		zap.String("tracking_id", order.TrackingID),
		zap.String("customer", order.CustomerName),
		zap.String("grand_total", order.GrandTotal.StringFixed(2)))
	return order, nil
}

func (s *sampleDataService) ensureCatalog(ctx context.Context) error {
	brands, err := s.catalog.ListBrands(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, b := range brands {
		if b.Name == sampleBrand {
			found = true
			break
		}
	}
	if !found {
		if err := s.catalog.SaveBrand(ctx, &models.Brand{Name: sampleBrand}); err != nil {
			return err
		}
	}

	if _, err := s.catalog.GetDevice(ctx, sampleDevice); errors.Is(err, repository.ErrNotFound) {
		if err := s.catalog.SaveDevice(ctx, &models.Device{Name: sampleDevice, BrandName: sampleBrand, DeviceType: "Smartphone"}); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, d := range sampleDefects {
		_, err := s.catalog.GetDefect(ctx, models.DefectName(sampleDevice, d.title))
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		price := decimal.NewFromInt(d.price)
		defect := &models.Defect{
			DeviceName:    sampleDevice,
			DefectTitle:   d.title,
			Description:   d.description,
			SellingPrice:  price,
			CostAmount:    price.Mul(decimal.RequireFromString("0.6")),
			EstimatedTime: 60,
			IsActive:      true,
		}
		if err := s.catalog.SaveDefect(ctx, defect); err != nil {
			return err
		}
	}
	return nil
}

func (s *sampleDataService) ensureCustomer(ctx context.Context) (*models.Customer, error) {
	matches, err := s.customers.Search(ctx, sampleCustomer)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if matches[i].CustomerName == sampleCustomer {
			return &matches[i], nil
		}
	}
	return s.customers.QuickCreate(ctx, sampleCustomer, samplePhone, sampleEmail)
}
