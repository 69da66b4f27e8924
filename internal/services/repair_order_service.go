package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"repairbox/internal/events"
	"repairbox/internal/models"
	"repairbox/internal/redis"
	"repairbox/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	trackingAttempts   = 10
	trackingReserveTTL = time.Minute
)

// TrackingCache stores public tracking snapshots and reserves fresh
// tracking ids. *redis.Client implements it.
type TrackingCache interface {
	GetTracking(ctx context.Context, trackingID string, dest interface{}) error
	SetTracking(ctx context.Context, trackingID string, value interface{}, ttl time.Duration) error
	DeleteTracking(ctx context.Context, trackingID string) error
	ReserveTrackingID(ctx context.Context, trackingID string, ttl time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, ev events.StatusChanged) error
}

type RepairOrderOptions struct {
	TaxRate        decimal.Decimal
	TrackingPrefix string
	ElevatedRoles  []string
	CacheTTL       time.Duration
}

// TrackingSnapshot is what an anonymous customer sees for a tracking id.
type TrackingSnapshot struct {
	TrackingID         string     `json:"tracking_id"`
	Order              string     `json:"order"`
	Device             string     `json:"device"`
	Brand              string     `json:"brand"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"payment_status"`
	GrandTotal         string     `json:"grand_total"`
	BookingDate        time.Time  `json:"booking_date"`
	ExpectedCompletion *time.Time `json:"expected_completion,omitempty"`
	ActualCompletion   *time.Time `json:"actual_completion,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type RepairOrderService interface {
	Create(ctx context.Context, actor Actor, order *models.RepairOrder) error
	Update(ctx context.Context, actor Actor, id uint, changes *models.RepairOrder) (*models.RepairOrder, error)
	RecordPayment(ctx context.Context, actor Actor, id uint, amount decimal.Decimal) (*models.RepairOrder, error)
	Get(ctx context.Context, id uint) (*models.RepairOrder, error)
	List(ctx context.Context, filter repository.RepairOrderFilter) ([]models.RepairOrder, int64, error)
	ListAssigned(ctx context.Context, userID uint) ([]models.RepairOrder, error)
	ListOverdue(ctx context.Context) ([]models.RepairOrder, error)
	Track(ctx context.Context, trackingID string) (*TrackingSnapshot, error)
	// AfterStatusPushed runs the after-save effects for a status written
	// outside the normal save path.
	AfterStatusPushed(ctx context.Context, actor Actor, order *models.RepairOrder, previous string, notify bool)
}

type repairOrderService struct {
	orders    repository.RepairOrderRepository
	settings  repository.RepairSettingsRepository
	catalog   repository.CatalogRepository
	customers repository.CustomerRepository
	checklist ChecklistService
	notifier  NotificationService
	publisher EventPublisher
	cache     TrackingCache
	opts      RepairOrderOptions
	log       *zap.Logger
	now       func() time.Time
}

func NewRepairOrderService(
	orders repository.RepairOrderRepository,
	settings repository.RepairSettingsRepository,
	catalog repository.CatalogRepository,
	customers repository.CustomerRepository,
	checklist ChecklistService,
	notifier NotificationService,
	publisher EventPublisher,
	cache TrackingCache,
	opts RepairOrderOptions,
	log *zap.Logger,
) RepairOrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if opts.TrackingPrefix == "" {
		opts.TrackingPrefix = "RB-"
	}
	return &repairOrderService{
		orders:    orders,
		settings:  settings,
		catalog:   catalog,
		customers: customers,
		checklist: checklist,
		notifier:  notifier,
		publisher: publisher,
		cache:     cache,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}
}

func (s *repairOrderService) Create(ctx context.Context, actor Actor, order *models.RepairOrder) error {
	order.ID = 0
	trackingID, err := s.newTrackingID(ctx)
	if err != nil {
		return err
	}
	order.TrackingID = trackingID
	if order.BookingDate.IsZero() {
		order.BookingDate = s.now()
	}
	order.CreatedBy = actor.UserID

	if err := s.validate(ctx, actor, order, nil); err != nil {
		return err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create repair order: %w", err)
	}

	s.log.Info("Repair order created",
		zap.Uint("repair_order_id", order.ID),
		zap.String("tracking_id", order.TrackingID),
		zap.String("status", order.Status))

	s.afterSave(ctx, actor, order, "")
	return nil
}

// Update replaces the editable fields of a stored order with changes. The
// tracking id, booking date (unless given) and creator are kept.
func (s *repairOrderService) Update(ctx context.Context, actor Actor, id uint, changes *models.RepairOrder) (*models.RepairOrder, error) {
	stored, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	order := *changes
	order.ID = stored.ID
	order.TrackingID = stored.TrackingID
	order.CreatedBy = stored.CreatedBy
	order.CreatedAt = stored.CreatedAt
	if order.BookingDate.IsZero() {
		order.BookingDate = stored.BookingDate
	}

	if err := s.save(ctx, actor, &order, stored); err != nil {
		return nil, err
	}
	return &order, nil
}

// RecordPayment adds amount to the paid total and saves the order again so
// the payment status is re-derived.
func (s *repairOrderService) RecordPayment(ctx context.Context, actor Actor, id uint, amount decimal.Decimal) (*models.RepairOrder, error) {
	if !amount.IsPositive() {
		return nil, newValidationError("Invalid Amount", "Payment amount must be greater than zero")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := *order
	order.PaidAmount = order.PaidAmount.Add(amount)

	if err := s.save(ctx, actor, order, &stored); err != nil {
		return nil, err
	}
	s.log.Info("Payment recorded",
		zap.Uint("repair_order_id", order.ID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("payment_status", order.PaymentStatus))
	return order, nil
}

func (s *repairOrderService) save(ctx context.Context, actor Actor, order *models.RepairOrder, stored *models.RepairOrder) error {
	previous := stored.Status
	if err := s.validate(ctx, actor, order, stored); err != nil {
		return err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("failed to update repair order: %w", err)
	}
	s.afterSave(ctx, actor, order, previous)
	return nil
}

// validate fills defaults and derived fields and enforces the status rules.
// stored is the saved version of the order, nil for a new one.
func (s *repairOrderService) validate(ctx context.Context, actor Actor, order *models.RepairOrder, stored *models.RepairOrder) error {
	previous := ""
	if stored != nil {
		previous = stored.Status
	}
	if order.PaidAmount.IsNegative() {
		return newValidationError("Invalid Amount", "Paid amount cannot be negative")
	}

	if order.Status == "" {
		if st, err := s.settings.DefaultStatus(ctx); err == nil {
			order.Status = st.Name
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	if order.Priority == "" {
		if p, err := s.settings.DefaultPriority(ctx); err == nil {
			order.Priority = p.Name
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	if err := s.fillCustomer(ctx, order); err != nil {
		return err
	}
	if order.BrandName == "" && order.DeviceName != "" {
		if d, err := s.catalog.GetDevice(ctx, order.DeviceName); err == nil {
			order.BrandName = d.BrandName
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	order.PriorityCharge = decimal.Zero
	if order.Priority != "" {
		if p, err := s.settings.GetPriority(ctx, order.Priority); err == nil {
			order.PriorityCharge = p.ExtraCharge
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}

	estimates, err := s.fillLines(ctx, order, stored)
	if err != nil {
		return err
	}

	totals := CalculateTotals(order.Defects, order.PriorityCharge, s.opts.TaxRate)
	order.TotalServiceAmount = totals.Service
	order.TaxRate = s.opts.TaxRate
	order.TaxAmount = totals.Tax
	order.GrandTotal = totals.Grand
	order.PaymentStatus = string(DerivePaymentStatus(order.PaidAmount, order.GrandTotal))

	if len(order.Inspection) == 0 && order.DeviceName != "" {
		if err := s.populateInspection(ctx, order); err != nil {
			return err
		}
	}

	if err := ValidateStatusChange(previous, order, actor.IsElevated(s.opts.ElevatedRoles)); err != nil {
		return err
	}

	if order.ExpectedCompletion == nil && len(order.Defects) > 0 {
		order.ExpectedCompletion = ExpectedCompletion(order.BookingDate, estimates)
	}
	if order.Status == models.StatusDelivered && order.ActualCompletion == nil {
		now := s.now()
		order.ActualCompletion = &now
	}
	return nil
}

func (s *repairOrderService) fillCustomer(ctx context.Context, order *models.RepairOrder) error {
	if order.CustomerID == nil {
		return nil
	}
	if order.CustomerName != "" && order.ContactNumber != "" && order.Email != "" {
		return nil
	}
	c, err := s.customers.GetByID(ctx, *order.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newValidationError("Invalid Reference", fmt.Sprintf("Customer %d not found", *order.CustomerID))
		}
		return err
	}
	if order.CustomerName == "" {
		order.CustomerName = c.CustomerName
	}
	if order.ContactNumber == "" {
		order.ContactNumber = c.MobileNo
	}
	if order.Email == "" {
		order.Email = c.EmailID
	}
	return nil
}

// fillLines completes each service line from its catalog defect and returns
// the defects' time estimates. Unknown defects are skipped. A line without a
// price keeps the stored price of its defect, and takes the catalog price only
// when the defect is new to the order.
func (s *repairOrderService) fillLines(ctx context.Context, order *models.RepairOrder, stored *models.RepairOrder) ([]int, error) {
	storedPrices := map[string]decimal.Decimal{}
	if stored != nil {
		for _, line := range stored.Defects {
			if _, ok := storedPrices[line.DefectName]; !ok && line.DefectName != "" {
				storedPrices[line.DefectName] = line.SellingPrice
			}
		}
	}

	var estimates []int
	for i := range order.Defects {
		line := &order.Defects[i]
		if line.SellingPrice.IsNegative() {
			return nil, newValidationError("Invalid Amount", "Selling price cannot be negative")
		}
		if line.DefectName == "" {
			continue
		}
		d, err := s.catalog.GetDefect(ctx, line.DefectName)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if line.SellingPrice.IsZero() && !line.PriceGiven {
			if price, ok := storedPrices[line.DefectName]; ok {
				line.SellingPrice = price
			} else {
				line.SellingPrice = d.SellingPrice
			}
		}
		if line.Description == "" {
			line.Description = d.Description
		}
		estimates = append(estimates, d.EstimatedTime)
	}
	return estimates, nil
}

func (s *repairOrderService) populateInspection(ctx context.Context, order *models.RepairOrder) error {
	tpl, err := s.checklist.FindForDevice(ctx, order.DeviceName)
	if err != nil {
		return err
	}
	if tpl == nil {
		return nil
	}
	for _, item := range tpl.Items {
		order.Inspection = append(order.Inspection, models.DeviceInspectionItem{
			ItemName:    item.ItemName,
			Category:    item.Category,
			IsMandatory: item.IsMandatory,
			Status:      models.InspectionNotTested,
		})
	}
	return nil
}

func (s *repairOrderService) afterSave(ctx context.Context, actor Actor, order *models.RepairOrder, previous string) {
	if order.Status == previous {
		s.invalidate(ctx, order.TrackingID)
		return
	}
	s.AfterStatusPushed(ctx, actor, order, previous, true)
}

func (s *repairOrderService) AfterStatusPushed(ctx context.Context, actor Actor, order *models.RepairOrder, previous string, notify bool) {
	s.invalidate(ctx, order.TrackingID)
	if notify && s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, order)
	}
	err := s.publisher.PublishStatusChanged(ctx, events.StatusChanged{
		RepairOrderID:  order.ID,
		TrackingID:     order.TrackingID,
		PreviousStatus: previous,
		Status:         order.Status,
		ChangedBy:      actor.Label(),
	})
	if err != nil {
		s.log.Error("Failed to publish status change",
			zap.Uint("repair_order_id", order.ID),
			zap.Error(err))
	}
}

func (s *repairOrderService) invalidate(ctx context.Context, trackingID string) {
	if s.cache == nil || trackingID == "" {
		return
	}
	if err := s.cache.DeleteTracking(ctx, trackingID); err != nil {
		s.log.Warn("Failed to invalidate tracking snapshot", zap.String("tracking_id", trackingID), zap.Error(err))
	}
}

func (s *repairOrderService) newTrackingID(ctx context.Context) (string, error) {
	for i := 0; i < trackingAttempts; i++ {
		id, err := GenerateTrackingID(s.opts.TrackingPrefix)
		if err != nil {
			return "", err
		}
		if s.cache != nil {
			ok, err := s.cache.ReserveTrackingID(ctx, id, trackingReserveTTL)
			if err != nil {
				s.log.Warn("Tracking id reservation unavailable", zap.Error(err))
			} else if !ok {
				continue
			}
		}
		exists, err := s.orders.TrackingIDExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a unique tracking id")
}

func (s *repairOrderService) Get(ctx context.Context, id uint) (*models.RepairOrder, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *repairOrderService) List(ctx context.Context, filter repository.RepairOrderFilter) ([]models.RepairOrder, int64, error) {
	return s.orders.List(ctx, filter)
}

func (s *repairOrderService) ListAssigned(ctx context.Context, userID uint) ([]models.RepairOrder, error) {
	return s.orders.ListAssigned(ctx, userID)
}

func (s *repairOrderService) ListOverdue(ctx context.Context) ([]models.RepairOrder, error) {
	return s.orders.ListOverdue(ctx, s.now())
}

// Track returns the public snapshot, served from the cache when possible.
func (s *repairOrderService) Track(ctx context.Context, trackingID string) (*TrackingSnapshot, error) {
	trackingID = strings.ToUpper(strings.TrimSpace(trackingID))

	if s.cache != nil {
		var snap TrackingSnapshot
		err := s.cache.GetTracking(ctx, trackingID, &snap)
		if err == nil {
			return &snap, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.Warn("Tracking cache read failed", zap.String("tracking_id", trackingID), zap.Error(err))
		}
	}

	order, err := s.orders.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	snap := &TrackingSnapshot{
		TrackingID:         order.TrackingID,
		Order:              order.DisplayName(),
		Device:             order.DeviceName,
		Brand:              order.BrandName,
		Status:             order.Status,
		PaymentStatus:      order.PaymentStatus,
		GrandTotal:         order.GrandTotal.StringFixed(2),
		BookingDate:        order.BookingDate,
		ExpectedCompletion: order.ExpectedCompletion,
		ActualCompletion:   order.ActualCompletion,
		UpdatedAt:          order.UpdatedAt,
	}

	if s.cache != nil && s.opts.CacheTTL > 0 {
		if err := s.cache.SetTracking(ctx, trackingID, snap, s.opts.CacheTTL); err != nil {
			s.log.Warn("Tracking cache write failed", zap.String("tracking_id", trackingID), zap.Error(err))
		}
	}
	return snap, nil
}
