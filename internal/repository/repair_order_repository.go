package repository

import (
	"context"
	"repairbox/internal/models"
	"time"

	"gorm.io/gorm"
)

type RepairOrderFilter struct {
	Status     string
	Priority   string
	AssignedTo *uint
	CustomerID *uint
	Device     string
	Search     string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RepairOrderRepository interface {
	Create(ctx context.Context, order *models.RepairOrder) error
	Update(ctx context.Context, order *models.RepairOrder) error
	GetByID(ctx context.Context, id uint) (*models.RepairOrder, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*models.RepairOrder, error)
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
	List(ctx context.Context, filter RepairOrderFilter) ([]models.RepairOrder, int64, error)
	ListAssigned(ctx context.Context, userID uint) ([]models.RepairOrder, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.RepairOrder, error)
	SetStatus(ctx context.Context, id uint, status string) error
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	ListBookedBetween(ctx context.Context, from, to time.Time) ([]models.RepairOrder, error)
}

type repairOrderRepository struct {
	db *gorm.DB
}

func NewRepairOrderRepository(db *gorm.DB) RepairOrderRepository {
	return &repairOrderRepository{db: db}
}

// Create inserts the order with its defect lines and inspection rows in one
// transaction.
func (r *repairOrderRepository) Create(ctx context.Context, order *models.RepairOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		numberLines(order)
		return tx.Create(order).Error
	})
}

// Update saves the order and replaces every child row.
func (r *repairOrderRepository) Update(ctx context.Context, order *models.RepairOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Defects", "Inspection").Save(order).Error; err != nil {
			return err
		}
		if err := tx.Where("repair_order_id = ?", order.ID).Delete(&models.RepairOrderDefect{}).Error; err != nil {
			return err
		}
		if err := tx.Where("repair_order_id = ?", order.ID).Delete(&models.DeviceInspectionItem{}).Error; err != nil {
			return err
		}

		numberLines(order)
		for i := range order.Defects {
			order.Defects[i].ID = 0
			order.Defects[i].RepairOrderID = order.ID
		}
		for i := range order.Inspection {
			order.Inspection[i].ID = 0
			order.Inspection[i].RepairOrderID = order.ID
		}
		if len(order.Defects) > 0 {
			if err := tx.Create(&order.Defects).Error; err != nil {
				return err
			}
		}
		if len(order.Inspection) > 0 {
			if err := tx.Create(&order.Inspection).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func numberLines(order *models.RepairOrder) {
	for i := range order.Defects {
		order.Defects[i].Idx = i + 1
	}
	for i := range order.Inspection {
		order.Inspection[i].Idx = i + 1
	}
}

func (r *repairOrderRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Defects", func(db *gorm.DB) *gorm.DB { return db.Order("idx") }).
		Preload("Inspection", func(db *gorm.DB) *gorm.DB { return db.Order("idx") })
}

func (r *repairOrderRepository) GetByID(ctx context.Context, id uint) (*models.RepairOrder, error) {
	var order models.RepairOrder
	if err := r.withLines(ctx).First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *repairOrderRepository) GetByTrackingID(ctx context.Context, trackingID string) (*models.RepairOrder, error) {
	var order models.RepairOrder
	if err := r.withLines(ctx).Where("tracking_id = ?", trackingID).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *repairOrderRepository) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.RepairOrder{}).
		Where("tracking_id = ?", trackingID).
		Count(&count).Error
	return count > 0, err
}

func (r *repairOrderRepository) List(ctx context.Context, filter RepairOrderFilter) ([]models.RepairOrder, int64, error) {
	var orders []models.RepairOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&models.RepairOrder{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Device != "" {
		query = query.Where("device_name = ?", filter.Device)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("tracking_id LIKE ? OR customer_name LIKE ? OR serial_number LIKE ?", like, like, like)
	}
	if filter.From != nil {
		query = query.Where("booking_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("booking_date < ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("booking_date DESC, id DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	err := query.Find(&orders).Error
	return orders, total, err
}

// ListAssigned returns the user's open orders, earliest due first.
func (r *repairOrderRepository) ListAssigned(ctx context.Context, userID uint) ([]models.RepairOrder, error) {
	var orders []models.RepairOrder
	err := r.db.WithContext(ctx).
		Where("assigned_to = ? AND status NOT IN ?", userID, models.ClosedStatuses).
		Order("expected_completion ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repairOrderRepository) ListOverdue(ctx context.Context, now time.Time) ([]models.RepairOrder, error) {
	var orders []models.RepairOrder
	err := r.db.WithContext(ctx).
		Where("expected_completion < ? AND status NOT IN ?", now, models.FinishedStatuses).
		Order("expected_completion ASC").
		Find(&orders).Error
	return orders, err
}

// SetStatus writes the status column directly, outside the order lifecycle.
func (r *repairOrderRepository) SetStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.RepairOrder{}).Where("id = ?", id).UpdateColumn("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repairOrderRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).Model(&models.RepairOrder{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&counts).Error
	return counts, err
}

func (r *repairOrderRepository) ListBookedBetween(ctx context.Context, from, to time.Time) ([]models.RepairOrder, error) {
	var orders []models.RepairOrder
	err := r.db.WithContext(ctx).
		Where("booking_date >= ? AND booking_date < ?", from, to).
		Order("booking_date").
		Find(&orders).Error
	return orders, err
}
