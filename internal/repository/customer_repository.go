package repository

import (
	"context"
	"repairbox/internal/models"

	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	Search(ctx context.Context, term string, limit int) ([]models.Customer, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepository) Search(ctx context.Context, term string, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	q := r.db.WithContext(ctx).Order("customer_name")
	if term != "" {
		like := "%" + term + "%"
		q = q.Where("customer_name LIKE ? OR mobile_no LIKE ?", like, like)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&customers).Error
	return customers, err
}
