package services

import (
	"context"
	"strings"

	"repairbox/internal/models"
	"repairbox/internal/repository"
)

type CustomerService interface {
	QuickCreate(ctx context.Context, name, phone, email string) (*models.Customer, error)
	Search(ctx context.Context, term string) ([]models.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

// QuickCreate registers an individual customer from the repair order form.
func (s *customerService) QuickCreate(ctx context.Context, name, phone, email string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, newValidationError("Missing Information", "Customer name and contact number are required")
	}

	customer := &models.Customer{
		CustomerName: name,
		CustomerType: models.CustomerTypeIndividual,
		MobileNo:     phone,
		EmailID:      strings.TrimSpace(email),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Search(ctx context.Context, term string) ([]models.Customer, error) {
	return s.repo.Search(ctx, strings.TrimSpace(term), 20)
}
