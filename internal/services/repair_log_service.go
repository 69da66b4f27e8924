package services

import (
	"context"
	"fmt"

	"repairbox/internal/models"
	"repairbox/internal/repository"

	"go.uber.org/zap"
)

type RepairLogService interface {
	Create(ctx context.Context, actor Actor, entry *models.RepairLog) error
	ListByOrder(ctx context.Context, orderID uint) ([]models.RepairLog, error)
}

type repairLogService struct {
	logs   repository.RepairLogRepository
	orders repository.RepairOrderRepository
	hooks  RepairOrderService
	log    *zap.Logger
}

func NewRepairLogService(logs repository.RepairLogRepository, orders repository.RepairOrderRepository, hooks RepairOrderService, log *zap.Logger) RepairLogService {
	return &repairLogService{logs: logs, orders: orders, hooks: hooks, log: log}
}

// Create appends a history entry and pushes its status onto the order. The
// push skips the status transition rules.
func (s *repairLogService) Create(ctx context.Context, actor Actor, entry *models.RepairLog) error {
	order, err := s.orders.GetByID(ctx, entry.RepairOrderID)
	if err != nil {
		return err
	}

	entry.ID = 0
	if entry.UpdatedBy == "" {
		entry.UpdatedBy = actor.Label()
	}
	if entry.Status == "" {
		entry.Status = order.Status
	}

	if err := s.logs.CreateAndSyncStatus(ctx, entry); err != nil {
		return fmt.Errorf("failed to create repair log: %w", err)
	}

	previous := order.Status
	if entry.Status != previous {
		order.Status = entry.Status
		s.log.Info("Repair order status pushed from log",
			zap.Uint("repair_order_id", order.ID),
			zap.String("from", previous),
			zap.String("to", entry.Status))
		s.hooks.AfterStatusPushed(ctx, actor, order, previous, entry.NotifyCustomer)
	}
	return nil
}

func (s *repairLogService) ListByOrder(ctx context.Context, orderID uint) ([]models.RepairLog, error) {
	return s.logs.GetByOrderID(ctx, orderID)
}
