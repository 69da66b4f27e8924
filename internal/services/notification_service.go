package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"repairbox/internal/models"
	"repairbox/internal/repository"

	"go.uber.org/zap"
)

// EmailSender delivers an HTML e-mail.
type EmailSender interface {
	SendHTML(ctx context.Context, to []string, subject, body string) error
}

// MessageSender delivers a chat text message.
type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

type NotificationService interface {
	// NotifyStatusChange tells the customer about the order's current
	// status. Transport failures are logged, never returned.
	NotifyStatusChange(ctx context.Context, order *models.RepairOrder)
}

type notificationService struct {
	settings repository.RepairSettingsRepository
	mail     EmailSender
	chat     MessageSender
	shopName string
	log      *zap.Logger
}

// NewNotificationService builds the notifier. mail and chat may be nil to
// disable that channel.
func NewNotificationService(settings repository.RepairSettingsRepository, mail EmailSender, chat MessageSender, shopName string, log *zap.Logger) NotificationService {
	return &notificationService{
		settings: settings,
		mail:     mail,
		chat:     chat,
		shopName: shopName,
		log:      log,
	}
}

func (s *notificationService) NotifyStatusChange(ctx context.Context, order *models.RepairOrder) {
	if order.Status == "" {
		return
	}
	status, err := s.settings.GetStatus(ctx, order.Status)
	if err != nil || !status.NotifyCustomer {
		return
	}

	log := s.log.With(zap.Uint("repair_order_id", order.ID), zap.String("status", order.Status))

	if s.mail != nil && order.Email != "" {
		if err := s.mail.SendHTML(ctx, []string{order.Email}, StatusEmailSubject(order), StatusEmailBody(order, s.shopName)); err != nil {
			log.Error("Failed to send status e-mail", zap.String("email", order.Email), zap.Error(err))
		}
	}

	if s.chat != nil && order.ContactNumber != "" {
		if err := s.chat.SendTextMessage(ctx, order.ContactNumber, StatusChatMessage(order)); err != nil {
			log.Error("Failed to send status WhatsApp message", zap.String("phone", order.ContactNumber), zap.Error(err))
		}
	}
}

func StatusEmailSubject(order *models.RepairOrder) string {
	return fmt.Sprintf("Repair Order %s - Status Update", order.DisplayName())
}

// StatusMessage is the customer facing sentence for the order's status.
func StatusMessage(order *models.RepairOrder) string {
	device := order.DeviceName
	switch order.Status {
	case models.StatusInProgress:
		return fmt.Sprintf("Your %s repair is now in progress. Our technician is working on it.", device)
	case models.StatusTesting:
		return fmt.Sprintf("Your %s repair is complete and undergoing quality testing.", device)
	case models.StatusCompleted:
		return fmt.Sprintf("Good news! Your %s repair is complete.", device)
	case models.StatusReadyForPickup:
		return fmt.Sprintf("Your %s is ready for pickup! Tracking ID: %s", device, order.TrackingID)
	case models.StatusDelivered:
		return fmt.Sprintf("Thank you for choosing us! Your %s has been delivered.", device)
	case models.StatusAwaitingApproval:
		return fmt.Sprintf("Your repair requires approval. Total cost: %s. Please confirm to proceed.", order.GrandTotal.StringFixed(2))
	case models.StatusOnHold:
		return "Your repair order has been put on hold. We will contact you shortly."
	case models.StatusCancelled:
		return "Your repair order has been cancelled."
	default:
		return fmt.Sprintf("Your repair order status has been updated to: %s", order.Status)
	}
}

func StatusEmailBody(order *models.RepairOrder, shopName string) string {
	if shopName == "" {
		shopName = "RepairBox"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Dear %s,</p>\n", html.EscapeString(order.CustomerName))
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(StatusMessage(order)))
	b.WriteString("<p><strong>Order Details:</strong></p>\n<ul>\n")
	fmt.Fprintf(&b, "<li>Order ID: %s</li>\n", order.DisplayName())
	fmt.Fprintf(&b, "<li>Device: %s</li>\n", html.EscapeString(order.DeviceName))
	fmt.Fprintf(&b, "<li>Status: %s</li>\n", html.EscapeString(order.Status))
	if order.TrackingID != "" {
		fmt.Fprintf(&b, "<li>Tracking ID: %s</li>\n", order.TrackingID)
	}
	b.WriteString("</ul>\n")
	b.WriteString("<p>If you have any questions, please contact us.</p>\n")
	fmt.Fprintf(&b, "<p>Best regards,<br>%s Team</p>\n", html.EscapeString(shopName))
	return b.String()
}

func StatusChatMessage(order *models.RepairOrder) string {
	msg := StatusMessage(order)
	if order.TrackingID != "" && !strings.Contains(msg, order.TrackingID) {
		msg += fmt.Sprintf("\nTracking ID: %s", order.TrackingID)
	}
	return msg
}
