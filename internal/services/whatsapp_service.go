package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"repairbox/internal/repository"
)

type WhatsAppService interface {
	SendMessage(ctx context.Context, phone, message string) error
	// HandleIncoming answers a customer message and returns the reply that
	// was sent.
	HandleIncoming(ctx context.Context, phone, text string) (string, error)
}

type whatsappService struct {
	client   MessageSender
	orders   RepairOrderService
	pattern  *regexp.Regexp
	prefix   string
	shopName string
}

func NewWhatsAppService(client MessageSender, orders RepairOrderService, trackingPrefix, shopName string) WhatsAppService {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(trackingPrefix) + `[A-Z0-9]{5}\b`)
	return &whatsappService{client: client, orders: orders, pattern: pattern, prefix: trackingPrefix, shopName: shopName}
}

func (s *whatsappService) SendMessage(ctx context.Context, phone, message string) error {
	if s.client == nil {
		return errors.New("whatsapp client not configured")
	}
	return s.client.SendTextMessage(ctx, phone, message)
}

func (s *whatsappService) HandleIncoming(ctx context.Context, phone, text string) (string, error) {
	reply, err := s.reply(ctx, text)
	if err != nil {
		return "", err
	}
	if err := s.SendMessage(ctx, phone, reply); err != nil {
		return reply, err
	}
	return reply, nil
}

func (s *whatsappService) reply(ctx context.Context, text string) (string, error) {
	trackingID := strings.ToUpper(s.pattern.FindString(text))
	if trackingID == "" {
		return s.helpMessage(), nil
	}

	snap, err := s.orders.Track(ctx, trackingID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("No repair found for tracking ID %s. Please check the ID on your receipt.", trackingID), nil
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repair %s (%s)\n", snap.Order, snap.TrackingID)
	fmt.Fprintf(&b, "Device: %s\n", snap.Device)
	fmt.Fprintf(&b, "Status: %s\n", snap.Status)
	fmt.Fprintf(&b, "Payment: %s (total %s)", snap.PaymentStatus, snap.GrandTotal)
	if snap.ExpectedCompletion != nil {
		fmt.Fprintf(&b, "\nExpected completion: %s", snap.ExpectedCompletion.Format("02 Jan 2006 15:04"))
	}
	return b.String(), nil
}

func (s *whatsappService) helpMessage() string {
	return fmt.Sprintf("Welcome to %s!\nSend your tracking ID (for example %s7K2QX) to get the current status of your repair.", s.shopName, s.prefix)
}
