package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	Exchange          = "repairbox.events"
	KeyStatusChanged  = "repair_order.status_changed"
	contentTypeJSON   = "application/json"
	defaultPublishTTL = 5 * time.Second
)

// StatusChanged is emitted after a repair order is saved with a new status.
type StatusChanged struct {
	EventID        string    `json:"event_id"`
	RepairOrderID  uint      `json:"repair_order_id"`
	TrackingID     string    `json:"tracking_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	ChangedBy      string    `json:"changed_by"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher sends domain events to a topic exchange and waits for the
// broker confirm of each message.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.publish(ctx, KeyStatusChanged, ev.EventID, body)
}

func (p *Publisher) publish(ctx context.Context, key, messageID string, body []byte) error {
	ctx, cancel := publishContext(ctx)
	defer cancel()

	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, Exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  contentTypeJSON,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return err
	}
	if confirm == nil {
		return errors.New("channel is not in confirm mode")
	}

	ack, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for confirm of delivery %d: %w", confirm.DeliveryTag, err)
	}
	if !ack {
		return errors.New("publish NACK from broker")
	}
	return nil
}

// publishContext detaches the publish from the caller's cancellation and
// bounds it with the publish timeout instead.
func publishContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), defaultPublishTTL)
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishStatusChanged(context.Context, StatusChanged) error { return nil }
