package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	EventOrderCheckedOut = "order_checked_out"
	EventOrderSent       = "order_sent"
)

// OrderEvent kafka 訂單事件訊息格式
type OrderEvent struct {
	EventType   string          `json:"event_type"`
	OrderID     uint            `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      uint            `json:"user_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// KafkaNotifier 把訂單事件發到 kafka，由下游消費者送推播
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) publish(ctx context.Context, eventType string, order *model.Order) error {
	event := OrderEvent{
		EventType:   eventType,
		OrderID:     order.OrderID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: value,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write order event: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) NotifyOrderCheckedOut(ctx context.Context, order *model.Order) error {
	return n.publish(ctx, EventOrderCheckedOut, order)
}

func (n *KafkaNotifier) NotifyOrderSent(ctx context.Context, order *model.Order) error {
	return n.publish(ctx, EventOrderSent, order)
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
