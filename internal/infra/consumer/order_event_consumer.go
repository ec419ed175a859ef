package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/RoyceAzure/lab/mmart/internal/infra/notifier"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var ErrConsumerClosed = errors.New("consumer closed")

// Pusher 推播到用戶裝置
type Pusher interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}

// LogPusher 沒接推播服務時只記 log
type LogPusher struct {
	Logger *zerolog.Logger
}

func (p LogPusher) Push(ctx context.Context, deviceToken, title, body string) error {
	p.Logger.Info().
		Str("device_token", deviceToken).
		Str("title", title).
		Str("body", body).
		Msg("push notification")
	return nil
}

/*
OrderEventConsumer 消費訂單事件並推播給用戶

	order_checked_out: 通知用戶訂單已送出
	order_sent: 通知用戶訂單已出貨
*/
type OrderEventConsumer struct {
	reader      *kafka.Reader
	profileRepo *db.ProfileRepo
	pusher      Pusher
	logger      *zerolog.Logger
	closeOnce   sync.Once
	closeChan   chan struct{}
}

func NewOrderEventConsumer(brokers []string, topic, groupID string, profileRepo *db.ProfileRepo, pusher Pusher, logger *zerolog.Logger) *OrderEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &OrderEventConsumer{
		reader:      reader,
		profileRepo: profileRepo,
		pusher:      pusher,
		logger:      logger,
		closeChan:   make(chan struct{}),
	}
}

func (c *OrderEventConsumer) checkIsClosed() bool {
	select {
	case <-c.closeChan:
		return true
	default:
		return false
	}
}

func (c *OrderEventConsumer) Start(ctx context.Context) error {
	if c.checkIsClosed() {
		return ErrConsumerClosed
	}

	go func() {
		for {
			select {
			case <-c.closeChan:
				return
			default:
			}

			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || c.checkIsClosed() {
					return
				}
				c.logger.Error().Err(err).Msg("failed to read order event")
				continue
			}

			if err := c.handle(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("failed to handle order event")
			}
		}
	}()

	return nil
}

func (c *OrderEventConsumer) handle(ctx context.Context, msg kafka.Message) error {
	var event notifier.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}

	profile, err := c.profileRepo.GetProfileByID(ctx, event.UserID)
	if err != nil {
		return err
	}
	if profile == nil || profile.DeviceToken == "" {
		return nil
	}

	var title, body string
	switch event.EventType {
	case notifier.EventOrderCheckedOut:
		title = "訂單已送出"
		body = "訂單 " + event.OrderNumber + " 已送出，等待確認"
	case notifier.EventOrderSent:
		title = "訂單已出貨"
		body = "訂單 " + event.OrderNumber + " 已出貨"
	default:
		return nil
	}

	return c.pusher.Push(ctx, profile.DeviceToken, title, body)
}

func (c *OrderEventConsumer) Stop() {
	if c.checkIsClosed() {
		return
	}

	c.closeOnce.Do(func() {
		close(c.closeChan)
	})

	c.reader.Close()
}
