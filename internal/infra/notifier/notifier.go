package notifier

import (
	"context"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
)

// Notifier 訂單狀態變更通知介面，由 service 層注入
// 通知失敗不影響訂單流程，由呼叫端決定是否忽略錯誤
type Notifier interface {
	NotifyOrderCheckedOut(ctx context.Context, order *model.Order) error
	NotifyOrderSent(ctx context.Context, order *model.Order) error
}

// NoopNotifier 測試或未設定 kafka 時使用
type NoopNotifier struct{}

func (NoopNotifier) NotifyOrderCheckedOut(ctx context.Context, order *model.Order) error {
	return nil
}

func (NoopNotifier) NotifyOrderSent(ctx context.Context, order *model.Order) error {
	return nil
}
