package sms

import "context"

// Sender 簡訊發送介面，由 service 層注入
type Sender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// NoopSender 開發環境或測試使用，不實際發送
type NoopSender struct{}

func (NoopSender) SendOTP(ctx context.Context, phone, code string) error {
	return nil
}
