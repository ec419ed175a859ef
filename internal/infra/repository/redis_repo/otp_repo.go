package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrOTPNotFound = errors.New("otp is not found or expired")

const defaultOTPTTL = 5 * time.Minute

// OTPRepo 驗證碼存在 redis，帶 TTL，過期自動失效
type OTPRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOTPRepo(client *redis.Client) *OTPRepo {
	return &OTPRepo{client: client, ttl: defaultOTPTTL}
}

func generateOTPKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}

// Set 寫入驗證碼，同號碼重送會覆蓋舊碼並重算 TTL
func (r *OTPRepo) Set(ctx context.Context, phone, code string) error {
	if err := r.client.Set(ctx, generateOTPKey(phone), code, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// Get 取得驗證碼
func (r *OTPRepo) Get(ctx context.Context, phone string) (string, error) {
	code, err := r.client.Get(ctx, generateOTPKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get otp: %w", err)
	}
	return code, nil
}

// Delete 驗證成功後清除驗證碼
func (r *OTPRepo) Delete(ctx context.Context, phone string) error {
	return r.client.Del(ctx, generateOTPKey(phone)).Err()
}
