package db

import (
	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"gorm.io/gorm"
)

type DbDao struct {
	*gorm.DB
}

func NewDbDao(conn *gorm.DB) *DbDao {
	return &DbDao{
		DB: conn,
	}
}

// 初始化db schema
// 冪等性
func (d *DbDao) InitMigrate() error {
	err := d.AutoMigrate(
		&model.Profile{},
		&model.Location{},
		&model.ProductItem{},
		&model.BankCard{},
		&model.Order{},
		&model.OrderItem{},
		&model.LoyaltyCard{},
		&model.PendingBonus{},
		&model.Referral{},
	)
	if err != nil {
		return err
	}

	// 每個用戶最多一張 in_cart 訂單
	return d.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_cart_per_user
		 ON orders(user_id) WHERE status = 'in_cart' AND deleted_at IS NULL`,
	).Error
}
