package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusInCart         OrderStatus = "in_cart"
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPaymentPending OrderStatus = "payment_pending"
	OrderStatusApproved       OrderStatus = "approved"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusSent           OrderStatus = "sent"
)

// IsClosed 已結束的訂單不可再修改，重新購買要複製成新訂單
func (s OrderStatus) IsClosed() bool {
	return s == OrderStatusApproved || s == OrderStatusCancelled || s == OrderStatusSent
}

type Order struct {
	OrderID     uint        `gorm:"primaryKey"`
	OrderNumber string      `gorm:"unique;not null;type:varchar(10)"`
	UserID      uint        `gorm:"not null;index"` // 外鍵，關聯到 Profile
	Status      OrderStatus `gorm:"not null;type:varchar(20);default:'in_cart';index"`
	OrderItems  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	LocationID  *uint       `gorm:"null"`
	Comment     string      `gorm:"type:text"`
	TotalAmount decimal.Decimal `gorm:"not null;type:decimal(20,2);default:0"`
	DeliveryFee decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0"`
	BonusAmount decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0"`
	// 用忠誠點數折抵的金額
	LoyaltyPayment decimal.Decimal `gorm:"not null;type:decimal(20,2);default:0"`
	PaymentReceipt string          `gorm:"type:varchar(255)"`
	BankCardID     *uint           `gorm:"null"`
	BaseModel
}

type OrderItem struct {
	OrderID   uint `gorm:"primaryKey"` // 外鍵，關聯到 Order
	ProductID uint `gorm:"primaryKey"` // 外鍵，關聯到 ProductItem
	Quantity  int  `gorm:"not null"`
	Product   *ProductItem `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time    `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"null"`
}

// CalculateTotal 對目前的明細加總: 單價採零售規則 (折扣價優先)
// 需要已 preload Product
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.OrderItems {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

type BankCard struct {
	BankCardID uint   `gorm:"primaryKey"`
	CardNumber string `gorm:"not null;type:varchar(32)"`
	CardHolder string `gorm:"type:varchar(100)"`
	BaseModel
}
