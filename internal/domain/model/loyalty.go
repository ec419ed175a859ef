package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCycleDays = 60

type LoyaltyCard struct {
	LoyaltyCardID  uint            `gorm:"primaryKey"`
	ProfileID      uint            `gorm:"unique;not null"`
	CurrentBalance decimal.Decimal `gorm:"not null;type:decimal(12,2);default:0"`
	CycleStart     time.Time       `gorm:"not null"`
	CycleEnd       time.Time       `gorm:"not null"`
	CycleDays      int             `gorm:"not null;default:60"`
	CycleNumber    int             `gorm:"not null;default:1"`
	BaseModel
}

type BonusStatus string

const (
	BonusStatusPending  BonusStatus = "pending"
	BonusStatusApproved BonusStatus = "approved"
)

// PendingBonus 出貨時建立的回饋快照，等管理員設定百分比後入帳
type PendingBonus struct {
	PendingBonusID uint   `gorm:"primaryKey"`
	ProfileID      uint   `gorm:"not null;index"`
	OrderID        uint   `gorm:"unique;not null"` // 一張訂單最多一筆
	CustomerLabel  string `gorm:"not null;type:varchar(255)"`
	OrderAmount    decimal.Decimal `gorm:"not null;type:decimal(20,2)"`
	Percent        *int            `gorm:"null"`
	BonusAmount    decimal.Decimal `gorm:"not null;type:decimal(20,2);default:0"`
	Status         BonusStatus     `gorm:"not null;type:varchar(20);default:'pending'"`
	BaseModel
}

// ComputedBonusAmount = order_amount × percent / 100
// 只有在 approved 且 percent 已設定時才為非零
func (b *PendingBonus) ComputedBonusAmount() decimal.Decimal {
	if b.Status != BonusStatusApproved || b.Percent == nil {
		return decimal.Zero
	}
	return b.OrderAmount.Mul(decimal.NewFromInt(int64(*b.Percent))).Div(decimal.NewFromInt(100))
}
