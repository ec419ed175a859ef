package model

import (
	"github.com/shopspring/decimal"
)

// ProductKind 商品種類，明確存在欄位上，不靠關聯推斷
type ProductKind string

const (
	ProductKindGoods  ProductKind = "goods"
	ProductKindPhone  ProductKind = "phone"
	ProductKindTicket ProductKind = "ticket"
)

type ProductItem struct {
	ProductID uint        `gorm:"primaryKey"`
	Kind      ProductKind `gorm:"not null;type:varchar(10);default:'goods'"`
	Name      string      `gorm:"not null;type:varchar(255)"`
	// 零售價: OldPrice 為原價，NewPrice 為折扣價
	OldPrice decimal.Decimal `gorm:"not null;type:decimal(20,2);default:0"`
	NewPrice decimal.Decimal `gorm:"not null;type:decimal(20,2);default:0"`
	// B2B 與批發價
	B2BPrice             decimal.Decimal `gorm:"not null;type:decimal(20,2);default:0"`
	WholesalePrice       decimal.Decimal `gorm:"not null;type:decimal(20,2);default:0"`
	MinWholesaleQuantity int             `gorm:"not null;default:1"`
	AvailableQuantity    int             `gorm:"not null;default:0"`
	Active               bool            `gorm:"not null;default:true"`
	BaseModel
}

// EffectivePrice 零售階段的單價: 折扣價 > 0 就用折扣價，否則用原價
func (p *ProductItem) EffectivePrice() decimal.Decimal {
	if p.NewPrice.IsPositive() {
		return p.NewPrice
	}
	return p.OldPrice
}
