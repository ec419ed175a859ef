package service

import (
	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/shopspring/decimal"
)

/*
ResolvePrice 依照買家層級與數量決定單價

	B2B 會員優先取 B2B 價
	批發會員且數量達到批發門檻取批發價
	其餘用零售規則: 折扣價 > 0 用折扣價，否則用原價
	對應層級價格未設定 (<= 0) 時退回零售規則
*/
func ResolvePrice(product *model.ProductItem, tier model.Tier, quantity int) decimal.Decimal {
	switch tier {
	case model.TierB2B:
		if product.B2BPrice.IsPositive() {
			return product.B2BPrice
		}
	case model.TierWholesale:
		if product.WholesalePrice.IsPositive() && quantity >= product.MinWholesaleQuantity {
			return product.WholesalePrice
		}
	}
	return product.EffectivePrice()
}

// DiscountPercent 由原價與折扣價推得的折數，僅供顯示
// 折扣價未設定、不小於原價、或原價為零時一律回傳 0
func DiscountPercent(oldPrice, newPrice decimal.Decimal) int {
	if !newPrice.IsPositive() || !oldPrice.IsPositive() {
		return 0
	}
	if newPrice.GreaterThanOrEqual(oldPrice) {
		return 0
	}
	ratio := decimal.NewFromInt(1).Sub(newPrice.Div(oldPrice))
	return int(ratio.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}
