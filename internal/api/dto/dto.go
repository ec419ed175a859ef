package dto

import (
	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/shopspring/decimal"
)

type RegisterDTO struct {
	PhoneNumber  string `json:"phone_number"`
	FullName     string `json:"full_name"`
	ReferralCode string `json:"referral_code"`
}

type VerifyOTPDTO struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	Profile     ProfileDTO `json:"profile"`
}

type ProfileDTO struct {
	ProfileID    uint   `json:"profile_id"`
	PhoneNumber  string `json:"phone_number"`
	FullName     string `json:"full_name"`
	ReferralCode string `json:"referral_code"`
	B2BStatus    string `json:"b2b_status"`
}

type CartLineDTO struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CheckoutDTO struct {
	LocationID *uint  `json:"location_id"`
	Comment    string `json:"comment"`
}

type OrderItemDTO struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

type OrderDTO struct {
	OrderID        uint            `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	Items          []OrderItemDTO  `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	LoyaltyPayment decimal.Decimal `json:"loyalty_payment"`
	PaymentReceipt string          `json:"payment_receipt,omitempty"`
	Comment        string          `json:"comment,omitempty"`
}

func ConvertOrderToDTO(order *model.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		itemDTO := OrderItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			itemDTO.ProductName = item.Product.Name
			itemDTO.UnitPrice = item.Product.EffectivePrice()
			itemDTO.Amount = itemDTO.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		items = append(items, itemDTO)
	}
	return OrderDTO{
		OrderID:        order.OrderID,
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		Items:          items,
		TotalAmount:    order.TotalAmount,
		DeliveryFee:    order.DeliveryFee,
		LoyaltyPayment: order.LoyaltyPayment,
		PaymentReceipt: order.PaymentReceipt,
		Comment:        order.Comment,
	}
}

type PaymentTargetDTO struct {
	CardNumber string `json:"card_number"`
	CardHolder string `json:"card_holder"`
}

type LoyaltyCardDTO struct {
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CycleStart     string          `json:"cycle_start"`
	CycleEnd       string          `json:"cycle_end"`
	CycleNumber    int             `json:"cycle_number"`
}

func ConvertLoyaltyCardToDTO(card *model.LoyaltyCard) LoyaltyCardDTO {
	return LoyaltyCardDTO{
		CurrentBalance: card.CurrentBalance,
		CycleStart:     card.CycleStart.Format("2006-01-02"),
		CycleEnd:       card.CycleEnd.Format("2006-01-02"),
		CycleNumber:    card.CycleNumber,
	}
}

type ApproveBonusDTO struct {
	// 未帶時用系統預設比例
	Percent *int `json:"percent"`
}

type B2BStatusDTO struct {
	Status string `json:"status"`
}
