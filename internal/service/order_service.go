package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/notifier"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order is not exist")
	ErrOrderNotEditable    = errors.New("order can not be modified in current status")
	ErrEmptyCart           = errors.New("cart has no items")
	ErrStockExhausted      = errors.New("product stock is not enough")
	ErrLocationNotFound    = errors.New("delivery location not found")
	ErrBankCardNotFound    = errors.New("no bank card configured")
	ErrInsufficientBalance = errors.New("loyalty balance is not enough")
)

type IOrderService interface {
	Checkout(ctx context.Context, userID, orderID uint, locationID *uint, comment string) (*model.Order, error)
	AttachReceipt(ctx context.Context, userID, orderID uint, receiptPath string, loyaltySpend decimal.Decimal) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error)
	GetOrders(ctx context.Context, userID uint) ([]model.Order, error)
	GetPaymentTarget(ctx context.Context, userID, orderID uint) (*model.BankCard, error)
	ApproveOrder(ctx context.Context, orderID uint) (*model.Order, error)
	RejectOrder(ctx context.Context, orderID uint) (*model.Order, error)
	MarkSent(ctx context.Context, orderID uint) (*model.Order, error)
}

type OrderService struct {
	dao          *db.DbDao
	orderRepo    *db.OrderRepo
	productRepo  *db.ProductRepo
	profileRepo  *db.ProfileRepo
	loyaltyRepo  *db.LoyaltyRepo
	bankCardRepo *db.BankCardRepo
	notifier     notifier.Notifier
	deliveryFee  decimal.Decimal
}

func NewOrderService(
	dao *db.DbDao,
	orderRepo *db.OrderRepo,
	productRepo *db.ProductRepo,
	profileRepo *db.ProfileRepo,
	loyaltyRepo *db.LoyaltyRepo,
	bankCardRepo *db.BankCardRepo,
	ntf notifier.Notifier,
	deliveryFee decimal.Decimal,
) *OrderService {
	return &OrderService{
		dao:          dao,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		profileRepo:  profileRepo,
		loyaltyRepo:  loyaltyRepo,
		bankCardRepo: bankCardRepo,
		notifier:     ntf,
		deliveryFee:  deliveryFee,
	}
}

/*
Checkout 送出訂單

	in_cart 訂單: 直接轉 pending，購物車必須至少有一筆明細
	已結束訂單 (approved/cancelled/sent): 複製明細成一張新的 pending 訂單
	原訂單不動，重新下單不影響歷史紀錄
*/
func (s *OrderService) Checkout(ctx context.Context, userID, orderID uint, locationID *uint, comment string) (*model.Order, error) {
	var resultID uint
	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.GetUserOrderByID(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if len(order.OrderItems) == 0 {
			return ErrEmptyCart
		}

		if locationID != nil {
			loc, err := s.profileRepo.GetLocationByID(ctx, tx, userID, *locationID)
			if err != nil {
				return err
			}
			if loc == nil {
				return ErrLocationNotFound
			}
		}

		switch {
		case order.Status == model.OrderStatusInCart:
			order.Status = model.OrderStatusPending
			order.LocationID = locationID
			order.Comment = comment
			order.DeliveryFee = s.deliveryFee
			order.TotalAmount = order.CalculateTotal()
			if err := s.orderRepo.UpdateOrder(ctx, tx, order); err != nil {
				return err
			}
			resultID = order.OrderID
			return nil

		case order.Status.IsClosed():
			// 重新下單: 複製明細成新訂單
			fresh := &model.Order{
				UserID:      userID,
				Status:      model.OrderStatusPending,
				LocationID:  locationID,
				Comment:     comment,
				DeliveryFee: s.deliveryFee,
			}
			for _, item := range order.OrderItems {
				fresh.OrderItems = append(fresh.OrderItems, model.OrderItem{
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
				})
				if item.Product != nil {
					fresh.TotalAmount = fresh.TotalAmount.Add(
						item.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
				}
			}
			if err := s.orderRepo.CreateOrder(ctx, tx, fresh); err != nil {
				return err
			}
			resultID = fresh.OrderID
			return nil

		default:
			return ErrOrderNotEditable
		}
	})
	if err != nil {
		return nil, err
	}

	result, err := s.orderRepo.GetOrderByID(ctx, nil, resultID)
	if err != nil {
		return nil, err
	}

	// 通知失敗只記 log，不影響已成立的訂單
	if err := s.notifier.NotifyOrderCheckedOut(ctx, result); err != nil {
		log.Warn().Err(err).Uint("order_id", result.OrderID).Msg("failed to notify order checked out")
	}
	return result, nil
}

/*
AttachReceipt 上傳匯款憑證並選擇性折抵忠誠點數

	只允許尚未結束的訂單
	折抵金額 > 0 時先原子扣款，餘額不足整筆失敗，憑證不會被記錄
	成功後訂單進入 pending 等待審核
*/
func (s *OrderService) AttachReceipt(ctx context.Context, userID, orderID uint, receiptPath string, loyaltySpend decimal.Decimal) (*model.Order, error) {
	if loyaltySpend.IsNegative() {
		return nil, ErrInvalidQuantity
	}

	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.GetUserOrderByID(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status.IsClosed() {
			return ErrOrderNotEditable
		}

		if loyaltySpend.IsPositive() {
			if _, err := s.loyaltyRepo.GetOrCreateCard(ctx, tx, userID); err != nil {
				return err
			}
			rows, err := s.loyaltyRepo.DebitBalance(ctx, tx, userID, loyaltySpend)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrInsufficientBalance
			}
			order.LoyaltyPayment = order.LoyaltyPayment.Add(loyaltySpend)
		}

		order.PaymentReceipt = receiptPath
		order.Status = model.OrderStatusPending
		return s.orderRepo.UpdateOrder(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetOrderByID(ctx, nil, orderID)
}

// 查詢用戶自己的訂單
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.GetUserOrderByID(ctx, nil, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// 查詢用戶所有已送出的訂單
func (s *OrderService) GetOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	return s.orderRepo.GetOrdersByUserID(ctx, userID)
}

// GetPaymentTarget 取得訂單的匯款目標帳戶，訂單有指定卡時優先，否則用預設卡
func (s *OrderService) GetPaymentTarget(ctx context.Context, userID, orderID uint) (*model.BankCard, error) {
	order, err := s.orderRepo.GetUserOrderByID(ctx, nil, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.BankCardID != nil {
		card, err := s.bankCardRepo.GetBankCardByID(ctx, *order.BankCardID)
		if err != nil {
			return nil, err
		}
		if card != nil {
			return card, nil
		}
	}

	card, err := s.bankCardRepo.GetDefaultBankCard(ctx)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrBankCardNotFound
	}
	return card, nil
}

// ApproveOrder 管理員核准訂單 (款項確認)
func (s *OrderService) ApproveOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	return s.decideOrder(ctx, orderID, model.OrderStatusApproved)
}

// RejectOrder 管理員退回訂單
func (s *OrderService) RejectOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	return s.decideOrder(ctx, orderID, model.OrderStatusCancelled)
}

func (s *OrderService) decideOrder(ctx context.Context, orderID uint, status model.OrderStatus) (*model.Order, error) {
	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.GetOrderByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status == status {
			return nil
		}
		// in_cart 尚未送出，cancelled/sent 為終態
		if order.Status == model.OrderStatusInCart ||
			order.Status == model.OrderStatusCancelled ||
			order.Status == model.OrderStatusSent {
			return ErrOrderNotEditable
		}
		return s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, status)
	})
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetOrderByID(ctx, nil, orderID)
}

/*
MarkSent 出貨

	每個明細原子扣庫存，任何一項不足整筆 rollback
	同一張訂單只會建立一筆回饋快照，重複呼叫不會多扣庫存也不會多建快照
*/
func (s *OrderService) MarkSent(ctx context.Context, orderID uint) (*model.Order, error) {
	var sentOrder *model.Order
	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.GetOrderByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status == model.OrderStatusSent {
			// 已出貨，重複呼叫不做事
			sentOrder = order
			return nil
		}
		if order.Status == model.OrderStatusInCart || order.Status == model.OrderStatusCancelled {
			return ErrOrderNotEditable
		}

		for _, item := range order.OrderItems {
			rows, err := s.productRepo.ReduceStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if rows == 0 {
				return fmt.Errorf("%w: product %d", ErrStockExhausted, item.ProductID)
			}
		}

		if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, model.OrderStatusSent); err != nil {
			return err
		}

		profile, err := s.profileRepo.GetProfileByID(ctx, order.UserID)
		if err != nil {
			return err
		}
		label := ""
		if profile != nil {
			label = fmt.Sprintf("%s %s", profile.FullName, profile.PhoneNumber)
		}

		if _, err := s.loyaltyRepo.GetOrCreateCard(ctx, tx, order.UserID); err != nil {
			return err
		}
		_, err = s.loyaltyRepo.CreatePendingBonusOnce(ctx, tx, &model.PendingBonus{
			ProfileID:     order.UserID,
			OrderID:       order.OrderID,
			CustomerLabel: label,
			OrderAmount:   order.TotalAmount,
			Status:        model.BonusStatusPending,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if sentOrder != nil {
		return sentOrder, nil
	}

	result, err := s.orderRepo.GetOrderByID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyOrderSent(ctx, result); err != nil {
		log.Warn().Err(err).Uint("order_id", result.OrderID).Msg("failed to notify order sent")
	}
	return result, nil
}

var _ IOrderService = (*OrderService)(nil)
