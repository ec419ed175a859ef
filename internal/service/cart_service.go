package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must not be negative")
)

type ICartService interface {
	GetCart(ctx context.Context, userID uint) (*model.Order, error)
	CreateLine(ctx context.Context, userID, productID uint, quantity int) (*model.Order, error)
	ManageLine(ctx context.Context, userID, productID uint, quantity int) (*model.Order, error)
	SetLineQuantity(ctx context.Context, userID, orderID, productID uint, quantity int) (*model.Order, error)
	RemoveLine(ctx context.Context, userID, productID uint) (*model.Order, error)
}

type CartService struct {
	dao         *db.DbDao
	orderRepo   *db.OrderRepo
	productRepo *db.ProductRepo
}

func NewCartService(dao *db.DbDao, orderRepo *db.OrderRepo, productRepo *db.ProductRepo) *CartService {
	return &CartService{dao: dao, orderRepo: orderRepo, productRepo: productRepo}
}

// 取得用戶的購物車，不存在則建立空車
func (s *CartService) GetCart(ctx context.Context, userID uint) (*model.Order, error) {
	return s.orderRepo.GetOrCreateCart(ctx, nil, userID)
}

/*
CreateLine 往購物車加數量 (累加)

	已有同商品明細時數量相加，沒有則新增
	同一交易內重算並回寫訂單總額
*/
func (s *CartService) CreateLine(ctx context.Context, userID, productID uint, quantity int) (*model.Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var result *model.Order
	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.GetProductByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		cart, err := s.orderRepo.GetOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		item, err := s.orderRepo.GetOrderItem(ctx, tx, cart.OrderID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			err = s.orderRepo.AddOrderItem(ctx, tx, &model.OrderItem{
				OrderID:   cart.OrderID,
				ProductID: productID,
				Quantity:  quantity,
			})
		} else {
			err = s.orderRepo.UpdateOrderItemQuantity(ctx, tx, cart.OrderID, productID, item.Quantity+quantity)
		}
		if err != nil {
			return err
		}

		result, err = s.refreshCartTotal(ctx, tx, cart.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

/*
ManageLine 把購物車明細設為指定數量 (絕對值，不累加)

	quantity = 0 時刪除該明細
	quantity > 0 時 upsert 為該數量
*/
func (s *CartService) ManageLine(ctx context.Context, userID, productID uint, quantity int) (*model.Order, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	var result *model.Order
	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.GetProductByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		cart, err := s.orderRepo.GetOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		if quantity == 0 {
			err = s.orderRepo.DeleteOrderItem(ctx, tx, cart.OrderID, productID)
		} else {
			err = s.orderRepo.UpsertOrderItem(ctx, tx, &model.OrderItem{
				OrderID:   cart.OrderID,
				ProductID: productID,
				Quantity:  quantity,
			})
		}
		if err != nil {
			return err
		}

		result, err = s.refreshCartTotal(ctx, tx, cart.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetLineQuantity 修改指定購物車訂單的明細數量，只允許 in_cart 狀態
// quantity = 0 時刪除該明細
func (s *CartService) SetLineQuantity(ctx context.Context, userID, orderID, productID uint, quantity int) (*model.Order, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	var result *model.Order
	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.GetUserOrderByID(ctx, tx, userID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status != model.OrderStatusInCart {
			return ErrOrderNotEditable
		}

		item, err := s.orderRepo.GetOrderItem(ctx, tx, orderID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}

		if quantity == 0 {
			err = s.orderRepo.DeleteOrderItem(ctx, tx, orderID, productID)
		} else {
			err = s.orderRepo.UpdateOrderItemQuantity(ctx, tx, orderID, productID, quantity)
		}
		if err != nil {
			return err
		}

		result, err = s.refreshCartTotal(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveLine 從購物車移除商品明細
func (s *CartService) RemoveLine(ctx context.Context, userID, productID uint) (*model.Order, error) {
	var result *model.Order
	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.orderRepo.GetOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		item, err := s.orderRepo.GetOrderItem(ctx, tx, cart.OrderID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}
		if err := s.orderRepo.DeleteOrderItem(ctx, tx, cart.OrderID, productID); err != nil {
			return err
		}

		result, err = s.refreshCartTotal(ctx, tx, cart.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// 在同一個交易內重讀明細、回寫快取的總額，回傳最新的購物車
// 明細寫入與總額回寫一起 commit，讀取端不會看到不一致的總額
func (s *CartService) refreshCartTotal(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if err := s.orderRepo.UpdateOrderAmount(ctx, tx, order); err != nil {
		return nil, err
	}
	return order, nil
}

var _ ICartService = (*CartService)(nil)
