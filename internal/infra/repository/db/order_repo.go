package db

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderNumberPrefix = "MMT"

// 最多重試次數，亂數訂單編號撞到 unique 約束時重新產生
const orderNumberMaxRetry = 5

var (
	ErrOrderNumberExhausted = errors.New("failed to generate unique order number")
	ErrCartConflict         = errors.New("user already has an open cart")
)

func generateOrderNumber() string {
	// 10000 到 99999 之間的 5 位亂數
	return fmt.Sprintf("%s%d", orderNumberPrefix, 10000+rand.Intn(90000))
}

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

func (s *OrderRepo) tx(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Create - 創建訂單，訂單編號碰撞時重試
// 撞到單一購物車約束時不重試，直接回 ErrCartConflict
func (s *OrderRepo) CreateOrder(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	var err error
	for i := 0; i < orderNumberMaxRetry; i++ {
		order.OrderNumber = generateOrderNumber()
		err = s.tx(ctx, tx).Create(order).Error
		if err == nil {
			return nil
		}
		if isCartConflict(err) {
			return ErrCartConflict
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) && !isUniqueViolation(err) {
			return err
		}
		order.OrderID = 0
	}
	return ErrOrderNumberExhausted
}

// unique 約束錯誤判斷，postgres 與 sqlite 的驅動回傳格式不同
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// 單一購物車的 partial unique index 衝突，錯誤訊息會帶 index 名稱
func isCartConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "idx_orders_one_cart_per_user")
}

// Read - 根據ID查詢訂單
func (s *OrderRepo) GetOrderByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Order, error) {
	var order model.Order
	err := s.tx(ctx, tx).Preload("OrderItems.Product").First(&order, "order_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Read - 查詢用戶自己的訂單
func (s *OrderRepo) GetUserOrderByID(ctx context.Context, tx *gorm.DB, userID, orderID uint) (*model.Order, error) {
	var order model.Order
	err := s.tx(ctx, tx).Preload("OrderItems.Product").
		First(&order, "order_id = ? AND user_id = ?", orderID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Read - 取得用戶的購物車 (in_cart 訂單)，不存在則建立
func (s *OrderRepo) GetOrCreateCart(ctx context.Context, tx *gorm.DB, userID uint) (*model.Order, error) {
	db := s.tx(ctx, tx)

	var order model.Order
	err := db.Preload("OrderItems.Product").
		Where("user_id = ? AND status = ?", userID, model.OrderStatusInCart).
		First(&order).Error
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	order = model.Order{
		UserID: userID,
		Status: model.OrderStatusInCart,
	}
	if err := s.CreateOrder(ctx, tx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Read - 查詢用戶所有非購物車訂單，新的在前
func (s *OrderRepo) GetOrdersByUserID(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems.Product").
		Where("user_id = ? AND status <> ?", userID, model.OrderStatusInCart).
		Order("order_id DESC").
		Find(&orders).Error
	return orders, err
}

// Read - 查詢用戶有忠誠折抵的訂單 (history 用)
func (s *OrderRepo) GetLoyaltySpendOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND loyalty_payment > 0", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// Update - 更新訂單
func (s *OrderRepo) UpdateOrder(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return s.tx(ctx, tx).Omit(clause.Associations).Save(order).Error
}

// Update - 更新訂單狀態
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, tx *gorm.DB, orderID uint, status model.OrderStatus) error {
	return s.tx(ctx, tx).Model(&model.Order{}).Where("order_id = ?", orderID).Update("status", status).Error
}

// Update - 只在金額有變動時更新快取的總額
func (s *OrderRepo) UpdateOrderAmount(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	total := order.CalculateTotal()
	if order.TotalAmount.Equal(total) {
		return nil
	}
	order.TotalAmount = total
	return s.tx(ctx, tx).Model(&model.Order{}).
		Where("order_id = ?", order.OrderID).
		Update("total_amount", total).Error
}

// 取得訂單項目
func (s *OrderRepo) GetOrderItem(ctx context.Context, tx *gorm.DB, orderID, productID uint) (*model.OrderItem, error) {
	var item model.OrderItem
	err := s.tx(ctx, tx).Where("order_id = ? AND product_id = ?", orderID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// 新增訂單項目
func (s *OrderRepo) AddOrderItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error {
	return s.tx(ctx, tx).Create(item).Error
}

// Upsert 訂單項目到指定數量 (絕對值，不累加)
func (s *OrderRepo) UpsertOrderItem(ctx context.Context, tx *gorm.DB, item *model.OrderItem) error {
	return s.tx(ctx, tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(item).Error
}

// 更新訂單項目數量
func (s *OrderRepo) UpdateOrderItemQuantity(ctx context.Context, tx *gorm.DB, orderID, productID uint, quantity int) error {
	return s.tx(ctx, tx).Model(&model.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Update("quantity", quantity).Error
}

// 刪除訂單項目
func (s *OrderRepo) DeleteOrderItem(ctx context.Context, tx *gorm.DB, orderID, productID uint) error {
	return s.tx(ctx, tx).Where("order_id = ? AND product_id = ?", orderID, productID).
		Delete(&model.OrderItem{}).Error
}
