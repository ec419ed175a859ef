package db

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDao(t *testing.T) *DbDao {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	dao := NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())
	return dao
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^MMT\d{5}$`)
	for i := 0; i < 50; i++ {
		require.Regexp(t, pattern, generateOrderNumber())
	}
}

func TestCreateOrderAssignsNumber(t *testing.T) {
	dao := newTestDao(t)
	orderRepo := NewOrderRepo(dao)
	ctx := context.Background()

	order := &model.Order{UserID: 1, Status: model.OrderStatusInCart}
	require.NoError(t, orderRepo.CreateOrder(ctx, nil, order))
	require.Regexp(t, `^MMT\d{5}$`, order.OrderNumber)
	require.NotZero(t, order.OrderID)
}

func TestGetOrCreateCartReusesExisting(t *testing.T) {
	dao := newTestDao(t)
	orderRepo := NewOrderRepo(dao)
	ctx := context.Background()

	first, err := orderRepo.GetOrCreateCart(ctx, nil, 7)
	require.NoError(t, err)
	second, err := orderRepo.GetOrCreateCart(ctx, nil, 7)
	require.NoError(t, err)
	require.Equal(t, first.OrderID, second.OrderID)
}

func TestOneCartPerUserIndex(t *testing.T) {
	dao := newTestDao(t)
	orderRepo := NewOrderRepo(dao)
	ctx := context.Background()

	first := &model.Order{UserID: 9, Status: model.OrderStatusInCart}
	require.NoError(t, orderRepo.CreateOrder(ctx, nil, first))

	// 直接再插一張 in_cart 會撞 partial unique index，立刻回購物車衝突，不重試編號
	second := &model.Order{UserID: 9, Status: model.OrderStatusInCart}
	err := orderRepo.CreateOrder(ctx, nil, second)
	require.ErrorIs(t, err, ErrCartConflict)

	// 第一張離開 in_cart 後就可以再開新車
	require.NoError(t, orderRepo.UpdateOrderStatus(ctx, nil, first.OrderID, model.OrderStatusPending))
	third := &model.Order{UserID: 9, Status: model.OrderStatusInCart}
	require.NoError(t, orderRepo.CreateOrder(ctx, nil, third))
}

func TestUpsertOrderItemAbsolute(t *testing.T) {
	dao := newTestDao(t)
	orderRepo := NewOrderRepo(dao)
	ctx := context.Background()

	product := &model.ProductItem{Name: "p", Active: true}
	require.NoError(t, dao.Create(product).Error)

	order := &model.Order{UserID: 3, Status: model.OrderStatusInCart}
	require.NoError(t, orderRepo.CreateOrder(ctx, nil, order))

	item := &model.OrderItem{OrderID: order.OrderID, ProductID: product.ProductID, Quantity: 2}
	require.NoError(t, orderRepo.UpsertOrderItem(ctx, nil, item))

	item2 := &model.OrderItem{OrderID: order.OrderID, ProductID: product.ProductID, Quantity: 7}
	require.NoError(t, orderRepo.UpsertOrderItem(ctx, nil, item2))

	got, err := orderRepo.GetOrderItem(ctx, nil, order.OrderID, product.ProductID)
	require.NoError(t, err)
	require.Equal(t, 7, got.Quantity)
}

func TestReduceStockGuard(t *testing.T) {
	dao := newTestDao(t)
	productRepo := NewProductRepo(dao)
	ctx := context.Background()

	product := &model.ProductItem{Name: "p", AvailableQuantity: 5, Active: true}
	require.NoError(t, dao.Create(product).Error)

	rows, err := productRepo.ReduceStock(ctx, nil, product.ProductID, 3)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	// 剩 2 件，再扣 3 件不會動任何 row
	rows, err = productRepo.ReduceStock(ctx, nil, product.ProductID, 3)
	require.NoError(t, err)
	require.Zero(t, rows)

	var got model.ProductItem
	require.NoError(t, dao.First(&got, product.ProductID).Error)
	require.Equal(t, 2, got.AvailableQuantity)
}
