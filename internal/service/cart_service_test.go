package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newCartService(dao *db.DbDao) *CartService {
	return NewCartService(dao, db.NewOrderRepo(dao), db.NewProductRepo(dao))
}

func TestCreateLineAccumulates(t *testing.T) {
	dao := newTestDao(t)
	cartService := newCartService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0911000001")
	product := createTestProduct(t, dao, "茶葉", 1000, 900, 100)

	cart, err := cartService.CreateLine(ctx, profile.ProfileID, product.ProductID, 2)
	require.NoError(t, err)
	require.Len(t, cart.OrderItems, 1)
	require.Equal(t, 2, cart.OrderItems[0].Quantity)

	// 同商品再加一件，數量累加成 3
	cart, err = cartService.CreateLine(ctx, profile.ProfileID, product.ProductID, 1)
	require.NoError(t, err)
	require.Len(t, cart.OrderItems, 1)
	require.Equal(t, 3, cart.OrderItems[0].Quantity)
	require.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(2700)),
		"expected 2700, got %s", cart.TotalAmount)
}

func TestManageLineIsAbsolute(t *testing.T) {
	dao := newTestDao(t)
	cartService := newCartService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0911000002")
	product := createTestProduct(t, dao, "咖啡豆", 500, 0, 100)

	cart, err := cartService.ManageLine(ctx, profile.ProfileID, product.ProductID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, cart.OrderItems[0].Quantity)

	// 設 3 就是 3，不是 8
	cart, err = cartService.ManageLine(ctx, profile.ProfileID, product.ProductID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, cart.OrderItems[0].Quantity)
	require.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(1500)))
}

func TestManageLineZeroDeletes(t *testing.T) {
	dao := newTestDao(t)
	cartService := newCartService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0911000003")
	product := createTestProduct(t, dao, "餅乾", 200, 0, 100)

	_, err := cartService.ManageLine(ctx, profile.ProfileID, product.ProductID, 4)
	require.NoError(t, err)

	cart, err := cartService.ManageLine(ctx, profile.ProfileID, product.ProductID, 0)
	require.NoError(t, err)
	require.Empty(t, cart.OrderItems)
	require.True(t, cart.TotalAmount.IsZero())
}

func TestCartTotalMatchesLines(t *testing.T) {
	dao := newTestDao(t)
	cartService := newCartService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0911000004")
	productA := createTestProduct(t, dao, "A", 1000, 900, 100)
	productB := createTestProduct(t, dao, "B", 300, 0, 100)

	_, err := cartService.CreateLine(ctx, profile.ProfileID, productA.ProductID, 2)
	require.NoError(t, err)
	cart, err := cartService.CreateLine(ctx, profile.ProfileID, productB.ProductID, 3)
	require.NoError(t, err)

	// 900*2 + 300*3
	require.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(2700)))
	require.True(t, cart.TotalAmount.Equal(cart.CalculateTotal()))
}

func TestOneCartPerUser(t *testing.T) {
	dao := newTestDao(t)
	cartService := newCartService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0911000005")
	product := createTestProduct(t, dao, "水", 50, 0, 100)

	first, err := cartService.GetCart(ctx, profile.ProfileID)
	require.NoError(t, err)

	_, err = cartService.CreateLine(ctx, profile.ProfileID, product.ProductID, 1)
	require.NoError(t, err)

	second, err := cartService.GetCart(ctx, profile.ProfileID)
	require.NoError(t, err)
	require.Equal(t, first.OrderID, second.OrderID)

	var count int64
	require.NoError(t, dao.Model(&model.Order{}).
		Where("user_id = ? AND status = ?", profile.ProfileID, model.OrderStatusInCart).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRemoveLineNotExist(t *testing.T) {
	dao := newTestDao(t)
	cartService := newCartService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0911000006")
	product := createTestProduct(t, dao, "糖", 100, 0, 100)

	_, err := cartService.RemoveLine(ctx, profile.ProfileID, product.ProductID)
	require.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestSetLineQuantityZeroDeletes(t *testing.T) {
	dao := newTestDao(t)
	cartService := newCartService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0911000008")
	product := createTestProduct(t, dao, "麵粉", 150, 0, 100)

	cart, err := cartService.CreateLine(ctx, profile.ProfileID, product.ProductID, 2)
	require.NoError(t, err)
	require.Len(t, cart.OrderItems, 1)

	// 數量設 0 等同刪除明細
	cart, err = cartService.SetLineQuantity(ctx, profile.ProfileID, cart.OrderID, product.ProductID, 0)
	require.NoError(t, err)
	require.Empty(t, cart.OrderItems)
	require.True(t, cart.TotalAmount.IsZero())

	// 負數才是不合法的數量
	_, err = cartService.SetLineQuantity(ctx, profile.ProfileID, cart.OrderID, product.ProductID, -1)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSetLineQuantityOnlyInCart(t *testing.T) {
	dao := newTestDao(t)
	cartService := newCartService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0911000007")
	product := createTestProduct(t, dao, "鹽", 100, 0, 100)

	cart, err := cartService.CreateLine(ctx, profile.ProfileID, product.ProductID, 1)
	require.NoError(t, err)

	// 訂單離開 in_cart 後明細就鎖定了
	require.NoError(t, dao.Model(&model.Order{}).
		Where("order_id = ?", cart.OrderID).
		Update("status", model.OrderStatusPending).Error)

	_, err = cartService.SetLineQuantity(ctx, profile.ProfileID, cart.OrderID, product.ProductID, 5)
	require.ErrorIs(t, err, ErrOrderNotEditable)
}
