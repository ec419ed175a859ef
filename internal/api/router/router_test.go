package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/mmart/internal/api"
	"github.com/RoyceAzure/lab/mmart/internal/api/handler"
	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/notifier"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/mmart/internal/infra/sms"
	"github.com/RoyceAzure/lab/mmart/internal/service"
	"github.com/RoyceAzure/lab/mmart/internal/token"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memOTPStore struct {
	codes map[string]string
}

func (m *memOTPStore) Set(ctx context.Context, phone, code string) error {
	m.codes[phone] = code
	return nil
}

func (m *memOTPStore) Get(ctx context.Context, phone string) (string, error) {
	code, ok := m.codes[phone]
	if !ok {
		return "", redis_repo.ErrOTPNotFound
	}
	return code, nil
}

func (m *memOTPStore) Delete(ctx context.Context, phone string) error {
	delete(m.codes, phone)
	return nil
}

type testEnv struct {
	router   http.Handler
	dao      *db.DbDao
	otpStore *memOTPStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	dao := db.NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())

	profileRepo := db.NewProfileRepo(dao)
	productRepo := db.NewProductRepo(dao)
	orderRepo := db.NewOrderRepo(dao)
	loyaltyRepo := db.NewLoyaltyRepo(dao)
	referralRepo := db.NewReferralRepo(dao)
	bankCardRepo := db.NewBankCardRepo(dao)

	tokenMaker, err := token.NewMaker("12345678901234567890123456789012", time.Hour)
	require.NoError(t, err)

	otpStore := &memOTPStore{codes: map[string]string{}}
	referralService := service.NewReferralService(dao, referralRepo, profileRepo, loyaltyRepo)
	authService := service.NewAuthService(dao, profileRepo, otpStore, sms.NoopSender{}, tokenMaker, referralService)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(dao, orderRepo, productRepo)
	orderService := service.NewOrderService(
		dao, orderRepo, productRepo, profileRepo, loyaltyRepo, bankCardRepo,
		notifier.NoopNotifier{}, decimal.Zero)
	loyaltyService := service.NewLoyaltyService(dao, loyaltyRepo, orderRepo, referralRepo)

	server := api.NewServer(
		handler.NewAuthHandler(authService),
		handler.NewProductHandler(productService, profileRepo),
		handler.NewCartHandler(cartService),
		handler.NewOrderHandler(orderService, t.TempDir()),
		handler.NewLoyaltyHandler(loyaltyService, referralService),
		handler.NewAdminHandler(orderService, loyaltyService, 10),
	)

	zl := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	return &testEnv{
		router:   SetupRouter(server, tokenMaker, &zl),
		dao:      dao,
		otpStore: otpStore,
	}
}

func (e *testEnv) do(t *testing.T, method, path, accessToken string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, phone string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"phone_number": phone,
		"full_name":    "test",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{
		"phone_number": phone,
		"code":         e.otpStore.codes[phone],
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

func TestCartEndpointsRequireAuth(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductsArePublic(t *testing.T) {
	env := setupTestEnv(t)

	product := &model.ProductItem{Name: "綠茶", OldPrice: decimal.NewFromInt(100), Active: true}
	require.NoError(t, env.dao.Create(product).Error)

	rec := env.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "綠茶")
}

func TestRegisterVerifyAndCartFlow(t *testing.T) {
	env := setupTestEnv(t)
	accessToken := env.login(t, "0966000001")

	product := &model.ProductItem{
		Name:              "紅茶",
		OldPrice:          decimal.NewFromInt(80),
		AvailableQuantity: 10,
		Active:            true,
	}
	require.NoError(t, env.dao.Create(product).Error)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/lines", accessToken, map[string]any{
		"product_id": product.ProductID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			OrderID     uint            `json:"order_id"`
			TotalAmount decimal.Decimal `json:"total_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Data.TotalAmount.Equal(decimal.NewFromInt(160)))

	// checkout 後訂單列表看得到
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/checkout", resp.Data.OrderID), accessToken, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/orders", accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "pending")
}

func TestCheckoutEmptyCartReturns400(t *testing.T) {
	env := setupTestEnv(t)
	accessToken := env.login(t, "0966000002")

	rec := env.do(t, http.MethodGet, "/api/v1/cart", accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			OrderID uint `json:"order_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/checkout", resp.Data.OrderID), accessToken, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentTargetPerOrder(t *testing.T) {
	env := setupTestEnv(t)
	accessToken := env.login(t, "0966000003")

	product := &model.ProductItem{
		Name:              "烏龍茶",
		OldPrice:          decimal.NewFromInt(120),
		AvailableQuantity: 10,
		Active:            true,
	}
	require.NoError(t, env.dao.Create(product).Error)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/lines", accessToken, map[string]any{
		"product_id": product.ProductID,
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			OrderID uint `json:"order_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/checkout", resp.Data.OrderID), accessToken, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	target := fmt.Sprintf("/api/v1/orders/%d/payment-target", resp.Data.OrderID)

	// 還沒設定任何收款卡
	rec = env.do(t, http.MethodGet, target, accessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, env.dao.Create(&model.BankCard{CardNumber: "4111111111111111", CardHolder: "百萬商城"}).Error)

	rec = env.do(t, http.MethodGet, target, accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "4111111111111111")
}

func TestApproveBonusDefaultPercent(t *testing.T) {
	env := setupTestEnv(t)
	accessToken := env.login(t, "0966000004")

	var profile model.Profile
	require.NoError(t, env.dao.Where("phone_number = ?", "0966000004").First(&profile).Error)

	order := &model.Order{
		OrderNumber: "MMT99001",
		UserID:      profile.ProfileID,
		Status:      model.OrderStatusSent,
		TotalAmount: decimal.NewFromInt(1000),
	}
	require.NoError(t, env.dao.Create(order).Error)
	bonus := &model.PendingBonus{
		ProfileID:     profile.ProfileID,
		OrderID:       order.OrderID,
		CustomerLabel: "test 0966000004",
		OrderAmount:   order.TotalAmount,
		Status:        model.BonusStatusPending,
	}
	require.NoError(t, env.dao.Create(bonus).Error)

	// 沒帶 percent 用預設比例 10%: 1000 * 10 / 100 = 100
	rec := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/v1/admin/bonuses/%d/approve", bonus.PendingBonusID), accessToken, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	var card model.LoyaltyCard
	require.NoError(t, env.dao.Where("profile_id = ?", profile.ProfileID).First(&card).Error)
	require.True(t, card.CurrentBalance.Equal(decimal.NewFromInt(100)),
		"expected 100, got %s", card.CurrentBalance)
}
