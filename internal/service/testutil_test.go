package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 每個測試用獨立的 in-memory sqlite，避免測試間互相干擾
func newTestDao(t *testing.T) *db.DbDao {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	dao := db.NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())
	return dao
}

func createTestProfile(t *testing.T, dao *db.DbDao, phone string) *model.Profile {
	t.Helper()
	profile := &model.Profile{
		PhoneNumber:  phone,
		FullName:     "test user " + phone,
		ReferralCode: "REF" + phone,
	}
	require.NoError(t, dao.Create(profile).Error)
	return profile
}

func createTestProduct(t *testing.T, dao *db.DbDao, name string, oldPrice, newPrice int64, stock int) *model.ProductItem {
	t.Helper()
	product := &model.ProductItem{
		Kind:              model.ProductKindGoods,
		Name:              name,
		OldPrice:          decimal.NewFromInt(oldPrice),
		NewPrice:          decimal.NewFromInt(newPrice),
		AvailableQuantity: stock,
		Active:            true,
	}
	require.NoError(t, dao.Create(product).Error)
	return product
}

func cardBalance(t *testing.T, dao *db.DbDao, profileID uint) decimal.Decimal {
	t.Helper()
	var card model.LoyaltyCard
	require.NoError(t, dao.Where("profile_id = ?", profileID).First(&card).Error)
	return card.CurrentBalance
}

func setCardBalance(t *testing.T, dao *db.DbDao, profileID uint, balance int64) {
	t.Helper()
	loyaltyRepo := db.NewLoyaltyRepo(dao)
	_, err := loyaltyRepo.GetOrCreateCard(context.Background(), nil, profileID)
	require.NoError(t, err)
	require.NoError(t, dao.Model(&model.LoyaltyCard{}).
		Where("profile_id = ?", profileID).
		Update("current_balance", decimal.NewFromInt(balance)).Error)
}
