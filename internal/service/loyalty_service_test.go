package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newLoyaltyService(dao *db.DbDao) *LoyaltyService {
	return NewLoyaltyService(dao, db.NewLoyaltyRepo(dao), db.NewOrderRepo(dao), db.NewReferralRepo(dao))
}

func TestMyCardLazyCreation(t *testing.T) {
	dao := newTestDao(t)
	loyaltyService := newLoyaltyService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0933000001")

	card, err := loyaltyService.MyCard(ctx, profile.ProfileID)
	require.NoError(t, err)
	require.True(t, card.CurrentBalance.IsZero())
	require.Equal(t, model.DefaultCycleDays, card.CycleDays)
	require.Equal(t, 1, card.CycleNumber)
	require.WithinDuration(t, card.CycleStart.AddDate(0, 0, model.DefaultCycleDays), card.CycleEnd, time.Second)

	// 再查不會建第二張
	again, err := loyaltyService.MyCard(ctx, profile.ProfileID)
	require.NoError(t, err)
	require.Equal(t, card.LoyaltyCardID, again.LoyaltyCardID)
}

func TestDebitInsufficientBalanceUnchanged(t *testing.T) {
	dao := newTestDao(t)
	loyaltyService := newLoyaltyService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0933000002")
	setCardBalance(t, dao, profile.ProfileID, 3000)

	_, err := loyaltyService.Debit(ctx, profile.ProfileID, decimal.NewFromInt(5000))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.True(t, cardBalance(t, dao, profile.ProfileID).Equal(decimal.NewFromInt(3000)))

	card, err := loyaltyService.Debit(ctx, profile.ProfileID, decimal.NewFromInt(3000))
	require.NoError(t, err)
	require.True(t, card.CurrentBalance.IsZero())
}

func TestApproveBonusCreditsComputedAmount(t *testing.T) {
	dao := newTestDao(t)
	loyaltyService := newLoyaltyService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0933000003")

	bonus := &model.PendingBonus{
		ProfileID:   profile.ProfileID,
		OrderID:     1,
		OrderAmount: decimal.NewFromInt(10000),
		Status:      model.BonusStatusPending,
	}
	require.NoError(t, dao.Create(bonus).Error)

	approved, err := loyaltyService.ApproveBonus(ctx, bonus.PendingBonusID, 20)
	require.NoError(t, err)
	require.Equal(t, model.BonusStatusApproved, approved.Status)
	require.True(t, approved.BonusAmount.Equal(decimal.NewFromInt(2000)),
		"expected 2000, got %s", approved.BonusAmount)
	require.True(t, cardBalance(t, dao, profile.ProfileID).Equal(decimal.NewFromInt(2000)))
}

func TestApproveBonusTwiceRejected(t *testing.T) {
	dao := newTestDao(t)
	loyaltyService := newLoyaltyService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0933000004")

	bonus := &model.PendingBonus{
		ProfileID:   profile.ProfileID,
		OrderID:     2,
		OrderAmount: decimal.NewFromInt(10000),
		Status:      model.BonusStatusPending,
	}
	require.NoError(t, dao.Create(bonus).Error)

	_, err := loyaltyService.ApproveBonus(ctx, bonus.PendingBonusID, 20)
	require.NoError(t, err)

	_, err = loyaltyService.ApproveBonus(ctx, bonus.PendingBonusID, 30)
	require.ErrorIs(t, err, ErrBonusAlreadyApproved)

	// 只入帳一次
	require.True(t, cardBalance(t, dao, profile.ProfileID).Equal(decimal.NewFromInt(2000)))
}

func TestApproveBonusInvalidPercent(t *testing.T) {
	dao := newTestDao(t)
	loyaltyService := newLoyaltyService(dao)

	_, err := loyaltyService.ApproveBonus(context.Background(), 1, 101)
	require.ErrorIs(t, err, ErrInvalidPercent)
	_, err = loyaltyService.ApproveBonus(context.Background(), 1, -1)
	require.ErrorIs(t, err, ErrInvalidPercent)
}

func TestHistoryAggregation(t *testing.T) {
	dao := newTestDao(t)
	loyaltyService := newLoyaltyService(dao)
	ctx := context.Background()

	profile := createTestProfile(t, dao, "0933000005")
	setCardBalance(t, dao, profile.ProfileID, 1000)

	// 一筆折抵訂單
	order := &model.Order{
		OrderNumber:    "MMT90001",
		UserID:         profile.ProfileID,
		Status:         model.OrderStatusApproved,
		LoyaltyPayment: decimal.NewFromInt(500),
	}
	require.NoError(t, dao.Create(order).Error)

	// 一筆已入帳回饋
	percent := 10
	bonus := &model.PendingBonus{
		ProfileID:   profile.ProfileID,
		OrderID:     order.OrderID,
		OrderAmount: decimal.NewFromInt(3000),
		Percent:     &percent,
		BonusAmount: decimal.NewFromInt(300),
		Status:      model.BonusStatusApproved,
	}
	require.NoError(t, dao.Create(bonus).Error)

	entries, balance, err := loyaltyService.History(ctx, profile.ProfileID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(1000)))
	require.Len(t, entries, 2)

	kinds := map[string]decimal.Decimal{}
	for _, entry := range entries {
		kinds[entry.Kind] = entry.Amount
	}
	require.True(t, kinds[HistoryKindSpending].Equal(decimal.NewFromInt(-500)))
	require.True(t, kinds[HistoryKindCashback].Equal(decimal.NewFromInt(300)))
}
