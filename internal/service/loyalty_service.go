package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrBonusNotFound        = errors.New("pending bonus is not exist")
	ErrBonusAlreadyApproved = errors.New("pending bonus is already approved")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidPercent       = errors.New("percent must be between 0 and 100")
)

// HistoryEntry 點數卡異動紀錄，正數入帳負數折抵
type HistoryEntry struct {
	Kind        string          `json:"kind"` // spending / cashback / referral
	Amount      decimal.Decimal `json:"amount"`
	OrderID     *uint           `json:"order_id,omitempty"`
	OrderNumber string          `json:"order_number,omitempty"`
	Description string          `json:"description,omitempty"`
}

const (
	HistoryKindSpending = "spending"
	HistoryKindCashback = "cashback"
	HistoryKindReferral = "referral"
)

type ILoyaltyService interface {
	MyCard(ctx context.Context, profileID uint) (*model.LoyaltyCard, error)
	MyBonuses(ctx context.Context, profileID uint) ([]model.PendingBonus, error)
	History(ctx context.Context, profileID uint) ([]HistoryEntry, decimal.Decimal, error)
	Debit(ctx context.Context, profileID uint, amount decimal.Decimal) (*model.LoyaltyCard, error)
	ApproveBonus(ctx context.Context, bonusID uint, percent int) (*model.PendingBonus, error)
}

type LoyaltyService struct {
	dao          *db.DbDao
	loyaltyRepo  *db.LoyaltyRepo
	orderRepo    *db.OrderRepo
	referralRepo *db.ReferralRepo
}

func NewLoyaltyService(dao *db.DbDao, loyaltyRepo *db.LoyaltyRepo, orderRepo *db.OrderRepo, referralRepo *db.ReferralRepo) *LoyaltyService {
	return &LoyaltyService{dao: dao, loyaltyRepo: loyaltyRepo, orderRepo: orderRepo, referralRepo: referralRepo}
}

// MyCard 取得自己的點數卡，第一次查詢時建立
func (s *LoyaltyService) MyCard(ctx context.Context, profileID uint) (*model.LoyaltyCard, error) {
	return s.loyaltyRepo.GetOrCreateCard(ctx, nil, profileID)
}

// MyBonuses 取得自己的回饋快照
func (s *LoyaltyService) MyBonuses(ctx context.Context, profileID uint) ([]model.PendingBonus, error) {
	return s.loyaltyRepo.GetPendingBonusesByProfileID(ctx, profileID)
}

/*
History 組出點數異動紀錄與目前餘額

	spending: 有忠誠折抵的訂單，金額記負數
	cashback: 已入帳的回饋快照
	referral: 已獎勵的推薦
*/
func (s *LoyaltyService) History(ctx context.Context, profileID uint) ([]HistoryEntry, decimal.Decimal, error) {
	card, err := s.loyaltyRepo.GetOrCreateCard(ctx, nil, profileID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	entries := make([]HistoryEntry, 0)

	orders, err := s.orderRepo.GetLoyaltySpendOrders(ctx, profileID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	for i := range orders {
		order := &orders[i]
		entries = append(entries, HistoryEntry{
			Kind:        HistoryKindSpending,
			Amount:      order.LoyaltyPayment.Neg(),
			OrderID:     &order.OrderID,
			OrderNumber: order.OrderNumber,
		})
	}

	bonuses, err := s.loyaltyRepo.GetPendingBonusesByProfileID(ctx, profileID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	for i := range bonuses {
		bonus := &bonuses[i]
		if bonus.Status != model.BonusStatusApproved {
			continue
		}
		entries = append(entries, HistoryEntry{
			Kind:    HistoryKindCashback,
			Amount:  bonus.BonusAmount,
			OrderID: &bonus.OrderID,
		})
	}

	referrals, err := s.referralRepo.GetReferralsByReferrerID(ctx, profileID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	for i := range referrals {
		ref := &referrals[i]
		if ref.Status != model.ReferralStatusRewarded {
			continue
		}
		desc := ""
		if ref.Referee != nil {
			desc = ref.Referee.PhoneNumber
		}
		entries = append(entries, HistoryEntry{
			Kind:        HistoryKindReferral,
			Amount:      model.ReferralRewardAmount,
			Description: desc,
		})
	}

	return entries, card.CurrentBalance, nil
}

// Debit 直接扣點，餘額不足回傳錯誤且餘額不變
func (s *LoyaltyService) Debit(ctx context.Context, profileID uint, amount decimal.Decimal) (*model.LoyaltyCard, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.loyaltyRepo.GetOrCreateCard(ctx, nil, profileID); err != nil {
		return nil, err
	}
	rows, err := s.loyaltyRepo.DebitBalance(ctx, nil, profileID, amount)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInsufficientBalance
	}
	return s.loyaltyRepo.GetCardByProfileID(ctx, profileID)
}

/*
ApproveBonus 管理員設定回饋比例並入帳

	回饋金額 = 訂單金額 × percent / 100
	只有 pending 快照可以核准，重複核准直接被擋掉，不會入帳兩次
*/
func (s *LoyaltyService) ApproveBonus(ctx context.Context, bonusID uint, percent int) (*model.PendingBonus, error) {
	if percent < 0 || percent > 100 {
		return nil, ErrInvalidPercent
	}

	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bonus, err := s.loyaltyRepo.GetPendingBonusByID(ctx, tx, bonusID)
		if err != nil {
			return err
		}
		if bonus == nil {
			return ErrBonusNotFound
		}
		if bonus.Status == model.BonusStatusApproved {
			return ErrBonusAlreadyApproved
		}

		bonus.Percent = &percent
		bonus.Status = model.BonusStatusApproved
		bonus.BonusAmount = bonus.ComputedBonusAmount()
		if err := s.loyaltyRepo.UpdatePendingBonus(ctx, tx, bonus); err != nil {
			return err
		}

		if _, err := s.loyaltyRepo.GetOrCreateCard(ctx, tx, bonus.ProfileID); err != nil {
			return err
		}
		return s.loyaltyRepo.CreditBalance(ctx, tx, bonus.ProfileID, bonus.BonusAmount)
	})
	if err != nil {
		return nil, err
	}
	return s.loyaltyRepo.GetPendingBonusByID(ctx, nil, bonusID)
}

var _ ILoyaltyService = (*LoyaltyService)(nil)
