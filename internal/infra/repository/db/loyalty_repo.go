package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LoyaltyRepo struct {
	db *DbDao
}

func NewLoyaltyRepo(db *DbDao) *LoyaltyRepo {
	return &LoyaltyRepo{db: db}
}

func (s *LoyaltyRepo) tx(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Read - 取得用戶的卡，不存在則以預設週期 (今天起算 60 天) 建立
func (s *LoyaltyRepo) GetOrCreateCard(ctx context.Context, tx *gorm.DB, profileID uint) (*model.LoyaltyCard, error) {
	db := s.tx(ctx, tx)

	var card model.LoyaltyCard
	err := db.Where("profile_id = ?", profileID).First(&card).Error
	if err == nil {
		return &card, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	today := time.Now().Truncate(24 * time.Hour)
	card = model.LoyaltyCard{
		ProfileID:      profileID,
		CurrentBalance: decimal.Zero,
		CycleStart:     today,
		CycleEnd:       today.AddDate(0, 0, model.DefaultCycleDays),
		CycleDays:      model.DefaultCycleDays,
		CycleNumber:    1,
	}
	if err := db.Create(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// Read - 取得用戶的卡，不存在回傳 nil
func (s *LoyaltyRepo) GetCardByProfileID(ctx context.Context, profileID uint) (*model.LoyaltyCard, error) {
	var card model.LoyaltyCard
	err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// Update - 原子扣款，餘額不足時不會更新任何 row
// 檢查與扣款是同一條 UPDATE，併發下不會扣成負數
func (s *LoyaltyRepo) DebitBalance(ctx context.Context, tx *gorm.DB, profileID uint, amount decimal.Decimal) (int64, error) {
	res := s.tx(ctx, tx).Model(&model.LoyaltyCard{}).
		Where("profile_id = ? AND current_balance >= ?", profileID, amount).
		Update("current_balance", gorm.Expr("current_balance + ?", amount.Neg()))
	return res.RowsAffected, res.Error
}

// Update - 原子加款
func (s *LoyaltyRepo) CreditBalance(ctx context.Context, tx *gorm.DB, profileID uint, amount decimal.Decimal) error {
	return s.tx(ctx, tx).Model(&model.LoyaltyCard{}).
		Where("profile_id = ?", profileID).
		Update("current_balance", gorm.Expr("current_balance + ?", amount)).Error
}

// Create - 建立回饋快照，一張訂單最多一筆 (unique order_id)
// 已存在時回傳 false，不視為錯誤
func (s *LoyaltyRepo) CreatePendingBonusOnce(ctx context.Context, tx *gorm.DB, bonus *model.PendingBonus) (bool, error) {
	db := s.tx(ctx, tx)

	var count int64
	if err := db.Model(&model.PendingBonus{}).Where("order_id = ?", bonus.OrderID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	err := db.Create(bonus).Error
	if err != nil {
		if isUniqueViolation(err) {
			// 併發重試下輸給別人，視同已存在
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Read - 根據ID查詢回饋快照
func (s *LoyaltyRepo) GetPendingBonusByID(ctx context.Context, tx *gorm.DB, id uint) (*model.PendingBonus, error) {
	var bonus model.PendingBonus
	err := s.tx(ctx, tx).First(&bonus, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bonus, nil
}

// Read - 查詢用戶所有回饋快照 (history 用)
func (s *LoyaltyRepo) GetPendingBonusesByProfileID(ctx context.Context, profileID uint) ([]model.PendingBonus, error) {
	var bonuses []model.PendingBonus
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&bonuses).Error
	return bonuses, err
}

// Update - 更新回饋快照
func (s *LoyaltyRepo) UpdatePendingBonus(ctx context.Context, tx *gorm.DB, bonus *model.PendingBonus) error {
	return s.tx(ctx, tx).Save(bonus).Error
}
