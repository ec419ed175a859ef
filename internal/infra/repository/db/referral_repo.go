package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"gorm.io/gorm"
)

type ReferralRepo struct {
	db *DbDao
}

func NewReferralRepo(db *DbDao) *ReferralRepo {
	return &ReferralRepo{db: db}
}

func (s *ReferralRepo) tx(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Create - 建立推薦關係，(referrer, referee) 已存在時回傳 false
func (s *ReferralRepo) CreateReferral(ctx context.Context, tx *gorm.DB, referral *model.Referral) (bool, error) {
	err := s.tx(ctx, tx).Create(referral).Error
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Read - 根據ID查詢推薦關係
func (s *ReferralRepo) GetReferralByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Referral, error) {
	var referral model.Referral
	err := s.tx(ctx, tx).First(&referral, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

// Read - 查詢某用戶發出的推薦，新的在前
func (s *ReferralRepo) GetReferralsByReferrerID(ctx context.Context, referrerID uint) ([]model.Referral, error) {
	var referrals []model.Referral
	err := s.db.WithContext(ctx).Preload("Referee").
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Find(&referrals).Error
	return referrals, err
}

// Update - 更新推薦狀態
func (s *ReferralRepo) UpdateReferralStatus(ctx context.Context, tx *gorm.DB, id uint, status model.ReferralStatus) error {
	return s.tx(ctx, tx).Model(&model.Referral{}).Where("referral_id = ?", id).Update("status", status).Error
}
