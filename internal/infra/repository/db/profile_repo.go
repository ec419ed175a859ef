package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"gorm.io/gorm"
)

type ProfileRepo struct {
	db *DbDao
}

func NewProfileRepo(db *DbDao) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (s *ProfileRepo) tx(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Create - 創建用戶
func (s *ProfileRepo) CreateProfile(ctx context.Context, tx *gorm.DB, profile *model.Profile) error {
	return s.tx(ctx, tx).Create(profile).Error
}

// Read - 根據ID查詢用戶
func (s *ProfileRepo) GetProfileByID(ctx context.Context, id uint) (*model.Profile, error) {
	var profile model.Profile
	err := s.db.WithContext(ctx).First(&profile, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Read - 根據電話號碼查詢用戶
func (s *ProfileRepo) GetProfileByPhone(ctx context.Context, tx *gorm.DB, phone string) (*model.Profile, error) {
	var profile model.Profile
	err := s.tx(ctx, tx).Where("phone_number = ?", phone).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Read - 根據推薦碼查詢用戶
func (s *ProfileRepo) GetProfileByReferralCode(ctx context.Context, tx *gorm.DB, code string) (*model.Profile, error) {
	var profile model.Profile
	err := s.tx(ctx, tx).Where("referral_code = ?", code).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update - 更新用戶
func (s *ProfileRepo) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	return s.db.WithContext(ctx).Save(profile).Error
}

// Read - 查詢用戶自己的送貨地址
func (s *ProfileRepo) GetLocationByID(ctx context.Context, tx *gorm.DB, userID, id uint) (*model.Location, error) {
	var loc model.Location
	err := s.tx(ctx, tx).First(&loc, "location_id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}
