package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"gorm.io/gorm"
)

var ErrReferralNotFound = errors.New("referral is not exist")

type IReferralService interface {
	CreateReferral(ctx context.Context, refereeID uint, referralCode string) error
	MarkRewarded(ctx context.Context, referralID uint) (*model.Referral, error)
	MyReferrals(ctx context.Context, referrerID uint) ([]model.Referral, error)
}

type ReferralService struct {
	dao          *db.DbDao
	referralRepo *db.ReferralRepo
	profileRepo  *db.ProfileRepo
	loyaltyRepo  *db.LoyaltyRepo
}

func NewReferralService(dao *db.DbDao, referralRepo *db.ReferralRepo, profileRepo *db.ProfileRepo, loyaltyRepo *db.LoyaltyRepo) *ReferralService {
	return &ReferralService{dao: dao, referralRepo: referralRepo, profileRepo: profileRepo, loyaltyRepo: loyaltyRepo}
}

/*
CreateReferral 新用戶帶推薦碼註冊時建立推薦並發獎勵

	推薦碼查不到、或指到自己時默默跳過，註冊流程不受影響
	建立即 rewarded 並立刻入帳固定獎勵
	同一組推薦人/被推薦人只會建立一次，重複呼叫不會再入帳
*/
func (s *ReferralService) CreateReferral(ctx context.Context, refereeID uint, referralCode string) error {
	if referralCode == "" {
		return nil
	}

	return s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referrer, err := s.profileRepo.GetProfileByReferralCode(ctx, tx, referralCode)
		if err != nil {
			return err
		}
		if referrer == nil || referrer.ProfileID == refereeID {
			return nil
		}

		referral := &model.Referral{
			ReferrerID: referrer.ProfileID,
			RefereeID:  refereeID,
			Status:     model.ReferralStatusRewarded,
		}
		created, err := s.referralRepo.CreateReferral(ctx, tx, referral)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return s.credit(ctx, tx, referrer.ProfileID)
	})
}

/*
MarkRewarded 把 pending 推薦轉成 rewarded 並入帳

	只有 pending -> rewarded 這個轉換會發獎勵
	已經 rewarded 或 expired 的重存不會再入帳
*/
func (s *ReferralService) MarkRewarded(ctx context.Context, referralID uint) (*model.Referral, error) {
	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referral, err := s.referralRepo.GetReferralByID(ctx, tx, referralID)
		if err != nil {
			return err
		}
		if referral == nil {
			return ErrReferralNotFound
		}
		if referral.Status != model.ReferralStatusPending {
			return nil
		}

		if err := s.referralRepo.UpdateReferralStatus(ctx, tx, referralID, model.ReferralStatusRewarded); err != nil {
			return err
		}
		return s.credit(ctx, tx, referral.ReferrerID)
	})
	if err != nil {
		return nil, err
	}
	return s.referralRepo.GetReferralByID(ctx, nil, referralID)
}

// MyReferrals 查詢自己推薦過的人
func (s *ReferralService) MyReferrals(ctx context.Context, referrerID uint) ([]model.Referral, error) {
	return s.referralRepo.GetReferralsByReferrerID(ctx, referrerID)
}

func (s *ReferralService) credit(ctx context.Context, tx *gorm.DB, referrerID uint) error {
	if _, err := s.loyaltyRepo.GetOrCreateCard(ctx, tx, referrerID); err != nil {
		return err
	}
	return s.loyaltyRepo.CreditBalance(ctx, tx, referrerID, model.ReferralRewardAmount)
}

var _ IReferralService = (*ReferralService)(nil)
