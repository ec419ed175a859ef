package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"gorm.io/gorm"
)

type BankCardRepo struct {
	db *DbDao
}

func NewBankCardRepo(db *DbDao) *BankCardRepo {
	return &BankCardRepo{db: db}
}

// Read - 根據ID查詢收款卡
func (s *BankCardRepo) GetBankCardByID(ctx context.Context, id uint) (*model.BankCard, error) {
	var card model.BankCard
	err := s.db.WithContext(ctx).First(&card, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// Read - 取得預設收款卡 (第一張)，訂單沒有指定卡時使用
func (s *BankCardRepo) GetDefaultBankCard(ctx context.Context) (*model.BankCard, error) {
	var card model.BankCard
	err := s.db.WithContext(ctx).Order("bank_card_id ASC").First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}
