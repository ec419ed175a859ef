package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"gorm.io/gorm"
)

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) tx(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// Create - 創建商品
func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.ProductItem) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// Read - 根據ID查詢商品
func (s *ProductRepo) GetProductByID(ctx context.Context, tx *gorm.DB, id uint) (*model.ProductItem, error) {
	var product model.ProductItem
	err := s.tx(ctx, tx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Read - 查詢上架中的商品
func (s *ProductRepo) GetActiveProducts(ctx context.Context) ([]model.ProductItem, error) {
	var products []model.ProductItem
	err := s.db.WithContext(ctx).Where("active = ?", true).Find(&products).Error
	return products, err
}

// Update - 減少庫存，庫存不足時不會更新任何 row
// 呼叫端以 RowsAffected == 0 判斷庫存不足
func (s *ProductRepo) ReduceStock(ctx context.Context, tx *gorm.DB, id uint, quantity int) (int64, error) {
	res := s.tx(ctx, tx).Model(&model.ProductItem{}).
		Where("product_id = ? AND available_quantity >= ?", id, quantity).
		Update("available_quantity", gorm.Expr("available_quantity - ?", quantity))
	return res.RowsAffected, res.Error
}

// Update - 增加庫存
func (s *ProductRepo) AddStock(ctx context.Context, id uint, quantity int) error {
	return s.db.WithContext(ctx).Model(&model.ProductItem{}).
		Where("product_id = ?", id).
		Update("available_quantity", gorm.Expr("available_quantity + ?", quantity)).Error
}
