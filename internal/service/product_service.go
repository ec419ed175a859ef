package service

import (
	"context"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

// PricedProduct 帶上買家層級解析後價格的商品
type PricedProduct struct {
	model.ProductItem
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent int             `json:"discount_percent"`
}

type IProductService interface {
	CreateProduct(ctx context.Context, product *model.ProductItem) error
	GetProduct(ctx context.Context, productID uint, tier model.Tier) (*PricedProduct, error)
	GetProducts(ctx context.Context, tier model.Tier) ([]PricedProduct, error)
}

type ProductService struct {
	productRepo *db.ProductRepo
}

func NewProductService(productRepo *db.ProductRepo) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) CreateProduct(ctx context.Context, product *model.ProductItem) error {
	return s.productRepo.CreateProduct(ctx, product)
}

// 單取商品，價格依買家層級解析 (數量用批發門檻前的 1 計)
func (s *ProductService) GetProduct(ctx context.Context, productID uint, tier model.Tier) (*PricedProduct, error) {
	product, err := s.productRepo.GetProductByID(ctx, nil, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	priced := toPriced(product, tier)
	return &priced, nil
}

// 上架中的商品列表
func (s *ProductService) GetProducts(ctx context.Context, tier model.Tier) ([]PricedProduct, error) {
	products, err := s.productRepo.GetActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	priced := make([]PricedProduct, 0, len(products))
	for i := range products {
		priced = append(priced, toPriced(&products[i], tier))
	}
	return priced, nil
}

func toPriced(product *model.ProductItem, tier model.Tier) PricedProduct {
	return PricedProduct{
		ProductItem:     *product,
		UnitPrice:       ResolvePrice(product, tier, product.MinWholesaleQuantity),
		DiscountPercent: DiscountPercent(product.OldPrice, product.NewPrice),
	}
}

var _ IProductService = (*ProductService)(nil)
