package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/mmart/internal/pkg/api"
	"github.com/RoyceAzure/lab/mmart/internal/api/middleware"
	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/mmart/internal/service"
)

type ProductHandler struct {
	productService service.IProductService
	profileRepo    *db.ProfileRepo
}

func NewProductHandler(productService service.IProductService, profileRepo *db.ProfileRepo) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	if profileRepo == nil {
		panic("profileRepo cannot be nil")
	}
	return &ProductHandler{
		productService: productService,
		profileRepo:    profileRepo,
	}
}

// 未登入的訪客用一般零售價
func (p *ProductHandler) resolveTier(r *http.Request) model.Tier {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		return model.TierStandard
	}
	profile, err := p.profileRepo.GetProfileByID(r.Context(), claims.ProfileID)
	if err != nil || profile == nil {
		return model.TierStandard
	}
	return profile.PriceTier()
}

// GetProducts 商品列表，價格依登入者層級
func (p *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.productService.GetProducts(r.Context(), p.resolveTier(r))
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, products)
}

// GetProduct 單一商品
func (p *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	product, err := p.productService.GetProduct(r.Context(), productID, p.resolveTier(r))
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, product)
}
