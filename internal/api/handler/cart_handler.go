package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/mmart/internal/pkg/api"
	"github.com/RoyceAzure/lab/mmart/internal/api/dto"
	"github.com/RoyceAzure/lab/mmart/internal/api/middleware"
	"github.com/RoyceAzure/lab/mmart/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{
		cartService: cartService,
	}
}

// GetCart 取得購物車，沒有就建立空車
func (c *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	cart, err := c.cartService.GetCart(r.Context(), claims.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(cart))
}

// AddLine 加商品進購物車 (數量累加)
func (c *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var lineDTO dto.CartLineDTO
	if err := json.NewDecoder(r.Body).Decode(&lineDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	cart, err := c.cartService.CreateLine(r.Context(), claims.ProfileID, lineDTO.ProductID, lineDTO.Quantity)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(cart))
}

// ManageLine 設定購物車明細為指定數量，0 等於移除
func (c *CartHandler) ManageLine(w http.ResponseWriter, r *http.Request) {
	var lineDTO dto.CartLineDTO
	if err := json.NewDecoder(r.Body).Decode(&lineDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	cart, err := c.cartService.ManageLine(r.Context(), claims.ProfileID, lineDTO.ProductID, lineDTO.Quantity)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(cart))
}

// SetLineQuantity 修改指定訂單的明細數量，只限 in_cart
func (c *CartHandler) SetLineQuantity(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	var lineDTO dto.CartLineDTO
	if err := json.NewDecoder(r.Body).Decode(&lineDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	cart, err := c.cartService.SetLineQuantity(r.Context(), claims.ProfileID, orderID, lineDTO.ProductID, lineDTO.Quantity)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(cart))
}

// RemoveLine 從購物車移除商品
func (c *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	productID, err := uintParam(r, "productID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	cart, err := c.cartService.RemoveLine(r.Context(), claims.ProfileID, productID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(cart))
}
