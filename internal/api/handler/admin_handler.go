package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/mmart/internal/pkg/api"
	"github.com/RoyceAzure/lab/mmart/internal/api/dto"
	"github.com/RoyceAzure/lab/mmart/internal/service"
)

// AdminHandler 後台操作: 訂單審核、出貨、回饋入帳
type AdminHandler struct {
	orderService   service.IOrderService
	loyaltyService service.ILoyaltyService
	// 核可回饋時未指定比例的預設值
	defaultBonusPercent int
}

func NewAdminHandler(orderService service.IOrderService, loyaltyService service.ILoyaltyService, defaultBonusPercent int) *AdminHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	if loyaltyService == nil {
		panic("loyaltyService cannot be nil")
	}
	return &AdminHandler{
		orderService:        orderService,
		loyaltyService:      loyaltyService,
		defaultBonusPercent: defaultBonusPercent,
	}
}

// ApproveOrder 核准訂單
func (a *AdminHandler) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	order, err := a.orderService.ApproveOrder(r.Context(), orderID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(order))
}

// RejectOrder 退回訂單
func (a *AdminHandler) RejectOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	order, err := a.orderService.RejectOrder(r.Context(), orderID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(order))
}

// MarkSent 出貨，扣庫存並建立回饋快照
func (a *AdminHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	order, err := a.orderService.MarkSent(r.Context(), orderID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(order))
}

// ApproveBonus 設定回饋比例並入帳
func (a *AdminHandler) ApproveBonus(w http.ResponseWriter, r *http.Request) {
	bonusID, err := uintParam(r, "bonusID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	var approveDTO dto.ApproveBonusDTO
	if err := json.NewDecoder(r.Body).Decode(&approveDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	percent := a.defaultBonusPercent
	if approveDTO.Percent != nil {
		percent = *approveDTO.Percent
	}

	bonus, err := a.loyaltyService.ApproveBonus(r.Context(), bonusID, percent)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, bonus)
}
