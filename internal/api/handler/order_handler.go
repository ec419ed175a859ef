package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/RoyceAzure/lab/mmart/internal/pkg/api"
	"github.com/RoyceAzure/lab/mmart/internal/api/dto"
	"github.com/RoyceAzure/lab/mmart/internal/api/middleware"
	"github.com/RoyceAzure/lab/mmart/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 憑證圖檔上限 10MB
const maxReceiptSize = 10 << 20

type OrderHandler struct {
	orderService service.IOrderService
	uploadDir    string
}

func NewOrderHandler(orderService service.IOrderService, uploadDir string) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{
		orderService: orderService,
		uploadDir:    uploadDir,
	}
}

// Checkout 送出訂單，已結束的訂單會複製成新訂單
func (o *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	var checkoutDTO dto.CheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&checkoutDTO); err != nil && err != io.EOF {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	order, err := o.orderService.Checkout(r.Context(), claims.ProfileID, orderID, checkoutDTO.LocationID, checkoutDTO.Comment)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(order))
}

// GetOrders 自己的訂單列表
func (o *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	orders, err := o.orderService.GetOrders(r.Context(), claims.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}

	orderDTOs := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		orderDTOs = append(orderDTOs, dto.ConvertOrderToDTO(&orders[i]))
	}
	api.SuccessJSON(w, orderDTOs)
}

// GetOrder 單筆訂單
func (o *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	order, err := o.orderService.GetOrder(r.Context(), claims.ProfileID, orderID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(order))
}

// GetPaymentTarget 取得訂單的匯款目標帳戶
func (o *OrderHandler) GetPaymentTarget(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	card, err := o.orderService.GetPaymentTarget(r.Context(), claims.ProfileID, orderID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.PaymentTargetDTO{
		CardNumber: card.CardNumber,
		CardHolder: card.CardHolder,
	})
}

/*
AttachReceipt 上傳匯款憑證 (multipart)

	receipt: 圖檔
	loyalty_spend: 選填，要折抵的點數
*/
func (o *OrderHandler) AttachReceipt(w http.ResponseWriter, r *http.Request) {
	orderID, err := uintParam(r, "orderID")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	loyaltySpend := decimal.Zero
	if raw := r.FormValue("loyalty_spend"); raw != "" {
		loyaltySpend, err = decimal.NewFromString(raw)
		if err != nil {
			api.ErrorJSON(w, http.StatusBadRequest, fmt.Errorf("invalid loyalty_spend: %q", raw))
			return
		}
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, errMissingField("receipt"))
		return
	}
	defer file.Close()

	receiptPath, err := o.saveReceipt(file, header.Filename)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err)
		return
	}

	claims := middleware.GetClaims(r.Context())
	order, err := o.orderService.AttachReceipt(r.Context(), claims.ProfileID, orderID, receiptPath, loyaltySpend)
	if err != nil {
		// 訂單更新失敗時移除剛存的檔案
		os.Remove(filepath.Join(o.uploadDir, filepath.Base(receiptPath)))
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertOrderToDTO(order))
}

func (o *OrderHandler) saveReceipt(file io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(o.uploadDir, 0o755); err != nil {
		return "", err
	}

	filename := uuid.New().String() + filepath.Ext(originalName)
	dst, err := os.Create(filepath.Join(o.uploadDir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return filename, nil
}
