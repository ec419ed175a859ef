package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/mmart/internal/pkg/api"
	"github.com/RoyceAzure/lab/mmart/internal/api/dto"
	"github.com/RoyceAzure/lab/mmart/internal/api/middleware"
	"github.com/RoyceAzure/lab/mmart/internal/service"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
	}
}

// Register 手機號註冊/登入，發送驗證碼
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerDTO dto.RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&registerDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	if registerDTO.PhoneNumber == "" {
		api.ErrorJSON(w, http.StatusBadRequest, errMissingField("phone_number"))
		return
	}

	ctx := r.Context()
	if err := a.authService.Register(ctx, registerDTO.PhoneNumber, registerDTO.FullName, registerDTO.ReferralCode); err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, nil)
}

// VerifyOTP 驗證簡訊碼換 token
func (a *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var verifyDTO dto.VerifyOTPDTO
	if err := json.NewDecoder(r.Body).Decode(&verifyDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	accessToken, profile, err := a.authService.VerifyOTP(ctx, verifyDTO.PhoneNumber, verifyDTO.Code)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}

	status, err := a.authService.B2BStatus(ctx, profile.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}

	api.SuccessJSON(w, dto.LoginResponse{
		AccessToken: accessToken,
		Profile: dto.ProfileDTO{
			ProfileID:    profile.ProfileID,
			PhoneNumber:  profile.PhoneNumber,
			FullName:     profile.FullName,
			ReferralCode: profile.ReferralCode,
			B2BStatus:    status,
		},
	})
}

// B2BStatus 查詢商家身分
func (a *AuthHandler) B2BStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)

	status, err := a.authService.B2BStatus(ctx, claims.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.B2BStatusDTO{Status: status})
}

// ApplyWholesale 申請批發身分
func (a *AuthHandler) ApplyWholesale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)

	status, err := a.authService.ApplyWholesale(ctx, claims.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.B2BStatusDTO{Status: status})
}
