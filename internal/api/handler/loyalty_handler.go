package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/mmart/internal/pkg/api"
	"github.com/RoyceAzure/lab/mmart/internal/api/dto"
	"github.com/RoyceAzure/lab/mmart/internal/api/middleware"
	"github.com/RoyceAzure/lab/mmart/internal/service"
)

type LoyaltyHandler struct {
	loyaltyService  service.ILoyaltyService
	referralService service.IReferralService
}

func NewLoyaltyHandler(loyaltyService service.ILoyaltyService, referralService service.IReferralService) *LoyaltyHandler {
	if loyaltyService == nil {
		panic("loyaltyService cannot be nil")
	}
	if referralService == nil {
		panic("referralService cannot be nil")
	}
	return &LoyaltyHandler{
		loyaltyService:  loyaltyService,
		referralService: referralService,
	}
}

// MyCard 自己的點數卡
func (l *LoyaltyHandler) MyCard(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	card, err := l.loyaltyService.MyCard(r.Context(), claims.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ConvertLoyaltyCardToDTO(card))
}

// MyBonuses 自己的回饋快照
func (l *LoyaltyHandler) MyBonuses(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	bonuses, err := l.loyaltyService.MyBonuses(r.Context(), claims.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, bonuses)
}

// History 點數異動紀錄與餘額
func (l *LoyaltyHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	entries, balance, err := l.loyaltyService.History(r.Context(), claims.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, map[string]any{
		"balance": balance,
		"entries": entries,
	})
}

// MyReferrals 自己推薦過的人
func (l *LoyaltyHandler) MyReferrals(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	referrals, err := l.referralService.MyReferrals(r.Context(), claims.ProfileID)
	if err != nil {
		api.HandleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, referrals)
}
