package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/RoyceAzure/lab/mmart/internal/domain/model"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/mmart/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/mmart/internal/infra/sms"
	"github.com/RoyceAzure/lab/mmart/internal/token"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrInvalidOTP      = errors.New("verification code is invalid")
	ErrProfileNotFound = errors.New("profile is not exist")
)

// B2B 狀態常數，手機端依此決定顯示哪個介面
const (
	B2BStatusStandard = "STANDARD"
	B2BStatusWaiting  = "WAITING"
	B2BStatusMember   = "B2B_MEMBER"
)

// IOTPStore 驗證碼存取，正式環境是 redis，過期要由 store 自己處理
type IOTPStore interface {
	Set(ctx context.Context, phone, code string) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

type IAuthService interface {
	Register(ctx context.Context, phone, fullName, referralCode string) error
	VerifyOTP(ctx context.Context, phone, code string) (string, *model.Profile, error)
	B2BStatus(ctx context.Context, profileID uint) (string, error)
	ApplyWholesale(ctx context.Context, profileID uint) (string, error)
}

type AuthService struct {
	dao             *db.DbDao
	profileRepo     *db.ProfileRepo
	otpRepo         IOTPStore
	smsSender       sms.Sender
	tokenMaker      *token.Maker
	referralService IReferralService
}

func NewAuthService(
	dao *db.DbDao,
	profileRepo *db.ProfileRepo,
	otpRepo IOTPStore,
	smsSender sms.Sender,
	tokenMaker *token.Maker,
	referralService IReferralService,
) *AuthService {
	return &AuthService{
		dao:             dao,
		profileRepo:     profileRepo,
		otpRepo:         otpRepo,
		smsSender:       smsSender,
		tokenMaker:      tokenMaker,
		referralService: referralService,
	}
}

func generateOTPCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

func generateReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

/*
Register 手機號註冊或登入，同一個入口

	沒有該號碼的 profile 就建立一個，帶自己的推薦碼
	新 profile 且填了有效推薦碼時建立推薦獎勵
	產生驗證碼存 redis 並發簡訊
*/
func (s *AuthService) Register(ctx context.Context, phone, fullName, referralCode string) error {
	var profile *model.Profile
	var isNew bool

	err := s.dao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.profileRepo.GetProfileByPhone(ctx, tx, phone)
		if err != nil {
			return err
		}
		if existing != nil {
			profile = existing
			return nil
		}

		profile = &model.Profile{
			PhoneNumber:  phone,
			FullName:     fullName,
			ReferralCode: generateReferralCode(),
		}
		if err := s.profileRepo.CreateProfile(ctx, tx, profile); err != nil {
			return err
		}
		isNew = true
		return nil
	})
	if err != nil {
		return err
	}

	// 推薦只在第一次註冊時成立，舊用戶重登不算
	if isNew && referralCode != "" {
		if err := s.referralService.CreateReferral(ctx, profile.ProfileID, referralCode); err != nil {
			log.Warn().Err(err).Uint("profile_id", profile.ProfileID).Msg("failed to create referral")
		}
	}

	code := generateOTPCode()
	if err := s.otpRepo.Set(ctx, phone, code); err != nil {
		return err
	}
	return s.smsSender.SendOTP(ctx, phone, code)
}

// VerifyOTP 驗證簡訊碼，成功後發 token
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (string, *model.Profile, error) {
	stored, err := s.otpRepo.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, redis_repo.ErrOTPNotFound) {
			return "", nil, ErrInvalidOTP
		}
		return "", nil, err
	}
	if stored != code {
		return "", nil, ErrInvalidOTP
	}

	profile, err := s.profileRepo.GetProfileByPhone(ctx, nil, phone)
	if err != nil {
		return "", nil, err
	}
	if profile == nil {
		return "", nil, ErrProfileNotFound
	}

	if err := s.otpRepo.Delete(ctx, phone); err != nil {
		log.Warn().Err(err).Str("phone", phone).Msg("failed to delete used otp")
	}

	accessToken, err := s.tokenMaker.CreateToken(profile.ProfileID, profile.PhoneNumber)
	if err != nil {
		return "", nil, err
	}
	return accessToken, profile, nil
}

// B2BStatus 查詢商家身分
func (s *AuthService) B2BStatus(ctx context.Context, profileID uint) (string, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", ErrProfileNotFound
	}
	return b2bStatusOf(profile), nil
}

// ApplyWholesale 申請批發身分，核准前狀態為 WAITING
func (s *AuthService) ApplyWholesale(ctx context.Context, profileID uint) (string, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", ErrProfileNotFound
	}
	if profile.IsB2B || profile.IsWholesaler {
		return b2bStatusOf(profile), nil
	}

	profile.IsWholesaler = true
	if err := s.profileRepo.UpdateProfile(ctx, profile); err != nil {
		return "", err
	}
	return b2bStatusOf(profile), nil
}

func b2bStatusOf(profile *model.Profile) string {
	switch {
	case profile.IsB2B || (profile.IsWholesaler && profile.IsWholesaleApproved):
		return B2BStatusMember
	case profile.IsWholesaler:
		return B2BStatusWaiting
	default:
		return B2BStatusStandard
	}
}

var _ IAuthService = (*AuthService)(nil)
