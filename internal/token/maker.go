package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims 登入 token 內容
type Claims struct {
	ProfileID uint   `json:"profile_id"`
	Phone     string `json:"phone"`
	jwt.RegisteredClaims
}

// Maker HMAC JWT 產生與驗證
type Maker struct {
	secretKey string
	duration  time.Duration
}

const minSecretKeyLen = 32

func NewMaker(secretKey string, duration time.Duration) (*Maker, error) {
	if len(secretKey) < minSecretKeyLen {
		return nil, fmt.Errorf("invalid key size: must be at least %d characters", minSecretKeyLen)
	}
	return &Maker{secretKey: secretKey, duration: duration}, nil
}

// CreateToken 產生登入 token
func (m *Maker) CreateToken(profileID uint, phone string) (string, error) {
	now := time.Now()
	claims := &Claims{
		ProfileID: profileID,
		Phone:     phone,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// VerifyToken 驗證 token 並取回 claims
func (m *Maker) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
