package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/mmart/internal/constants"
	"github.com/RoyceAzure/lab/mmart/internal/token"
)

// 解析token payload, 任何錯誤都不中斷，只是不設置context
// 要強制登入的路由掛 AuthMiddleware
func AuthPayloadMiddleware(tokenMaker *token.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := checkAuthPayload(tokenMaker, r)
			if ok {
				ctx := context.WithValue(r.Context(), constants.AuthorizationPayloadKey, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
			} else {
				next.ServeHTTP(w, r)
			}
		})
	}
}

func checkAuthPayload(tokenMaker *token.Maker, r *http.Request) (*token.Claims, bool) {
	authorizationHeader := r.Header.Get(constants.AuthorizationHeaderKey)
	if len(authorizationHeader) == 0 {
		return nil, false
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		return nil, false
	}

	if strings.ToLower(fields[0]) != constants.AuthorizationTypeBearer {
		return nil, false
	}

	claims, err := tokenMaker.VerifyToken(fields[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetClaims 從 context 取出登入者資訊，未登入回傳 nil
func GetClaims(ctx context.Context) *token.Claims {
	claims, ok := ctx.Value(constants.AuthorizationPayloadKey).(*token.Claims)
	if !ok {
		return nil
	}
	return claims
}
