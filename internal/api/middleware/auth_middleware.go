package middleware

import (
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/mmart/internal/pkg/api"
)

// 驗證ctx是否有token payload
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r.Context()) == nil {
			api.ErrorJSON(w, http.StatusUnauthorized, errors.New("unauthenticated"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
