package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const scannerIDKey contextKey = "scannerID"

// ScannerAuth проверяет Bearer JWT сканеров билетов.
// Токены выпускает админка тенанта, сервис проверяет только подпись
// и срок действия
func ScannerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				respondUnauthorized(w, "требуется Bearer-токен сканера")
				return
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				respondUnauthorized(w, "недействительный токен сканера")
				return
			}

			scannerID, _ := token.Claims.GetSubject()
			ctx := context.WithValue(r.Context(), scannerIDKey, scannerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ScannerIDFromContext возвращает идентификатор сканера из токена
func ScannerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(scannerIDKey).(string)
	return id, ok
}
