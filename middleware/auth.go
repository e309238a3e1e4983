package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/alexkachalkov/scootrate/models"
)

type contextKey string

const userContextKey contextKey = "authUser"

const (
	jwtClaimUserID = "user_id"
	jwtClaimEmail  = "email"
	jwtClaimRole   = "role"
)

// Authenticate проверяет Bearer-токен и кладёт в контекст готовую
// личность models.AuthUser. Дальше по claims никто не лазит.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := parseAuthUser(r, secret)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает только перечисленные роли. Админ проходит
// всегда: его права — надмножество редакторских.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if user.Role == models.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func UserFromContext(ctx context.Context) (models.AuthUser, bool) {
	user, ok := ctx.Value(userContextKey).(models.AuthUser)
	return user, ok
}

func parseAuthUser(r *http.Request, secret string) (models.AuthUser, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return models.AuthUser{}, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return models.AuthUser{}, false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return models.AuthUser{}, false
	}

	idFloat, ok := claims[jwtClaimUserID].(float64)
	if !ok || idFloat != float64(int(idFloat)) || int(idFloat) <= 0 {
		return models.AuthUser{}, false
	}
	email, _ := claims[jwtClaimEmail].(string)
	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return models.AuthUser{}, false
	}
	role := models.UserRole(roleStr)
	if !role.Valid() {
		return models.AuthUser{}, false
	}

	return models.AuthUser{ID: int(idFloat), Email: email, Role: role}, true
}
