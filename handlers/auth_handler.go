package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/alexkachalkov/scootrate/middleware"
	"github.com/alexkachalkov/scootrate/models"
	"github.com/alexkachalkov/scootrate/ratelimit"
	"github.com/alexkachalkov/scootrate/services"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService services.AuthService
	limiter     ratelimit.Limiter
	jwtSecret   string
}

func NewAuthHandler(authService services.AuthService, limiter ratelimit.Limiter, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		limiter:     limiter,
		jwtSecret:   jwtSecret,
	}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login выдаёт JWT при верных кредах. Попытки лимитируются по IP, в
// счётчик попадают только неудачные: успешный вход окно не расходует.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	key := clientIP(r)
	if !h.limiter.Allow(key) {
		mapServiceErrorToHTTP(w, services.ErrTooManyAttempts)
		return
	}

	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.limiter.Hit(key)
		}
		mapServiceErrorToHTTP(w, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// Me возвращает личность из токена, без похода в базу.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
