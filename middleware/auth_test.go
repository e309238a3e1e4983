package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/smartystreets/goconvey/convey"

	"github.com/alexkachalkov/scootrate/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(role string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"user_id": 7,
		"email":   "admin@example.com",
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
}

func doAuthenticated(token string) (*httptest.ResponseRecorder, *models.AuthUser) {
	var captured *models.AuthUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := UserFromContext(r.Context()); ok {
			captured = &user
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	Authenticate(testSecret)(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthenticate(t *testing.T) {
	convey.Convey("Given a valid token", t, func() {
		token := signToken(t, testSecret, validClaims("admin"))
		rec, user := doAuthenticated(token)

		convey.Convey("The request passes with the identity in context", func() {
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(user, convey.ShouldNotBeNil)
			convey.So(user.ID, convey.ShouldEqual, 7)
			convey.So(user.Email, convey.ShouldEqual, "admin@example.com")
			convey.So(user.Role, convey.ShouldEqual, models.RoleAdmin)
		})
	})

	convey.Convey("Given a missing Authorization header", t, func() {
		rec, _ := doAuthenticated("")
		convey.So(rec.Code, convey.ShouldEqual, http.StatusUnauthorized)
	})

	convey.Convey("Given a token signed with another secret", t, func() {
		token := signToken(t, "wrong-secret", validClaims("admin"))
		rec, _ := doAuthenticated(token)
		convey.So(rec.Code, convey.ShouldEqual, http.StatusUnauthorized)
	})

	convey.Convey("Given an expired token", t, func() {
		claims := validClaims("admin")
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		token := signToken(t, testSecret, claims)
		rec, _ := doAuthenticated(token)
		convey.So(rec.Code, convey.ShouldEqual, http.StatusUnauthorized)
	})

	convey.Convey("Given a token with a role outside the closed set", t, func() {
		token := signToken(t, testSecret, validClaims("superuser"))
		rec, _ := doAuthenticated(token)
		convey.So(rec.Code, convey.ShouldEqual, http.StatusUnauthorized)
	})

	convey.Convey("Given a token without a user id", t, func() {
		claims := validClaims("admin")
		delete(claims, "user_id")
		token := signToken(t, testSecret, claims)
		rec, _ := doAuthenticated(token)
		convey.So(rec.Code, convey.ShouldEqual, http.StatusUnauthorized)
	})
}

func TestRequireRole(t *testing.T) {
	serve := func(user *models.AuthUser, roles ...models.UserRole) *httptest.ResponseRecorder {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/api/admin/riders", nil)
		if user != nil {
			req = req.WithContext(context.WithValue(req.Context(), userContextKey, *user))
		}
		rec := httptest.NewRecorder()
		RequireRole(roles...)(next).ServeHTTP(rec, req)
		return rec
	}

	convey.Convey("Given the editor requirement", t, func() {
		convey.Convey("An editor passes", func() {
			rec := serve(&models.AuthUser{ID: 1, Role: models.RoleEditor}, models.RoleEditor)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("An admin always passes", func() {
			rec := serve(&models.AuthUser{ID: 1, Role: models.RoleAdmin}, models.RoleEditor)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("A request without identity is rejected", func() {
			rec := serve(nil, models.RoleEditor)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("A foreign role is forbidden", func() {
			rec := serve(&models.AuthUser{ID: 1, Role: models.UserRole("guest")}, models.RoleEditor)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusForbidden)
		})
	})
}
