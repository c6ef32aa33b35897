package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	signed, expiresAt, err := GenerateToken("user-1", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiresAt in the past: %v", expiresAt)
	}

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject != "user-1" {
		t.Fatalf("subject = %q, err = %v", subject, err)
	}

	if _, _, err := GenerateToken("user-1", "  ", time.Hour); err == nil {
		t.Fatal("blank secret should fail")
	}
}

func TestJWTMiddleware(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.Use(JWTMiddleware("secret", func(c echo.Context) bool {
		return c.Request().URL.Path == "/public"
	}))
	e.GET("/public", func(c echo.Context) error {
		return c.String(http.StatusOK, "open")
	})
	e.GET("/private", func(c echo.Context) error {
		userID, err := UserIDFromContext(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, userID)
	})

	t.Run("skipped path needs no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("valid token passes and exposes the subject", func(t *testing.T) {
		signed, _, err := GenerateToken("user-1", "secret", time.Hour)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if rec.Body.String() != "user-1" {
			t.Fatalf("body = %q", rec.Body.String())
		}
	})

	t.Run("wrong signature rejected", func(t *testing.T) {
		signed, _, err := GenerateToken("user-1", "other-secret", time.Hour)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
