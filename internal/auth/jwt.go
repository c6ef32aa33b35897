// Package auth provides JWT issuance and the echo authentication middleware.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ErrNoIdentity is returned when a request carries no usable user identity.
var ErrNoIdentity = errors.New("no authenticated user in request context")

// GenerateToken issues a signed JWT for the given user id.
func GenerateToken(userID, secret string, expiresIn time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, errors.New("jwt secret is required")
	}
	if expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	expiresAt := time.Now().Add(expiresIn)
	claims := jwt.RegisteredClaims{
		Subject:   strings.TrimSpace(userID),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// JWTMiddleware returns the echo middleware validating bearer tokens.
// Requests for which skip returns true bypass authentication.
func JWTMiddleware(secret string, skip func(c echo.Context) bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		Skipper: func(c echo.Context) bool {
			if skip == nil {
				return false
			}
			return skip(c)
		},
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return &jwt.RegisteredClaims{}
		},
	})
}

// UserIDFromContext extracts the authenticated user id (JWT subject) from the request context.
func UserIDFromContext(c echo.Context) (string, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, ErrNoIdentity.Error())
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, ErrNoIdentity.Error())
	}
	return strings.TrimSpace(subject), nil
}
