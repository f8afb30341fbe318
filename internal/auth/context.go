package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ContextKey is where the JWT middleware stores the parsed token.
const ContextKey = "user"

// NewClaims allocates the claims type the JWT middleware parses into.
func NewClaims(echo.Context) jwt.Claims {
	return new(Claims)
}

// ClaimsFromContext returns the claims of the access token that authenticated
// the request. Refresh tokens carry a token id and are not accepted here.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	token, ok := c.Get(ContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ID != "" {
		return nil, false
	}
	return claims, true
}
