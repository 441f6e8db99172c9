package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims are display fields read from a bearer credential. The credential is
// never verified here; the backend is the only authority on it.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// ParseCredential extracts claims when the credential is a JWT. Any other
// shape is accepted as opaque and reported with ok=false.
func ParseCredential(credential string) (Claims, bool) {
	if credential == "" {
		return Claims{}, false
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, mapClaims); err != nil {
		return Claims{}, false
	}

	var claims Claims
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	} else if strings.Contains(claims.Subject, "@") {
		claims.Email = claims.Subject
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	return claims, true
}

