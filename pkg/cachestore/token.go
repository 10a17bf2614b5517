package cachestore

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type actionsClaims struct {
	jwt.RegisteredClaims
	Scp string `json:"scp"`
}

// inspectRuntimeToken decodes the runtime token's claims without
// verifying the signature and returns a warning message when the token
// looks unusable. The service still makes the final call; this only
// turns a cryptic 401 into something an operator can act on.
func inspectRuntimeToken(token string) string {
	if token == "" {
		return "no runtime token available, cache service requests will be unauthenticated"
	}

	claims := &actionsClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// not a JWT, e.g. a self-hosted cache server token
		return ""
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return fmt.Sprintf("runtime token expired at %s, cache save will likely be rejected",
			claims.ExpiresAt.Format(time.RFC3339))
	}
	return ""
}
