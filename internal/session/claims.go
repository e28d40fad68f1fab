package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the claim payload of a tenant access token. The
// gateway reads these for routing decisions only; cryptographic
// verification is the backend's job.
type AccessClaims struct {
	Subject     string   `json:"sub"`
	TenantID    string   `json:"tenant_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	TokenType   string   `json:"type"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claim set carries the given role.
func (c *AccessClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DecodeAccess decodes the claim payload of an access token without
// verifying its signature. Returns nil for anything that does not
// parse as a JWT; callers treat that identically to "no token".
func DecodeAccess(token string) *AccessClaims {
	if token == "" {
		return nil
	}
	claims := &AccessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
