package models

import "time"

// Tenant is one customer school as the backend tenant directory
// reports it. The gateway treats it as read-only reference data used
// to resolve slugs during the chooser flow.
type Tenant struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	PrimaryDomain string    `json:"primary_domain,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// LoginRequest is the tenant login payload accepted by the gateway
type LoginRequest struct {
	TenantSlug string `json:"tenant_slug"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// SaasLoginRequest is the platform-operator login payload
type SaasLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the subset of the backend login/refresh response
// the gateway consumes; everything else passes through opaquely.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TenantID    string `json:"tenant_id,omitempty"`
}

// ChooseTenantRequest binds a browser to a tenant before login
type ChooseTenantRequest struct {
	TenantSlug string `json:"tenant_slug"`
}
