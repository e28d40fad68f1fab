package session

import (
	"net/http"
)

// Cookie names shared between the gateway and the browser. The two
// session domains (tenant user vs. platform super-admin) use disjoint
// cookie pairs so that a browser can hold neither, either, or both.
const (
	CookieAccess      = "sms_access"
	CookieRefresh     = "sms_refresh"
	CookieSaasAccess  = "sms_saas_access"
	CookieSaasRefresh = "sms_saas_refresh"
	CookieTenantID    = "sms_tenant_id"
	CookieTenantSlug  = "sms_tenant_slug"
)

// Cookies writes and clears the auth cookies with uniform security
// attributes. Reads go directly through the request cookie jar (see
// the accessor functions below); there is no state to cache.
type Cookies struct {
	// Secure marks cookies as transport-secure. Only enabled in
	// production so that local HTTP development keeps working.
	Secure bool
}

func NewCookies(secure bool) *Cookies {
	return &Cookies{Secure: secure}
}

func (c *Cookies) set(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *Cookies) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// SetAccessToken stores the tenant-scoped bearer token.
func (c *Cookies) SetAccessToken(w http.ResponseWriter, token string) {
	c.set(w, CookieAccess, token)
}

// SetRefreshToken stores the tenant-scoped refresh token.
func (c *Cookies) SetRefreshToken(w http.ResponseWriter, token string) {
	c.set(w, CookieRefresh, token)
}

// SetSaasAccessToken stores the platform-operator bearer token.
func (c *Cookies) SetSaasAccessToken(w http.ResponseWriter, token string) {
	c.set(w, CookieSaasAccess, token)
}

// SetSaasRefreshToken stores the platform-operator refresh token.
func (c *Cookies) SetSaasRefreshToken(w http.ResponseWriter, token string) {
	c.set(w, CookieSaasRefresh, token)
}

// SetTenantContext remembers which tenant this browser is bound to.
// Either field may be empty; only the provided parts are written.
func (c *Cookies) SetTenantContext(w http.ResponseWriter, tenantID, tenantSlug string) {
	if tenantID != "" {
		c.set(w, CookieTenantID, tenantID)
	}
	if tenantSlug != "" {
		c.set(w, CookieTenantSlug, tenantSlug)
	}
}

// ClearTenantSession removes the tenant session cookies and the tenant
// context. Clearing absent cookies is a no-op.
func (c *Cookies) ClearTenantSession(w http.ResponseWriter) {
	c.clear(w, CookieAccess)
	c.clear(w, CookieRefresh)
	c.clear(w, CookieTenantID)
	c.clear(w, CookieTenantSlug)
}

// ClearSaasSession removes the platform-operator session cookies.
func (c *Cookies) ClearSaasSession(w http.ResponseWriter) {
	c.clear(w, CookieSaasAccess)
	c.clear(w, CookieSaasRefresh)
}

// ClearAll removes every auth cookie from both session domains.
func (c *Cookies) ClearAll(w http.ResponseWriter) {
	c.ClearTenantSession(w)
	c.ClearSaasSession(w)
}

// cookieValue reads a cookie value from the request, returning "" when
// absent. Malformed jars are treated the same as missing cookies.
func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// AccessToken returns the tenant-scoped bearer token, or "".
func AccessToken(r *http.Request) string {
	return cookieValue(r, CookieAccess)
}

// RefreshToken returns the tenant-scoped refresh token, or "".
func RefreshToken(r *http.Request) string {
	return cookieValue(r, CookieRefresh)
}

// SaasAccessToken returns the platform-operator bearer token, or "".
func SaasAccessToken(r *http.Request) string {
	return cookieValue(r, CookieSaasAccess)
}

// TenantID returns the remembered tenant id, or "".
func TenantID(r *http.Request) string {
	return cookieValue(r, CookieTenantID)
}

// TenantSlug returns the remembered tenant slug, or "".
func TenantSlug(r *http.Request) string {
	return cookieValue(r, CookieTenantSlug)
}
