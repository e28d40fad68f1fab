package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSetAccessTokenAttributes(t *testing.T) {
	for _, secure := range []bool{true, false} {
		rec := httptest.NewRecorder()
		NewCookies(secure).SetAccessToken(rec, "tok")

		c := findCookie(rec.Result().Cookies(), CookieAccess)
		if c == nil {
			t.Fatal("access cookie not set")
		}
		if c.Value != "tok" {
			t.Errorf("value = %q, want tok", c.Value)
		}
		if !c.HttpOnly {
			t.Error("cookie must be HttpOnly")
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("SameSite = %v, want Lax", c.SameSite)
		}
		if c.Path != "/" {
			t.Errorf("Path = %q, want /", c.Path)
		}
		if c.Secure != secure {
			t.Errorf("Secure = %v, want %v", c.Secure, secure)
		}
	}
}

func TestSetTenantContextPartial(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookies(false).SetTenantContext(rec, "", "ics-college")

	cookies := rec.Result().Cookies()
	if findCookie(cookies, CookieTenantID) != nil {
		t.Error("tenant id cookie set despite empty id")
	}
	slug := findCookie(cookies, CookieTenantSlug)
	if slug == nil || slug.Value != "ics-college" {
		t.Fatalf("tenant slug cookie = %+v, want ics-college", slug)
	}
}

func TestClearTenantSession(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookies(false).ClearTenantSession(rec)

	cookies := rec.Result().Cookies()
	for _, name := range []string{CookieAccess, CookieRefresh, CookieTenantID, CookieTenantSlug} {
		c := findCookie(cookies, name)
		if c == nil {
			t.Errorf("%s not cleared", name)
			continue
		}
		if c.MaxAge >= 0 {
			t.Errorf("%s MaxAge = %d, want negative", name, c.MaxAge)
		}
	}
	if findCookie(cookies, CookieSaasAccess) != nil {
		t.Error("saas cookie touched by tenant clear")
	}
}

// Clearing is idempotent: clearing again (with nothing present) is
// just another expiry write, never an error.
func TestClearAllIdempotent(t *testing.T) {
	rec := httptest.NewRecorder()
	c := NewCookies(false)
	c.ClearAll(rec)
	c.ClearAll(rec)

	names := make(map[string]int)
	for _, cookie := range rec.Result().Cookies() {
		names[cookie.Name]++
	}
	for _, name := range []string{CookieAccess, CookieRefresh, CookieSaasAccess, CookieSaasRefresh, CookieTenantID, CookieTenantSlug} {
		if names[name] != 2 {
			t.Errorf("%s cleared %d times, want 2", name, names[name])
		}
	}
}

func TestReadAccessors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccess, Value: "a"})
	req.AddCookie(&http.Cookie{Name: CookieTenantSlug, Value: "northside"})

	if got := AccessToken(req); got != "a" {
		t.Errorf("AccessToken = %q, want a", got)
	}
	if got := TenantSlug(req); got != "northside" {
		t.Errorf("TenantSlug = %q, want northside", got)
	}
	if got := SaasAccessToken(req); got != "" {
		t.Errorf("SaasAccessToken = %q, want empty", got)
	}
	if got := TenantID(req); got != "" {
		t.Errorf("TenantID = %q, want empty", got)
	}
}
