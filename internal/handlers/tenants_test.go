package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/schoolms/sms-gateway/internal/cache"
	"github.com/schoolms/sms-gateway/internal/relay"
	"github.com/schoolms/sms-gateway/internal/services"
	"github.com/schoolms/sms-gateway/internal/session"
)

func newTenantHandler(t *testing.T, backendURL string) *TenantHandler {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })

	tenants := services.NewTenantService(
		relay.New(backendURL, 2*time.Second, 5*time.Second),
		c,
		time.Minute,
	)
	return NewTenantHandler(tenants, session.NewCookies(false))
}

func TestChooseTenant(t *testing.T) {
	var hits int
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if got := r.URL.Query().Get("slug"); got != "ics-college" {
			t.Errorf("slug query = %q, want ics-college", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "tid-1", "slug": "ics-college", "name": "ICS College", "is_active": true,
		})
	}))
	defer backend.Close()

	h := newTenantHandler(t, backend.URL)

	choose := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/tenants/choose",
			strings.NewReader(`{"tenant_slug":" ICS-College "}`))
		req.AddCookie(&http.Cookie{Name: session.CookieSaasAccess, Value: "saas"})
		rec := httptest.NewRecorder()
		h.Choose(rec, req)
		return rec
	}

	rec := choose()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if c := findTestCookie(cookies, session.CookieTenantID); c == nil || c.Value != "tid-1" {
		t.Error("tenant id cookie not set")
	}
	if c := findTestCookie(cookies, session.CookieTenantSlug); c == nil || c.Value != "ics-college" {
		t.Error("tenant slug cookie not set")
	}
	if c := findTestCookie(cookies, session.CookieSaasAccess); c == nil || c.MaxAge >= 0 {
		t.Error("saas session not cleared by tenant choice")
	}

	// Second choice is served from cache
	if rec = choose(); rec.Code != http.StatusOK {
		t.Fatalf("cached choose status = %d", rec.Code)
	}
	if hits != 1 {
		t.Errorf("backend hits = %d, want 1 after cache warm", hits)
	}
}

func TestChooseTenantNotFound(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer backend.Close()

	h := newTenantHandler(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/tenants/choose",
		strings.NewReader(`{"tenant_slug":"ghost-school"}`))
	rec := httptest.NewRecorder()
	h.Choose(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["detail"] != "School not found or inactive" {
		t.Errorf("detail = %q", body["detail"])
	}
	if findTestCookie(rec.Result().Cookies(), session.CookieTenantSlug) != nil {
		t.Error("tenant cookie written for unknown school")
	}
}

func TestChooseTenantInactive(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": "tid-2", "slug": "closed-school", "is_active": false,
		})
	}))
	defer backend.Close()

	h := newTenantHandler(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/tenants/choose",
		strings.NewReader(`{"tenant_slug":"closed-school"}`))
	rec := httptest.NewRecorder()
	h.Choose(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for inactive tenant", rec.Code)
	}
}

func TestChooseTenantMissingSlug(t *testing.T) {
	h := newTenantHandler(t, "http://backend.invalid")

	req := httptest.NewRequest(http.MethodPost, "/api/tenants/choose", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Choose(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func findTestCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
