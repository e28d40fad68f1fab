package gate

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/schoolms/sms-gateway/internal/session"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want RouteClass
	}{
		{"/api/v1/anything", RoutePassthrough},
		{"/api/auth/login", RoutePassthrough},
		{"/assets/app.js", RoutePassthrough},
		{"/favicon.ico", RoutePassthrough},
		{"/saas/login", RouteSaasLogin},
		{"/login", RouteTenantLogin},
		{"/choose-tenant", RouteChooseTenant},
		{"/choose-tenant/anything", RouteChooseTenant},
		{"/saas", RouteSaasScoped},
		{"/saas/dashboard", RouteSaasScoped},
		{"/saas/tenants", RouteSaasScoped},
		{"/", RouteTenantScoped},
		{"/dashboard", RouteTenantScoped},
		{"/tenant/director/dashboard", RouteTenantScoped},
		{"/saasish", RouteTenantScoped},
	}

	for _, tc := range cases {
		if got := Classify(tc.path); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

// sessionStates enumerates all four presence combinations.
var sessionStates = []struct {
	name string
	s    Sessions
}{
	{"neither", Sessions{}},
	{"tenant_only", Sessions{Tenant: true}},
	{"saas_only", Sessions{Saas: true}},
	{"both", Sessions{Tenant: true, Saas: true}},
}

// samplePaths holds one representative path per route class.
var samplePaths = map[RouteClass]string{
	RoutePassthrough:  "/api/v1/anything",
	RouteTenantLogin:  "/login",
	RouteSaasLogin:    "/saas/login",
	RouteChooseTenant: "/choose-tenant",
	RouteSaasScoped:   "/saas/dashboard",
	RouteTenantScoped: "/tenant/director/dashboard",
}

func TestDecideExhaustive(t *testing.T) {
	// expected[class][state] = "" for pass, or the redirect location
	expected := map[RouteClass]map[string]string{
		RoutePassthrough: {
			"neither": "", "tenant_only": "", "saas_only": "", "both": "",
		},
		RouteChooseTenant: {
			"neither": "", "tenant_only": "", "saas_only": "", "both": "",
		},
		RouteTenantLogin: {
			"neither":     "",
			"tenant_only": TenantHome,
			"saas_only":   SaasHome,
			"both":        TenantHome,
		},
		RouteSaasLogin: {
			"neither":     "",
			"tenant_only": TenantHome,
			"saas_only":   SaasHome,
			"both":        SaasHome,
		},
		RouteTenantScoped: {
			"neither":     TenantLogin + "?next=" + url.QueryEscape(samplePaths[RouteTenantScoped]),
			"tenant_only": "",
			"saas_only":   SaasHome,
			"both":        "",
		},
		RouteSaasScoped: {
			"neither":     SaasLogin + "?next=" + url.QueryEscape(samplePaths[RouteSaasScoped]),
			"tenant_only": TenantHome,
			"saas_only":   "",
			"both":        "",
		},
	}

	for class, path := range samplePaths {
		for _, state := range sessionStates {
			want := expected[class][state.name]
			got := Decide(path, state.s)

			if want == "" {
				if got.Outcome != Pass {
					t.Errorf("Decide(%q, %s): want pass, got redirect to %q", path, state.name, got.Location)
				}
				continue
			}
			if got.Outcome != Redirect {
				t.Errorf("Decide(%q, %s): want redirect to %q, got pass", path, state.name, want)
				continue
			}
			if got.Location != want {
				t.Errorf("Decide(%q, %s): want redirect to %q, got %q", path, state.name, want, got.Location)
			}
		}
	}
}

// TestNoRedirectLoops re-applies the gate to every redirect target
// under the same session state: the target must always pass. This is
// the property that careful branch ordering protects; reordering the
// branches in Decide reintroduces loops.
func TestNoRedirectLoops(t *testing.T) {
	paths := []string{
		"/api/v1/anything",
		"/login",
		"/saas/login",
		"/choose-tenant",
		"/choose-tenant/confirm",
		"/saas",
		"/saas/dashboard",
		"/saas/tenants",
		"/",
		"/dashboard",
		"/tenant/director/dashboard",
		"/tenant/secretary/finance",
	}

	for _, path := range paths {
		for _, state := range sessionStates {
			decision := Decide(path, state.s)
			if decision.Outcome != Redirect {
				continue
			}

			target := decision.Location
			if i := strings.IndexByte(target, '?'); i >= 0 {
				target = target[:i]
			}

			second := Decide(target, state.s)
			if second.Outcome != Pass {
				t.Errorf("redirect loop: Decide(%q, %s) -> %q, which redirects again to %q",
					path, state.name, decision.Location, second.Location)
			}
		}
	}
}

func TestDecideNextParam(t *testing.T) {
	d := Decide("/tenant/director/dashboard", Sessions{})
	if d.Outcome != Redirect {
		t.Fatalf("want redirect, got pass")
	}
	u, err := url.Parse(d.Location)
	if err != nil {
		t.Fatalf("bad redirect location %q: %v", d.Location, err)
	}
	if u.Path != TenantLogin {
		t.Errorf("redirect path = %q, want %q", u.Path, TenantLogin)
	}
	if next := u.Query().Get("next"); next != "/tenant/director/dashboard" {
		t.Errorf("next = %q, want original path", next)
	}
}

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("page"))
	})
	handler := Middleware(next)

	cases := []struct {
		name         string
		path         string
		tenantCookie bool
		saasCookie   bool
		wantStatus   int
		wantLocation string
	}{
		{"no cookies protected page", "/tenant/director/dashboard", false, false,
			http.StatusTemporaryRedirect, "/login?next=%2Ftenant%2Fdirector%2Fdashboard"},
		{"tenant cookie on saas page", "/saas/dashboard", true, false,
			http.StatusTemporaryRedirect, "/dashboard"},
		{"saas cookie on tenant login", "/login", false, true,
			http.StatusTemporaryRedirect, "/saas/dashboard"},
		{"both cookies on saas login", "/saas/login", true, true,
			http.StatusTemporaryRedirect, "/saas/dashboard"},
		{"api path no cookies", "/api/v1/anything", false, false, http.StatusOK, ""},
		{"chooser always passes", "/choose-tenant", true, true, http.StatusOK, ""},
		{"authorized tenant page", "/dashboard", true, false, http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.tenantCookie {
				req.AddCookie(&http.Cookie{Name: session.CookieAccess, Value: "token"})
			}
			if tc.saasCookie {
				req.AddCookie(&http.Cookie{Name: session.CookieSaasAccess, Value: "token"})
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantLocation != "" {
				if loc := rec.Header().Get("Location"); loc != tc.wantLocation {
					t.Errorf("Location = %q, want %q", loc, tc.wantLocation)
				}
			}
		})
	}
}

// A present-but-undecodable cookie still counts as a session for
// gating purposes; only claim-reading pages care about decodability.
func TestMiddlewareMalformedCookieCountsAsPresent(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieAccess, Value: "not-a-jwt"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
