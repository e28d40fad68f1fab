package gate

import (
	"net/url"
	"strings"
)

// Route path constants. The gateway fronts two authentication domains:
// tenant users (school staff) and platform operators (SaaS admins).
const (
	TenantLogin  = "/login"
	TenantHome   = "/dashboard"
	SaasLogin    = "/saas/login"
	SaasHome     = "/saas/dashboard"
	SaasRoot     = "/saas"
	ChooseTenant = "/choose-tenant"

	apiPrefix    = "/api"
	assetsPrefix = "/assets"
	faviconPath  = "/favicon.ico"
)

// RouteClass classifies a request path. Classification depends on the
// path string alone, never on cookies.
type RouteClass int

const (
	RoutePassthrough RouteClass = iota // API, assets, favicon
	RouteTenantLogin
	RouteSaasLogin
	RouteChooseTenant
	RouteSaasScoped
	RouteTenantScoped // the default
)

func (c RouteClass) String() string {
	switch c {
	case RoutePassthrough:
		return "passthrough"
	case RouteTenantLogin:
		return "tenant_login"
	case RouteSaasLogin:
		return "saas_login"
	case RouteChooseTenant:
		return "choose_tenant"
	case RouteSaasScoped:
		return "saas_scoped"
	default:
		return "tenant_scoped"
	}
}

// Classify maps a request path to exactly one route class.
func Classify(path string) RouteClass {
	switch {
	case strings.HasPrefix(path, apiPrefix),
		strings.HasPrefix(path, assetsPrefix),
		path == faviconPath:
		return RoutePassthrough
	case path == SaasLogin:
		return RouteSaasLogin
	case path == TenantLogin:
		return RouteTenantLogin
	case strings.HasPrefix(path, ChooseTenant):
		return RouteChooseTenant
	case path == SaasRoot, strings.HasPrefix(path, SaasRoot+"/"):
		return RouteSaasScoped
	default:
		return RouteTenantScoped
	}
}

// Sessions is the cookie-presence snapshot the gate decides on. The
// gate checks presence only; decodability is a concern of pages that
// need claims, not of routing.
type Sessions struct {
	Tenant bool
	Saas   bool
}

// Domain describes one self-contained authentication domain. The two
// instances below are the only values; keeping the redirect logic
// generic over a Domain guarantees the tenant and platform halves
// cannot drift apart.
type Domain struct {
	Home  string
	Login string
}

var (
	TenantDomain = Domain{Home: TenantHome, Login: TenantLogin}
	SaasDomain   = Domain{Home: SaasHome, Login: SaasLogin}
)

// Outcome is what the gate decided to do with a request.
type Outcome int

const (
	Pass Outcome = iota
	Redirect
)

// Decision is the gate's verdict for one request.
type Decision struct {
	Outcome  Outcome
	Location string // redirect target, including any next param
}

func pass() Decision {
	return Decision{Outcome: Pass}
}

func redirectTo(path string) Decision {
	return Decision{Outcome: Redirect, Location: path}
}

// redirectToLogin preserves the originally requested path so the login
// form can forward the user back after authentication.
func redirectToLogin(login, next string) Decision {
	return Decision{Outcome: Redirect, Location: login + "?next=" + url.QueryEscape(next)}
}

// Decide is the route gate: a pure function of the request path and
// the session-presence snapshot. Every branch is total over the two
// booleans crossed with the six route classes, and no decision chains
// into a second redirect (see the loop test).
//
// The ordering matters: before falling back to "go log in", each
// protected branch checks the other domain's session and sends an
// already-authenticated user to their own home instead of showing a
// login form they cannot use.
func Decide(path string, s Sessions) Decision {
	switch Classify(path) {
	case RoutePassthrough:
		return pass()

	case RouteSaasLogin:
		if s.Saas {
			return redirectTo(SaasDomain.Home)
		}
		if s.Tenant {
			return redirectTo(TenantDomain.Home)
		}
		return pass()

	case RouteTenantLogin:
		if s.Tenant {
			return redirectTo(TenantDomain.Home)
		}
		if s.Saas {
			return redirectTo(SaasDomain.Home)
		}
		return pass()

	case RouteChooseTenant:
		// The chooser has no "already past this step" state of its
		// own; it always renders.
		return pass()

	case RouteSaasScoped:
		return requireDomain(path, SaasDomain, s.Saas, TenantDomain, s.Tenant)

	default: // tenant-scoped
		return requireDomain(path, TenantDomain, s.Tenant, SaasDomain, s.Saas)
	}
}

// requireDomain gates a protected path belonging to `own`. A session
// in the other domain wins over a login redirect: the user is sent to
// the home of the domain they are actually authenticated in.
func requireDomain(path string, own Domain, ownPresent bool, other Domain, otherPresent bool) Decision {
	if ownPresent {
		return pass()
	}
	if otherPresent {
		return redirectTo(other.Home)
	}
	return redirectToLogin(own.Login, path)
}
