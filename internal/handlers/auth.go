package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/schoolms/sms-gateway/internal/models"
	"github.com/schoolms/sms-gateway/internal/relay"
	"github.com/schoolms/sms-gateway/internal/services"
	"github.com/schoolms/sms-gateway/internal/session"
)

// AuthHandler implements the gateway's auth API: login, logout and
// token refresh for both session domains. All credential checking
// happens in the backend; this layer manages cookies and relays.
type AuthHandler struct {
	relay   *relay.Client
	cookies *session.Cookies
	audit   *services.AuditService
}

func NewAuthHandler(relayClient *relay.Client, cookies *session.Cookies, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{
		relay:   relayClient,
		cookies: cookies,
		audit:   audit,
	}
}

// Login handles tenant-user login. The other domain's cookies are
// cleared before anything is written so a platform session can never
// survive a tenant login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = models.LoginRequest{}
	}

	tenantSlug := strings.ToLower(strings.TrimSpace(req.TenantSlug))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if tenantSlug == "" {
		writeDetail(w, http.StatusBadRequest, "Missing tenant_slug")
		return
	}
	if email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	h.cookies.ClearSaasSession(w)
	h.cookies.ClearTenantSession(w)

	payload, _ := json.Marshal(map[string]string{"email": email, "password": req.Password})

	// The slug from the request body wins over any stale tenant
	// context cookie; this is the tenant-switch path.
	header := http.Header{}
	header.Set("x-tenant-slug", tenantSlug)

	resp, err := h.relay.Do(r.Context(), r, http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload), relay.Options{
		Header:       header,
		LoginTimeout: true,
	})
	if err != nil {
		h.recordAudit(r, models.AuditActionLoginFailed, tenantSlug, "", "", "failure", err.Error(), start)
		writeRelayError(w, err, "Login request timed out")
		return
	}
	defer resp.Body.Close()

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		data = nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := readError(data, "Tenant login failed")
		h.recordAudit(r, models.AuditActionLoginFailed, tenantSlug, "", email, "failure", detail, start)
		writeDetail(w, resp.StatusCode, detail)
		return
	}

	access, _ := data["access_token"].(string)
	if access != "" {
		h.cookies.SetAccessToken(w, access)
	}

	if refresh := extractSetCookie(resp.Header, session.CookieRefresh); refresh != "" {
		h.cookies.SetRefreshToken(w, refresh)
	}

	tenantID, _ := data["tenant_id"].(string)
	h.cookies.SetTenantContext(w, tenantID, tenantSlug)

	subject := ""
	if claims := session.DecodeAccess(access); claims != nil {
		subject = claims.Subject
		if tenantID == "" {
			tenantID = claims.TenantID
		}
	}
	h.recordAudit(r, models.AuditActionLogin, tenantSlug, tenantID, subject, "success", "", start)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// SaasLogin handles platform-operator login. Both domains are cleared
// first to avoid cross-mode confusion, and no session headers are
// attached to the backend call.
func (h *AuthHandler) SaasLogin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SaasLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = models.SaasLoginRequest{}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	h.cookies.ClearAll(w)

	payload, _ := json.Marshal(map[string]string{"email": email, "password": req.Password})

	resp, err := h.relay.Do(r.Context(), r, http.MethodPost, "/api/v1/auth/login/saas", bytes.NewReader(payload), relay.Options{
		SkipSessionHeaders: true,
	})
	if err != nil {
		h.recordAudit(r, models.AuditActionSaasLogin, "", "", email, "failure", err.Error(), start)
		writeRelayError(w, err, "Login request timed out")
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.recordAudit(r, models.AuditActionSaasLogin, "", "", email, "failure", "", start)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		w.Write(body)
		return
	}

	var tokens models.TokenResponse
	if err := json.Unmarshal(body, &tokens); err == nil && tokens.AccessToken != "" {
		h.cookies.SetSaasAccessToken(w, tokens.AccessToken)
	}

	// Backends differ in which refresh cookie name they emit
	refresh := extractSetCookie(resp.Header, session.CookieSaasRefresh)
	if refresh == "" {
		refresh = extractSetCookie(resp.Header, session.CookieRefresh)
	}
	if refresh != "" {
		h.cookies.SetSaasRefreshToken(w, refresh)
	}

	h.recordAudit(r, models.AuditActionSaasLogin, "", "", email, "success", "", start)

	// The access token goes back in the body so the SPA can also send
	// it as a bearer header.
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "access_token": tokens.AccessToken})
}

// Logout clears every auth cookie from both domains after a
// best-effort backend logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	subject := ""
	if claims := session.DecodeAccess(session.AccessToken(r)); claims != nil {
		subject = claims.Subject
	}

	for _, path := range []string{"/api/v1/auth/logout", "/api/v1/auth/logout/saas"} {
		resp, err := h.relay.Do(r.Context(), r, http.MethodPost, path, nil, relay.Options{})
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Best-effort backend logout failed")
			continue
		}
		resp.Body.Close()
	}

	h.cookies.ClearAll(w)

	h.recordAudit(r, models.AuditActionLogout, session.TenantSlug(r), session.TenantID(r), subject, "success", "", start)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// SaasLogout clears the platform session only; a tenant session in
// the same browser is untouched.
func (h *AuthHandler) SaasLogout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSaasSession(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Refresh rotates the tenant access token. The relay forwards the
// refresh cookie to the backend in cookie form.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp, err := h.relay.Do(r.Context(), r, http.MethodPost, "/api/v1/auth/refresh", nil, relay.Options{})
	if err != nil {
		writeRelayError(w, err, "Refresh request timed out")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		copyResponse(w, resp)
		return
	}

	var tokens models.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err == nil && tokens.AccessToken != "" {
		h.cookies.SetAccessToken(w, tokens.AccessToken)
	}

	subject := ""
	if claims := session.DecodeAccess(tokens.AccessToken); claims != nil {
		subject = claims.Subject
	}
	h.recordAudit(r, models.AuditActionRefresh, session.TenantSlug(r), session.TenantID(r), subject, "success", "", start)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Me returns the tenant session's claims, decoded locally without a
// backend round trip.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := session.DecodeAccess(session.AccessToken(r))
	if claims == nil {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":     claims.Subject,
		"tenant_id":   claims.TenantID,
		"roles":       claims.Roles,
		"permissions": claims.Permissions,
	})
}

// SaasMe proxies the platform-operator profile lookup with the
// platform bearer token.
func (h *AuthHandler) SaasMe(w http.ResponseWriter, r *http.Request) {
	access := session.SaasAccessToken(r)
	if access == "" {
		writeDetail(w, http.StatusUnauthorized, "Missing access token")
		return
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+access)

	resp, err := h.relay.Do(r.Context(), r, http.MethodGet, "/api/v1/auth/me/saas", nil, relay.Options{
		Header:             header,
		SkipSessionHeaders: true,
	})
	if err != nil {
		writeRelayError(w, err, "Request timed out")
		return
	}
	defer resp.Body.Close()

	copyResponse(w, resp)
}

func (h *AuthHandler) recordAudit(r *http.Request, action, tenantSlug, tenantID, subject, status, errMsg string, start time.Time) {
	h.audit.Record(r.Context(), &models.AuthAuditLog{
		TenantSlug:   tenantSlug,
		TenantID:     tenantID,
		Subject:      subject,
		Action:       action,
		IPAddress:    r.RemoteAddr,
		UserAgent:    r.UserAgent(),
		Status:       status,
		ErrorMessage: errMsg,
		Duration:     time.Since(start).Milliseconds(),
	})
}

// extractSetCookie pulls one cookie value out of a backend response's
// Set-Cookie headers.
func extractSetCookie(header http.Header, name string) string {
	for _, raw := range header.Values("Set-Cookie") {
		parts := strings.SplitN(raw, ";", 2)
		kv := strings.SplitN(strings.TrimSpace(parts[0]), "=", 2)
		if len(kv) == 2 && kv[0] == name {
			return kv[1]
		}
	}
	return ""
}
