package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/schoolms/sms-gateway/internal/models"
	"github.com/schoolms/sms-gateway/internal/services"
	"github.com/schoolms/sms-gateway/internal/session"
)

// TenantHandler backs the tenant chooser page: it binds a browser to
// a tenant before login by resolving the chosen slug and writing the
// tenant-context cookies.
type TenantHandler struct {
	tenants *services.TenantService
	cookies *session.Cookies
}

func NewTenantHandler(tenants *services.TenantService, cookies *session.Cookies) *TenantHandler {
	return &TenantHandler{
		tenants: tenants,
		cookies: cookies,
	}
}

// Choose resolves a tenant slug and remembers it for the login form.
// Choosing a tenant leaves platform-operator mode.
func (h *TenantHandler) Choose(w http.ResponseWriter, r *http.Request) {
	var req models.ChooseTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = models.ChooseTenantRequest{}
	}

	tenantSlug := strings.ToLower(strings.TrimSpace(req.TenantSlug))
	if tenantSlug == "" {
		writeDetail(w, http.StatusBadRequest, "Missing tenant_slug")
		return
	}

	tenant, err := h.tenants.Resolve(r.Context(), tenantSlug)
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			writeDetail(w, http.StatusNotFound, "School not found or inactive")
			return
		}
		log.Warn().Err(err).Str("slug", tenantSlug).Msg("Tenant resolution failed")
		writeRelayError(w, err, "Tenant lookup timed out")
		return
	}

	h.cookies.ClearSaasSession(w)
	h.cookies.SetTenantContext(w, tenant.ID, tenant.Slug)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tenant": tenant})
}
