package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/schoolms/sms-gateway/internal/cache"
	"github.com/schoolms/sms-gateway/internal/models"
	"github.com/schoolms/sms-gateway/internal/relay"
)

// ErrTenantNotFound is returned when a slug does not resolve to an
// active tenant.
var ErrTenantNotFound = errors.New("tenant not found")

// TenantService resolves tenant slugs against the backend tenant
// directory, with a cache in front so the chooser flow does not hit
// the backend on every keystroke.
type TenantService struct {
	relay *relay.Client
	cache cache.Cache
	ttl   time.Duration
}

// NewTenantService creates a new tenant directory service
func NewTenantService(relayClient *relay.Client, c cache.Cache, ttl time.Duration) *TenantService {
	return &TenantService{
		relay: relayClient,
		cache: c,
		ttl:   ttl,
	}
}

// Resolve looks up a tenant by slug. Directory lookups are public:
// they run before any session exists, so no session headers are
// attached.
func (s *TenantService) Resolve(ctx context.Context, slug string) (*models.Tenant, error) {
	key := cache.TenantKey(slug)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var tenant models.Tenant
		if err := json.Unmarshal(cached, &tenant); err == nil {
			return &tenant, nil
		}
		// Unreadable cache entry; drop it and fall through
		_ = s.cache.Delete(ctx, key)
	}

	path := "/api/v1/tenants/resolve?slug=" + url.QueryEscape(slug)
	resp, err := s.relay.Do(ctx, nil, http.MethodGet, path, nil, relay.Options{SkipSessionHeaders: true})
	if err != nil {
		return nil, fmt.Errorf("tenant directory lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTenantNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tenant directory returned status %d", resp.StatusCode)
	}

	var tenant models.Tenant
	if err := json.NewDecoder(resp.Body).Decode(&tenant); err != nil {
		return nil, fmt.Errorf("failed to decode tenant: %w", err)
	}
	if !tenant.IsActive {
		return nil, ErrTenantNotFound
	}

	if encoded, err := json.Marshal(tenant); err == nil {
		if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Failed to cache tenant")
		}
	}

	return &tenant, nil
}
