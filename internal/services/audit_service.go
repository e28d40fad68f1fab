package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/schoolms/sms-gateway/internal/models"
	"github.com/schoolms/sms-gateway/internal/repository"
)

// AuditService records authentication events. Recording is
// best-effort: a failed write is logged and never surfaced to the
// user, and the service can run disabled when no database is
// configured.
type AuditService struct {
	repo    *repository.AuditRepository
	enabled bool
}

// NewAuditService creates a new audit service
func NewAuditService(repo *repository.AuditRepository, enabled bool) *AuditService {
	return &AuditService{repo: repo, enabled: enabled}
}

// Record writes one audit entry
func (s *AuditService) Record(ctx context.Context, entry *models.AuthAuditLog) {
	if !s.enabled || s.repo == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", entry.Action).Msg("Failed to write audit log")
	}
}
