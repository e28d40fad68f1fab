package repository

import (
	"context"
	"fmt"

	"github.com/schoolms/sms-gateway/internal/database"
	"github.com/schoolms/sms-gateway/internal/models"
)

// AuditRepository handles auth audit log database operations
type AuditRepository struct{}

// NewAuditRepository creates a new audit repository
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Create creates a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuthAuditLog) error {
	if err := database.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// GetByTenantSlug retrieves audit logs for a tenant
func (r *AuditRepository) GetByTenantSlug(ctx context.Context, tenantSlug string, limit, offset int) ([]models.AuthAuditLog, error) {
	var logs []models.AuthAuditLog
	query := database.DB.WithContext(ctx).
		Where("tenant_slug = ?", tenantSlug).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}

	return logs, nil
}

// GetBySubject retrieves audit logs for a specific user
func (r *AuditRepository) GetBySubject(ctx context.Context, subject string, limit int) ([]models.AuthAuditLog, error) {
	var logs []models.AuthAuditLog
	query := database.DB.WithContext(ctx).
		Where("subject = ?", subject).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	return logs, nil
}
