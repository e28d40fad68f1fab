package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions recorded by the gateway
const (
	AuditActionLogin       = "login"
	AuditActionLoginFailed = "login_failed"
	AuditActionSaasLogin   = "saas_login"
	AuditActionLogout      = "logout"
	AuditActionRefresh     = "refresh"
)

// AuthAuditLog records one authentication event handled by the gateway
type AuthAuditLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantSlug   string    `gorm:"type:varchar(100);index" json:"tenant_slug"`
	TenantID     string    `gorm:"type:varchar(100);index" json:"tenant_id"`
	Subject      string    `gorm:"type:varchar(255);index" json:"subject"`
	Action       string    `gorm:"type:varchar(50);not null;index" json:"action"`
	IPAddress    string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent    string    `gorm:"type:text" json:"user_agent"`
	Status       string    `gorm:"type:varchar(20);index" json:"status"` // success, failure
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	Duration     int64     `json:"duration_ms"` // milliseconds
	CreatedAt    time.Time `gorm:"index" json:"timestamp"`
}

// TableName overrides the table name
func (AuthAuditLog) TableName() string {
	return "auth_audit_logs"
}

// BeforeCreate hook
func (a *AuthAuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
