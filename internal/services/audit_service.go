package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"tally/internal/logger"
	"tally/internal/models"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates an AuditServicer writing to the audit_logs table.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log writes one audit entry. The trail is best effort: a failed write
// is logged and swallowed so it cannot fail the operation it records.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}

	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("marshal audit changes", "error", err, "action", action)
			entry.Changes = "{}"
		} else {
			entry.Changes = string(data)
		}
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("write audit entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
