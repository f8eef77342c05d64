package audit

import (
	"context"
	"fmt"

	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions written to the audit trail
const (
	ActionCreate        = "CREATE"
	ActionUpdate        = "UPDATE"
	ActionDelete        = "DELETE"
	ActionApprove       = "APPROVE"
	ActionReject        = "REJECT"
	ActionScan          = "SCAN"
	ActionCascadeDelete = "CASCADE_DELETE"
	ActionTransition    = "TRANSITION"
)

// ListLimit caps how many entries List returns.
const ListLimit = 500

// Record appends an entry inside the caller's transaction.
func Record(tx *gorm.DB, actor models.Actor, action, entityType, entityID string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	entry := models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     actor.UserID,
		UserName:   actor.Name,
		Details:    datatypes.JSONMap(details),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit %s %s: %w", action, entityType, err)
	}
	return nil
}

// Service reads the audit trail
type Service struct {
	db *database.DB
}

// NewService creates a new audit service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// List returns the latest entries, newest first, optionally for one entity type.
func (s *Service) List(ctx context.Context, entityType string) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Order("timestamp DESC").Limit(ListLimit)
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
