package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records every mutating operation
type AuditLog struct {
	ID         string            `gorm:"primaryKey;size:36" json:"log_id"`
	Action     string            `gorm:"size:32;index" json:"action"` // CREATE, APPROVE, SCAN, CASCADE_DELETE...
	EntityType string            `gorm:"size:32;index" json:"entity_type"`
	EntityID   string            `gorm:"size:64;index" json:"entity_id"`
	UserID     string            `gorm:"size:36" json:"user_id"`
	UserName   string            `json:"user_name"`
	Details    datatypes.JSONMap `json:"details"`
	Timestamp  time.Time         `gorm:"index" json:"timestamp"`
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate assigns the UUID primary key and timestamp
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&PurchaseOrder{},
		&POLineItem{},
		&ProcurementRecord{},
		&InventoryItem{},
		&Payment{},
		&Shipment{},
		&Invoice{},
		&SalesOrder{},
		&AuditLog{},
	}
}
