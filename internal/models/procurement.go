package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProcurementRecord is one device bought by Nova from a vendor against a PO.
// Its short ID is shown as the GRN number in the reconciliation report.
type ProcurementRecord struct {
	ID              string    `gorm:"primaryKey;size:36" json:"procurement_id"`
	PONumber        string    `gorm:"size:32;index;not null" json:"po_number"`
	LineItemID      *string   `gorm:"size:36;index" json:"line_item_id,omitempty"`
	VendorName      string    `gorm:"index" json:"vendor_name"`
	StoreLocation   string    `json:"store_location"`
	IMEI            string    `gorm:"size:32;uniqueIndex;not null" json:"imei"`
	SerialNumber    *string   `json:"serial_number"`
	DeviceModel     string    `json:"device_model"`
	Quantity        int       `gorm:"default:1" json:"quantity"`
	PurchasePrice   float64   `json:"purchase_price"`
	ProcurementDate time.Time `json:"procurement_date"`
	CreatedBy       string    `gorm:"size:36" json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for ProcurementRecord model
func (ProcurementRecord) TableName() string {
	return "procurement"
}

// BeforeCreate assigns the UUID primary key
func (p *ProcurementRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ShortID returns the first eight characters of an identifier, as printed on reports.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
