package models

import (
	"time"
)

// InventoryStatus tracks where a device is in its physical lifecycle
type InventoryStatus string

const (
	InventoryProcured       InventoryStatus = "Procured"
	InventoryInwardNova     InventoryStatus = "Inward Nova"
	InventoryInwardMagnova  InventoryStatus = "Inward Magnova"
	InventoryOutwardNova    InventoryStatus = "Outward Nova"
	InventoryOutwardMagnova InventoryStatus = "Outward Magnova"
	InventoryAvailable      InventoryStatus = "Available"
	InventoryReserved       InventoryStatus = "Reserved"
	InventoryDispatched     InventoryStatus = "Dispatched"
)

// InventoryItem is a single IMEI-tracked device. The IMEI is the primary key.
type InventoryItem struct {
	IMEI              string          `gorm:"primaryKey;size:32" json:"imei"`
	ProcurementID     *string         `gorm:"size:36;index" json:"procurement_id"`
	DeviceModel       *string         `json:"device_model"`
	Brand             *string         `json:"brand"`
	Model             *string         `json:"model"`
	Colour            *string         `json:"colour"`
	Storage           *string         `json:"storage"`
	Vendor            *string         `json:"vendor"`
	Status            InventoryStatus `gorm:"size:32;index" json:"status"`
	CurrentLocation   string          `json:"current_location"`
	Organization      Organization    `gorm:"size:32;index" json:"organization"`
	PONumber          *string         `gorm:"size:32;index" json:"po_number"`
	PurchasePrice     *float64        `json:"purchase_price"`
	InwardNovaDate    *time.Time      `json:"inward_nova_date"`
	InwardMagnovaDate *time.Time      `json:"inward_magnova_date"`
	OutwardNovaDate   *time.Time      `json:"outward_nova_date"`
	OutwardMagnova    *time.Time      `gorm:"column:outward_magnova_date" json:"outward_magnova_date"`
	DispatchedDate    *time.Time      `json:"dispatched_date"`
	SoldDate          *time.Time      `json:"sold_date"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name for InventoryItem model
func (InventoryItem) TableName() string {
	return "imei_inventory"
}

// DeviceModelText returns the device model or an empty string.
func (i *InventoryItem) DeviceModelText() string {
	if i.DeviceModel == nil {
		return ""
	}
	return *i.DeviceModel
}
