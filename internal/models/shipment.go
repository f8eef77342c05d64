package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ShipmentStatus is the transport state of a shipment
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "Pending"
	ShipmentInTransit ShipmentStatus = "In Transit"
	ShipmentDelivered ShipmentStatus = "Delivered"
	ShipmentCancelled ShipmentStatus = "Cancelled"
)

// Valid reports whether s is a known shipment status.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentPending, ShipmentInTransit, ShipmentDelivered, ShipmentCancelled:
		return true
	}
	return false
}

// Shipment moves procured devices from a vendor location to a store
type Shipment struct {
	ID               string                      `gorm:"primaryKey;size:36" json:"shipment_id"`
	PONumber         string                      `gorm:"size:32;index;not null" json:"po_number"`
	LineItemID       *string                     `gorm:"size:36;index" json:"line_item_id,omitempty"`
	TransporterName  string                      `json:"transporter_name"`
	VehicleNumber    string                      `json:"vehicle_number"`
	EwayBillNumber   *string                     `json:"eway_bill_number"`
	FromLocation     string                      `json:"from_location"`
	ToLocation       string                      `json:"to_location"`
	PickupDate       time.Time                   `json:"pickup_date"`
	ExpectedDelivery time.Time                   `json:"expected_delivery"`
	ActualDelivery   *time.Time                  `json:"actual_delivery"`
	Status           ShipmentStatus              `gorm:"size:16;index" json:"status"`
	IMEIList         datatypes.JSONSlice[string] `gorm:"column:imei_list" json:"imei_list"`
	PickupQuantity   int                         `json:"pickup_quantity"`
	Brand            *string                     `json:"brand"`
	Model            *string                     `json:"model"`
	Vendor           *string                     `json:"vendor"`
	CreatedBy        string                      `gorm:"size:36" json:"created_by"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// TableName specifies the table name for Shipment model
func (Shipment) TableName() string {
	return "logistics_shipments"
}

// BeforeCreate assigns the UUID primary key
func (s *Shipment) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.IMEIList == nil {
		s.IMEIList = datatypes.JSONSlice[string]{}
	}
	return nil
}
