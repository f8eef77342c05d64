package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultGSTPercentage applies when an invoice does not state one
const DefaultGSTPercentage = 18.0

// Invoice is raised between the organizations or to a customer
type Invoice struct {
	ID               string                      `gorm:"primaryKey;size:36" json:"invoice_id"`
	InvoiceNumber    string                      `gorm:"uniqueIndex;size:32;not null" json:"invoice_number"`
	InvoiceType      string                      `gorm:"size:32" json:"invoice_type"`
	PONumber         string                      `gorm:"size:32;index" json:"po_number"`
	FromOrganization string                      `json:"from_organization"`
	ToOrganization   string                      `json:"to_organization"`
	Amount           float64                     `json:"amount"`
	GSTAmount        float64                     `gorm:"column:gst_amount" json:"gst_amount"`
	GSTPercentage    float64                     `gorm:"column:gst_percentage" json:"gst_percentage"`
	TotalAmount      float64                     `json:"total_amount"`
	IMEIList         datatypes.JSONSlice[string] `gorm:"column:imei_list" json:"imei_list"`
	InvoiceDate      time.Time                   `json:"invoice_date"`
	PaymentStatus    string                      `gorm:"size:16" json:"payment_status"`
	Description      *string                     `gorm:"type:text" json:"description"`
	BillingAddress   *string                     `json:"billing_address"`
	ShippingAddress  *string                     `json:"shipping_address"`
	CreatedBy        string                      `gorm:"size:36" json:"created_by"`
	CreatedAt        time.Time                   `json:"created_at"`
}

// TableName specifies the table name for Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// BeforeCreate assigns the UUID primary key
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.IMEIList == nil {
		i.IMEIList = datatypes.JSONSlice[string]{}
	}
	return nil
}
