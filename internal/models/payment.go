package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentType discriminates the two settlement flows
type PaymentType string

const (
	PaymentInternal PaymentType = "internal" // Magnova → Nova, for the PO total
	PaymentExternal PaymentType = "external" // Nova → vendor or credit card
)

// PayeeType applies to external payments only
type PayeeType string

const (
	PayeeVendor     PayeeType = "vendor"
	PayeeCreditCard PayeeType = "cc"
)

// Payment is a settlement against a purchase order
type Payment struct {
	ID             string      `gorm:"primaryKey;size:36" json:"payment_id"`
	PONumber       string      `gorm:"size:32;index;not null" json:"po_number"`
	LineItemID     *string     `gorm:"size:36;index" json:"line_item_id,omitempty"`
	PaymentType    PaymentType `gorm:"size:16;index" json:"payment_type"`
	ProcurementID  *string     `gorm:"size:36" json:"procurement_id"`
	PayeeType      *PayeeType  `gorm:"size:16" json:"payee_type"`
	PayeeName      string      `json:"payee_name"`
	PayeeAccount   *string     `json:"payee_account"`
	PayeeBank      *string     `json:"payee_bank"`
	AccountNumber  *string     `json:"account_number"`
	IFSCCode       *string     `gorm:"column:ifsc_code" json:"ifsc_code"`
	Location       *string     `json:"location"`
	PaymentMode    string      `json:"payment_mode"`
	Amount         float64     `json:"amount"`
	TransactionRef *string     `json:"transaction_ref"`
	UTRNumber      *string     `gorm:"column:utr_number" json:"utr_number"`
	PaymentDate    time.Time   `json:"payment_date"`
	Status         string      `gorm:"size:16" json:"status"`
	CreatedBy      string      `gorm:"size:36" json:"created_by"`
	CreatedAt      time.Time   `json:"created_at"`
}

// TableName specifies the table name for Payment model
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate assigns the UUID primary key
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsInternal treats untyped legacy payments as internal.
func (p *Payment) IsInternal() bool {
	return p.PaymentType == PaymentInternal || p.PaymentType == ""
}

// IsExternal reports whether the payment settles a vendor or card.
func (p *Payment) IsExternal() bool {
	return p.PaymentType == PaymentExternal
}
