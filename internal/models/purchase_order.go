package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/workflow"
	"gorm.io/gorm"
)

// ApprovalStatus is the approver's decision on a purchase order
type ApprovalStatus string

const (
	ApprovalCreated  ApprovalStatus = "Created"
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// PurchaseOrder is raised by Magnova against Nova
type PurchaseOrder struct {
	ID              string         `gorm:"primaryKey;size:36" json:"po_id"`
	PONumber        string         `gorm:"uniqueIndex;size:32;not null" json:"po_number"`
	PODate          time.Time      `json:"po_date"`
	PurchaseOffice  string         `json:"purchase_office"`
	CreatedBy       string         `gorm:"size:36" json:"created_by"`
	CreatedByName   string         `json:"created_by_name"`
	Organization    Organization   `gorm:"size:32" json:"organization"`
	Status          string         `gorm:"size:32" json:"status"`
	ApprovalStatus  ApprovalStatus `gorm:"size:32;index" json:"approval_status"`
	ApprovedBy      *string        `gorm:"size:36" json:"approved_by"`
	ApprovedAt      *time.Time     `json:"approved_at"`
	RejectionReason *string        `json:"rejection_reason"`
	TotalQuantity   int            `json:"total_quantity"`
	TotalValue      float64        `json:"total_value"`
	Notes           *string        `gorm:"type:text" json:"notes"`
	WorkflowState   workflow.State `gorm:"size:40;index" json:"workflow_state"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Items []POLineItem `gorm:"foreignKey:POID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName specifies the table name for PurchaseOrder model
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// BeforeCreate assigns the UUID primary key
func (po *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if po.ID == "" {
		po.ID = uuid.NewString()
	}
	return nil
}

// Recalculate recomputes every line value and the PO totals.
func (po *PurchaseOrder) Recalculate() {
	qty := 0
	total := decimal.Zero
	for i := range po.Items {
		it := &po.Items[i]
		v := money.LineValue(decimal.NewFromInt(int64(it.Qty)), decimal.NewFromFloat(it.Rate))
		it.POValue = v.InexactFloat64()
		qty += it.Qty
		total = total.Add(v)
	}
	po.TotalQuantity = qty
	po.TotalValue = total.Round(money.Places).InexactFloat64()
}

// POLineItem is one ordered line of a purchase order. Its ID is the join key
// that procurement, payment and shipment records may reference.
type POLineItem struct {
	ID       string  `gorm:"primaryKey;size:36" json:"line_item_id"`
	POID     string  `gorm:"column:po_id;size:36;index;not null" json:"po_id"`
	SlNo     int     `json:"sl_no"`
	Vendor   string  `gorm:"index" json:"vendor"`
	Location string  `json:"location"`
	Brand    string  `json:"brand"`
	Model    string  `json:"model"`
	Storage  *string `json:"storage"`
	Colour   *string `json:"colour"`
	IMEI     *string `gorm:"size:32" json:"imei"`
	Qty      int     `json:"qty"`
	Rate     float64 `json:"rate"`
	POValue  float64 `json:"po_value"`
}

// TableName specifies the table name for POLineItem model
func (POLineItem) TableName() string {
	return "po_line_items"
}

// BeforeCreate assigns the UUID primary key
func (li *POLineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == "" {
		li.ID = uuid.NewString()
	}
	return nil
}
