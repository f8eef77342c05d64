package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SalesOrder sells reserved devices to a customer
type SalesOrder struct {
	ID            string                      `gorm:"primaryKey;size:36" json:"sales_order_id"`
	SONumber      string                      `gorm:"uniqueIndex;size:32;not null" json:"so_number"`
	CustomerName  string                      `json:"customer_name"`
	CustomerType  string                      `gorm:"size:32" json:"customer_type"`
	TotalQuantity int                         `json:"total_quantity"`
	TotalAmount   float64                     `json:"total_amount"`
	Status        string                      `gorm:"size:16" json:"status"`
	IMEIList      datatypes.JSONSlice[string] `gorm:"column:imei_list" json:"imei_list"`
	CreatedBy     string                      `gorm:"size:36" json:"created_by"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// TableName specifies the table name for SalesOrder model
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// BeforeCreate assigns the UUID primary key
func (so *SalesOrder) BeforeCreate(tx *gorm.DB) error {
	if so.ID == "" {
		so.ID = uuid.NewString()
	}
	if so.IMEIList == nil {
		so.IMEIList = datatypes.JSONSlice[string]{}
	}
	return nil
}
