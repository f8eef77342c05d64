package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xelth-com/tradetrack/internal/models"
	"gorm.io/gorm"
)

// Lookup merges what procurement, the PO line and inventory know about an
// IMEI, so a scan or sales form can be pre-filled.
type Lookup struct {
	Found           bool                   `json:"found"`
	Message         string                 `json:"message,omitempty"`
	InInventory     bool                   `json:"in_inventory"`
	InProcurement   bool                   `json:"in_procurement"`
	Vendor          *string                `json:"vendor,omitempty"`
	DeviceModel     *string                `json:"device_model,omitempty"`
	PONumber        *string                `json:"po_number,omitempty"`
	LineItemID      *string                `json:"line_item_id,omitempty"`
	StoreLocation   *string                `json:"store_location,omitempty"`
	PurchasePrice   *float64               `json:"purchase_price,omitempty"`
	ProcurementDate *time.Time             `json:"procurement_date,omitempty"`
	Brand           *string                `json:"brand,omitempty"`
	Model           *string                `json:"model,omitempty"`
	Colour          *string                `json:"colour,omitempty"`
	Storage         *string                `json:"storage,omitempty"`
	Status          models.InventoryStatus `json:"status,omitempty"`
	CurrentLocation *string                `json:"current_location,omitempty"`
	Organization    models.Organization    `json:"organization,omitempty"`
}

func firstOf(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

// Lookup resolves an IMEI across procurement, PO lines and inventory.
// Inventory wins over the PO line, which wins over procurement.
func (s *Service) Lookup(ctx context.Context, imei string) (*Lookup, error) {
	db := s.db.WithContext(ctx)

	var inv *models.InventoryItem
	var item models.InventoryItem
	err := db.Where("imei = ?", imei).First(&item).Error
	switch {
	case err == nil:
		inv = &item
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	var proc *models.ProcurementRecord
	var rec models.ProcurementRecord
	err = db.Where("imei = ?", imei).First(&rec).Error
	switch {
	case err == nil:
		proc = &rec
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load procurement: %w", err)
	}

	if inv == nil && proc == nil {
		return &Lookup{Found: false, Message: "IMEI not found in procurement or inventory"}, nil
	}

	out := Lookup{Found: true, InInventory: inv != nil, InProcurement: proc != nil}
	if proc != nil {
		out.Vendor = &proc.VendorName
		out.DeviceModel = &proc.DeviceModel
		out.PONumber = &proc.PONumber
		out.LineItemID = proc.LineItemID
		out.StoreLocation = &proc.StoreLocation
		out.PurchasePrice = &proc.PurchasePrice
		out.ProcurementDate = &proc.ProcurementDate

		line, err := lineFor(db, proc)
		if err != nil {
			return nil, err
		}
		if line != nil {
			out.LineItemID = &line.ID
			out.Brand = strPtr(line.Brand)
			out.Model = strPtr(line.Model)
			out.Colour = line.Colour
			out.Storage = line.Storage
			out.Vendor = firstOf(strPtr(line.Vendor), out.Vendor)
			out.StoreLocation = firstOf(strPtr(line.Location), out.StoreLocation)
		}
	}

	if inv != nil {
		out.Status = inv.Status
		out.CurrentLocation = &inv.CurrentLocation
		out.Organization = inv.Organization
		out.DeviceModel = firstOf(inv.DeviceModel, out.DeviceModel)
		out.Vendor = firstOf(inv.Vendor, out.Vendor)
		out.Brand = firstOf(inv.Brand, out.Brand)
		out.Model = firstOf(inv.Model, out.Model)
		out.Colour = firstOf(inv.Colour, out.Colour)
		out.Storage = firstOf(inv.Storage, out.Storage)
		if out.PONumber == nil {
			out.PONumber = inv.PONumber
		}
	}
	return &out, nil
}
