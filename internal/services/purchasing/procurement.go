package purchasing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/services/audit"
	"github.com/xelth-com/tradetrack/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const entityProcurement = "Procurement"

// ProcurementInput is the body of POST /procurement
type ProcurementInput struct {
	PONumber      string     `json:"po_number" validate:"required"`
	LineItemID    *string    `json:"line_item_id"`
	VendorName    string     `json:"vendor_name" validate:"required"`
	StoreLocation string     `json:"store_location" validate:"required"`
	IMEI          string     `json:"imei" validate:"required,min=8,max=32"`
	SerialNumber  *string    `json:"serial_number"`
	DeviceModel   string     `json:"device_model" validate:"required"`
	Quantity      *int       `json:"quantity" validate:"omitempty,min=1"`
	PurchasePrice money.Flex `json:"purchase_price"`
}

// CheckLine verifies that a keyed record points at a line of its own PO.
func CheckLine(tx *gorm.DB, po *models.PurchaseOrder, lineItemID *string) (*models.POLineItem, error) {
	if lineItemID == nil || *lineItemID == "" {
		return nil, nil
	}
	var line models.POLineItem
	err := tx.Where("id = ? AND po_id = ?", *lineItemID, po.ID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Invalid("line item %s does not belong to %s", *lineItemID, po.PONumber)
	}
	if err != nil {
		return nil, fmt.Errorf("load line item: %w", err)
	}
	return &line, nil
}

// GuessLine picks the PO line a device most likely belongs to: the line that
// names the IMEI, else the first line from the same vendor, else the first line.
func GuessLine(items []models.POLineItem, imei, vendor string) *models.POLineItem {
	for i := range items {
		if items[i].IMEI != nil && *items[i].IMEI == imei {
			return &items[i]
		}
	}
	for i := range items {
		if items[i].Vendor == vendor {
			return &items[i]
		}
	}
	if len(items) > 0 {
		return &items[0]
	}
	return nil
}

// CreateProcurement records a device bought from a vendor and puts it into
// inventory with status Procured.
func (s *Service) CreateProcurement(ctx context.Context, actor models.Actor, in ProcurementInput) (*models.ProcurementRecord, error) {
	in.IMEI = strings.TrimSpace(in.IMEI)
	if in.IMEI == "" {
		return nil, apperr.Invalid("IMEI is required")
	}
	qty := 1
	if in.Quantity != nil && *in.Quantity > 0 {
		qty = *in.Quantity
	}

	rec := models.ProcurementRecord{
		PONumber:        in.PONumber,
		VendorName:      in.VendorName,
		StoreLocation:   in.StoreLocation,
		IMEI:            in.IMEI,
		SerialNumber:    in.SerialNumber,
		DeviceModel:     in.DeviceModel,
		Quantity:        qty,
		PurchasePrice:   in.PurchasePrice.Float(),
		ProcurementDate: time.Now().UTC(),
		CreatedBy:       actor.UserID,
	}

	var state workflow.State
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := ReferencedPO(tx, in.PONumber)
		if err != nil {
			return err
		}
		line, err := CheckLine(tx, po, in.LineItemID)
		if err != nil {
			return err
		}
		if line != nil {
			rec.LineItemID = &line.ID
		} else {
			var items []models.POLineItem
			if err := tx.Where("po_id = ?", po.ID).Order("sl_no ASC").Find(&items).Error; err != nil {
				return fmt.Errorf("load line items: %w", err)
			}
			line = GuessLine(items, in.IMEI, in.VendorName)
		}

		var n int64
		if err := tx.Model(&models.ProcurementRecord{}).Where("imei = ?", in.IMEI).Count(&n).Error; err != nil {
			return fmt.Errorf("check imei: %w", err)
		}
		if n > 0 {
			return apperr.Conflict("IMEI already exists")
		}
		if err := tx.Model(&models.InventoryItem{}).Where("imei = ?", in.IMEI).Count(&n).Error; err != nil {
			return fmt.Errorf("check inventory: %w", err)
		}
		if n > 0 {
			return apperr.Conflict("IMEI %s is already in inventory", in.IMEI)
		}

		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create procurement: %w", err)
		}

		inv := models.InventoryItem{
			IMEI:            rec.IMEI,
			ProcurementID:   &rec.ID,
			DeviceModel:     &rec.DeviceModel,
			Vendor:          &rec.VendorName,
			Status:          models.InventoryProcured,
			CurrentLocation: rec.StoreLocation,
			Organization:    actor.Organization,
			PONumber:        &rec.PONumber,
			PurchasePrice:   &rec.PurchasePrice,
		}
		if inv.Organization == "" {
			inv.Organization = models.OrgNova
		}
		if line != nil {
			inv.Brand = nonEmpty(line.Brand)
			inv.Model = nonEmpty(line.Model)
			inv.Colour = line.Colour
			inv.Storage = line.Storage
		}
		if err := tx.Create(&inv).Error; err != nil {
			return fmt.Errorf("create inventory row: %w", err)
		}

		if err := audit.Record(tx, actor, audit.ActionCreate, entityProcurement, rec.ID, map[string]interface{}{"imei": rec.IMEI}); err != nil {
			return err
		}

		state = displayState(po.WorkflowState)
		if !workflow.Can(state, workflow.EventProcured) {
			// Procurement ahead of payment is accepted but does not move the PO
			return nil
		}
		if state, err = Advance(tx, actor, po, workflow.EventProcured); err != nil {
			return err
		}
		if state != workflow.StateProcuring {
			return nil
		}
		procured, err := procuredQuantity(tx, po.PONumber)
		if err != nil {
			return err
		}
		if po.TotalQuantity > 0 && procured >= int64(po.TotalQuantity) {
			state, err = Advance(tx, actor, po, workflow.EventClosed)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("device procured", zap.String("po", rec.PONumber), zap.String("imei", rec.IMEI), zap.String("state", string(state)))
	if s.bus != nil {
		s.bus.ProcurementRecorded(rec.PONumber, rec.IMEI)
	}
	return &rec, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListProcurement returns procurement records, newest first, optionally for one PO.
func (s *Service) ListProcurement(ctx context.Context, poNumber string) ([]models.ProcurementRecord, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if poNumber != "" {
		q = q.Where("po_number = ?", poNumber)
	}
	var recs []models.ProcurementRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list procurement: %w", err)
	}
	return recs, nil
}

// DeleteProcurement removes a procurement record and its inventory row. Admin only.
func (s *Service) DeleteProcurement(ctx context.Context, actor models.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only Admin can delete records")
	}
	var rec models.ProcurementRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Procurement record not found")
		}
		if err != nil {
			return fmt.Errorf("load procurement: %w", err)
		}
		if err := tx.Where("imei = ?", rec.IMEI).Delete(&models.InventoryItem{}).Error; err != nil {
			return fmt.Errorf("delete inventory row: %w", err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("delete procurement: %w", err)
		}
		return audit.Record(tx, actor, audit.ActionDelete, entityProcurement, id, nil)
	})
	if err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.RefreshAfter(notify.ProcurementChange)
	}
	return nil
}
