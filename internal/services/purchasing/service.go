package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/services/audit"
	"github.com/xelth-com/tradetrack/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	poPrefix       = "PO-MAG-"
	poNumberWidth  = 5
	defaultOffice  = "Magnova Head Office"
	entityPO       = "PurchaseOrder"
	entityWorkflow = "POWorkflow"
)

// Service handles purchase orders and procurement against them
type Service struct {
	db  *database.DB
	bus *notify.Bus
	log *zap.Logger
}

// NewService creates a new purchasing service
func NewService(db *database.DB, bus *notify.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, bus: bus, log: log}
}

// LineInput is one PO line as submitted by a form. Qty and rate may arrive as strings.
type LineInput struct {
	Vendor   string     `json:"vendor" validate:"required"`
	Location string     `json:"location"`
	Brand    string     `json:"brand"`
	Model    string     `json:"model"`
	Storage  *string    `json:"storage"`
	Colour   *string    `json:"colour"`
	IMEI     *string    `json:"imei"`
	Qty      money.Flex `json:"qty"`
	Rate     money.Flex `json:"rate"`
}

// CreatePOInput is the body of POST /purchase-orders
type CreatePOInput struct {
	PODate         *time.Time  `json:"po_date"`
	PurchaseOffice string      `json:"purchase_office"`
	Items          []LineInput `json:"items" validate:"required,min=1,dive"`
	Notes          *string     `json:"notes"`
}

// ApprovalInput is the body of POST /purchase-orders/{po}/approve
type ApprovalInput struct {
	Action          string  `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason *string `json:"rejection_reason"`
}

// CreatePO raises a purchase order. Only Magnova users may do this.
func (s *Service) CreatePO(ctx context.Context, actor models.Actor, in CreatePOInput) (*models.PurchaseOrder, error) {
	if actor.Organization != models.OrgMagnova {
		return nil, apperr.Forbidden("Only Magnova can create POs")
	}
	if len(in.Items) == 0 {
		return nil, apperr.Invalid("A purchase order needs at least one line item")
	}

	po := models.PurchaseOrder{
		PurchaseOffice: in.PurchaseOffice,
		CreatedBy:      actor.UserID,
		CreatedByName:  actor.Name,
		Organization:   actor.Organization,
		Status:         string(models.ApprovalCreated),
		ApprovalStatus: models.ApprovalPending,
		Notes:          in.Notes,
		WorkflowState:  workflow.StateCreated,
	}
	if po.PurchaseOffice == "" {
		po.PurchaseOffice = defaultOffice
	}
	po.PODate = time.Now().UTC()
	if in.PODate != nil {
		po.PODate = in.PODate.UTC()
	}
	for i, it := range in.Items {
		po.Items = append(po.Items, models.POLineItem{
			SlNo:     i + 1,
			Vendor:   it.Vendor,
			Location: it.Location,
			Brand:    it.Brand,
			Model:    it.Model,
			Storage:  it.Storage,
			Colour:   it.Colour,
			IMEI:     it.IMEI,
			Qty:      it.Qty.Int(),
			Rate:     it.Rate.Decimal.InexactFloat64(), // full precision, only po_value is rounded
		})
	}
	po.Recalculate()

	next, err := workflow.Next(po.WorkflowState, workflow.EventSubmitted)
	if err != nil {
		return nil, err
	}
	po.WorkflowState = next

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := database.NextNumber(tx, "purchase_orders", "po_number", poPrefix, poNumberWidth)
		if err != nil {
			return err
		}
		po.PONumber = number
		if err := tx.Create(&po).Error; err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		return audit.Record(tx, actor, audit.ActionCreate, entityPO, po.PONumber, map[string]interface{}{
			"total_quantity": po.TotalQuantity,
			"total_value":    po.TotalValue,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase order created", zap.String("po", po.PONumber), zap.Int("qty", po.TotalQuantity), zap.Float64("value", po.TotalValue))
	if s.bus != nil {
		s.bus.POCreated(po.PONumber, notify.Prefill{
			"po_number":   po.PONumber,
			"amount":      po.TotalValue,
			"payee_name":  string(models.OrgNova),
			"total_value": po.TotalValue,
		})
	}
	return &po, nil
}

// ListPOs returns every purchase order, newest first, with its lines.
func (s *Service) ListPOs(ctx context.Context) ([]models.PurchaseOrder, error) {
	var pos []models.PurchaseOrder
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sl_no ASC") }).
		Order("created_at DESC").
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return pos, nil
}

// GetPO loads one purchase order by number.
func (s *Service) GetPO(ctx context.Context, poNumber string) (*models.PurchaseOrder, error) {
	return findPO(s.db.WithContext(ctx), poNumber)
}

func findPO(tx *gorm.DB, poNumber string) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sl_no ASC") }).
		Where("po_number = ?", poNumber).
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("PO not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load purchase order %s: %w", poNumber, err)
	}
	return &po, nil
}

// Approve records an approver's decision. Only pending orders can be decided.
func (s *Service) Approve(ctx context.Context, actor models.Actor, poNumber string, in ApprovalInput) (*models.PurchaseOrder, error) {
	if !actor.CanApprove() {
		return nil, apperr.Forbidden("Only approvers can approve POs")
	}
	if in.Action != "approve" && in.Action != "reject" {
		return nil, apperr.Invalid("action must be approve or reject")
	}

	var po *models.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		po, err = findPO(tx, poNumber)
		if err != nil {
			return err
		}
		if po.ApprovalStatus != models.ApprovalPending {
			return apperr.Conflict("PO is already %s", po.ApprovalStatus)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"updated_at": now}
		action := audit.ActionApprove
		details := map[string]interface{}{}
		if in.Action == "approve" {
			updates["approval_status"] = models.ApprovalApproved
			updates["status"] = string(models.ApprovalApproved)
			updates["approved_by"] = actor.UserID
			updates["approved_at"] = now
		} else {
			action = audit.ActionReject
			updates["approval_status"] = models.ApprovalRejected
			updates["status"] = string(models.ApprovalRejected)
			updates["rejection_reason"] = in.RejectionReason
			if in.RejectionReason != nil {
				details["reason"] = *in.RejectionReason
			}
		}
		if err := tx.Model(&models.PurchaseOrder{}).Where("id = ?", po.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update approval: %w", err)
		}
		return audit.Record(tx, actor, action, entityPO, poNumber, details)
	})
	if err != nil {
		return nil, err
	}
	if s.bus != nil {
		s.bus.RefreshAfter(notify.POChange)
	}
	return s.GetPO(ctx, poNumber)
}

// RelatedCounts is shown before a cascade delete
type RelatedCounts struct {
	PONumber           string `json:"po_number"`
	ProcurementRecords int64  `json:"procurement_records"`
	Payments           int64  `json:"payments"`
	LogisticsShipments int64  `json:"logistics_shipments"`
	InventoryItems     int64  `json:"inventory_items"`
	Invoices           int64  `json:"invoices"`
	TotalRelated       int64  `json:"total_related"`
}

// RelatedCounts counts the records a cascade delete of the PO would remove.
func (s *Service) RelatedCounts(ctx context.Context, poNumber string) (*RelatedCounts, error) {
	db := s.db.WithContext(ctx)
	if _, err := findPO(db, poNumber); err != nil {
		return nil, err
	}

	rc := RelatedCounts{PONumber: poNumber}
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.ProcurementRecord{}, &rc.ProcurementRecords},
		{&models.Payment{}, &rc.Payments},
		{&models.Shipment{}, &rc.LogisticsShipments},
		{&models.Invoice{}, &rc.Invoices},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where("po_number = ?", poNumber).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count related: %w", err)
		}
	}
	imeis := db.Model(&models.ProcurementRecord{}).Select("imei").Where("po_number = ?", poNumber)
	if err := db.Model(&models.InventoryItem{}).Where("imei IN (?)", imeis).Count(&rc.InventoryItems).Error; err != nil {
		return nil, fmt.Errorf("count inventory: %w", err)
	}
	rc.TotalRelated = rc.ProcurementRecords + rc.Payments + rc.LogisticsShipments + rc.InventoryItems + rc.Invoices
	return &rc, nil
}

// DeletedCounts reports what a cascade delete removed
type DeletedCounts struct {
	Procurement int64 `json:"procurement"`
	Payments    int64 `json:"payments"`
	Logistics   int64 `json:"logistics"`
	Inventory   int64 `json:"inventory"`
	Invoices    int64 `json:"invoices"`
}

// DeletePO removes a purchase order and every record that references it. Admin only.
func (s *Service) DeletePO(ctx context.Context, actor models.Actor, poNumber string) (*DeletedCounts, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("Only Admin can delete records")
	}

	var dc DeletedCounts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := findPO(tx, poNumber)
		if err != nil {
			return err
		}

		var imeis []string
		if err := tx.Model(&models.ProcurementRecord{}).Where("po_number = ?", poNumber).Pluck("imei", &imeis).Error; err != nil {
			return fmt.Errorf("collect procured imeis: %w", err)
		}
		if len(imeis) > 0 {
			res := tx.Where("imei IN ?", imeis).Delete(&models.InventoryItem{})
			if res.Error != nil {
				return fmt.Errorf("delete inventory: %w", res.Error)
			}
			dc.Inventory = res.RowsAffected
		}

		steps := []struct {
			model interface{}
			dst   *int64
		}{
			{&models.ProcurementRecord{}, &dc.Procurement},
			{&models.Payment{}, &dc.Payments},
			{&models.Shipment{}, &dc.Logistics},
			{&models.Invoice{}, &dc.Invoices},
		}
		for _, st := range steps {
			res := tx.Where("po_number = ?", poNumber).Delete(st.model)
			if res.Error != nil {
				return fmt.Errorf("cascade delete: %w", res.Error)
			}
			*st.dst = res.RowsAffected
		}

		if err := tx.Where("po_id = ?", po.ID).Delete(&models.POLineItem{}).Error; err != nil {
			return fmt.Errorf("delete line items: %w", err)
		}
		if err := tx.Delete(po).Error; err != nil {
			return fmt.Errorf("delete purchase order: %w", err)
		}
		return audit.Record(tx, actor, audit.ActionCascadeDelete, entityPO, poNumber, map[string]interface{}{
			"procurement": dc.Procurement,
			"payments":    dc.Payments,
			"logistics":   dc.Logistics,
			"inventory":   dc.Inventory,
			"invoices":    dc.Invoices,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase order deleted", zap.String("po", poNumber), zap.Any("cascade", dc))
	if s.bus != nil {
		s.bus.PODeleted(poNumber)
	}
	return &dc, nil
}
