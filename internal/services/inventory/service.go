package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/services/audit"
	"github.com/xelth-com/tradetrack/internal/services/purchasing"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const entityIMEI = "IMEI"

// Scan actions accepted by POST /inventory/scan
const (
	ActionInwardNova     = "inward_nova"
	ActionInwardMagnova  = "inward_magnova"
	ActionOutwardNova    = "outward_nova"
	ActionOutwardMagnova = "outward_magnova"
	ActionDispatch       = "dispatch"
	ActionAvailable      = "available"
)

// Service tracks IMEI-level stock movement
type Service struct {
	db  *database.DB
	bus *notify.Bus
	log *zap.Logger
}

// NewService creates a new inventory service
func NewService(db *database.DB, bus *notify.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, bus: bus, log: log}
}

// ScanInput is the body of POST /inventory/scan
type ScanInput struct {
	IMEI     string  `json:"imei" validate:"required"`
	Action   string  `json:"action" validate:"required,oneof=inward_nova inward_magnova outward_nova outward_magnova dispatch available"`
	Location string  `json:"location"`
	Vendor   *string `json:"vendor"`
}

// ScanResult is returned after a scan
type ScanResult struct {
	Message string                 `json:"message"`
	Status  models.InventoryStatus `json:"status"`
	Created bool                   `json:"created"`
}

// List returns inventory rows, newest first, filtered by status and organization.
func (s *Service) List(ctx context.Context, status, organization string) ([]models.InventoryItem, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if organization != "" {
		q = q.Where("organization = ?", organization)
	}
	var items []models.InventoryItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}

// Get returns one inventory row.
func (s *Service) Get(ctx context.Context, imei string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).Where("imei = ?", imei).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("IMEI not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load imei: %w", err)
	}
	return &item, nil
}

// applyScan sets status, movement date and ownership for a scan action.
func applyScan(action string, now time.Time, updates map[string]interface{}) error {
	switch action {
	case ActionInwardNova:
		updates["status"] = models.InventoryInwardNova
		updates["inward_nova_date"] = now
	case ActionInwardMagnova:
		updates["status"] = models.InventoryInwardMagnova
		updates["inward_magnova_date"] = now
		updates["organization"] = models.OrgMagnova
	case ActionOutwardNova:
		updates["status"] = models.InventoryOutwardNova
		updates["outward_nova_date"] = now
	case ActionOutwardMagnova:
		updates["status"] = models.InventoryOutwardMagnova
		updates["outward_magnova_date"] = now
	case ActionDispatch:
		updates["status"] = models.InventoryDispatched
		updates["dispatched_date"] = now
	case ActionAvailable:
		updates["status"] = models.InventoryAvailable
	default:
		return apperr.Invalid("unknown scan action %q", action)
	}
	return nil
}

// Scan records a physical movement of a device. A device that was procured
// but never scanned gets its inventory row created from the procurement record.
func (s *Service) Scan(ctx context.Context, actor models.Actor, in ScanInput) (*ScanResult, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"updated_at":       now,
		"current_location": in.Location,
	}
	if in.Vendor != nil && *in.Vendor != "" {
		updates["vendor"] = *in.Vendor
	}
	if err := applyScan(in.Action, now, updates); err != nil {
		return nil, err
	}

	res := ScanResult{Message: "IMEI scanned successfully"}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		err := tx.Where("imei = ?", in.IMEI).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created, cerr := createFromProcurement(tx, in)
			if cerr != nil {
				return cerr
			}
			item = *created
			res.Created = true
		} else if err != nil {
			return fmt.Errorf("load imei: %w", err)
		}

		if err := tx.Model(&models.InventoryItem{}).Where("imei = ?", in.IMEI).Updates(updates).Error; err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}
		res.Status = updates["status"].(models.InventoryStatus)

		details := map[string]interface{}{"action": in.Action, "location": in.Location}
		if in.Vendor != nil {
			details["vendor"] = *in.Vendor
		}
		return audit.Record(tx, actor, audit.ActionScan, entityIMEI, in.IMEI, details)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("imei scanned", zap.String("imei", in.IMEI), zap.String("action", in.Action), zap.String("status", string(res.Status)))
	if s.bus != nil {
		s.bus.RefreshAfter(notify.InventoryChange)
	}
	return &res, nil
}

func createFromProcurement(tx *gorm.DB, in ScanInput) (*models.InventoryItem, error) {
	var proc models.ProcurementRecord
	err := tx.Where("imei = ?", in.IMEI).First(&proc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("IMEI not found in procurement records. Please add this IMEI through procurement first.")
	}
	if err != nil {
		return nil, fmt.Errorf("load procurement: %w", err)
	}

	location := in.Location
	if location == "" {
		location = proc.StoreLocation
	}
	vendor := proc.VendorName
	if vendor == "" && in.Vendor != nil {
		vendor = *in.Vendor
	}
	model := proc.DeviceModel
	if model == "" {
		model = "Unknown"
	}
	item := models.InventoryItem{
		IMEI:            in.IMEI,
		ProcurementID:   &proc.ID,
		DeviceModel:     &model,
		Vendor:          &vendor,
		Status:          models.InventoryProcured,
		Organization:    models.OrgNova,
		CurrentLocation: location,
		PONumber:        &proc.PONumber,
		PurchasePrice:   &proc.PurchasePrice,
	}
	if line, err := lineFor(tx, &proc); err != nil {
		return nil, err
	} else if line != nil {
		item.Brand = strPtr(line.Brand)
		item.Model = strPtr(line.Model)
		item.Colour = line.Colour
		item.Storage = line.Storage
	}
	if err := tx.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create inventory row: %w", err)
	}
	return &item, nil
}

// lineFor finds the PO line of a procurement record: by key when present,
// otherwise by the IMEI/vendor heuristic.
func lineFor(tx *gorm.DB, proc *models.ProcurementRecord) (*models.POLineItem, error) {
	if proc.LineItemID != nil {
		var line models.POLineItem
		err := tx.Where("id = ?", *proc.LineItemID).First(&line).Error
		if err == nil {
			return &line, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load line item: %w", err)
		}
	}
	var po models.PurchaseOrder
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sl_no ASC") }).
		Where("po_number = ?", proc.PONumber).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load purchase order: %w", err)
	}
	return purchasing.GuessLine(po.Items, proc.IMEI, proc.VendorName), nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Delete removes an inventory row. Admin only.
func (s *Service) Delete(ctx context.Context, actor models.Actor, imei string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only Admin can delete records")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("imei = ?", imei).Delete(&models.InventoryItem{})
		if res.Error != nil {
			return fmt.Errorf("delete inventory: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("IMEI not found")
		}
		return audit.Record(tx, actor, audit.ActionDelete, entityIMEI, imei, nil)
	})
	if err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.RefreshAfter(notify.InventoryChange)
	}
	return nil
}
