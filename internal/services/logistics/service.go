package logistics

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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const entityShipment = "Shipment"

// next lists the statuses a shipment may move to. Delivered and Cancelled are final.
var next = map[models.ShipmentStatus][]models.ShipmentStatus{
	models.ShipmentPending:   {models.ShipmentInTransit, models.ShipmentCancelled},
	models.ShipmentInTransit: {models.ShipmentDelivered, models.ShipmentCancelled},
}

// CanMove reports whether a shipment in from may be set to to.
// Re-applying the current status is accepted.
func CanMove(from, to models.ShipmentStatus) bool {
	if from == to {
		return true
	}
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Service tracks shipments from vendor locations to stores
type Service struct {
	db  *database.DB
	bus *notify.Bus
	log *zap.Logger
}

// NewService creates a new logistics service
func NewService(db *database.DB, bus *notify.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, bus: bus, log: log}
}

// ShipmentInput is the body of POST /logistics/shipments
type ShipmentInput struct {
	PONumber         string    `json:"po_number" validate:"required"`
	LineItemID       *string   `json:"line_item_id"`
	TransporterName  string    `json:"transporter_name" validate:"required"`
	VehicleNumber    string    `json:"vehicle_number" validate:"required"`
	EwayBillNumber   *string   `json:"eway_bill_number"`
	FromLocation     string    `json:"from_location" validate:"required"`
	ToLocation       string    `json:"to_location" validate:"required"`
	PickupDate       time.Time `json:"pickup_date" validate:"required"`
	ExpectedDelivery time.Time `json:"expected_delivery" validate:"required"`
	IMEIList         []string  `json:"imei_list"`
	PickupQuantity   int       `json:"pickup_quantity" validate:"min=0"`
	Brand            *string   `json:"brand"`
	Model            *string   `json:"model"`
	Vendor           *string   `json:"vendor"`
}

// StatusInput is the body of PATCH /logistics/shipments/{id}/status
type StatusInput struct {
	Status models.ShipmentStatus `json:"status" validate:"required"`
}

// Create books a pickup. The shipment starts Pending; pickup quantity defaults
// to the number of listed IMEIs.
func (s *Service) Create(ctx context.Context, actor models.Actor, in ShipmentInput) (*models.Shipment, error) {
	sh := models.Shipment{
		PONumber:         in.PONumber,
		TransporterName:  in.TransporterName,
		VehicleNumber:    in.VehicleNumber,
		EwayBillNumber:   in.EwayBillNumber,
		FromLocation:     in.FromLocation,
		ToLocation:       in.ToLocation,
		PickupDate:       in.PickupDate.UTC(),
		ExpectedDelivery: in.ExpectedDelivery.UTC(),
		Status:           models.ShipmentPending,
		IMEIList:         datatypes.JSONSlice[string](in.IMEIList),
		PickupQuantity:   in.PickupQuantity,
		Brand:            in.Brand,
		Model:            in.Model,
		Vendor:           in.Vendor,
		CreatedBy:        actor.UserID,
	}
	if sh.PickupQuantity == 0 {
		sh.PickupQuantity = len(in.IMEIList)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := purchasing.ReferencedPO(tx, in.PONumber)
		if err != nil {
			return err
		}
		line, err := purchasing.CheckLine(tx, po, in.LineItemID)
		if err != nil {
			return err
		}
		if line != nil {
			sh.LineItemID = &line.ID
			if sh.Vendor == nil && line.Vendor != "" {
				sh.Vendor = &line.Vendor
			}
		}
		if err := tx.Create(&sh).Error; err != nil {
			return fmt.Errorf("create shipment: %w", err)
		}
		details := map[string]interface{}{"pickup_quantity": sh.PickupQuantity}
		if sh.Vendor != nil {
			details["vendor"] = *sh.Vendor
		}
		return audit.Record(tx, actor, audit.ActionCreate, entityShipment, sh.ID, details)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("shipment booked", zap.String("po", sh.PONumber), zap.String("shipment", sh.ID), zap.Int("qty", sh.PickupQuantity))
	if s.bus != nil {
		s.bus.RefreshAfter(notify.LogisticsChange)
	}
	return &sh, nil
}

// List returns shipments, newest first, optionally for one PO.
func (s *Service) List(ctx context.Context, poNumber string) ([]models.Shipment, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if poNumber != "" {
		q = q.Where("po_number = ?", poNumber)
	}
	var out []models.Shipment
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	for i := range out {
		if out[i].PickupQuantity == 0 {
			out[i].PickupQuantity = len(out[i].IMEIList)
		}
	}
	return out, nil
}

// UpdateStatus moves a shipment along Pending → In Transit → Delivered, or to
// Cancelled. Delivered stamps the actual delivery time; any other status clears it.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, id string, in StatusInput) (*models.Shipment, error) {
	if !in.Status.Valid() {
		return nil, apperr.Invalid("unknown shipment status %q", in.Status)
	}

	var sh models.Shipment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&sh).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Shipment not found")
		}
		if err != nil {
			return fmt.Errorf("load shipment: %w", err)
		}
		if !CanMove(sh.Status, in.Status) {
			return apperr.Conflict("Shipment is %s and cannot move to %s", sh.Status, in.Status)
		}

		now := time.Now().UTC()
		var delivered *time.Time
		if in.Status == models.ShipmentDelivered {
			delivered = &now
		}
		err = tx.Model(&models.Shipment{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":          in.Status,
			"actual_delivery": delivered,
			"updated_at":      now,
		}).Error
		if err != nil {
			return fmt.Errorf("update shipment: %w", err)
		}
		sh.Status = in.Status
		sh.ActualDelivery = delivered
		sh.UpdatedAt = now
		return audit.Record(tx, actor, audit.ActionUpdate, entityShipment, id, map[string]interface{}{"new_status": string(in.Status)})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("shipment status changed", zap.String("shipment", id), zap.String("status", string(in.Status)))
	if s.bus != nil {
		s.bus.RefreshAfter(notify.LogisticsChange)
	}
	return &sh, nil
}

// Delete removes a shipment. Admin only.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only Admin can delete records")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Shipment{})
		if res.Error != nil {
			return fmt.Errorf("delete shipment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Shipment not found")
		}
		return audit.Record(tx, actor, audit.ActionDelete, entityShipment, id, nil)
	})
	if err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.RefreshAfter(notify.LogisticsChange)
	}
	return nil
}
