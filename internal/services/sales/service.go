package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/services/audit"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	soPrefix      = "SO-MAG-"
	soNumberWidth = 5
	statusCreated = "Created"
	entitySO      = "SalesOrder"
)

// Service sells devices out of inventory
type Service struct {
	db  *database.DB
	bus *notify.Bus
	log *zap.Logger
}

// NewService creates a new sales service
func NewService(db *database.DB, bus *notify.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, bus: bus, log: log}
}

// OrderInput is the body of POST /sales-orders
type OrderInput struct {
	CustomerName  string     `json:"customer_name" validate:"required"`
	CustomerType  string     `json:"customer_type" validate:"required"`
	TotalQuantity int        `json:"total_quantity" validate:"min=0"`
	TotalAmount   money.Flex `json:"total_amount"`
	IMEIList      []string   `json:"imei_list" validate:"required,min=1,dive,required"`
}

// unavailable marks inventory statuses a sales order cannot take a device from.
var unavailable = map[models.InventoryStatus]bool{
	models.InventoryReserved:   true,
	models.InventoryDispatched: true,
}

// Create books a sales order and reserves every listed IMEI in the same
// transaction. Only Magnova sells.
func (s *Service) Create(ctx context.Context, actor models.Actor, in OrderInput) (*models.SalesOrder, error) {
	if actor.Organization != models.OrgMagnova {
		return nil, apperr.Forbidden("Only Magnova can create sales orders")
	}
	so := models.SalesOrder{
		CustomerName:  in.CustomerName,
		CustomerType:  in.CustomerType,
		TotalQuantity: in.TotalQuantity,
		TotalAmount:   in.TotalAmount.Float(),
		Status:        statusCreated,
		IMEIList:      datatypes.JSONSlice[string](in.IMEIList),
		CreatedBy:     actor.UserID,
	}
	if so.TotalQuantity == 0 {
		so.TotalQuantity = len(in.IMEIList)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.InventoryItem
		if err := tx.Where("imei IN ?", in.IMEIList).Find(&items).Error; err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		found := make(map[string]models.InventoryStatus, len(items))
		for _, it := range items {
			found[it.IMEI] = it.Status
		}
		for _, imei := range in.IMEIList {
			st, ok := found[imei]
			if !ok {
				return apperr.Invalid("IMEI %s is not in inventory", imei)
			}
			if unavailable[st] {
				return apperr.Conflict("IMEI %s is already %s", imei, st)
			}
		}

		number, err := database.NextNumber(tx, "sales_orders", "so_number", soPrefix, soNumberWidth)
		if err != nil {
			return err
		}
		so.SONumber = number
		if err := tx.Create(&so).Error; err != nil {
			return fmt.Errorf("create sales order: %w", err)
		}

		err = tx.Model(&models.InventoryItem{}).
			Where("imei IN ?", in.IMEIList).
			Updates(map[string]interface{}{"status": models.InventoryReserved, "updated_at": time.Now().UTC()}).Error
		if err != nil {
			return fmt.Errorf("reserve imeis: %w", err)
		}
		return audit.Record(tx, actor, audit.ActionCreate, entitySO, so.SONumber, map[string]interface{}{"customer": so.CustomerName})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sales order created", zap.String("so", so.SONumber), zap.Int("devices", len(so.IMEIList)))
	if s.bus != nil {
		s.bus.RefreshAfter(notify.SalesChange)
	}
	return &so, nil
}

// List returns sales orders, newest first.
func (s *Service) List(ctx context.Context) ([]models.SalesOrder, error) {
	var out []models.SalesOrder
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	return out, nil
}

// Delete removes a sales order and releases devices it still holds back to
// Available. Admin only.
func (s *Service) Delete(ctx context.Context, actor models.Actor, soNumber string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only Admin can delete records")
	}
	var released int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var so models.SalesOrder
		res := tx.Where("so_number = ?", soNumber).Limit(1).Find(&so)
		if res.Error != nil {
			return fmt.Errorf("load sales order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Sales order not found")
		}
		if len(so.IMEIList) > 0 {
			upd := tx.Model(&models.InventoryItem{}).
				Where("imei IN ? AND status = ?", []string(so.IMEIList), models.InventoryReserved).
				Updates(map[string]interface{}{"status": models.InventoryAvailable, "updated_at": time.Now().UTC()})
			if upd.Error != nil {
				return fmt.Errorf("release imeis: %w", upd.Error)
			}
			released = upd.RowsAffected
		}
		if err := tx.Delete(&so).Error; err != nil {
			return fmt.Errorf("delete sales order: %w", err)
		}
		return audit.Record(tx, actor, audit.ActionDelete, entitySO, soNumber, map[string]interface{}{"released": released})
	})
	if err != nil {
		return err
	}
	s.log.Info("sales order deleted", zap.String("so", soNumber), zap.Int64("released", released))
	if s.bus != nil {
		s.bus.RefreshAfter(notify.SalesChange)
	}
	return nil
}
