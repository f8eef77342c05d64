package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/services/audit"
	"github.com/xelth-com/tradetrack/internal/workflow"
	"gorm.io/gorm"
)

// Advance applies ev to the purchase order inside tx and persists the new state.
// An event the current state does not accept is a conflict.
func Advance(tx *gorm.DB, actor models.Actor, po *models.PurchaseOrder, ev workflow.Event) (workflow.State, error) {
	from := po.WorkflowState
	to, err := workflow.Next(from, ev)
	if err != nil {
		if errors.Is(err, workflow.ErrIllegalTransition) {
			return from, apperr.Conflict("PO %s is %s and cannot accept %s", po.PONumber, displayState(from), ev)
		}
		return from, err
	}
	if to == from {
		return to, nil
	}
	if err := tx.Model(&models.PurchaseOrder{}).Where("id = ?", po.ID).Update("workflow_state", to).Error; err != nil {
		return from, fmt.Errorf("advance workflow: %w", err)
	}
	po.WorkflowState = to
	err = audit.Record(tx, actor, audit.ActionTransition, entityWorkflow, po.PONumber, map[string]interface{}{
		"from":  string(displayState(from)),
		"to":    string(to),
		"event": string(ev),
	})
	return to, err
}

func displayState(s workflow.State) workflow.State {
	if s == "" {
		return workflow.StateCreated
	}
	return s
}

// ReferencedPO loads the PO a new record points at. A missing PO is a bad request.
func ReferencedPO(tx *gorm.DB, poNumber string) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := tx.Where("po_number = ?", poNumber).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Invalid("PO not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load purchase order %s: %w", poNumber, err)
	}
	return &po, nil
}

// WorkflowView describes where a purchase order is in its lifecycle
type WorkflowView struct {
	PONumber      string           `json:"po_number"`
	State         workflow.State   `json:"state"`
	Allowed       []workflow.Event `json:"allowed_events"`
	TotalQuantity int              `json:"total_quantity"`
	Procured      int64            `json:"procured_quantity"`
	InternalPaid  float64          `json:"internal_paid"`
	ExternalPaid  float64          `json:"external_paid"`
}

// Workflow reports the backend-owned state of a purchase order.
func (s *Service) Workflow(ctx context.Context, poNumber string) (*WorkflowView, error) {
	db := s.db.WithContext(ctx)
	po, err := findPO(db, poNumber)
	if err != nil {
		return nil, err
	}
	state := displayState(po.WorkflowState)
	v := WorkflowView{
		PONumber:      po.PONumber,
		State:         state,
		Allowed:       workflow.Allowed(state),
		TotalQuantity: po.TotalQuantity,
	}
	if v.Procured, err = procuredQuantity(db, poNumber); err != nil {
		return nil, err
	}
	var sums []struct {
		PaymentType string
		Total       float64
	}
	err = db.Model(&models.Payment{}).
		Select("payment_type, SUM(amount) AS total").
		Where("po_number = ?", poNumber).
		Group("payment_type").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}
	for _, row := range sums {
		if models.PaymentType(row.PaymentType) == models.PaymentExternal {
			v.ExternalPaid += row.Total
		} else {
			v.InternalPaid += row.Total
		}
	}
	return &v, nil
}

func procuredQuantity(tx *gorm.DB, poNumber string) (int64, error) {
	var total int64
	err := tx.Model(&models.ProcurementRecord{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("po_number = ?", poNumber).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum procured quantity: %w", err)
	}
	return total, nil
}
