package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"github.com/xelth-com/tradetrack/internal/notify"
	"github.com/xelth-com/tradetrack/internal/services/audit"
	"github.com/xelth-com/tradetrack/internal/services/purchasing"
	"github.com/xelth-com/tradetrack/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const statusCompleted = "Completed"

// Service records internal (Magnova → Nova) and external (Nova → vendor) payments
type Service struct {
	db  *database.DB
	bus *notify.Bus
	log *zap.Logger
}

// NewService creates a new payment service
func NewService(db *database.DB, bus *notify.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, bus: bus, log: log}
}

// InternalInput is the body of POST /payments/internal
type InternalInput struct {
	PONumber       string     `json:"po_number" validate:"required"`
	LineItemID     *string    `json:"line_item_id"`
	PayeeName      string     `json:"payee_name" validate:"required"`
	PayeeAccount   *string    `json:"payee_account"`
	PayeeBank      *string    `json:"payee_bank"`
	PaymentMode    string     `json:"payment_mode" validate:"required"`
	Amount         money.Flex `json:"amount"`
	TransactionRef *string    `json:"transaction_ref"`
	PaymentDate    *time.Time `json:"payment_date"`
}

// ExternalInput is the body of POST /payments/external
type ExternalInput struct {
	PONumber      string            `json:"po_number" validate:"required"`
	LineItemID    *string           `json:"line_item_id"`
	PayeeType     *models.PayeeType `json:"payee_type" validate:"omitempty,oneof=vendor cc"`
	PayeeName     string            `json:"payee_name" validate:"required"`
	AccountNumber *string           `json:"account_number"`
	IFSCCode      *string           `json:"ifsc_code"`
	Location      *string           `json:"location"`
	PaymentMode   string            `json:"payment_mode" validate:"required"`
	Amount        money.Flex        `json:"amount"`
	UTRNumber     *string           `json:"utr_number"`
	PaymentDate   *time.Time        `json:"payment_date"`
}

// Summary is the payment position of one purchase order
type Summary struct {
	PONumber          string  `json:"po_number"`
	POTotalValue      float64 `json:"po_total_value"`
	InternalPaid      float64 `json:"internal_paid"`
	ExternalPaid      float64 `json:"external_paid"`
	ExternalRemaining float64 `json:"external_remaining"`
}

func paymentDate(d *time.Time) time.Time {
	if d == nil {
		return time.Now().UTC()
	}
	return d.UTC()
}

// totals sums internal (including untyped legacy rows) and external payments for a PO.
func totals(tx *gorm.DB, poNumber string) (internal, external decimal.Decimal, err error) {
	var rows []models.Payment
	if err = tx.Select("payment_type", "amount").Where("po_number = ?", poNumber).Find(&rows).Error; err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	internal, external = decimal.Zero, decimal.Zero
	for i := range rows {
		amt := decimal.NewFromFloat(rows[i].Amount)
		if rows[i].IsExternal() {
			external = external.Add(amt)
		} else {
			internal = internal.Add(amt)
		}
	}
	return internal, external, nil
}

// CreateInternal records Magnova settling a PO with Nova.
func (s *Service) CreateInternal(ctx context.Context, actor models.Actor, in InternalInput) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Invalid("amount must be greater than zero")
	}
	p := models.Payment{
		PONumber:       in.PONumber,
		PaymentType:    models.PaymentInternal,
		PayeeName:      in.PayeeName,
		PayeeAccount:   in.PayeeAccount,
		PayeeBank:      in.PayeeBank,
		PaymentMode:    in.PaymentMode,
		Amount:         in.Amount.Float(),
		TransactionRef: in.TransactionRef,
		PaymentDate:    paymentDate(in.PaymentDate),
		Status:         statusCompleted,
		CreatedBy:      actor.UserID,
	}

	var po *models.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if po, err = purchasing.ReferencedPO(tx, in.PONumber); err != nil {
			return err
		}
		line, err := purchasing.CheckLine(tx, po, in.LineItemID)
		if err != nil {
			return err
		}
		if line != nil {
			p.LineItemID = &line.ID
		}
		if _, err := purchasing.Advance(tx, actor, po, workflow.EventInternalPaid); err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create internal payment: %w", err)
		}
		return audit.Record(tx, actor, audit.ActionCreate, "InternalPayment", p.ID, map[string]interface{}{"amount": p.Amount})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("internal payment recorded", zap.String("po", p.PONumber), zap.Float64("amount", p.Amount))
	if s.bus != nil {
		s.bus.InternalPaymentRecorded(p.PONumber, notify.Prefill{
			"po_number": p.PONumber,
			"amount":    p.Amount,
		})
	}
	return &p, nil
}

// CreateExternal records Nova paying a vendor or card. Cumulative external
// payments for a PO may not exceed its cumulative internal payments.
func (s *Service) CreateExternal(ctx context.Context, actor models.Actor, in ExternalInput) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Invalid("amount must be greater than zero")
	}
	p := models.Payment{
		PONumber:      in.PONumber,
		PaymentType:   models.PaymentExternal,
		PayeeType:     in.PayeeType,
		PayeeName:     in.PayeeName,
		AccountNumber: in.AccountNumber,
		IFSCCode:      in.IFSCCode,
		Location:      in.Location,
		PaymentMode:   in.PaymentMode,
		Amount:        in.Amount.Float(),
		UTRNumber:     in.UTRNumber,
		PaymentDate:   paymentDate(in.PaymentDate),
		Status:        statusCompleted,
		CreatedBy:     actor.UserID,
	}

	var vendor string
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
			p.LineItemID = &line.ID
			vendor = line.Vendor
		}

		internal, external, err := totals(tx, in.PONumber)
		if err != nil {
			return err
		}
		amount := decimal.NewFromFloat(p.Amount)
		if external.Add(amount).GreaterThan(internal) {
			return apperr.Invalid(
				"External payments cannot exceed internal payment. Internal: ₹%s, Already paid externally: ₹%s, Remaining: ₹%s",
				internal.StringFixed(money.Places), external.StringFixed(money.Places), internal.Sub(external).StringFixed(money.Places),
			)
		}

		if _, err := purchasing.Advance(tx, actor, po, workflow.EventExternalPaid); err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create external payment: %w", err)
		}
		return audit.Record(tx, actor, audit.ActionCreate, "ExternalPayment", p.ID, map[string]interface{}{
			"amount": p.Amount,
			"payee":  p.PayeeName,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("external payment recorded", zap.String("po", p.PONumber), zap.Float64("amount", p.Amount), zap.String("payee", p.PayeeName))
	if s.bus != nil {
		prefill := notify.Prefill{"po_number": p.PONumber, "vendor_name": p.PayeeName}
		if vendor != "" {
			prefill["vendor_name"] = vendor
		}
		if p.LineItemID != nil {
			prefill["line_item_id"] = *p.LineItemID
		}
		if p.Location != nil {
			prefill["store_location"] = *p.Location
		}
		s.bus.ExternalPaymentRecorded(p.PONumber, prefill)
	}
	return &p, nil
}

// Summary returns paid and remaining amounts for a PO.
func (s *Service) Summary(ctx context.Context, poNumber string) (*Summary, error) {
	db := s.db.WithContext(ctx)
	po, err := s.po(db, poNumber)
	if err != nil {
		return nil, err
	}
	internal, external, err := totals(db, poNumber)
	if err != nil {
		return nil, err
	}
	return &Summary{
		PONumber:          poNumber,
		POTotalValue:      po.TotalValue,
		InternalPaid:      internal.Round(money.Places).InexactFloat64(),
		ExternalPaid:      external.Round(money.Places).InexactFloat64(),
		ExternalRemaining: internal.Sub(external).Round(money.Places).InexactFloat64(),
	}, nil
}

func (s *Service) po(db *gorm.DB, poNumber string) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := db.Where("po_number = ?", poNumber).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("PO not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load purchase order: %w", err)
	}
	return &po, nil
}

// List returns payments, newest first. Filtering by "internal" includes untyped legacy rows.
func (s *Service) List(ctx context.Context, poNumber, paymentType string) ([]models.Payment, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if poNumber != "" {
		q = q.Where("po_number = ?", poNumber)
	}
	switch models.PaymentType(paymentType) {
	case "":
	case models.PaymentInternal:
		q = q.Where("payment_type = ? OR payment_type = '' OR payment_type IS NULL", models.PaymentInternal)
	default:
		q = q.Where("payment_type = ?", paymentType)
	}
	var out []models.Payment
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	for i := range out {
		if out[i].PaymentType == "" {
			out[i].PaymentType = models.PaymentInternal
		}
	}
	return out, nil
}

// Delete removes a payment. Admin only. The PO workflow state is not rolled back.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only Admin can delete records")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Payment{})
		if res.Error != nil {
			return fmt.Errorf("delete payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Payment not found")
		}
		return audit.Record(tx, actor, audit.ActionDelete, "Payment", id, nil)
	})
	if err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.RefreshAfter(notify.PaymentChange)
	}
	return nil
}
