package invoicing

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
	invoicePrefix      = "INV-"
	invoiceNumberWidth = 6
	statusPending      = "Pending"
	entityInvoice      = "Invoice"
)

// Service raises invoices between the organizations and to customers
type Service struct {
	db  *database.DB
	bus *notify.Bus
	log *zap.Logger
}

// NewService creates a new invoicing service
func NewService(db *database.DB, bus *notify.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, bus: bus, log: log}
}

// InvoiceInput is the body of POST /invoices. A missing GST amount is
// computed from the percentage, which defaults to 18.
type InvoiceInput struct {
	InvoiceType      string      `json:"invoice_type" validate:"required"`
	PONumber         string      `json:"po_number" validate:"required"`
	FromOrganization string      `json:"from_organization" validate:"required"`
	ToOrganization   string      `json:"to_organization" validate:"required"`
	Amount           money.Flex  `json:"amount"`
	GSTAmount        *money.Flex `json:"gst_amount"`
	GSTPercentage    *money.Flex `json:"gst_percentage"`
	IMEIList         []string    `json:"imei_list"`
	InvoiceDate      *time.Time  `json:"invoice_date"`
	Description      *string     `json:"description"`
	BillingAddress   *string     `json:"billing_address"`
	ShippingAddress  *string     `json:"shipping_address"`
}

// Amounts returns amount, GST percentage, GST amount and total for the input.
func (in InvoiceInput) Amounts() (amount, pct, gst, total float64) {
	amount = in.Amount.Float()
	pct = models.DefaultGSTPercentage
	if in.GSTPercentage != nil && in.GSTPercentage.IsPositive() {
		pct = in.GSTPercentage.Float()
	}
	if in.GSTAmount != nil {
		gst = in.GSTAmount.Float()
	} else {
		gst = money.Percent(amount, pct)
	}
	return amount, pct, gst, money.Sum(amount, gst)
}

// Create numbers and stores an invoice with payment status Pending.
func (s *Service) Create(ctx context.Context, actor models.Actor, in InvoiceInput) (*models.Invoice, error) {
	if in.Amount.IsNegative() {
		return nil, apperr.Invalid("amount cannot be negative")
	}
	amount, pct, gst, total := in.Amounts()
	inv := models.Invoice{
		InvoiceType:      in.InvoiceType,
		PONumber:         in.PONumber,
		FromOrganization: in.FromOrganization,
		ToOrganization:   in.ToOrganization,
		Amount:           amount,
		GSTAmount:        gst,
		GSTPercentage:    pct,
		TotalAmount:      total,
		IMEIList:         datatypes.JSONSlice[string](in.IMEIList),
		InvoiceDate:      time.Now().UTC(),
		PaymentStatus:    statusPending,
		Description:      in.Description,
		BillingAddress:   in.BillingAddress,
		ShippingAddress:  in.ShippingAddress,
		CreatedBy:        actor.UserID,
	}
	if in.InvoiceDate != nil {
		inv.InvoiceDate = in.InvoiceDate.UTC()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := database.NextNumber(tx, "invoices", "invoice_number", invoicePrefix, invoiceNumberWidth)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		if err := tx.Create(&inv).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return audit.Record(tx, actor, audit.ActionCreate, entityInvoice, inv.InvoiceNumber, map[string]interface{}{"amount": inv.Amount})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice raised", zap.String("invoice", inv.InvoiceNumber), zap.String("po", inv.PONumber), zap.Float64("total", inv.TotalAmount))
	if s.bus != nil {
		s.bus.RefreshAfter(notify.InvoiceChange)
	}
	return &inv, nil
}

// List returns invoices, newest first, optionally for one PO.
func (s *Service) List(ctx context.Context, poNumber string) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if poNumber != "" {
		q = q.Where("po_number = ?", poNumber)
	}
	var out []models.Invoice
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	for i := range out {
		if out[i].GSTPercentage == 0 {
			out[i].GSTPercentage = models.DefaultGSTPercentage
		}
	}
	return out, nil
}

// Delete removes an invoice. Admin only.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only Admin can delete records")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Invoice{})
		if res.Error != nil {
			return fmt.Errorf("delete invoice: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Invoice not found")
		}
		return audit.Record(tx, actor, audit.ActionDelete, entityInvoice, id, nil)
	})
	if err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.RefreshAfter(notify.InvoiceChange)
	}
	return nil
}
