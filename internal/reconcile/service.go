package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/xelth-com/tradetrack/internal/apperr"
	"github.com/xelth-com/tradetrack/internal/database"
	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xelth-com/tradetrack/internal/money"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Service loads report data and computes the dashboard figures
type Service struct {
	db  *database.DB
	log *zap.Logger
}

// NewService creates a new report service
func NewService(db *database.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

// Load fetches the five report collections in parallel. Any failure fails the whole load.
func (s *Service) Load(ctx context.Context) (*Sources, error) {
	var src Sources
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.WithContext(ctx).
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sl_no ASC") }).
			Order("created_at ASC").
			Find(&src.PurchaseOrders).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Order("created_at ASC").Find(&src.Procurement).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Order("created_at ASC").Find(&src.Payments).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Order("created_at ASC").Find(&src.Shipments).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Order("created_at ASC").Find(&src.Inventory).Error
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load report data: %w", err)
	}
	return &src, nil
}

// Master is the master report as served to clients
type Master struct {
	Rows      []Row    `json:"rows"`
	Summary   Summary  `json:"summary"`
	UniquePOs []string `json:"unique_pos"`
}

// Master builds the full report and applies the search and PO filters.
// UniquePOs is taken before filtering so a client can offer every PO.
func (s *Service) Master(ctx context.Context, search, po string) (*Master, error) {
	src, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	all := Build(*src)
	rows := Filter(all, search, po)
	s.log.Debug("master report built", zap.Int("rows", len(all)), zap.Int("filtered", len(rows)))
	return &Master{Rows: rows, Summary: Summarize(rows), UniquePOs: UniquePOs(all)}, nil
}

// Dashboard holds the headline counters
type Dashboard struct {
	TotalPOs           int64   `json:"total_pos"`
	PendingPOs         int64   `json:"pending_pos"`
	TotalProcurement   int64   `json:"total_procurement"`
	TotalInventory     int64   `json:"total_inventory"`
	AvailableInventory int64   `json:"available_inventory"`
	TotalSales         int64   `json:"total_sales"`
	TotalPaymentAmount float64 `json:"total_payment_amount"`
}

// Dashboard counts records across the system.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	var d Dashboard
	counts := []struct {
		q   *gorm.DB
		dst *int64
	}{
		{db.Model(&models.PurchaseOrder{}), &d.TotalPOs},
		{db.Model(&models.PurchaseOrder{}).Where("approval_status = ?", models.ApprovalPending), &d.PendingPOs},
		{db.Model(&models.ProcurementRecord{}), &d.TotalProcurement},
		{db.Model(&models.InventoryItem{}), &d.TotalInventory},
		{db.Model(&models.InventoryItem{}).Where("status = ?", models.InventoryAvailable), &d.AvailableInventory},
		{db.Model(&models.SalesOrder{}), &d.TotalSales},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("dashboard count: %w", err)
		}
	}
	if err := db.Model(&models.Payment{}).Select("COALESCE(SUM(amount), 0)").Scan(&d.TotalPaymentAmount).Error; err != nil {
		return nil, fmt.Errorf("dashboard payments: %w", err)
	}
	d.TotalPaymentAmount = money.Round(d.TotalPaymentAmount)
	return &d, nil
}

// POSummary is one purchase order with its procurement and payments
type POSummary struct {
	PO                 models.PurchaseOrder       `json:"po"`
	TotalProcured      int                        `json:"total_procured"`
	ProcurementRecords []models.ProcurementRecord `json:"procurement_records"`
	Payments           []models.Payment           `json:"payments"`
	TotalPaid          float64                    `json:"total_paid"`
}

// POSummary gathers procurement and payments for one PO.
func (s *Service) POSummary(ctx context.Context, poNumber string) (*POSummary, error) {
	db := s.db.WithContext(ctx)
	var out POSummary
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sl_no ASC") }).
		Where("po_number = ?", poNumber).First(&out.PO).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("PO not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load purchase order: %w", err)
	}
	if err := db.Where("po_number = ?", poNumber).Order("created_at ASC").Find(&out.ProcurementRecords).Error; err != nil {
		return nil, fmt.Errorf("load procurement: %w", err)
	}
	if err := db.Where("po_number = ?", poNumber).Order("created_at ASC").Find(&out.Payments).Error; err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	out.TotalProcured = len(out.ProcurementRecords)
	amounts := make([]float64, len(out.Payments))
	for i, p := range out.Payments {
		amounts[i] = p.Amount
	}
	out.TotalPaid = money.Sum(amounts...)
	return &out, nil
}

// Inventory returns every inventory row for the spreadsheet export.
func (s *Service) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return items, nil
}
