// Package reconcile joins purchase orders with the procurement, payment,
// shipment and inventory records that belong to each line, producing the
// master report and its CSV and spreadsheet exports.
package reconcile

import (
	"time"

	"github.com/xelth-com/tradetrack/internal/models"
)

// Missing is printed for a text cell with no linked record.
const Missing = "-"

// MatchKind says how a report section was linked to its line
type MatchKind string

const (
	MatchExact MatchKind = "exact" // the record carries the line item ID
	MatchFuzzy MatchKind = "fuzzy" // legacy record linked by PO number and vendor/model/location
	MatchNone  MatchKind = "none"
)

// Match reports the strategy used for each section of a row
type Match struct {
	Procurement     MatchKind `json:"procurement"`
	InternalPayment MatchKind `json:"internal_payment"`
	ExternalPayment MatchKind `json:"external_payment"`
	Shipment        MatchKind `json:"shipment"`
	Inventory       MatchKind `json:"inventory"`
}

// Sources are the five collections a report is built from
type Sources struct {
	PurchaseOrders []models.PurchaseOrder
	Procurement    []models.ProcurementRecord
	Payments       []models.Payment
	Shipments      []models.Shipment
	Inventory      []models.InventoryItem
}

// Row is one PO line with everything linked to it
type Row struct {
	SlNo       int    `json:"sl_no"`
	LineItemID string `json:"line_item_id,omitempty"`

	// Procurement (Magnova → Nova PO)
	POID           string  `json:"po_id"`
	PODate         string  `json:"po_date"`
	PurchaseOffice string  `json:"purchase_office"`
	Vendor         string  `json:"vendor"`
	Location       string  `json:"location"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	Storage        string  `json:"storage"`
	Colour         string  `json:"colour"`
	IMEI           string  `json:"imei"`
	Qty            int     `json:"qty"`
	Rate           float64 `json:"rate"`
	POValue        float64 `json:"po_value"`
	GRNNo          string  `json:"grn_no"`

	// Payment (Magnova → Nova)
	PaymentNo     string  `json:"payment_no"`
	BankAccount   string  `json:"bank_account"`
	IFSCCode      string  `json:"ifsc_code"`
	PaymentDate   string  `json:"payment_date"`
	UTRNo         string  `json:"utr_no"`
	PaymentAmount float64 `json:"payment_amount"`

	// Payments (Nova → vendors)
	ExtPaymentNo     string  `json:"ext_payment_no"`
	ExtPayeeName     string  `json:"ext_payee_name"`
	ExtPayeeType     string  `json:"ext_payee_type"`
	ExtBankAccount   string  `json:"ext_bank_account"`
	ExtPaymentDate   string  `json:"ext_payment_date"`
	ExtUTRNo         string  `json:"ext_utr_no"`
	ExtPaymentAmount float64 `json:"ext_payment_amount"`

	// Logistics
	CourierName    string `json:"courier_name"`
	DispatchDate   string `json:"dispatch_date"`
	PODNumber      string `json:"pod_number"`
	ShipmentStatus string `json:"shipment_status"`

	// Stores
	StockReceivedDate string `json:"stock_received_date"`
	ReceivedQty       int    `json:"received_qty"`
	Warehouse         string `json:"warehouse"`
	StockStatus       string `json:"stock_status"`

	POStatus string `json:"po_status"`
	Match    Match  `json:"match"`

	internalPaymentID string
}

func day(t time.Time) string {
	if t.IsZero() {
		return Missing
	}
	return t.Format("2006-01-02")
}

func text(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

func textPtr(p *string) string {
	if p == nil {
		return Missing
	}
	return text(*p)
}

func firstText(ps ...*string) string {
	for _, p := range ps {
		if p != nil && *p != "" {
			return *p
		}
	}
	return Missing
}
