package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xelth-com/tradetrack/internal/models"
	"github.com/xuri/excelize/v2"
)

// CSVHeaders are the columns of the CSV export.
var CSVHeaders = []string{
	// Procurement (Magnova → Nova PO)
	"SL No", "PO ID", "PO Date", "Purchase Office", "Vendor", "Location", "Brand", "Model",
	"Storage", "Colour", "IMEI", "Qty", "Rate", "PO Value", "GRN No",
	// Payment (Magnova → Nova)
	"Payment#", "Bank Account", "IFSC Code", "Payment Date", "UTR No", "Amount",
	// Payments (Nova → vendors)
	"Ext Payment#", "Payee Name", "Payee Type", "Ext Bank Acc#", "Ext Payment Date", "Ext UTR No", "Ext Amount",
	// Logistics
	"Courier Name", "Dispatch Date", "POD Number", "Shipment Status",
	// Stores
	"Stock Received Date", "Received Qty", "Warehouse", "Stock Status",
}

// sheetHeaders are the shorter column titles of the master spreadsheet.
var sheetHeaders = []string{
	"SL No", "PO ID", "PO Date", "Purchase Office", "Vendor", "Location", "Brand", "Model",
	"Storage", "Colour", "IMEI", "Qty", "Rate", "PO Value", "GRN No",
	"Payment#", "Bank Acc#", "IFSC", "Payment Dt", "UTR No", "Amount",
	"Payment#", "Payee Name", "Payee Type", "Bank Acc#", "Payment Dt", "UTR No", "Amount",
	"Courier", "Dispatch Dt", "POD No", "Status",
	"Received Dt", "Rcvd Qty", "Warehouse", "Status",
}

type band struct {
	from, to string
	title    string
	color    string
}

var bands = []band{
	{"A1", "O1", "PROCUREMENT (Magnova → Nova PO)", "#16A34A"},
	{"P1", "U1", "PAYMENT (Magnova → Nova)", "#F97316"},
	{"V1", "AB1", "PAYMENTS (Nova → Vendors)", "#9333EA"},
	{"AC1", "AF1", "LOGISTICS", "#2563EB"},
	{"AG1", "AJ1", "STORES", "#EC4899"},
}

// money columns of the master sheet, zero-based
var moneyCols = map[int]bool{12: true, 13: true, 20: true, 27: true}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *Row) values() []interface{} {
	return []interface{}{
		r.SlNo, r.POID, r.PODate, r.PurchaseOffice, r.Vendor, r.Location, r.Brand, r.Model,
		r.Storage, r.Colour, r.IMEI, r.Qty, r.Rate, r.POValue, r.GRNNo,
		r.PaymentNo, r.BankAccount, r.IFSCCode, r.PaymentDate, r.UTRNo, r.PaymentAmount,
		r.ExtPaymentNo, r.ExtPayeeName, r.ExtPayeeType, r.ExtBankAccount, r.ExtPaymentDate, r.ExtUTRNo, r.ExtPaymentAmount,
		r.CourierName, r.DispatchDate, r.PODNumber, r.ShipmentStatus,
		r.StockReceivedDate, r.ReceivedQty, r.Warehouse, r.StockStatus,
	}
}

func (r *Row) record() []string {
	vals := r.values()
	out := make([]string, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case string:
			out[i] = x
		case int:
			out[i] = strconv.Itoa(x)
		case float64:
			out[i] = amount(x)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

// WriteCSV writes a header line and one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeaders); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(rows[i].record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func bandStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorder(),
	})
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
}

// WriteXLSX writes the master spreadsheet: a row of coloured section bands,
// a header row and one row per report row.
func WriteXLSX(w io.Writer, rows []Row) error {
	const sheet = "Master Report"

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	for _, b := range bands {
		style, err := bandStyle(f, b.color)
		if err != nil {
			return fmt.Errorf("band style: %w", err)
		}
		if err := f.MergeCell(sheet, b.from, b.to); err != nil {
			return fmt.Errorf("merge %s: %w", b.from, err)
		}
		f.SetCellValue(sheet, b.from, b.title)
		f.SetCellStyle(sheet, b.from, b.to, style)
	}

	headerStyle, err := bandStyle(f, "#1E3A5F")
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	header := make([]interface{}, len(sheetHeaders))
	for i, h := range sheetHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		return fmt.Errorf("header row: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(sheetHeaders))
	f.SetCellStyle(sheet, "A2", last+"2", headerStyle)

	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return fmt.Errorf("cell style: %w", err)
	}
	numFmt := "₹#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder(), CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("money style: %w", err)
	}

	for i := range rows {
		n := i + 3
		vals := rows[i].values()
		start, _ := excelize.CoordinatesToCellName(1, n)
		if err := f.SetSheetRow(sheet, start, &vals); err != nil {
			return fmt.Errorf("row %d: %w", n, err)
		}
		end, _ := excelize.CoordinatesToCellName(len(vals), n)
		f.SetCellStyle(sheet, start, end, cellStyle)
		for col := range moneyCols {
			cell, _ := excelize.CoordinatesToCellName(col+1, n)
			f.SetCellStyle(sheet, cell, cell, moneyStyle)
		}
	}

	f.SetColWidth(sheet, "A", last, 12)
	return f.Write(w)
}

// InventoryHeaders are the columns of the inventory spreadsheet.
var InventoryHeaders = []string{
	"IMEI", "Brand", "Model", "Colour", "Storage", "Device Model", "Status",
	"Vendor", "Organization", "Location", "PO Number", "Created At",
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// WriteInventoryXLSX writes one spreadsheet row per inventory item.
func WriteInventoryXLSX(w io.Writer, items []models.InventoryItem) error {
	const sheet = "Inventory"

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(InventoryHeaders))
	for i, h := range InventoryHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("header row: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetRowStyle(sheet, 1, 1, style)
	}

	for i := range items {
		it := &items[i]
		row := []interface{}{
			it.IMEI, str(it.Brand), str(it.Model), str(it.Colour), str(it.Storage),
			str(it.DeviceModel), string(it.Status), str(it.Vendor), string(it.Organization),
			it.CurrentLocation, str(it.PONumber), it.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(sheet, "A", "L", 15)
	return f.Write(w)
}
